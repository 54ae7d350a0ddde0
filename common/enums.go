// Package common holds enums shared by configuration and processing code, so
// that config does not have to import processing packages and vice versa.
package common

//go:generate go tool go-enum --marshal --names --values

// Stylesheet dialect, selects postcss parser used by the bridge.
// ENUM(css, postcss, less, scss)
type Syntax int

// ParserModule returns name of the postcss syntax package needed to parse
// stylesheet of this dialect. Empty string means postcss default parser.
func (s Syntax) ParserModule() string {
	switch s {
	case SyntaxCss:
		return "postcss-safe-parser"
	case SyntaxLess:
		return "postcss-less"
	case SyntaxScss:
		return "postcss-scss"
	default:
		return ""
	}
}

// When cached module location should be probed again.
// ENUM(once, always)
type ResolvePolicy int
