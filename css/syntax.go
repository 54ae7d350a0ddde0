// Package css knows about stylesheet dialects and vendor prefixes.
package css

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"apx/common"
)

var extensions = map[string]common.Syntax{
	".css":     common.SyntaxCss,
	".pcss":    common.SyntaxPostcss,
	".postcss": common.SyntaxPostcss,
	".less":    common.SyntaxLess,
	".scss":    common.SyntaxScss,
}

// SyntaxFromPath detects stylesheet dialect by file extension.
func SyntaxFromPath(name string) (common.Syntax, bool) {
	s, ok := extensions[strings.ToLower(filepath.Ext(name))]
	return s, ok
}

// Supported reports whether file name looks like stylesheet we could process.
func Supported(name string) bool {
	_, ok := SyntaxFromPath(name)
	return ok
}

var languageRe = regexp.MustCompile(`(css|postcss|less|scss)`)

// SyntaxFromLanguage maps editor language id to dialect. Any id mentioning
// one of the supported dialects is accepted ("scss", "postcss", "css" ...),
// more specific names are checked first.
func SyntaxFromLanguage(id string) (common.Syntax, error) {
	id = strings.ToLower(id)
	if !languageRe.MatchString(id) {
		return 0, fmt.Errorf("unsupported language %q, supported are LESS, SCSS, PostCSS and CSS", id)
	}
	switch {
	case strings.Contains(id, "scss"):
		return common.SyntaxScss, nil
	case strings.Contains(id, "less"):
		return common.SyntaxLess, nil
	case strings.Contains(id, "postcss"):
		return common.SyntaxPostcss, nil
	}
	return common.SyntaxCss, nil
}
