// Package prefix runs autoprefixer over stylesheet text.
package prefix

import (
	"context"
	"regexp"

	"apx/common"
)

// Request describes single stylesheet to process.
type Request struct {
	CSS    string        `json:"css"`
	Syntax common.Syntax `json:"syntax"`
	// Browsers is browserslist query, empty means autoprefixer defaults.
	Browsers []string `json:"browsers,omitempty"`
	// Module is location of autoprefixer to use or bare module id to be
	// resolved by node itself.
	Module string `json:"module"`
	// WorkDir is directory node is started in, bare module ids are resolved
	// relative to it.
	WorkDir string `json:"-"`
}

// Result of processing. Warnings are kept as reported by postcss.
type Result struct {
	CSS      string   `json:"css"`
	Warnings []string `json:"warnings"`
}

func (r *Result) HasWarnings() bool {
	return r != nil && len(r.Warnings) > 0
}

// Runner processes stylesheets.
type Runner interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

var warningRe = regexp.MustCompile(`autoprefixer:\s<.*?>:(.*)?:\s(.*)`)

// FormatWarning turns postcss warning text into short "[line:column] message"
// form. Text in unexpected format is returned unchanged.
func FormatWarning(w string) string {
	loc := warningRe.FindStringSubmatchIndex(w)
	if loc == nil {
		return w
	}
	return w[:loc[0]] + string(warningRe.ExpandString(nil, "[${1}] ${2}", w, loc)) + w[loc[1]:]
}
