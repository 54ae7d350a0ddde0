package css

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

var vendors = []string{"-webkit-", "-moz-", "-ms-", "-o-"}

// Stats describes vendor prefixes present in a stylesheet.
type Stats struct {
	Prefixed int
	ByVendor map[string]int
}

// Sub returns difference between two stats, only vendors with non zero
// difference are kept.
func (s Stats) Sub(o Stats) Stats {
	d := Stats{Prefixed: s.Prefixed - o.Prefixed, ByVendor: make(map[string]int)}
	for _, v := range vendors {
		if n := s.ByVendor[v] - o.ByVendor[v]; n != 0 {
			d.ByVendor[v] = n
		}
	}
	return d
}

// CountPrefixes scans stylesheet and counts vendor prefixed identifiers,
// functions and at-rules. Lexer is forgiving enough to be used on LESS and
// SCSS sources as well.
func CountPrefixes(data []byte) Stats {
	st := Stats{ByVendor: make(map[string]int)}

	l := css.NewLexer(parse.NewInput(bytes.NewReader(data)))
	for {
		tt, text := l.Next()
		switch tt {
		case css.ErrorToken:
			return st
		case css.IdentToken, css.FunctionToken, css.AtKeywordToken:
			if v := vendorOf(text); len(v) > 0 {
				st.Prefixed++
				st.ByVendor[v]++
			}
		}
	}
}

func vendorOf(token []byte) string {
	name := strings.ToLower(strings.TrimPrefix(string(token), "@"))
	for _, v := range vendors {
		if strings.HasPrefix(name, v) && len(name) > len(v) {
			return v
		}
	}
	return ""
}
