// SPDX-License-Identifier: GPL-3.0-or-later
package matcher

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is a user supplied string criterion. "/expr/" is a regular
// expression, anything else a shell style glob where * matches any run of
// characters, ? matches one character and everything else is literal.
type Pattern struct {
	criteria string
	expr     string
	search   bool
	re       *regexp.Regexp
}

// NewPattern compiles a pattern with match semantics: the expression has to
// match at the start of the value. Globs are additionally anchored at the end.
func NewPattern(criteria string) (*Pattern, error) {
	return newPattern(criteria, false)
}

// NewSearchPattern compiles a pattern that may match anywhere in a multiline
// value. Globs are not anchored, so "invoice" finds the word inside a line.
func NewSearchPattern(criteria string) (*Pattern, error) {
	return newPattern(criteria, true)
}

func newPattern(criteria string, search bool) (*Pattern, error) {
	p := &Pattern{criteria: criteria, search: search}
	switch {
	case isRegexp(criteria):
		p.expr = criteria[1 : len(criteria)-1]
	case search:
		p.expr = "(?s)" + globBody(criteria)
	default:
		p.expr = GlobToRegexp(criteria)
	}

	compiled := p.expr
	if search {
		compiled = "(?m)" + compiled
	} else {
		compiled = "^(?:" + compiled + ")"
	}

	re, err := regexp.Compile(compiled)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", criteria, err)
	}
	p.re = re

	return p, nil
}

func isRegexp(criteria string) bool {
	return len(criteria) >= 2 && strings.HasPrefix(criteria, "/") && strings.HasSuffix(criteria, "/")
}

// GlobToRegexp translates a glob into an equivalent regular expression
// anchored at both ends.
func GlobToRegexp(glob string) string {
	// globs span lines, like the reference fnmatch
	return "(?s)^" + globBody(glob) + "$"
}

func globBody(glob string) string {
	var b strings.Builder
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

func (p *Pattern) MatchString(value string) bool {
	return p.re.MatchString(value)
}

// Expr is the regular expression the pattern was translated to, without the
// anchoring added for match semantics.
func (p *Pattern) Expr() string {
	return p.expr
}

func (p *Pattern) Equal(other *Pattern) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.criteria == other.criteria && p.search == other.search
}

func (p *Pattern) String() string {
	return p.criteria
}
