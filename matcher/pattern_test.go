// SPDX-License-Identifier: GPL-3.0-or-later
package matcher

import (
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// all strings of length 0..n over alphabet
func combinations(alphabet string, n int) []string {
	result := []string{""}
	current := []string{""}
	for i := 0; i < n; i++ {
		next := []string{}
		for _, prefix := range current {
			for _, r := range alphabet {
				next = append(next, prefix+string(r))
			}
		}
		result = append(result, next...)
		current = next
	}
	return result
}

func TestGlobAgreesWithPathMatch(t *testing.T) {
	patterns := combinations("ab.*?", 3)
	values := combinations("ab.", 3)

	for _, glob := range patterns {
		p, err := NewPattern(glob)
		require.NoError(t, err, glob)
		for _, value := range values {
			expected, err := path.Match(glob, value)
			require.NoError(t, err)
			assert.Equal(t, expected, p.MatchString(value), "pattern %q value %q", glob, value)
		}
	}
}

func TestGlobEscapesMetacharacters(t *testing.T) {
	tests := []struct {
		glob     string
		value    string
		expected bool
	}{
		{"Foo [bar]", "Foo [bar]", true},
		{"Foo [bar]", "Foo b", false},
		{"a+b", "a+b", true},
		{"a+b", "aab", false},
		{"(x)|y", "(x)|y", true},
		{"(x)|y", "y", false},
		{"$5.00*", "$5.00 off", true},
		{"$5.00*", "$5x00 off", false},
		{`back\slash`, `back\slash`, true},
		{"^caret", "^caret", true},
		{"Rechnung *", "Rechnung für\nApril", true},
	}
	for _, tc := range tests {
		t.Run(tc.glob, func(t *testing.T) {
			p, err := NewPattern(tc.glob)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, p.MatchString(tc.value))
		})
	}
}

func TestRegexpPattern(t *testing.T) {
	tests := []struct {
		criteria string
		expr     string
		value    string
		expected bool
	}{
		{"/^foo.+bar$/", "^foo.+bar$", "foo and bar", true},
		{"/^foo.+bar$/", "^foo.+bar$", "foobar", false},
		// match semantics: anchored at the start only
		{"/foo/", "foo", "foobar", true},
		{"/foo/", "foo", "a foo", false},
		{"/a/b/", "a/b", "a/b", true},
		{"//", "", "anything", true},
		// a single slash is a glob
		{"/", "(?s)^/$", "/", true},
	}
	for _, tc := range tests {
		t.Run(tc.criteria, func(t *testing.T) {
			p, err := NewPattern(tc.criteria)
			require.NoError(t, err)
			assert.Equal(t, tc.expr, p.Expr())
			assert.Equal(t, tc.expected, p.MatchString(tc.value))
		})
	}
}

func TestSearchPattern(t *testing.T) {
	body := "Dear customer,\nyour invoice 2023-04 is attached.\nRegards"

	tests := []struct {
		criteria string
		expected bool
	}{
		{"/invoice \\d{4}-\\d{2}/", true},
		{"/^your invoice/", true},
		{"/^invoice/", false},
		{"/attached\\.$/", true},
		{"*invoice*", true},
		{"invoice", true},
		{"invoice ????-04", true},
		{"receipt", false},
		{"your*attached.", true},
	}
	for _, tc := range tests {
		t.Run(tc.criteria, func(t *testing.T) {
			p, err := NewSearchPattern(tc.criteria)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, p.MatchString(body))
		})
	}
}

func TestSearchPatternGlobIsUnanchored(t *testing.T) {
	p, err := NewSearchPattern("in?oice")
	require.NoError(t, err)
	assert.Equal(t, "(?s)in.oice", p.Expr())

	p, err = NewPattern("in?oice")
	require.NoError(t, err)
	assert.Equal(t, "(?s)^in.oice$", p.Expr())
	assert.False(t, p.MatchString("the invoice"))
}

func TestInvalidRegexp(t *testing.T) {
	_, err := NewPattern("/(unclosed/")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `invalid pattern "/(unclosed/"`)
}

func TestPatternEqual(t *testing.T) {
	a, _ := NewPattern("*.pdf")
	b, _ := NewPattern("*.pdf")
	c, _ := NewSearchPattern("*.pdf")
	d, _ := NewPattern("*.PDF")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(nil))
}
