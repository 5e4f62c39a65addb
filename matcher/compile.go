// SPDX-License-Identifier: GPL-3.0-or-later
package matcher

import (
	"fmt"
	"strings"
	"time"
)

// MatchGroup is one set of criteria. All populated fields must match; an
// empty field is no constraint.
type MatchGroup struct {
	Subject string `toml:"subject" yaml:"subject"`
	To      string `toml:"to" yaml:"to"`
	From    string `toml:"from" yaml:"from"`
	Date    string `toml:"date" yaml:"date"`
	Age     string `toml:"age" yaml:"age"`
	Body    string `toml:"body" yaml:"body"`
}

// IsEmpty reports whether the group has no criteria and therefore matches
// every message.
func (g MatchGroup) IsEmpty() bool {
	return g == MatchGroup{}
}

type compileOptions struct {
	now      func() time.Time
	location *time.Location
}

type CompileOption func(*compileOptions)

// WithClock sets the reference time age criteria are resolved against.
func WithClock(now func() time.Time) CompileOption {
	return func(o *compileOptions) {
		o.now = now
	}
}

// WithLocation sets the zone for date criteria without an explicit offset.
func WithLocation(loc *time.Location) CompileOption {
	return func(o *compileOptions) {
		o.location = loc
	}
}

type fieldCompiler struct {
	name    string
	value   func(MatchGroup) string
	compile func(criteria string, o *compileOptions) (Matcher, error)
}

// fields in evaluation order
var fieldCompilers = []fieldCompiler{
	{"subject", func(g MatchGroup) string { return g.Subject }, func(c string, _ *compileOptions) (Matcher, error) {
		return NewSubjectMatcher(c)
	}},
	{"to", func(g MatchGroup) string { return g.To }, func(c string, _ *compileOptions) (Matcher, error) {
		return NewToMatcher(c)
	}},
	{"from", func(g MatchGroup) string { return g.From }, func(c string, _ *compileOptions) (Matcher, error) {
		return NewFromMatcher(c)
	}},
	{"date", func(g MatchGroup) string { return g.Date }, func(c string, o *compileOptions) (Matcher, error) {
		return NewDateMatcher(c, o.location)
	}},
	{"age", func(g MatchGroup) string { return g.Age }, func(c string, o *compileOptions) (Matcher, error) {
		return NewAgeMatcher(c, o.now())
	}},
	{"body", func(g MatchGroup) string { return g.Body }, func(c string, _ *compileOptions) (Matcher, error) {
		return NewBodyMatcher(c)
	}},
}

// Compile builds the matcher tree for a rule: an Or over one And per group.
// Without groups the result never matches.
func Compile(groups []MatchGroup, opts ...CompileOption) (Matcher, error) {
	o := &compileOptions{
		now:      time.Now,
		location: time.Local,
	}
	for _, f := range opts {
		f(o)
	}

	or := &OrMatcher{Matchers: []Matcher{}}
	for i, group := range groups {
		and, err := compileGroup(group, o)
		if err != nil {
			return nil, fmt.Errorf("matches[%d].%w", i, err)
		}
		or.Matchers = append(or.Matchers, and)
	}

	return or, nil
}

// CompileGroup builds the matcher for a single group, used for ad-hoc
// filters given on the command line.
func CompileGroup(group MatchGroup, opts ...CompileOption) (Matcher, error) {
	m, err := Compile([]MatchGroup{group}, opts...)
	if err != nil {
		return nil, err
	}
	return m.(*OrMatcher).Matchers[0], nil
}

func compileGroup(group MatchGroup, o *compileOptions) (*AndMatcher, error) {
	and := &AndMatcher{Matchers: []Matcher{}}
	for _, f := range fieldCompilers {
		criteria := f.value(group)
		if len(strings.TrimSpace(criteria)) == 0 {
			continue
		}

		m, err := f.compile(criteria, o)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		and.Matchers = append(and.Matchers, m)
	}
	return and, nil
}
