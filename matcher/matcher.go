// SPDX-License-Identifier: GPL-3.0-or-later
package matcher

import (
	"errors"
	"strings"

	"github.com/CrawX/go-save-message/domain"
)

// ErrUnreadableMessage is wrapped by Match errors caused by a message field
// that is present but cannot be interpreted, e.g. a garbled Date header.
var ErrUnreadableMessage = errors.New("unreadable message")

// Matcher is a predicate over a parsed message. Implementations are immutable
// after construction and safe for concurrent use.
type Matcher interface {
	Match(msg domain.Message) (bool, error)
	// Equal reports whether other is the same variant built from the same parameters.
	Equal(other Matcher) bool
	String() string
}

// AndMatcher matches when every child matches. Without children it matches
// every message.
type AndMatcher struct {
	Matchers []Matcher
}

func NewAndMatcher(matchers ...Matcher) *AndMatcher {
	return &AndMatcher{Matchers: matchers}
}

func (m *AndMatcher) Match(msg domain.Message) (bool, error) {
	for _, child := range m.Matchers {
		ok, err := child.Match(msg)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (m *AndMatcher) Equal(other Matcher) bool {
	o, ok := other.(*AndMatcher)
	return ok && equalChildren(m.Matchers, o.Matchers)
}

func (m *AndMatcher) String() string {
	return "And(" + joinChildren(m.Matchers) + ")"
}

// OrMatcher matches when any child matches. Without children it matches
// nothing.
type OrMatcher struct {
	Matchers []Matcher
}

func NewOrMatcher(matchers ...Matcher) *OrMatcher {
	return &OrMatcher{Matchers: matchers}
}

func (m *OrMatcher) Match(msg domain.Message) (bool, error) {
	for _, child := range m.Matchers {
		ok, err := child.Match(msg)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (m *OrMatcher) Equal(other Matcher) bool {
	o, ok := other.(*OrMatcher)
	return ok && equalChildren(m.Matchers, o.Matchers)
}

func (m *OrMatcher) String() string {
	return "Or(" + joinChildren(m.Matchers) + ")"
}

func equalChildren(a, b []Matcher) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func joinChildren(matchers []Matcher) string {
	parts := make([]string, len(matchers))
	for i, m := range matchers {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}
