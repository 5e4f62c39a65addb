// SPDX-License-Identifier: GPL-3.0-or-later
package matcher

import (
	"fmt"
	"strings"

	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/message"

	"github.com/emersion/go-message/mail"
)

// SubjectMatcher tests the first line of the Subject header.
type SubjectMatcher struct {
	pattern *Pattern
}

func NewSubjectMatcher(criteria string) (*SubjectMatcher, error) {
	p, err := NewPattern(criteria)
	if err != nil {
		return nil, err
	}
	return &SubjectMatcher{pattern: p}, nil
}

func (m *SubjectMatcher) Match(msg domain.Message) (bool, error) {
	subject, ok := msg.Header("Subject")
	if !ok {
		return false, nil
	}
	return m.pattern.MatchString(FirstLine(subject)), nil
}

func (m *SubjectMatcher) Equal(other Matcher) bool {
	o, ok := other.(*SubjectMatcher)
	return ok && m.pattern.Equal(o.pattern)
}

func (m *SubjectMatcher) String() string {
	return fmt.Sprintf("subject=%q", m.pattern)
}

// FirstLine cuts a header value at its first line break.
func FirstLine(value string) string {
	if i := strings.IndexAny(value, "\r\n"); i >= 0 {
		return value[:i]
	}
	return value
}

// AddressMatcher tests an address header (From, To) in two forms: every
// parsed address without display name, and the raw header value.
type AddressMatcher struct {
	header  string
	pattern *Pattern
}

func NewFromMatcher(criteria string) (*AddressMatcher, error) {
	return newAddressMatcher("From", criteria)
}

func NewToMatcher(criteria string) (*AddressMatcher, error) {
	return newAddressMatcher("To", criteria)
}

func newAddressMatcher(header, criteria string) (*AddressMatcher, error) {
	p, err := NewPattern(criteria)
	if err != nil {
		return nil, err
	}
	return &AddressMatcher{header: header, pattern: p}, nil
}

func (m *AddressMatcher) Match(msg domain.Message) (bool, error) {
	value, ok := msg.Header(m.header)
	if !ok {
		return false, nil
	}

	// unparseable lists still get the raw comparison
	addresses, _ := mail.ParseAddressList(value)
	for _, a := range addresses {
		if m.pattern.MatchString(a.Address) {
			return true, nil
		}
	}

	return m.pattern.MatchString(value), nil
}

func (m *AddressMatcher) Equal(other Matcher) bool {
	o, ok := other.(*AddressMatcher)
	return ok && m.header == o.header && m.pattern.Equal(o.pattern)
}

func (m *AddressMatcher) String() string {
	return fmt.Sprintf("%s=%q", strings.ToLower(m.header), m.pattern)
}

// BodyMatcher searches the preferred body part of a message.
type BodyMatcher struct {
	pattern *Pattern
}

func NewBodyMatcher(criteria string) (*BodyMatcher, error) {
	p, err := NewSearchPattern(criteria)
	if err != nil {
		return nil, err
	}
	return &BodyMatcher{pattern: p}, nil
}

func (m *BodyMatcher) Match(msg domain.Message) (bool, error) {
	body := message.BodyPart(msg)
	if body == nil {
		return false, nil
	}
	return m.pattern.MatchString(string(body.Payload())), nil
}

func (m *BodyMatcher) Equal(other Matcher) bool {
	o, ok := other.(*BodyMatcher)
	return ok && m.pattern.Equal(o.pattern)
}

func (m *BodyMatcher) String() string {
	return fmt.Sprintf("body=%q", m.pattern)
}
