// SPDX-License-Identifier: GPL-3.0-or-later
package matcher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/message"

	"github.com/araddon/dateparse"
)

// messageDate returns the instant of the Date header. A missing header is
// not an error, an unparseable one is.
func messageDate(msg domain.Message) (time.Time, bool, error) {
	value, ok := msg.Header("Date")
	if !ok || len(strings.TrimSpace(value)) == 0 {
		return time.Time{}, false, nil
	}

	date, err := message.ParseDate(value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrUnreadableMessage, err)
	}
	return date, true, nil
}

// DateMatcher matches messages sent at exactly the given instant.
type DateMatcher struct {
	criteria string
	date     time.Time
}

// NewDateMatcher parses criteria once, naive dates are read in loc.
func NewDateMatcher(criteria string, loc *time.Location) (*DateMatcher, error) {
	date, err := dateparse.ParseIn(strings.TrimSpace(criteria), loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", criteria, err)
	}
	return &DateMatcher{criteria: criteria, date: date}, nil
}

func (m *DateMatcher) Match(msg domain.Message) (bool, error) {
	date, ok, err := messageDate(msg)
	if err != nil || !ok {
		return false, err
	}
	return date.Equal(m.date), nil
}

func (m *DateMatcher) Equal(other Matcher) bool {
	o, ok := other.(*DateMatcher)
	return ok && m.criteria == o.criteria && m.date.Equal(o.date)
}

func (m *DateMatcher) String() string {
	return fmt.Sprintf("date=%q", m.criteria)
}

// AgeMatcher matches messages sent at or before now minus a duration.
type AgeMatcher struct {
	criteria string
	cutoff   time.Time
}

func NewAgeMatcher(criteria string, now time.Time) (*AgeMatcher, error) {
	age, err := ParseAge(criteria)
	if err != nil {
		return nil, err
	}
	return &AgeMatcher{criteria: criteria, cutoff: now.Add(-age)}, nil
}

func (m *AgeMatcher) Match(msg domain.Message) (bool, error) {
	date, ok, err := messageDate(msg)
	if err != nil || !ok {
		return false, err
	}
	return !date.After(m.cutoff), nil
}

// Cutoff is the newest instant a message may have to match.
func (m *AgeMatcher) Cutoff() time.Time {
	return m.cutoff
}

func (m *AgeMatcher) Equal(other Matcher) bool {
	o, ok := other.(*AgeMatcher)
	return ok && m.criteria == o.criteria && m.cutoff.Equal(o.cutoff)
}

func (m *AgeMatcher) String() string {
	return fmt.Sprintf("age=%q", m.criteria)
}

var (
	ageTerm      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(weeks?|wks?|w|days?|d|hours?|hrs?|h|minutes?|mins?|m|seconds?|secs?|s)\b`)
	ageSeparator = regexp.MustCompile(`(?i)^(?:[\s,]|and)*$`)
)

var ageUnits = map[byte]time.Duration{
	'w': 7 * 24 * time.Hour,
	'd': 24 * time.Hour,
	'h': time.Hour,
	'm': time.Minute,
	's': time.Second,
}

// ParseAge reads a duration such as "30 days", "2 weeks, 3 days", "3d" or
// anything time.ParseDuration accepts.
func ParseAge(expr string) (time.Duration, error) {
	trimmed := strings.TrimSpace(expr)
	if d, err := time.ParseDuration(trimmed); err == nil {
		return d, nil
	}

	matches := ageTerm.FindAllStringSubmatchIndex(trimmed, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid age %q", expr)
	}

	var total time.Duration
	last := 0
	for _, m := range matches {
		if !ageSeparator.MatchString(trimmed[last:m[0]]) {
			return 0, fmt.Errorf("invalid age %q: unexpected %q", expr, trimmed[last:m[0]])
		}
		last = m[1]

		amount, err := strconv.ParseFloat(trimmed[m[2]:m[3]], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid age %q: %w", expr, err)
		}
		unit := strings.ToLower(trimmed[m[4]:m[5]])
		total += time.Duration(amount * float64(ageUnits[unit[0]]))
	}
	if !ageSeparator.MatchString(trimmed[last:]) {
		return 0, fmt.Errorf("invalid age %q: unexpected %q", expr, trimmed[last:])
	}

	return total, nil
}
