// SPDX-License-Identifier: GPL-3.0-or-later
package rules

import (
	"fmt"

	"github.com/CrawX/go-save-message/config"
	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/log"
	"github.com/CrawX/go-save-message/matcher"
	"github.com/CrawX/go-save-message/settings"

	"github.com/sirupsen/logrus"
)

// DefaultRuleId is the id of the rule used when no configured rule matches.
const DefaultRuleId = -1

// RulesMatcher finds the rule responsible for a message. It holds no state
// besides the config and is safe for concurrent use.
type RulesMatcher struct {
	config      *config.Config
	defaultRule *config.SaveRule

	l *logrus.Logger
}

func NewRulesMatcher(c *config.Config) *RulesMatcher {
	return &RulesMatcher{
		config: c,
		defaultRule: &config.SaveRule{
			Id:       DefaultRuleId,
			Matches:  []matcher.MatchGroup{},
			Settings: c.DefaultSettings,
			Matcher:  matcher.NewOrMatcher(),
		},
		l: log.Logger(log.LOG_RULES),
	}
}

// MatchSaveRule returns the first rule, in config order, whose matcher
// accepts msg, or the default rule.
func (rm *RulesMatcher) MatchSaveRule(msg domain.Message) (*config.SaveRule, error) {
	for _, rule := range rm.config.SaveRules {
		ok, err := rule.Matcher.Match(msg)
		if err != nil {
			return nil, fmt.Errorf("could not evaluate save_rules[%d]: %w", rule.Id, err)
		}
		if ok {
			rm.l.WithFields(logrus.Fields{"rule": rule.Id, "matcher": rule.Matcher}).Trace("Rule matched")
			return rule, nil
		}
	}

	rm.l.Trace("No rule matched, using default rule")
	return rm.defaultRule, nil
}

// Resolve finds the rule for msg and its effective settings: the rule's
// explicitly set fields layered over the default settings.
func (rm *RulesMatcher) Resolve(msg domain.Message) (*config.SaveRule, *settings.RuleSettings, error) {
	rule, err := rm.MatchSaveRule(msg)
	if err != nil {
		return nil, nil, err
	}

	return rule, rm.Effective(rule), nil
}

// Effective merges the rule's settings over the defaults. Without any
// settings the result is the IGNORE default.
func (rm *RulesMatcher) Effective(rule *config.SaveRule) *settings.RuleSettings {
	effective := settings.Merge(rm.config.DefaultSettings, rule.Settings)
	if effective == nil {
		effective = settings.NewRuleSettings()
	}
	return effective
}

// Rule looks up a configured rule by id.
func (rm *RulesMatcher) Rule(id int) (*config.SaveRule, error) {
	if id == DefaultRuleId {
		return rm.defaultRule, nil
	}
	if id < 0 || id >= len(rm.config.SaveRules) {
		return nil, fmt.Errorf("no rule with id %d, the config has %d rules", id, len(rm.config.SaveRules))
	}
	return rm.config.SaveRules[id], nil
}
