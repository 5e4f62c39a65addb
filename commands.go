// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/CrawX/go-save-message/actions"
	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/log"
	"github.com/CrawX/go-save-message/maildir"
	"github.com/CrawX/go-save-message/matcher"
	"github.com/CrawX/go-save-message/rules"

	"github.com/sirupsen/logrus"
)

const previewLength = 80

func printFound(out io.Writer, f maildir.Found) {
	from, _ := f.Message.Header("From")
	date, _ := f.Message.Header("Date")
	fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", filepath.Join(f.Folder, f.Key), date, from, f.Message.Subject())
	if preview := f.Message.Preview(previewLength); len(preview) > 0 {
		fmt.Fprintf(out, "\t%s\n", preview)
	}
}

// search lists all messages accepted by filter, every message without one.
func search(folders []string, mailbox domain.Mailbox, filter matcher.Matcher, out io.Writer) error {
	if filter == nil {
		filter = matcher.NewAndMatcher()
	}

	found := 0
	for _, folder := range folders {
		err := maildir.Search(mailbox, folder, filter, func(f maildir.Found) error {
			printFound(out, f)
			found++
			return nil
		})
		if err != nil {
			return err
		}
	}

	log.Logger(log.LOG_MAIN).WithFields(logrus.Fields{"filter": filter, "found": found}).Info("Searched messages")
	return nil
}

// deleteMatching deletes the messages accepted by filter, asking for each
// one unless deletes are forced.
func deleteMatching(folders []string, mailbox domain.Mailbox, dispatcher *actions.Dispatcher, filter matcher.Matcher) error {
	if filter == nil {
		return fmt.Errorf("refusing to delete without a filter, use --subject, --from, --to, --date, --age or --body")
	}

	deleted, kept := 0, 0
	for _, folder := range folders {
		err := maildir.Search(mailbox, folder, filter, func(f maildir.Found) error {
			ok, err := dispatcher.Delete(f.Folder, f.Key, f.Message, true)
			if err != nil {
				return err
			}
			if ok {
				deleted++
			} else {
				kept++
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	log.Logger(log.LOG_MAIN).WithFields(logrus.Fields{"filter": filter, "deleted": deleted, "kept": kept}).Info("Deleted messages")
	return nil
}

// testRule lists the messages a rule matches, marking those that an earlier
// rule takes precedence for.
func testRule(folders []string, mailbox domain.Mailbox, rm *rules.RulesMatcher, id int, filter matcher.Matcher, out io.Writer) error {
	rule, err := rm.Rule(id)
	if err != nil {
		return err
	}

	m := rule.Matcher
	if filter != nil {
		m = matcher.NewAndMatcher(rule.Matcher, filter)
	}

	fmt.Fprintf(out, "save_rules[%d]: %s -> %s\n", id, rule.Matcher, rm.Effective(rule).Action)

	matched, shadowed := 0, 0
	for _, folder := range folders {
		err := maildir.Search(mailbox, folder, m, func(f maildir.Found) error {
			printFound(out, f)
			matched++

			resolved, err := rm.MatchSaveRule(f.Message)
			if err != nil {
				fmt.Fprintf(out, "\t(could not resolve: %s)\n", err)
				return nil
			}
			if resolved.Id != id {
				fmt.Fprintf(out, "\t(handled by save_rules[%d])\n", resolved.Id)
				shadowed++
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	log.Logger(log.LOG_MAIN).WithFields(logrus.Fields{"rule": id, "matched": matched, "shadowed": shadowed}).Debug("Tested rule")
	return nil
}
