// SPDX-License-Identifier: GPL-3.0-or-later
package maildir

import (
	"fmt"

	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/log"
	"github.com/CrawX/go-save-message/matcher"
	"github.com/CrawX/go-save-message/message"

	"github.com/sirupsen/logrus"
)

// Found is one message of a folder accepted by a search.
type Found struct {
	Folder  string
	Key     string
	Message *message.Message
}

// Search calls fn for every message in folder accepted by m, in key order.
// Messages that cannot be read or evaluated are logged and skipped. An error
// from fn stops the search and is returned.
func Search(mailbox domain.Mailbox, folder string, m matcher.Matcher, fn func(Found) error) error {
	l := log.Logger(log.LOG_MAILDIR)

	keys, err := mailbox.Keys(folder)
	if err != nil {
		return fmt.Errorf("could not list %s: %w", folder, err)
	}

	for _, key := range keys {
		logger := l.WithFields(logrus.Fields{"folder": folder, "key": key})

		raw, err := mailbox.Fetch(folder, key)
		if err != nil {
			logger.WithField("error", err).Warn("Could not read message, skipping")
			continue
		}
		msg, err := message.Parse(raw)
		if err != nil {
			logger.WithField("error", err).Warn("Could not parse message, skipping")
			continue
		}

		ok, err := m.Match(msg)
		if err != nil {
			logger.WithFields(logrus.Fields{"subject": message.ShortSubject(msg.Subject()), "error": err}).Warn("Could not evaluate message, skipping")
			continue
		}
		if !ok {
			continue
		}

		err = fn(Found{Folder: folder, Key: key, Message: msg})
		if err != nil {
			return err
		}
	}

	return nil
}
