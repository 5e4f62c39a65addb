// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import "time"

//go:generate mockgen -destination=mocks/persistence.go -package=mocks . Persistence

type ProcessedMessage struct {
	Folder     string
	Key        string
	MailIdHash string
	Subject    string
	Action     MessageAction
	// RuleId is the position of the matched rule, -1 for the default rule
	RuleId      int
	Deleted     bool
	SavedFiles  int
	ProcessedAt time.Time
}

type Persistence interface {
	Close() error
	ProcessedHashes(folder string, mailIdHashes []string) (map[string]bool, error)
	SaveResults(results []ProcessedMessage) error
}
