// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import (
	"fmt"
	"strings"
)

//go:generate mockgen -destination=mocks/action.go -package=mocks . Prompter

type MessageAction string

const (
	// save the message but keep it in the maildir
	ActionKeep = MessageAction("KEEP")
	// do not save, leave in the maildir
	ActionIgnore = MessageAction("IGNORE")
	// do not save, delete from the maildir
	ActionDelete = MessageAction("DELETE")
	// save, then delete from the maildir
	ActionSaveAndDelete = MessageAction("SAVE_AND_DELETE")
)

var MessageActions = []MessageAction{ActionKeep, ActionIgnore, ActionDelete, ActionSaveAndDelete}

// ParseMessageAction accepts action names case-insensitively, with either
// underscores or dashes as separators.
func ParseMessageAction(s string) (MessageAction, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, a := range MessageActions {
		if string(a) == normalized {
			return a, nil
		}
	}

	return "", fmt.Errorf("unknown action %q", s)
}

// Saves reports whether the action runs the save pipeline.
func (a MessageAction) Saves() bool {
	return a == ActionKeep || a == ActionSaveAndDelete
}

// Deletes reports whether the action removes the message from the maildir.
func (a MessageAction) Deletes() bool {
	return a == ActionDelete || a == ActionSaveAndDelete
}

// Prompter asks the user a yes/no question, used for delete confirmation.
type Prompter interface {
	Confirm(question string) (bool, error)
}
