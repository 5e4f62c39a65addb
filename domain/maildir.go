// SPDX-License-Identifier: GPL-3.0-or-later
package domain

//go:generate mockgen -destination=mocks/maildir.go -package=mocks . Mailbox

// Mailbox is a maildir-style store: every message is addressable by a stable
// key inside a folder.
type Mailbox interface {
	Keys(folder string) ([]string, error)
	Fetch(folder string, key string) ([]byte, error)
	Delete(folder string, key string) error
}
