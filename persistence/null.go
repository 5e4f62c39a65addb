// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import "github.com/CrawX/go-save-message/domain"

// NullPersistence remembers nothing, every message counts as unprocessed.
type NullPersistence struct{}

func (NullPersistence) Close() error {
	return nil
}

func (NullPersistence) ProcessedHashes(folder string, mailIdHashes []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (NullPersistence) SaveResults(results []domain.ProcessedMessage) error {
	return nil
}
