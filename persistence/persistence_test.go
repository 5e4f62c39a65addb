// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPersistence(t *testing.T) *Persistence {
	log.InitLogging("error")
	p, err := NewPersistence(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		p.Close()
	})
	return p
}

func TestSaveAndQueryResults(t *testing.T) {
	p := setupPersistence(t)
	at := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)

	results := []domain.ProcessedMessage{
		{Folder: "/mail/INBOX", Key: "k1", MailIdHash: "h1", Subject: "Invoice", Action: domain.ActionKeep, RuleId: 0, SavedFiles: 2, ProcessedAt: at},
		{Folder: "/mail/INBOX", Key: "k2", MailIdHash: "h2", Subject: "Spam", Action: domain.ActionDelete, RuleId: 1, Deleted: true, ProcessedAt: at},
		{Folder: "/mail/Archive", Key: "k3", MailIdHash: "h3", Subject: "Hello", Action: domain.ActionIgnore, RuleId: -1, ProcessedAt: at},
	}
	require.NoError(t, p.SaveResults(results))

	hashes, err := p.ProcessedHashes("/mail/INBOX", []string{"h1", "h2", "h3", "h4"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"h1": true, "h2": true}, hashes)

	stored, err := p.Results("/mail/INBOX")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, results[0].Key, stored[0].Key)
	assert.Equal(t, results[0].Action, stored[0].Action)
	assert.Equal(t, 2, stored[0].SavedFiles)
	assert.True(t, stored[0].ProcessedAt.Equal(at))
	assert.Equal(t, 1, stored[1].RuleId)
	assert.True(t, stored[1].Deleted)
}

func TestProcessedHashesEmpty(t *testing.T) {
	p := setupPersistence(t)

	hashes, err := p.ProcessedHashes("/mail/INBOX", []string{})
	require.NoError(t, err)
	assert.Empty(t, hashes)

	hashes, err = p.ProcessedHashes("/mail/INBOX", []string{"h1"})
	require.NoError(t, err)
	assert.Empty(t, hashes)

	require.NoError(t, p.SaveResults(nil))
}

func TestMigrationsAreIdempotent(t *testing.T) {
	log.InitLogging("error")
	path := filepath.Join(t.TempDir(), "test.db")

	p, err := NewPersistence(path)
	require.NoError(t, err)
	require.NoError(t, p.SaveResults([]domain.ProcessedMessage{{Folder: "f", Key: "k", MailIdHash: "h", Action: domain.ActionKeep, ProcessedAt: time.Now()}}))
	require.NoError(t, p.Close())

	p, err = NewPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	hashes, err := p.ProcessedHashes("f", []string{"h"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"h": true}, hashes)
}

func TestNullPersistence(t *testing.T) {
	var p domain.Persistence = NullPersistence{}

	require.NoError(t, p.SaveResults([]domain.ProcessedMessage{{Folder: "f", MailIdHash: "h"}}))
	hashes, err := p.ProcessedHashes("f", []string{"h"})
	require.NoError(t, err)
	assert.Empty(t, hashes)
	assert.NoError(t, p.Close())
}
