// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/log"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
)

// Persistence is the sqlite ledger of processed messages.
type Persistence struct {
	db *sqlx.DB
	l  *logrus.Logger
}

type dbProcessed struct {
	Folder      string
	MsgKey      string
	MailIdHash  string
	Subject     string
	Action      string
	RuleId      int
	Deleted     bool
	SavedFiles  int
	ProcessedAt time.Time
}

func NewPersistence(datasource string) (*Persistence, error) {
	db, err := sqlx.Connect("sqlite3", datasource)
	if err != nil {
		return nil, fmt.Errorf("could not open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	l := log.Logger(log.LOG_PERSISTENCE)
	l.WithField("file", datasource).Debug("Connected")

	_, err = db.Exec(`PRAGMA journal_mode=WAL`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not set journal mode: %w", err)
	}
	_, err = db.Exec(`PRAGMA synchronous=normal`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not set synchronous mode: %w", err)
	}

	appliedMigrations, err := migrate.Exec(db.DB, "sqlite3", migrationSource, migrate.Up)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not migrate to newest version: %w", err)
	}

	l.WithField("migrations", appliedMigrations).Debug("Executed migrations")

	return &Persistence{
		db: db,
		l:  l,
	}, nil
}

func (p *Persistence) Close() error {
	err := p.db.Close()
	if err != nil {
		return fmt.Errorf("could not close db: %w", err)
	}
	p.l.Debug("Disconnected")
	return nil
}

// ProcessedHashes returns which of the given hashes were already processed
// in folder.
func (p *Persistence) ProcessedHashes(folder string, mailIdHashes []string) (map[string]bool, error) {
	result := map[string]bool{}
	if len(mailIdHashes) == 0 {
		return result, nil
	}

	qry, args, err := sqlx.Named(
		"SELECT DISTINCT mailidhash FROM processed WHERE folder = :folder AND mailidhash IN (:hashes)",
		map[string]interface{}{
			"folder": folder,
			"hashes": mailIdHashes,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("could not create query: %w", err)
	}

	qry, args, err = sqlx.In(qry, args...)
	if err != nil {
		return nil, fmt.Errorf("could not replace IN in query: %w", err)
	}

	hashes := []string{}
	err = p.db.Select(&hashes, p.db.Rebind(qry), args...)
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	for _, hash := range hashes {
		result[hash] = true
	}
	return result, nil
}

func (p *Persistence) SaveResults(results []domain.ProcessedMessage) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := p.db.BeginTxx(context.TODO(), nil)
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO processed(folder, msgkey, mailidhash, subject, action, ruleid, deleted, savedfiles, processedat) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return txEnd(tx, fmt.Errorf("could not prepare statement: %w", err))
	}
	defer stmt.Close()

	for _, r := range results {
		_, err := stmt.Exec(
			r.Folder, r.Key, r.MailIdHash, r.Subject, string(r.Action), r.RuleId, r.Deleted, r.SavedFiles, r.ProcessedAt.UTC(),
		)
		if err != nil {
			return txEnd(tx, fmt.Errorf("could not save result: %w", err))
		}
	}

	err = txEnd(tx, nil)
	if err != nil {
		return err
	}

	p.l.WithField("count", len(results)).Debug("Persisted results")
	return nil
}

// Results lists the ledger of a folder, oldest first.
func (p *Persistence) Results(folder string) ([]domain.ProcessedMessage, error) {
	rows := []dbProcessed{}
	err := p.db.Select(
		&rows,
		`SELECT folder, msgkey, mailidhash, subject, action, ruleid, deleted, savedfiles, processedat FROM processed WHERE folder = ? ORDER BY id`,
		folder,
	)
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	results := []domain.ProcessedMessage{}
	for _, r := range rows {
		results = append(results, domain.ProcessedMessage{
			Folder:      r.Folder,
			Key:         r.MsgKey,
			MailIdHash:  r.MailIdHash,
			Subject:     r.Subject,
			Action:      domain.MessageAction(r.Action),
			RuleId:      r.RuleId,
			Deleted:     r.Deleted,
			SavedFiles:  r.SavedFiles,
			ProcessedAt: r.ProcessedAt,
		})
	}
	return results, nil
}

func txEnd(tx *sqlx.Tx, err error) error {
	if err == nil {
		err = tx.Commit()
		if err != nil {
			return fmt.Errorf("could not commit tx: %w", err)
		}
	} else {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			errStr := err.Error()
			return fmt.Errorf("%s, could not rollback tx: %w", errStr, rollbackErr)
		} else {
			return err
		}
	}

	return nil
}
