// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	migrate "github.com/rubenv/sql-migrate"
)

var migrationSource = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1_processed",
			Up: []string{
				`CREATE TABLE processed (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					folder TEXT NOT NULL,
					msgkey TEXT NOT NULL,
					mailidhash TEXT NOT NULL,
					subject TEXT NOT NULL,
					action TEXT NOT NULL,
					ruleid INTEGER NOT NULL,
					deleted BOOLEAN NOT NULL,
					savedfiles INTEGER NOT NULL,
					processedat DATETIME NOT NULL
				)`,
				`CREATE INDEX processed_folder_hash ON processed (folder, mailidhash)`,
			},
			Down: []string{
				`DROP INDEX processed_folder_hash`,
				`DROP TABLE processed`,
			},
		},
	},
}
