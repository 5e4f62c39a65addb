// SPDX-License-Identifier: GPL-3.0-or-later
package sorter

import "fmt"

type ConfigFunc func(c *configuration) error

// DryRun resolves and dispatches as usual but records nothing in the ledger.
// The dispatcher and saver get their own dry-run option.
func DryRun() ConfigFunc {
	return func(c *configuration) error {
		c.DryRun = true
		return nil
	}
}

// Concurrency sets how many messages of a batch are resolved in parallel.
func Concurrency(n int) ConfigFunc {
	return func(c *configuration) error {
		if n < 1 {
			return fmt.Errorf("Concurrency must be at least 1, got %d", n)
		}
		c.Concurrency = n
		return nil
	}
}

// Reprocess ignores the ledger and handles every message again.
func Reprocess() ConfigFunc {
	return func(c *configuration) error {
		c.Reprocess = true
		return nil
	}
}

type configuration struct {
	DryRun      bool
	Concurrency int
	Reprocess   bool
}
