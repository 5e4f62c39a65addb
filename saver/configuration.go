// SPDX-License-Identifier: GPL-3.0-or-later
package saver

import "fmt"

type ConfigFunc func(c *configuration) error

// DryRun computes and logs the files a save would write without touching
// the disk.
func DryRun() ConfigFunc {
	return func(c *configuration) error {
		c.DryRun = true
		return nil
	}
}

// WithCommandRunner replaces the runner used for the HTML to PDF command.
func WithCommandRunner(runner CommandRunner) ConfigFunc {
	return func(c *configuration) error {
		if runner == nil {
			return fmt.Errorf("CommandRunner cannot be nil")
		}
		c.Runner = runner
		return nil
	}
}

type configuration struct {
	DryRun bool
	Runner CommandRunner
}
