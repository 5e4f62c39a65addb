// SPDX-License-Identifier: GPL-3.0-or-later
package actions

type ConfigFunc func(c *configuration) error

// DryRun logs deletions instead of performing them. Saving is controlled by
// the saver's own configuration.
func DryRun() ConfigFunc {
	return func(c *configuration) error {
		c.DryRun = true
		return nil
	}
}

// ForceDeletes skips the delete confirmation, whatever the rule says.
func ForceDeletes() ConfigFunc {
	return func(c *configuration) error {
		c.ForceDeletes = true
		return nil
	}
}

type configuration struct {
	DryRun       bool
	ForceDeletes bool
}
