// SPDX-License-Identifier: GPL-3.0-or-later
package maildir

type ConfigFunc func(c *configuration) error

// ReadOnly leaves messages in new/ instead of moving them to cur/ when a
// folder is listed, and refuses deletes. Used by search and test-rule.
func ReadOnly() ConfigFunc {
	return func(c *configuration) error {
		c.ReadOnly = true
		return nil
	}
}

type configuration struct {
	ReadOnly bool
}
