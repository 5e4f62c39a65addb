// SPDX-License-Identifier: GPL-3.0-or-later
package settings

import (
	"testing"

	"github.com/CrawX/go-save-message/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := NewRuleSettings()
	assert.Equal(t, domain.ActionIgnore, s.Action)
	assert.True(t, s.DeleteConfirmation)
	assert.Nil(t, s.SaveSettings)
	assert.False(t, s.IsSet("action"))

	ss := NewRuleSaveSettings()
	assert.True(t, ss.SaveBody)
	assert.False(t, ss.SaveEml)
	require.NotNil(t, ss.SaveAttachments)
	assert.Equal(t, "*", *ss.SaveAttachments)
	assert.Nil(t, ss.HtmlPdfTransformCommand)
	assert.Equal(t, "{from_name} {subject} {month_year}", ss.MessageName)
	for _, f := range saveSettingsFields {
		assert.False(t, ss.IsSet(f), f)
	}
}

func TestSettersMarkExplicit(t *testing.T) {
	ss := NewRuleSaveSettings().SetPath("/tmp").SetSaveEml(false)
	assert.True(t, ss.IsSet("path"))
	assert.True(t, ss.IsSet("save_eml"))
	assert.False(t, ss.IsSet("save_body"))
	assert.False(t, ss.IsSet("no_such_field"))

	s := NewRuleSettings().SetAction(domain.ActionKeep)
	assert.True(t, s.IsSet("action"))
	assert.False(t, s.IsSet("delete_confirmation"))
}

func TestMergeNil(t *testing.T) {
	assert.Nil(t, Merge[RuleSettings]())
	assert.Nil(t, Merge[RuleSettings](nil, nil))

	a := NewRuleSettings().SetAction(domain.ActionDelete)
	assert.Equal(t, a, Merge(nil, a, nil))
	assert.Equal(t, a, Merge(a))
}

func TestMergeDoesNotAlias(t *testing.T) {
	a := NewRuleSettings().SetSaveSettings(NewRuleSaveSettings().SetPath("/a"))
	merged := Merge(a)
	merged.SaveSettings.SetPath("/changed")
	assert.Equal(t, "/a", a.SaveSettings.Path)
}

func TestMergeOverride(t *testing.T) {
	defaults := NewRuleSettings().
		SetAction(domain.ActionKeep).
		SetSaveSettings(NewRuleSaveSettings().SetPath("/archive").SetSaveEml(true))
	rule := NewRuleSettings().
		SetAction(domain.ActionSaveAndDelete).
		SetSaveSettings(NewRuleSaveSettings().SetPath("/bills"))

	merged := Merge(defaults, rule)

	assert.Equal(t, domain.ActionSaveAndDelete, merged.Action)
	// defaulted on both sides
	assert.True(t, merged.DeleteConfirmation)
	assert.False(t, merged.IsSet("delete_confirmation"))
	require.NotNil(t, merged.SaveSettings)
	assert.Equal(t, "/bills", merged.SaveSettings.Path)
	// only set in defaults, the nested merge keeps it
	assert.True(t, merged.SaveSettings.SaveEml)
	assert.True(t, merged.SaveSettings.IsSet("save_eml"))
	assert.False(t, merged.SaveSettings.IsSet("save_body"))
}

func TestMergeDefaultedFieldsNeverOverride(t *testing.T) {
	a := NewRuleSettings().SetDeleteConfirmation(false)
	b := NewRuleSettings()

	merged := Merge(a, b)
	assert.False(t, merged.DeleteConfirmation)
}

func TestMergeNestedNull(t *testing.T) {
	a := NewRuleSettings().SetSaveSettings(NewRuleSaveSettings().SetPath("/a"))
	b := NewRuleSettings().SetSaveSettings(nil)

	merged := Merge(a, b)
	require.NotNil(t, merged.SaveSettings)
	assert.Equal(t, "/a", merged.SaveSettings.Path)

	merged = Merge(b, a)
	require.NotNil(t, merged.SaveSettings)
	assert.Equal(t, "/a", merged.SaveSettings.Path)
}

func TestMergePatternToNull(t *testing.T) {
	a := NewRuleSaveSettings().SetSaveAttachments(strPtr("*.pdf"))
	b := NewRuleSaveSettings().SetSaveAttachments(nil)

	merged := Merge(a, b)
	assert.Nil(t, merged.SaveAttachments)
	assert.True(t, merged.IsSet("save_attachments"))
}

func TestMergeProperties(t *testing.T) {
	a := NewRuleSettings().
		SetAction(domain.ActionKeep).
		SetSaveSettings(NewRuleSaveSettings().SetPath("/a").SetSaveBody(false))
	b := NewRuleSettings().
		SetDeleteConfirmation(false).
		SetSaveSettings(NewRuleSaveSettings().SetMessageName("{subject}"))
	c := NewRuleSettings().
		SetSaveSettings(NewRuleSaveSettings().SetPath("/c"))

	t.Run("idempotent", func(t *testing.T) {
		assert.Equal(t, Merge(a, b), Merge(Merge(a, b), b))
		assert.Equal(t, a, Merge(a, a))
	})

	t.Run("associative", func(t *testing.T) {
		assert.Equal(t, Merge(a, b, c), Merge(Merge(a, b), c))
		assert.Equal(t, Merge(a, b, c), Merge(a, Merge(b, c)))
	})

	t.Run("middle override retained", func(t *testing.T) {
		merged := Merge(a, b, c)
		assert.False(t, merged.DeleteConfirmation)
		assert.Equal(t, domain.ActionKeep, merged.Action)
		assert.Equal(t, "/c", merged.SaveSettings.Path)
		assert.Equal(t, "{subject}", merged.SaveSettings.MessageName)
		assert.False(t, merged.SaveSettings.SaveBody)
	})
}

func TestMergeTypeMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		mergeInto(NewRuleSettings(), NewRuleSaveSettings())
	})
}

func TestDecodeRuleSettings(t *testing.T) {
	tests := []struct {
		name   string
		input  map[string]any
		assert func(t *testing.T, s *RuleSettings)
		err    string
	}{
		{
			name:  "nil",
			input: nil,
			assert: func(t *testing.T, s *RuleSettings) {
				assert.Nil(t, s)
			},
		},
		{
			name:  "empty",
			input: map[string]any{},
			assert: func(t *testing.T, s *RuleSettings) {
				assert.Equal(t, NewRuleSettings(), s)
			},
		},
		{
			name: "full",
			input: map[string]any{
				"action":              "save_and_delete",
				"delete_confirmation": false,
				"save_settings": map[string]any{
					"path":                         "/tmp/bills",
					"save_eml":                     true,
					"save_attachments":             "/.*\\.pdf/",
					"html_pdf_transform_command":   false,
					"flatten_single_file_messages": true,
				},
			},
			assert: func(t *testing.T, s *RuleSettings) {
				assert.Equal(t, domain.ActionSaveAndDelete, s.Action)
				assert.False(t, s.DeleteConfirmation)
				assert.True(t, s.IsSet("delete_confirmation"))
				require.NotNil(t, s.SaveSettings)
				assert.Equal(t, "/tmp/bills", s.SaveSettings.Path)
				assert.True(t, s.SaveSettings.SaveEml)
				assert.Equal(t, "/.*\\.pdf/", *s.SaveSettings.SaveAttachments)
				assert.Nil(t, s.SaveSettings.HtmlPdfTransformCommand)
				assert.True(t, s.SaveSettings.IsSet("html_pdf_transform_command"))
				assert.False(t, s.SaveSettings.IsSet("save_body"))
				assert.True(t, s.SaveSettings.SaveBody)
			},
		},
		{
			name:  "yaml style nested table",
			input: map[string]any{"save_settings": map[any]any{"save_attachments": nil}},
			assert: func(t *testing.T, s *RuleSettings) {
				require.NotNil(t, s.SaveSettings)
				assert.Nil(t, s.SaveSettings.SaveAttachments)
			},
		},
		{
			name:  "null save settings",
			input: map[string]any{"save_settings": nil},
			assert: func(t *testing.T, s *RuleSettings) {
				assert.Nil(t, s.SaveSettings)
				assert.True(t, s.IsSet("save_settings"))
			},
		},
		{
			name:  "unknown action",
			input: map[string]any{"action": "archive"},
			err:   `action: unknown action "archive"`,
		},
		{
			name:  "unknown field",
			input: map[string]any{"actoin": "keep", "zzz": 1},
			err:   "unknown field(s) actoin, zzz",
		},
		{
			name:  "unknown nested field",
			input: map[string]any{"save_settings": map[string]any{"folder": "/tmp"}},
			err:   "save_settings: unknown field(s) folder",
		},
		{
			name:  "wrong type",
			input: map[string]any{"delete_confirmation": "yes"},
			err:   "delete_confirmation: expected a boolean, got string",
		},
		{
			name:  "pattern true",
			input: map[string]any{"save_settings": map[string]any{"save_attachments": true}},
			err:   "save_settings: save_attachments: expected a pattern or false, got true",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := DecodeRuleSettings(tc.input)
			if len(tc.err) == 0 {
				require.NoError(t, err)
				tc.assert(t, s)
			} else {
				assert.EqualError(t, err, tc.err)
			}
		})
	}
}
