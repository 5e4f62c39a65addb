// SPDX-License-Identifier: GPL-3.0-or-later
package settings

import (
	"strconv"

	"github.com/CrawX/go-save-message/domain"
)

const (
	DefaultSaveAttachments = "*"
	DefaultMessageName     = "{from_name} {subject} {month_year}"
)

// fieldSet is a bitmask of the fields that were explicitly provided for one
// settings instance, as opposed to left at their default.
type fieldSet uint16

func (f fieldSet) has(i int) bool {
	return f&(1<<uint(i)) != 0
}

func (f *fieldSet) add(i int) {
	*f |= 1 << uint(i)
}

// Field indexes of RuleSaveSettings, in declaration order.
const (
	savePath = iota
	saveEml
	saveBody
	saveAttachments
	saveHtmlPdfTransformCommand
	saveFlattenSingleFileMessages
	saveMessageName
)

var saveSettingsFields = []string{
	"path",
	"save_eml",
	"save_body",
	"save_attachments",
	"html_pdf_transform_command",
	"flatten_single_file_messages",
	"message_name",
}

// RuleSaveSettings controls how a message is written to disk. Fields can be
// read directly; they must be written through the setters so the instance
// remembers which of them were explicitly provided.
type RuleSaveSettings struct {
	// Folder to save to, must exist. Environment variables are expanded at load.
	Path string
	// Also write the whole message as <message_name>.eml.
	SaveEml bool
	// Write the preferred body part (html, then plain text).
	SaveBody bool
	// Glob or /regex/ of attachment filenames to write, nil saves none.
	SaveAttachments *string
	// Shell command reading HTML from $in and writing a PDF to $out, nil disables.
	HtmlPdfTransformCommand *string
	// When only one file would be saved, write it directly under Path.
	FlattenSingleFileMessages bool
	// Name template for the message folder and body files.
	MessageName string

	set fieldSet
}

func NewRuleSaveSettings() *RuleSaveSettings {
	return &RuleSaveSettings{
		SaveBody:        true,
		SaveAttachments: strPtr(DefaultSaveAttachments),
		MessageName:     DefaultMessageName,
	}
}

func (s *RuleSaveSettings) SetPath(path string) *RuleSaveSettings {
	s.Path = path
	s.set.add(savePath)
	return s
}

func (s *RuleSaveSettings) SetSaveEml(enabled bool) *RuleSaveSettings {
	s.SaveEml = enabled
	s.set.add(saveEml)
	return s
}

func (s *RuleSaveSettings) SetSaveBody(enabled bool) *RuleSaveSettings {
	s.SaveBody = enabled
	s.set.add(saveBody)
	return s
}

func (s *RuleSaveSettings) SetSaveAttachments(pattern *string) *RuleSaveSettings {
	s.SaveAttachments = copyStrPtr(pattern)
	s.set.add(saveAttachments)
	return s
}

func (s *RuleSaveSettings) SetHtmlPdfTransformCommand(command *string) *RuleSaveSettings {
	s.HtmlPdfTransformCommand = copyStrPtr(command)
	s.set.add(saveHtmlPdfTransformCommand)
	return s
}

func (s *RuleSaveSettings) SetFlattenSingleFileMessages(flatten bool) *RuleSaveSettings {
	s.FlattenSingleFileMessages = flatten
	s.set.add(saveFlattenSingleFileMessages)
	return s
}

func (s *RuleSaveSettings) SetMessageName(template string) *RuleSaveSettings {
	s.MessageName = template
	s.set.add(saveMessageName)
	return s
}

// IsSet reports whether the named field was explicitly provided.
func (s *RuleSaveSettings) IsSet(field string) bool {
	return isSet(s, field)
}

func (s *RuleSaveSettings) fieldNames() []string {
	return saveSettingsFields
}

func (s *RuleSaveSettings) explicit(i int) bool {
	return s.set.has(i)
}

func (s *RuleSaveSettings) value(i int) any {
	switch i {
	case savePath:
		return s.Path
	case saveEml:
		return s.SaveEml
	case saveBody:
		return s.SaveBody
	case saveAttachments:
		return s.SaveAttachments
	case saveHtmlPdfTransformCommand:
		return s.HtmlPdfTransformCommand
	case saveFlattenSingleFileMessages:
		return s.FlattenSingleFileMessages
	case saveMessageName:
		return s.MessageName
	}
	panic("settings: RuleSaveSettings has no field index " + strconv.Itoa(i))
}

func (s *RuleSaveSettings) assign(i int, v any) {
	switch i {
	case savePath:
		s.SetPath(v.(string))
	case saveEml:
		s.SetSaveEml(v.(bool))
	case saveBody:
		s.SetSaveBody(v.(bool))
	case saveAttachments:
		s.SetSaveAttachments(v.(*string))
	case saveHtmlPdfTransformCommand:
		s.SetHtmlPdfTransformCommand(v.(*string))
	case saveFlattenSingleFileMessages:
		s.SetFlattenSingleFileMessages(v.(bool))
	case saveMessageName:
		s.SetMessageName(v.(string))
	default:
		panic("settings: RuleSaveSettings has no field index " + strconv.Itoa(i))
	}
}

func (s *RuleSaveSettings) mark(i int) {
	s.set.add(i)
}

func (s *RuleSaveSettings) clone() mergeable {
	return s.Clone()
}

func (s *RuleSaveSettings) Clone() *RuleSaveSettings {
	if s == nil {
		return nil
	}
	c := *s
	c.SaveAttachments = copyStrPtr(s.SaveAttachments)
	c.HtmlPdfTransformCommand = copyStrPtr(s.HtmlPdfTransformCommand)
	return &c
}

// Field indexes of RuleSettings.
const (
	ruleAction = iota
	ruleDeleteConfirmation
	ruleSaveSettings
)

var ruleSettingsFields = []string{
	"action",
	"delete_confirmation",
	"save_settings",
}

// RuleSettings is the action taken for messages matching a rule.
type RuleSettings struct {
	Action domain.MessageAction
	// For DELETE and SAVE_AND_DELETE, ask before deleting.
	DeleteConfirmation bool
	SaveSettings       *RuleSaveSettings

	set fieldSet
}

// NewRuleSettings returns settings with every field at its default. The
// default action is IGNORE, so an unconfigured default rule never touches
// the maildir.
func NewRuleSettings() *RuleSettings {
	return &RuleSettings{
		Action:             domain.ActionIgnore,
		DeleteConfirmation: true,
	}
}

func (s *RuleSettings) SetAction(action domain.MessageAction) *RuleSettings {
	s.Action = action
	s.set.add(ruleAction)
	return s
}

func (s *RuleSettings) SetDeleteConfirmation(confirm bool) *RuleSettings {
	s.DeleteConfirmation = confirm
	s.set.add(ruleDeleteConfirmation)
	return s
}

func (s *RuleSettings) SetSaveSettings(save *RuleSaveSettings) *RuleSettings {
	s.SaveSettings = save
	s.set.add(ruleSaveSettings)
	return s
}

func (s *RuleSettings) IsSet(field string) bool {
	return isSet(s, field)
}

func (s *RuleSettings) fieldNames() []string {
	return ruleSettingsFields
}

func (s *RuleSettings) explicit(i int) bool {
	return s.set.has(i)
}

func (s *RuleSettings) value(i int) any {
	switch i {
	case ruleAction:
		return s.Action
	case ruleDeleteConfirmation:
		return s.DeleteConfirmation
	case ruleSaveSettings:
		// an untyped nil, so a missing nested value never looks mergeable
		if s.SaveSettings == nil {
			return nil
		}
		return s.SaveSettings
	}
	panic("settings: RuleSettings has no field index " + strconv.Itoa(i))
}

func (s *RuleSettings) assign(i int, v any) {
	switch i {
	case ruleAction:
		s.SetAction(v.(domain.MessageAction))
	case ruleDeleteConfirmation:
		s.SetDeleteConfirmation(v.(bool))
	case ruleSaveSettings:
		save, _ := v.(*RuleSaveSettings)
		s.SetSaveSettings(save.Clone())
	default:
		panic("settings: RuleSettings has no field index " + strconv.Itoa(i))
	}
}

func (s *RuleSettings) mark(i int) {
	s.set.add(i)
}

func (s *RuleSettings) clone() mergeable {
	return s.Clone()
}

func (s *RuleSettings) Clone() *RuleSettings {
	if s == nil {
		return nil
	}
	c := *s
	c.SaveSettings = s.SaveSettings.Clone()
	return &c
}

func isSet(m mergeable, field string) bool {
	for i, name := range m.fieldNames() {
		if name == field {
			return m.explicit(i)
		}
	}
	return false
}

func strPtr(s string) *string {
	return &s
}

func copyStrPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return strPtr(*s)
}
