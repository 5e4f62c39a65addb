// SPDX-License-Identifier: GPL-3.0-or-later
package settings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/CrawX/go-save-message/domain"
)

// DecodeRuleSettings builds RuleSettings from a decoded TOML or YAML table.
// Every key present in the table becomes an explicit field, unknown keys are
// rejected. A nil table yields nil, meaning "no settings given".
func DecodeRuleSettings(raw map[string]any) (*RuleSettings, error) {
	if raw == nil {
		return nil, nil
	}
	if err := checkKeys(raw, ruleSettingsFields); err != nil {
		return nil, err
	}

	s := NewRuleSettings()
	if v, ok := raw["action"]; ok {
		str, err := asString("action", v)
		if err != nil {
			return nil, err
		}
		action, err := domain.ParseMessageAction(str)
		if err != nil {
			return nil, fmt.Errorf("action: %w", err)
		}
		s.SetAction(action)
	}
	if v, ok := raw["delete_confirmation"]; ok {
		b, err := asBool("delete_confirmation", v)
		if err != nil {
			return nil, err
		}
		s.SetDeleteConfirmation(b)
	}
	if v, ok := raw["save_settings"]; ok {
		if v == nil {
			s.SetSaveSettings(nil)
		} else {
			table, err := asTable("save_settings", v)
			if err != nil {
				return nil, err
			}
			save, err := DecodeRuleSaveSettings(table)
			if err != nil {
				return nil, fmt.Errorf("save_settings: %w", err)
			}
			s.SetSaveSettings(save)
		}
	}

	return s, nil
}

// DecodeRuleSaveSettings is the RuleSaveSettings counterpart of
// DecodeRuleSettings. Pattern fields accept a string, or null/false to
// disable them.
func DecodeRuleSaveSettings(raw map[string]any) (*RuleSaveSettings, error) {
	if raw == nil {
		return nil, nil
	}
	if err := checkKeys(raw, saveSettingsFields); err != nil {
		return nil, err
	}

	s := NewRuleSaveSettings()
	for i, name := range saveSettingsFields {
		v, ok := raw[name]
		if !ok {
			continue
		}

		var err error
		switch i {
		case savePath, saveMessageName:
			var str string
			if str, err = asString(name, v); err == nil {
				s.assign(i, str)
			}
		case saveEml, saveBody, saveFlattenSingleFileMessages:
			var b bool
			if b, err = asBool(name, v); err == nil {
				s.assign(i, b)
			}
		case saveAttachments, saveHtmlPdfTransformCommand:
			var pattern *string
			if pattern, err = asPattern(name, v); err == nil {
				s.assign(i, pattern)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func checkKeys(raw map[string]any, known []string) error {
	unknown := []string{}
	for key := range raw {
		found := false
		for _, k := range known {
			if k == key {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown field(s) %s", strings.Join(unknown, ", "))
	}

	return nil
}

func asString(name string, v any) (string, error) {
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected a string, got %T", name, v)
	}
	return str, nil
}

func asBool(name string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: expected a boolean, got %T", name, v)
	}
	return b, nil
}

func asPattern(name string, v any) (*string, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if p {
			return nil, fmt.Errorf("%s: expected a pattern or false, got true", name)
		}
		return nil, nil
	case string:
		return strPtr(p), nil
	}
	return nil, fmt.Errorf("%s: expected a pattern, got %T", name, v)
}

// asTable accepts the table shapes produced by the toml and yaml decoders.
func asTable(name string, v any) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case map[any]any:
		converted := make(map[string]any, len(t))
		for k, val := range t {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%s: non-string key %v", name, k)
			}
			converted[key] = val
		}
		return converted, nil
	}
	return nil, fmt.Errorf("%s: expected a table, got %T", name, v)
}
