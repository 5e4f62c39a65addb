// SPDX-License-Identifier: GPL-3.0-or-later
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/matcher"
	"github.com/CrawX/go-save-message/settings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile       = "~/.config/save-message.toml"
	DefaultDatabase         = "~/.local/share/save-message/save-message.db"
	DefaultCheckConcurrency = 8
)

// SaveRule is one entry of save_rules with its compiled matcher. Id is the
// position in the config file, the synthetic default rule has Id -1.
type SaveRule struct {
	Id       int
	Matches  []matcher.MatchGroup
	Settings *settings.RuleSettings
	Matcher  matcher.Matcher
}

type Config struct {
	// nil when the config file has no default_settings
	DefaultSettings *settings.RuleSettings
	MaildirPaths    []string
	SaveRules       []*SaveRule

	// sqlite ledger of processed messages, empty disables it
	Database string

	DryRun           bool
	CheckConcurrency int
	// zone for match dates without an offset
	DateLocation *time.Location

	Loglevel *string
}

type rawMaildir struct {
	Path string `toml:"path" yaml:"path"`
}

type rawSaveRule struct {
	// single-group shorthand
	MatchSubject string `toml:"match_subject" yaml:"match_subject"`
	MatchFrom    string `toml:"match_from" yaml:"match_from"`
	MatchTo      string `toml:"match_to" yaml:"match_to"`

	Matches  []matcher.MatchGroup `toml:"matches" yaml:"matches"`
	Settings map[string]any       `toml:"settings" yaml:"settings"`
}

type rawConfig struct {
	DefaultSettings  map[string]any `toml:"default_settings" yaml:"default_settings"`
	MaildirPaths     []string       `toml:"maildir_paths" yaml:"maildir_paths"`
	Maildir          *rawMaildir    `toml:"maildir" yaml:"maildir"`
	SaveRules        []rawSaveRule  `toml:"save_rules" yaml:"save_rules"`
	Database         *string        `toml:"database" yaml:"database"`
	DryRun           bool           `toml:"dry_run" yaml:"dry_run"`
	CheckConcurrency int            `toml:"check_concurrency" yaml:"check_concurrency"`
	DateLocation     string         `toml:"date_location" yaml:"date_location"`
	Loglevel         *string        `toml:"loglevel" yaml:"loglevel"`
}

// ReadConfig loads a TOML or YAML (.yaml, .yml) config file and compiles its
// rules. opts are passed to the rule compiler after the configured location.
func ReadConfig(filename string, opts ...matcher.CompileOption) (*Config, error) {
	filename = ExpandPath(filename)

	raw := &rawConfig{}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := decodeYaml(filename, raw); err != nil {
			return nil, err
		}
	default:
		if err := decodeToml(filename, raw); err != nil {
			return nil, err
		}
	}

	config, err := raw.build(opts)
	if err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

func decodeToml(filename string, raw *rawConfig) error {
	md, err := toml.DecodeFile(filename, raw)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	keys := []string{}
	for _, k := range md.Undecoded() {
		// settings tables are checked by the settings decoder
		if k[0] == "default_settings" || (len(k) > 1 && k[0] == "save_rules" && k[1] == "settings") {
			continue
		}
		keys = append(keys, k.String())
	}
	if len(keys) > 0 {
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	return nil
}

func decodeYaml(filename string, raw *rawConfig) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	err = dec.Decode(raw)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	return nil
}

func (raw *rawConfig) build(opts []matcher.CompileOption) (*Config, error) {
	config := &Config{
		Database:         DefaultDatabase,
		DryRun:           raw.DryRun,
		CheckConcurrency: raw.CheckConcurrency,
		DateLocation:     time.Local,
		Loglevel:         raw.Loglevel,
	}

	if raw.Database != nil {
		config.Database = *raw.Database
	}
	if len(config.Database) > 0 {
		config.Database = ExpandPath(config.Database)
	}
	if config.CheckConcurrency <= 0 {
		config.CheckConcurrency = DefaultCheckConcurrency
	}
	if len(raw.DateLocation) > 0 {
		loc, err := time.LoadLocation(raw.DateLocation)
		if err != nil {
			return nil, fmt.Errorf("invalid date_location: %w", err)
		}
		config.DateLocation = loc
	}

	for _, p := range raw.MaildirPaths {
		config.MaildirPaths = append(config.MaildirPaths, ExpandPath(p))
	}
	if raw.Maildir != nil && len(raw.Maildir.Path) > 0 {
		config.MaildirPaths = append(config.MaildirPaths, ExpandPath(raw.Maildir.Path))
	}

	defaults, err := settings.DecodeRuleSettings(raw.DefaultSettings)
	if err != nil {
		return nil, fmt.Errorf("default_settings: %w", err)
	}
	if defaults != nil && !defaults.IsSet("action") {
		return nil, errors.New("default_settings: action must be set")
	}
	expandSavePath(defaults)
	config.DefaultSettings = defaults

	compileOpts := append([]matcher.CompileOption{matcher.WithLocation(config.DateLocation)}, opts...)
	for i, r := range raw.SaveRules {
		rule, err := r.build(i, compileOpts)
		if err != nil {
			return nil, fmt.Errorf("save_rules[%d].%w", i, err)
		}
		config.SaveRules = append(config.SaveRules, rule)
	}

	return config, nil
}

func (r *rawSaveRule) build(id int, opts []matcher.CompileOption) (*SaveRule, error) {
	groups := append([]matcher.MatchGroup{}, r.Matches...)
	legacy := matcher.MatchGroup{Subject: r.MatchSubject, From: r.MatchFrom, To: r.MatchTo}
	if !legacy.IsEmpty() {
		groups = append(groups, legacy)
	}

	m, err := matcher.Compile(groups, opts...)
	if err != nil {
		return nil, err
	}

	if r.Settings == nil {
		return nil, errors.New("settings: must be set")
	}
	s, err := settings.DecodeRuleSettings(r.Settings)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	if !s.IsSet("action") {
		return nil, errors.New("settings: action must be set")
	}
	expandSavePath(s)

	return &SaveRule{
		Id:       id,
		Matches:  groups,
		Settings: s,
		Matcher:  m,
	}, nil
}

func expandSavePath(s *settings.RuleSettings) {
	if s == nil || s.SaveSettings == nil || !s.SaveSettings.IsSet("path") {
		return
	}
	s.SaveSettings.SetPath(ExpandPath(s.SaveSettings.Path))
}

// ExpandPath resolves a leading ~ and environment variables.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return os.ExpandEnv(path)
}

func (c *Config) validate() error {
	if len(c.MaildirPaths) == 0 {
		return errors.New("maildir_paths must not be empty, set to the maildir folders to scan")
	}
	for _, p := range c.MaildirPaths {
		if err := validateNonEmptyStringField(p, "maildir_paths must not contain empty paths"); err != nil {
			return err
		}
	}

	if c.DefaultSettings != nil {
		if err := validateSavePath(c.DefaultSettings, "default_settings"); err != nil {
			return err
		}
		if err := validateSaveAttachments(c.DefaultSettings, "default_settings"); err != nil {
			return err
		}
	}

	for _, r := range c.SaveRules {
		if err := validateSaveAttachments(r.Settings, fmt.Sprintf("save_rules[%d].settings", r.Id)); err != nil {
			return err
		}
		effective := settings.Merge(c.DefaultSettings, r.Settings)
		if err := validateSavePath(effective, fmt.Sprintf("save_rules[%d]", r.Id)); err != nil {
			return err
		}
	}

	return nil
}

func validateSavePath(s *settings.RuleSettings, name string) error {
	if !s.Action.Saves() {
		return nil
	}

	path := ""
	if s.SaveSettings != nil {
		path = s.SaveSettings.Path
	}
	return validateNonEmptyStringField(path, fmt.Sprintf("%s: action %s needs save_settings.path, set to the folder messages are saved to", name, s.Action))
}

// validateSaveAttachments compiles the attachment pattern so a broken regexp
// fails here and not on every saved message.
func validateSaveAttachments(s *settings.RuleSettings, name string) error {
	if s == nil || s.SaveSettings == nil || s.SaveSettings.SaveAttachments == nil {
		return nil
	}
	_, err := matcher.NewPattern(*s.SaveSettings.SaveAttachments)
	if err != nil {
		return fmt.Errorf("%s.save_settings.save_attachments: %w", name, err)
	}

	return nil
}

func validateNonEmptyStringField(field string, err string) error {
	if len(strings.TrimSpace(field)) == 0 {
		return errors.New(err)
	}

	return nil
}

// ActionSummary lists the rules per action, used for the startup log.
func (c *Config) ActionSummary() map[domain.MessageAction]int {
	summary := map[domain.MessageAction]int{}
	for _, r := range c.SaveRules {
		summary[settings.Merge(c.DefaultSettings, r.Settings).Action]++
	}
	return summary
}
