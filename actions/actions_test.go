// SPDX-License-Identifier: GPL-3.0-or-later
package actions

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/CrawX/go-save-message/config"
	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/domain/mocks"
	"github.com/CrawX/go-save-message/log"
	"github.com/CrawX/go-save-message/message"
	"github.com/CrawX/go-save-message/settings"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMocks struct {
	mailbox  *mocks.MockMailbox
	saver    *MockSaver
	prompter *mocks.MockPrompter
}

func setupDispatcher(t *testing.T, ctrl *gomock.Controller, c *configuration) (*Dispatcher, *testMocks) {
	log.InitLogging("error")
	m := &testMocks{
		mailbox:  mocks.NewMockMailbox(ctrl),
		saver:    NewMockSaver(ctrl),
		prompter: mocks.NewMockPrompter(ctrl),
	}

	d, err := NewDispatcher(m.mailbox, m.saver, m.prompter)
	require.NoError(t, err)
	d.config = c
	d.l = nullLogger()
	return d, m
}

func nullLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func testTarget(t *testing.T, s *settings.RuleSettings) *Target {
	msg, err := message.Parse([]byte("From: a@example.com\r\nSubject: Invoice\r\nDate: Mon, 01 May 2023 10:00:00 +0000\r\n\r\nPlease pay.\r\n"))
	require.NoError(t, err)
	return &Target{
		Folder:   "/mail/INBOX",
		Key:      "k1",
		Message:  msg,
		Rule:     &config.SaveRule{Id: 0},
		Settings: s,
	}
}

func saveSettings() *settings.RuleSaveSettings {
	return settings.NewRuleSaveSettings().SetPath("/saved")
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name     string
		config   *configuration
		settings *settings.RuleSettings
		setup    func(m *testMocks)
		expected *Outcome
		err      string
	}{
		{
			name:     "ignore does nothing",
			config:   &configuration{},
			settings: settings.NewRuleSettings().SetAction(domain.ActionIgnore),
			setup:    func(m *testMocks) {},
			expected: &Outcome{Action: domain.ActionIgnore, SavedFiles: []string{}},
		},
		{
			name:     "keep saves",
			config:   &configuration{},
			settings: settings.NewRuleSettings().SetAction(domain.ActionKeep).SetSaveSettings(saveSettings()),
			setup: func(m *testMocks) {
				m.saver.EXPECT().Save(gomock.Any(), saveSettings()).Return([]string{"/saved/a.txt"}, nil)
			},
			expected: &Outcome{Action: domain.ActionKeep, SavedFiles: []string{"/saved/a.txt"}},
		},
		{
			name:     "keep without save settings",
			config:   &configuration{},
			settings: settings.NewRuleSettings().SetAction(domain.ActionKeep),
			setup:    func(m *testMocks) {},
			err:      "action KEEP needs save settings",
		},
		{
			name:     "keep save error",
			config:   &configuration{},
			settings: settings.NewRuleSettings().SetAction(domain.ActionKeep).SetSaveSettings(saveSettings()),
			setup: func(m *testMocks) {
				m.saver.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil, errors.New("disk full"))
			},
			err: "could not save message k1: disk full",
		},
		{
			name:     "delete confirmed",
			config:   &configuration{},
			settings: settings.NewRuleSettings().SetAction(domain.ActionDelete),
			setup: func(m *testMocks) {
				m.prompter.EXPECT().Confirm(gomock.Any()).Return(true, nil)
				m.mailbox.EXPECT().Delete("/mail/INBOX", "k1").Return(nil)
			},
			expected: &Outcome{Action: domain.ActionDelete, SavedFiles: []string{}, Deleted: true},
		},
		{
			name:     "delete declined",
			config:   &configuration{},
			settings: settings.NewRuleSettings().SetAction(domain.ActionDelete),
			setup: func(m *testMocks) {
				m.prompter.EXPECT().Confirm(gomock.Any()).Return(false, nil)
			},
			expected: &Outcome{Action: domain.ActionDelete, SavedFiles: []string{}, DeleteDeclined: true},
		},
		{
			name:     "delete without confirmation",
			config:   &configuration{},
			settings: settings.NewRuleSettings().SetAction(domain.ActionDelete).SetDeleteConfirmation(false),
			setup: func(m *testMocks) {
				m.mailbox.EXPECT().Delete("/mail/INBOX", "k1").Return(nil)
			},
			expected: &Outcome{Action: domain.ActionDelete, SavedFiles: []string{}, Deleted: true},
		},
		{
			name:     "forced delete",
			config:   &configuration{ForceDeletes: true},
			settings: settings.NewRuleSettings().SetAction(domain.ActionDelete),
			setup: func(m *testMocks) {
				m.mailbox.EXPECT().Delete("/mail/INBOX", "k1").Return(nil)
			},
			expected: &Outcome{Action: domain.ActionDelete, SavedFiles: []string{}, Deleted: true},
		},
		{
			name:     "dry run delete",
			config:   &configuration{DryRun: true},
			settings: settings.NewRuleSettings().SetAction(domain.ActionDelete),
			setup:    func(m *testMocks) {},
			expected: &Outcome{Action: domain.ActionDelete, SavedFiles: []string{}},
		},
		{
			name:     "delete error",
			config:   &configuration{ForceDeletes: true},
			settings: settings.NewRuleSettings().SetAction(domain.ActionDelete),
			setup: func(m *testMocks) {
				m.mailbox.EXPECT().Delete("/mail/INBOX", "k1").Return(errors.New("read-only file system"))
			},
			err: "could not delete message k1: read-only file system",
		},
		{
			name:     "prompt error",
			config:   &configuration{},
			settings: settings.NewRuleSettings().SetAction(domain.ActionDelete),
			setup: func(m *testMocks) {
				m.prompter.EXPECT().Confirm(gomock.Any()).Return(false, errors.New("no tty"))
			},
			err: "could not confirm delete: no tty",
		},
		{
			name:     "save and delete",
			config:   &configuration{},
			settings: settings.NewRuleSettings().SetAction(domain.ActionSaveAndDelete).SetSaveSettings(saveSettings()).SetDeleteConfirmation(false),
			setup: func(m *testMocks) {
				gomock.InOrder(
					m.saver.EXPECT().Save(gomock.Any(), gomock.Any()).Return([]string{"/saved/a.txt", "/saved/b.pdf"}, nil),
					m.mailbox.EXPECT().Delete("/mail/INBOX", "k1").Return(nil),
				)
			},
			expected: &Outcome{Action: domain.ActionSaveAndDelete, SavedFiles: []string{"/saved/a.txt", "/saved/b.pdf"}, Deleted: true},
		},
		{
			name:     "save and delete keeps the message when saving fails",
			config:   &configuration{ForceDeletes: true},
			settings: settings.NewRuleSettings().SetAction(domain.ActionSaveAndDelete).SetSaveSettings(saveSettings()),
			setup: func(m *testMocks) {
				m.saver.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil, errors.New("disk full"))
			},
			err: "could not save message k1: disk full",
		},
		{
			name:     "save and delete declined",
			config:   &configuration{},
			settings: settings.NewRuleSettings().SetAction(domain.ActionSaveAndDelete).SetSaveSettings(saveSettings()),
			setup: func(m *testMocks) {
				m.saver.EXPECT().Save(gomock.Any(), gomock.Any()).Return([]string{"/saved/a.txt"}, nil)
				m.prompter.EXPECT().Confirm(gomock.Any()).Return(false, nil)
			},
			expected: &Outcome{Action: domain.ActionSaveAndDelete, SavedFiles: []string{"/saved/a.txt"}, DeleteDeclined: true},
		},
		{
			name:     "unknown action",
			config:   &configuration{},
			settings: settings.NewRuleSettings().SetAction(domain.MessageAction("ARCHIVE")),
			setup:    func(m *testMocks) {},
			err:      `unhandled action "ARCHIVE"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			d, m := setupDispatcher(t, ctrl, tc.config)
			tc.setup(m)

			outcome, err := d.Dispatch(testTarget(t, tc.settings))
			if len(tc.err) > 0 {
				assert.EqualError(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, outcome)
		})
	}
}

func TestDispatchUnknownActionIsSentinel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d, _ := setupDispatcher(t, ctrl, &configuration{})
	_, err := d.Dispatch(testTarget(t, settings.NewRuleSettings().SetAction(domain.MessageAction("ARCHIVE"))))
	assert.True(t, errors.Is(err, ErrUnhandledAction))
}

func TestDeleteQuestion(t *testing.T) {
	target := testTarget(t, nil)
	question := DeleteQuestion(target.Folder, target.Key, target.Message)

	assert.True(t, strings.HasPrefix(question, "/mail/INBOX/k1\n"))
	assert.Contains(t, question, "From:    a@example.com")
	assert.Contains(t, question, "Subject: Invoice")
	assert.Contains(t, question, "Please pay.")
	assert.True(t, strings.HasSuffix(question, "Really delete this message?"))
}

func TestConfigFuncs(t *testing.T) {
	log.InitLogging("error")
	d, err := NewDispatcher(nil, nil, nil, DryRun(), ForceDeletes())
	require.NoError(t, err)
	assert.Equal(t, &configuration{DryRun: true, ForceDeletes: true}, d.config)
}

func TestLinePrompter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"yes", "YES\n", true},
		{"yes without newline", "YES", true},
		{"lower case is not enough", "yes\n", false},
		{"y", "y\n", false},
		{"empty input", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			p := NewLinePrompter(strings.NewReader(tc.input), out)

			ok, err := p.Confirm("Really?")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ok)
			assert.Equal(t, "Really? (type YES to proceed) ", out.String())
		})
	}
}
