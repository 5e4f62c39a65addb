// SPDX-License-Identifier: GPL-3.0-or-later
package actions

//go:generate mockgen -destination=saver_mocks_test.go -package=actions -source actions.go
import (
	"errors"
	"fmt"
	"strings"

	"github.com/CrawX/go-save-message/config"
	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/log"
	"github.com/CrawX/go-save-message/message"
	"github.com/CrawX/go-save-message/settings"

	"github.com/sirupsen/logrus"
)

var ErrUnhandledAction = errors.New("unhandled action")

// Saver writes a message to disk, see saver.MessageSaver.
type Saver interface {
	Save(msg *message.Message, ss *settings.RuleSaveSettings) ([]string, error)
}

// Outcome is what happened to one message.
type Outcome struct {
	Action     domain.MessageAction
	SavedFiles []string
	Deleted    bool
	// the user answered the delete confirmation with anything but yes
	DeleteDeclined bool
}

// Target is a message together with the rule it resolved to.
type Target struct {
	Folder   string
	Key      string
	Message  *message.Message
	Rule     *config.SaveRule
	Settings *settings.RuleSettings
}

type handler func(t *Target) (*Outcome, error)

// Dispatcher performs the action of a resolved rule on a message.
type Dispatcher struct {
	mailbox  domain.Mailbox
	saver    Saver
	prompter domain.Prompter

	handlers map[domain.MessageAction]handler
	config   *configuration
	l        *logrus.Logger
}

func NewDispatcher(mailbox domain.Mailbox, saver Saver, prompter domain.Prompter, configFuncs ...ConfigFunc) (*Dispatcher, error) {
	c := &configuration{}
	for _, cf := range configFuncs {
		err := cf(c)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}

	d := &Dispatcher{
		mailbox:  mailbox,
		saver:    saver,
		prompter: prompter,
		config:   c,
		l:        log.Logger(log.LOG_ACTIONS),
	}
	d.handlers = map[domain.MessageAction]handler{
		domain.ActionIgnore:        d.ignore,
		domain.ActionKeep:          d.keep,
		domain.ActionDelete:        d.delete,
		domain.ActionSaveAndDelete: d.saveAndDelete,
	}
	return d, nil
}

// Dispatch runs the handler for the action of t.Settings.
func (d *Dispatcher) Dispatch(t *Target) (*Outcome, error) {
	if t.Settings == nil {
		return nil, fmt.Errorf("no settings for message %s", t.Key)
	}

	h, ok := d.handlers[t.Settings.Action]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnhandledAction, t.Settings.Action)
	}

	d.logger(t).WithField("action", t.Settings.Action).Debug("Dispatching")
	return h(t)
}

func (d *Dispatcher) ignore(t *Target) (*Outcome, error) {
	d.logger(t).Trace("Ignoring message")
	return &Outcome{Action: domain.ActionIgnore, SavedFiles: []string{}}, nil
}

func (d *Dispatcher) keep(t *Target) (*Outcome, error) {
	saved, err := d.save(t)
	if err != nil {
		return nil, err
	}
	return &Outcome{Action: domain.ActionKeep, SavedFiles: saved}, nil
}

func (d *Dispatcher) delete(t *Target) (*Outcome, error) {
	deleted, err := d.Delete(t.Folder, t.Key, t.Message, t.Settings.DeleteConfirmation)
	if err != nil {
		return nil, err
	}
	return &Outcome{Action: domain.ActionDelete, SavedFiles: []string{}, Deleted: deleted, DeleteDeclined: !deleted && !d.config.DryRun}, nil
}

// saveAndDelete only deletes once everything was saved.
func (d *Dispatcher) saveAndDelete(t *Target) (*Outcome, error) {
	saved, err := d.save(t)
	if err != nil {
		return nil, err
	}

	deleted, err := d.Delete(t.Folder, t.Key, t.Message, t.Settings.DeleteConfirmation)
	if err != nil {
		return &Outcome{Action: domain.ActionSaveAndDelete, SavedFiles: saved}, err
	}
	return &Outcome{Action: domain.ActionSaveAndDelete, SavedFiles: saved, Deleted: deleted, DeleteDeclined: !deleted && !d.config.DryRun}, nil
}

func (d *Dispatcher) save(t *Target) ([]string, error) {
	if t.Settings.SaveSettings == nil {
		return nil, fmt.Errorf("action %s needs save settings", t.Settings.Action)
	}

	saved, err := d.saver.Save(t.Message, t.Settings.SaveSettings)
	if err != nil {
		return nil, fmt.Errorf("could not save message %s: %w", t.Key, err)
	}
	return saved, nil
}

// Delete removes a message from its folder, asking first when confirm is set
// and deletes are not forced. It reports whether the message was deleted.
func (d *Dispatcher) Delete(folder string, key string, msg *message.Message, confirm bool) (bool, error) {
	logger := d.l.WithFields(logrus.Fields{"folder": folder, "key": key, "subject": message.ShortSubject(msg.Subject())})

	if d.config.DryRun {
		logger.Info("Would delete message (dry run)")
		return false, nil
	}

	if confirm && !d.config.ForceDeletes {
		ok, err := d.prompter.Confirm(DeleteQuestion(folder, key, msg))
		if err != nil {
			return false, fmt.Errorf("could not confirm delete: %w", err)
		}
		if !ok {
			logger.Info("Delete declined")
			return false, nil
		}
	}

	err := d.mailbox.Delete(folder, key)
	if err != nil {
		return false, fmt.Errorf("could not delete message %s: %w", key, err)
	}

	logger.Info("Deleted message")
	return true, nil
}

// DeleteQuestion describes a message so the user can decide on deleting it.
func DeleteQuestion(folder string, key string, msg *message.Message) string {
	from, _ := msg.Header("From")
	date, _ := msg.Header("Date")

	b := &strings.Builder{}
	fmt.Fprintf(b, "%s/%s\n", folder, key)
	fmt.Fprintf(b, "  Date:    %s\n", date)
	fmt.Fprintf(b, "  From:    %s\n", from)
	fmt.Fprintf(b, "  Subject: %s\n", msg.Subject())
	if preview := msg.Preview(120); len(preview) > 0 {
		fmt.Fprintf(b, "  %s\n", preview)
	}
	b.WriteString("Really delete this message?")
	return b.String()
}

func (d *Dispatcher) logger(t *Target) *logrus.Entry {
	fields := logrus.Fields{"folder": t.Folder, "key": t.Key}
	if t.Rule != nil {
		fields["rule"] = t.Rule.Id
	}
	if t.Message != nil {
		fields["subject"] = message.ShortSubject(t.Message.Subject())
	}
	return d.l.WithFields(fields)
}
