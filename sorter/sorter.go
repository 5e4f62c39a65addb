// SPDX-License-Identifier: GPL-3.0-or-later
package sorter

//go:generate mockgen -destination=sorter_mocks_test.go -package=sorter -source sorter.go
import (
	"fmt"
	"time"

	"github.com/CrawX/go-save-message/actions"
	"github.com/CrawX/go-save-message/config"
	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/log"
	"github.com/CrawX/go-save-message/matcher"
	"github.com/CrawX/go-save-message/message"
	"github.com/CrawX/go-save-message/settings"

	"github.com/sirupsen/logrus"
)

const (
	BatchSize          = 50
	DefaultConcurrency = 8
)

// Resolver finds the rule and effective settings of a message, see
// rules.RulesMatcher.
type Resolver interface {
	Resolve(msg domain.Message) (*config.SaveRule, *settings.RuleSettings, error)
}

// Dispatcher performs the action of a resolved message, see
// actions.Dispatcher.
type Dispatcher interface {
	Dispatch(t *actions.Target) (*actions.Outcome, error)
}

// Summary counts what happened during one run.
type Summary struct {
	Actions map[domain.MessageAction]int
	// files written by the saver
	Saved    int
	Deleted  int
	Declined int
	// already in the ledger
	Skipped int
	// not accepted by the filter
	Filtered int
	Errors   int
}

func newSummary() *Summary {
	s := &Summary{Actions: map[domain.MessageAction]int{}}
	for _, a := range domain.MessageActions {
		s.Actions[a] = 0
	}
	return s
}

// Sorter applies the configured rules to all messages of maildir folders.
type Sorter struct {
	mailbox     domain.Mailbox
	resolver    Resolver
	dispatcher  Dispatcher
	persistence domain.Persistence

	configuration *configuration
	now           func() time.Time

	l *logrus.Logger
}

type entry struct {
	key  string
	hash string
	msg  *message.Message
}

type resolution struct {
	rule      *config.SaveRule
	effective *settings.RuleSettings
	err       error
}

func NewSorter(mailbox domain.Mailbox, resolver Resolver, dispatcher Dispatcher, persistence domain.Persistence, configFunc ...ConfigFunc) (*Sorter, error) {
	config := &configuration{
		Concurrency: DefaultConcurrency,
	}
	for _, f := range configFunc {
		err := f(config)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}

	return &Sorter{
		mailbox:       mailbox,
		resolver:      resolver,
		dispatcher:    dispatcher,
		persistence:   persistence,
		configuration: config,
		now:           time.Now,
		l:             log.Logger(log.LOG_SORTER),
	}, nil
}

// ApplyRules handles every message of the folders that filter accepts (a nil
// filter accepts everything). Messages are resolved concurrently per batch
// and dispatched one after another in key order. Errors of single messages
// are logged and counted, errors of a folder or the ledger abort the run.
func (s *Sorter) ApplyRules(folders []string, filter matcher.Matcher) (*Summary, error) {
	summary := newSummary()

	for _, f := range folders {
		keys, err := s.mailbox.Keys(f)
		if err != nil {
			return summary, fmt.Errorf("could not list %s: %w", f, err)
		}

		folderLogger := s.l.WithFields(logrus.Fields{"folder": f})
		if len(keys) == 0 {
			folderLogger.Info("Folder contains no messages")
			continue
		}

		batches := partitionKeys(keys, BatchSize)
		folderLogger.WithFields(logrus.Fields{"messages": len(keys), "batches": len(batches)}).Info("Applying rules")

		for _, batch := range batches {
			err = s.applyBatch(f, batch, filter, summary)
			if err != nil {
				return summary, err
			}
		}
	}

	return summary, nil
}

func (s *Sorter) applyBatch(folder string, batch []string, filter matcher.Matcher, summary *Summary) error {
	start := time.Now()

	entries := s.read(folder, batch, summary)

	entries, err := s.unprocessed(folder, entries, summary)
	if err != nil {
		return err
	}

	if filter != nil {
		entries = s.filter(folder, entries, filter, summary)
	}

	resolutions := s.resolveAll(entries)

	results := []domain.ProcessedMessage{}
	for i, e := range entries {
		logger := s.l.WithFields(logrus.Fields{"folder": folder, "key": e.key, "subject": message.ShortSubject(e.msg.Subject())})

		r := resolutions[i]
		if r.err != nil {
			logger.WithField("error", r.err).Error("Could not resolve rule, skipping")
			summary.Errors++
			continue
		}

		outcome, err := s.dispatcher.Dispatch(&actions.Target{
			Folder:   folder,
			Key:      e.key,
			Message:  e.msg,
			Rule:     r.rule,
			Settings: r.effective,
		})
		if err != nil {
			logger.WithFields(logrus.Fields{"rule": r.rule.Id, "action": r.effective.Action, "error": err}).Error("Could not perform action, skipping")
			summary.Errors++
			// files saved before a failed delete are recorded, else the next
			// run saves them a second time
			if outcome == nil || len(outcome.SavedFiles) == 0 {
				continue
			}
			summary.Saved += len(outcome.SavedFiles)
		} else {
			summary.Actions[outcome.Action]++
			summary.Saved += len(outcome.SavedFiles)
			if outcome.Deleted {
				summary.Deleted++
			}
			if outcome.DeleteDeclined {
				summary.Declined++
			}
			logger.WithFields(logrus.Fields{"rule": r.rule.Id, "action": outcome.Action, "saved": len(outcome.SavedFiles), "deleted": outcome.Deleted}).Debug("Handled message")
		}

		if !s.records(outcome) {
			continue
		}
		results = append(results, domain.ProcessedMessage{
			Folder:      folder,
			Key:         e.key,
			MailIdHash:  e.hash,
			Subject:     e.msg.Subject(),
			Action:      outcome.Action,
			RuleId:      r.rule.Id,
			Deleted:     outcome.Deleted,
			SavedFiles:  len(outcome.SavedFiles),
			ProcessedAt: s.now(),
		})
	}

	if len(results) > 0 {
		err = s.persistence.SaveResults(results)
		if err != nil {
			return fmt.Errorf("could not save results: %w", err)
		}
	}

	s.l.WithFields(logrus.Fields{"folder": folder, "duration": time.Since(start), "batchsize": len(batch), "handled": len(entries)}).Debug("Applied rules to batch")
	return nil
}

// records reports whether an outcome goes into the ledger. Only messages
// something happened to are recorded: ignored messages are evaluated again
// on the next run so rules added later reach them, and a declined delete is
// asked again.
func (s *Sorter) records(outcome *actions.Outcome) bool {
	return !s.configuration.DryRun && !outcome.DeleteDeclined && outcome.Action != domain.ActionIgnore
}

func (s *Sorter) read(folder string, keys []string, summary *Summary) []*entry {
	entries := []*entry{}
	for _, key := range keys {
		logger := s.l.WithFields(logrus.Fields{"folder": folder, "key": key})

		raw, err := s.mailbox.Fetch(folder, key)
		if err != nil {
			logger.WithField("error", err).Error("Could not read message, skipping")
			summary.Errors++
			continue
		}
		msg, err := message.Parse(raw)
		if err != nil {
			logger.WithField("error", err).Error("Could not parse message, skipping")
			summary.Errors++
			continue
		}

		entries = append(entries, &entry{key: key, hash: msg.IdHash(), msg: msg})
	}
	return entries
}

func (s *Sorter) unprocessed(folder string, entries []*entry, summary *Summary) ([]*entry, error) {
	if s.configuration.Reprocess || len(entries) == 0 {
		return entries, nil
	}

	hashes := make([]string, len(entries))
	for i, e := range entries {
		hashes[i] = e.hash
	}

	processed, err := s.persistence.ProcessedHashes(folder, hashes)
	if err != nil {
		return nil, fmt.Errorf("could not look up processed messages: %w", err)
	}

	result := []*entry{}
	for _, e := range entries {
		if processed[e.hash] {
			s.l.WithFields(logrus.Fields{"folder": folder, "key": e.key, "subject": message.ShortSubject(e.msg.Subject())}).Trace("Already processed")
			summary.Skipped++
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (s *Sorter) filter(folder string, entries []*entry, filter matcher.Matcher, summary *Summary) []*entry {
	result := []*entry{}
	for _, e := range entries {
		ok, err := filter.Match(e.msg)
		if err != nil {
			s.l.WithFields(logrus.Fields{"folder": folder, "key": e.key, "subject": message.ShortSubject(e.msg.Subject()), "error": err}).Error("Could not evaluate filter, skipping")
			summary.Errors++
			continue
		}
		if !ok {
			summary.Filtered++
			continue
		}
		result = append(result, e)
	}
	return result
}

func (s *Sorter) resolveAll(entries []*entry) []*resolution {
	concurrency := s.configuration.Concurrency
	semaphore := make(chan bool, concurrency)
	results := make([]*resolution, len(entries))
	for i := 0; i < len(entries); i++ {
		semaphore <- true
		go func(index int) {
			rule, effective, err := s.resolver.Resolve(entries[index].msg)
			results[index] = &resolution{rule: rule, effective: effective, err: err}
			<-semaphore
		}(i)
	}

	for i := 0; i < concurrency; i++ {
		semaphore <- true
	}

	return results
}

// taken from https://github.com/golang/go/wiki/SliceTricks
func partitionKeys(keys []string, partitionSize int) [][]string {
	batches := make([][]string, 0, (len(keys)+partitionSize-1)/partitionSize)

	for partitionSize < len(keys) {
		keys, batches = keys[partitionSize:], append(batches, keys[0:partitionSize:partitionSize])
	}
	batches = append(batches, keys)

	return batches
}
