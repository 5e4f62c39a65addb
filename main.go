// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/CrawX/go-save-message/actions"
	"github.com/CrawX/go-save-message/config"
	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/log"
	"github.com/CrawX/go-save-message/maildir"
	"github.com/CrawX/go-save-message/matcher"
	"github.com/CrawX/go-save-message/persistence"
	"github.com/CrawX/go-save-message/rules"
	"github.com/CrawX/go-save-message/saver"
	"github.com/CrawX/go-save-message/sorter"

	"github.com/sirupsen/logrus"
)

func main() {
	log.InitLogging("info")
	logger := log.Logger(log.LOG_MAIN)

	args, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		logger.WithField("error", err).Fatal("Invalid arguments")
	}

	conf, err := config.ReadConfig(args.ConfigFile)
	if err != nil {
		logger.WithFields(logrus.Fields{"file": args.ConfigFile, "error": err}).Fatal("Could not load config")
	}

	if conf.Loglevel != nil {
		log.SetLogLevel(*conf.Loglevel)
	}
	if args.Verbose {
		log.SetLogLevel("debug")
	}

	dryRun := args.DryRun || conf.DryRun
	logger.WithFields(logrus.Fields{
		"command":  args.Command,
		"maildirs": conf.MaildirPaths,
		"rules":    len(conf.SaveRules),
		"actions":  conf.ActionSummary(),
		"dryrun":   dryRun,
	}).Debug("Loaded config")

	filter, err := args.Filter.compile(conf)
	if err != nil {
		logger.WithField("error", err).Fatal("Invalid filter")
	}

	storeConfigs := []maildir.ConfigFunc{}
	if args.Command == commandSearch || args.Command == commandTestRule {
		storeConfigs = append(storeConfigs, maildir.ReadOnly())
	}
	store, err := maildir.NewStore(storeConfigs...)
	if err != nil {
		logger.WithField("error", err).Fatal("Could not open maildir store")
	}
	rm := rules.NewRulesMatcher(conf)

	saverConfigs := []saver.ConfigFunc{}
	actionConfigs := []actions.ConfigFunc{}
	if dryRun {
		saverConfigs = append(saverConfigs, saver.DryRun())
		actionConfigs = append(actionConfigs, actions.DryRun())
	}
	if args.ForceDeletes {
		actionConfigs = append(actionConfigs, actions.ForceDeletes())
	}

	s, err := saver.NewMessageSaver(saverConfigs...)
	if err != nil {
		logger.WithField("error", err).Fatal("Could not start saver")
	}
	dispatcher, err := actions.NewDispatcher(store, s, actions.NewLinePrompter(os.Stdin, os.Stdout), actionConfigs...)
	if err != nil {
		logger.WithField("error", err).Fatal("Could not start dispatcher")
	}

	switch args.Command {
	case commandSearch:
		err = search(conf.MaildirPaths, store, filter, os.Stdout)
	case commandDelete:
		err = deleteMatching(conf.MaildirPaths, store, dispatcher, filter)
	case commandTestRule:
		err = testRule(conf.MaildirPaths, store, rm, args.RuleId, filter, os.Stdout)
	case commandApplyRules:
		err = applyRules(conf, args, dryRun, store, rm, dispatcher, filter)
	}
	if err != nil {
		logger.WithFields(logrus.Fields{"command": args.Command, "error": err}).Fatal("Command failed")
	}
}

func applyRules(conf *config.Config, args *arguments, dryRun bool, store domain.Mailbox, rm *rules.RulesMatcher, dispatcher *actions.Dispatcher, filter matcher.Matcher) error {
	logger := log.Logger(log.LOG_MAIN)

	p, err := openPersistence(conf.Database)
	if err != nil {
		return err
	}
	defer p.Close()

	sorterConfigs := []sorter.ConfigFunc{sorter.Concurrency(conf.CheckConcurrency)}
	if dryRun {
		sorterConfigs = append(sorterConfigs, sorter.DryRun())
		logger.Warn("Not saving, deleting or recording messages due to dry-run")
	}
	if args.Reprocess {
		sorterConfigs = append(sorterConfigs, sorter.Reprocess())
	}

	so, err := sorter.NewSorter(store, rm, dispatcher, p, sorterConfigs...)
	if err != nil {
		return fmt.Errorf("could not start sorter: %w", err)
	}

	summary, err := so.ApplyRules(conf.MaildirPaths, filter)
	if summary != nil {
		logger.WithFields(logrus.Fields{
			"actions":  summary.Actions,
			"saved":    summary.Saved,
			"deleted":  summary.Deleted,
			"declined": summary.Declined,
			"skipped":  summary.Skipped,
			"filtered": summary.Filtered,
			"errors":   summary.Errors,
		}).Info("Applied rules")
	}
	return err
}

func openPersistence(database string) (domain.Persistence, error) {
	if len(database) == 0 {
		return persistence.NullPersistence{}, nil
	}

	err := os.MkdirAll(filepath.Dir(database), 0o755)
	if err != nil {
		return nil, fmt.Errorf("could not create database folder: %w", err)
	}

	p, err := persistence.NewPersistence(database)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	return p, nil
}
