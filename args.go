// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/CrawX/go-save-message/config"
	"github.com/CrawX/go-save-message/matcher"
)

const (
	commandSearch     = "search"
	commandDelete     = "delete"
	commandApplyRules = "apply-rules"
	commandTestRule   = "test-rule"
)

var commands = []string{commandSearch, commandDelete, commandApplyRules, commandTestRule}

type filterFlags struct {
	Subject string
	From    string
	To      string
	Date    string
	Age     string
	Body    string
}

type arguments struct {
	ConfigFile   string
	Verbose      bool
	ForceDeletes bool
	DryRun       bool

	Command string
	Filter  filterFlags

	// apply-rules
	Reprocess bool
	// test-rule
	RuleId int
}

func usage(global *flag.FlagSet, out io.Writer) func() {
	return func() {
		fmt.Fprintf(out, "usage: save-message [flags] <%s> [command flags]\n", strings.Join(commands, "|"))
		global.PrintDefaults()
	}
}

// parseArgs reads the global flags, the command and its flags.
func parseArgs(args []string, out io.Writer) (*arguments, error) {
	a := &arguments{}

	global := flag.NewFlagSet("save-message", flag.ContinueOnError)
	global.SetOutput(out)
	global.Usage = usage(global, out)
	global.StringVar(&a.ConfigFile, "c", config.DefaultConfigFile, "config file (.toml, .yaml or .yml)")
	global.BoolVar(&a.Verbose, "v", false, "verbose logging")
	global.BoolVar(&a.ForceDeletes, "force-deletes", false, "never ask before deleting")
	global.BoolVar(&a.DryRun, "dry-run", false, "only log what would be saved or deleted")

	err := global.Parse(args)
	if err != nil {
		return nil, err
	}

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return nil, fmt.Errorf("missing command, one of %s", strings.Join(commands, ", "))
	}

	a.Command = rest[0]
	cmd := flag.NewFlagSet(a.Command, flag.ContinueOnError)
	cmd.SetOutput(out)
	cmd.StringVar(&a.Filter.Subject, "subject", "", "only messages whose subject matches (glob or /regexp/)")
	cmd.StringVar(&a.Filter.From, "from", "", "only messages whose sender matches")
	cmd.StringVar(&a.Filter.To, "to", "", "only messages whose recipient matches")
	cmd.StringVar(&a.Filter.Date, "date", "", "only messages sent at exactly this date")
	cmd.StringVar(&a.Filter.Age, "age", "", "only messages at least this old, e.g. \"30 days\"")
	cmd.StringVar(&a.Filter.Body, "body", "", "only messages whose body contains a match")

	switch a.Command {
	case commandSearch, commandDelete:
	case commandApplyRules:
		cmd.BoolVar(&a.Reprocess, "reprocess", false, "also handle messages that were processed before")
	case commandTestRule:
		cmd.IntVar(&a.RuleId, "id", 0, "0-based position of the rule in save_rules")
	default:
		return nil, fmt.Errorf("unknown command %q, expected one of %s", a.Command, strings.Join(commands, ", "))
	}

	err = cmd.Parse(rest[1:])
	if err != nil {
		return nil, err
	}
	if cmd.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments for %s: %s", a.Command, strings.Join(cmd.Args(), " "))
	}

	if a.Command == commandTestRule {
		idSet := false
		cmd.Visit(func(f *flag.Flag) {
			idSet = idSet || f.Name == "id"
		})
		if !idSet {
			return nil, fmt.Errorf("%s needs --id", commandTestRule)
		}
	}

	return a, nil
}

func (f filterFlags) group() matcher.MatchGroup {
	return matcher.MatchGroup{
		Subject: f.Subject,
		To:      f.To,
		From:    f.From,
		Date:    f.Date,
		Age:     f.Age,
		Body:    f.Body,
	}
}

// compile returns nil when no filter flag was given.
func (f filterFlags) compile(conf *config.Config) (matcher.Matcher, error) {
	group := f.group()
	if group.IsEmpty() {
		return nil, nil
	}

	opts := []matcher.CompileOption{}
	if conf.DateLocation != nil {
		opts = append(opts, matcher.WithLocation(conf.DateLocation))
	}
	return matcher.CompileGroup(group, opts...)
}
