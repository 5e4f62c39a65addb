// SPDX-License-Identifier: GPL-3.0-or-later
package maildir

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/CrawX/go-save-message/log"

	gomaildir "github.com/emersion/go-maildir"
	"github.com/sirupsen/logrus"
)

var ErrReadOnly = errors.New("maildir store is read-only")

// Store gives key based access to maildir folders on the local disk. Folders
// are paths to maildir directories (with cur, new and tmp).
type Store struct {
	configuration *configuration

	l *logrus.Logger
}

func NewStore(configFuncs ...ConfigFunc) (*Store, error) {
	config := &configuration{}
	for _, f := range configFuncs {
		err := f(config)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}

	return &Store{
		configuration: config,
		l:             log.Logger(log.LOG_MAILDIR),
	}, nil
}

// Keys lists the keys of all messages in folder, sorted. Messages still in
// new/ are moved to cur/ first, as any mail client does on opening a folder.
// A read-only store lists them where they are.
func (s *Store) Keys(folder string) ([]string, error) {
	dir := gomaildir.Dir(folder)
	if err := checkFolder(folder); err != nil {
		return nil, err
	}

	keys := []string{}
	if s.configuration.ReadOnly {
		newKeys, err := listNew(folder)
		if err != nil {
			return nil, fmt.Errorf("could not list new messages in %s: %w", folder, err)
		}
		keys = append(keys, newKeys...)
	} else {
		unseen, err := dir.Unseen()
		if err != nil {
			return nil, fmt.Errorf("could not move new messages in %s: %w", folder, err)
		}
		if len(unseen) > 0 {
			s.l.WithFields(logrus.Fields{"folder": folder, "new": len(unseen)}).Debug("Moved new messages to cur")
		}
	}

	err := dir.Walk(func(msg *gomaildir.Message) error {
		keys = append(keys, msg.Key())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not list messages in %s: %w", folder, err)
	}
	sort.Strings(keys)

	s.l.WithFields(logrus.Fields{"folder": folder, "messages": len(keys)}).Debug("Listed folder")
	return keys, nil
}

func (s *Store) Fetch(folder string, key string) ([]byte, error) {
	msg, err := gomaildir.Dir(folder).MessageByKey(key)
	if err != nil && s.configuration.ReadOnly {
		if filename, ok := findNew(folder, key); ok {
			return os.ReadFile(filename)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("could not find message %s in %s: %w", key, folder, err)
	}

	r, err := msg.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open message %s: %w", key, err)
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read message %s: %w", key, err)
	}
	return raw, nil
}

func (s *Store) Delete(folder string, key string) error {
	if s.configuration.ReadOnly {
		return fmt.Errorf("could not delete message %s: %w", key, ErrReadOnly)
	}

	msg, err := gomaildir.Dir(folder).MessageByKey(key)
	if err != nil {
		return fmt.Errorf("could not find message %s in %s: %w", key, folder, err)
	}

	err = msg.Remove()
	if err != nil {
		return fmt.Errorf("could not delete message %s: %w", key, err)
	}

	s.l.WithFields(logrus.Fields{"folder": folder, "key": key}).Debug("Deleted message")
	return nil
}

// listNew returns the keys of the messages in new/. go-maildir only
// addresses cur/, so new/ is read directly.
func listNew(folder string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(folder, "new"))
	if err != nil {
		return nil, err
	}

	keys := []string{}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		key, _, _ := strings.Cut(e.Name(), ":")
		keys = append(keys, key)
	}
	return keys, nil
}

func findNew(folder string, key string) (string, bool) {
	entries, err := os.ReadDir(filepath.Join(folder, "new"))
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.Name() == key || strings.HasPrefix(e.Name(), key+":") {
			return filepath.Join(folder, "new", e.Name()), true
		}
	}
	return "", false
}

func checkFolder(folder string) error {
	for _, sub := range []string{"cur", "new"} {
		info, err := os.Stat(filepath.Join(folder, sub))
		if err != nil {
			return fmt.Errorf("%s is not a maildir: %w", folder, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a maildir: %s is not a directory", folder, sub)
		}
	}
	return nil
}
