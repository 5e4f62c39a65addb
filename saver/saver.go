// SPDX-License-Identifier: GPL-3.0-or-later
package saver

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/log"
	"github.com/CrawX/go-save-message/matcher"
	"github.com/CrawX/go-save-message/message"
	"github.com/CrawX/go-save-message/settings"

	"github.com/sirupsen/logrus"
)

// CommandRunner runs a shell command with additional environment variables.
type CommandRunner func(command string, env []string) error

// MessageSaver writes messages and their parts to disk.
type MessageSaver struct {
	config *configuration
	l      *logrus.Logger
}

// file is one planned output of a save.
type file struct {
	name string
	data []byte
	// set for the html body when a PDF should be rendered from it
	pdf bool
}

func NewMessageSaver(configFuncs ...ConfigFunc) (*MessageSaver, error) {
	c := &configuration{
		Runner: runShell,
	}
	for _, cf := range configFuncs {
		err := cf(c)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}

	return &MessageSaver{
		config: c,
		l:      log.Logger(log.LOG_SAVER),
	}, nil
}

// Save writes msg according to ss and returns the paths of all written files.
// The files go to <path>/<message name>/, or directly to <path> when
// flattening is enabled and a single file is written.
func (s *MessageSaver) Save(msg *message.Message, ss *settings.RuleSaveSettings) ([]string, error) {
	if ss == nil {
		return nil, fmt.Errorf("no save settings")
	}
	if len(ss.Path) == 0 {
		return nil, fmt.Errorf("no save path set")
	}
	info, err := os.Stat(ss.Path)
	if err != nil {
		return nil, fmt.Errorf("save path %s does not exist: %w", ss.Path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("save path %s is not a directory", ss.Path)
	}

	name := MessageName(msg, ss.MessageName)
	files, err := s.plan(msg, name, ss)
	if err != nil {
		return nil, err
	}

	pdfs := 0
	for _, f := range files {
		if f.pdf {
			pdfs++
		}
	}

	dest := filepath.Join(ss.Path, name)
	if ss.FlattenSingleFileMessages && len(files)+pdfs == 1 {
		dest = ss.Path
	}

	logger := s.l.WithFields(logrus.Fields{
		"subject": message.ShortSubject(msg.Subject()),
		"dest":    dest,
		"files":   len(files) + pdfs,
	})
	if len(files) == 0 {
		logger.Info("Nothing to save")
		return []string{}, nil
	}

	if s.config.DryRun {
		logger.Info("Would save message (dry run)")
		saved := []string{}
		for _, f := range files {
			saved = append(saved, filepath.Join(dest, f.name))
			if f.pdf {
				saved = append(saved, filepath.Join(dest, pdfName(f.name)))
			}
		}
		return saved, nil
	}

	err = os.MkdirAll(dest, 0o755)
	if err != nil {
		return nil, fmt.Errorf("could not create %s: %w", dest, err)
	}

	saved := []string{}
	reserved := map[string]bool{}
	for _, f := range files {
		path := uniquePath(filepath.Join(dest, f.name), reserved)
		reserved[path] = true

		err = os.WriteFile(path, f.data, 0o644)
		if err != nil {
			return saved, fmt.Errorf("could not write %s: %w", path, err)
		}
		saved = append(saved, path)
		s.l.WithField("file", path).Debug("Saved file")

		if f.pdf {
			out := uniquePath(pdfName(path), reserved)
			reserved[out] = true

			err = s.config.Runner(*ss.HtmlPdfTransformCommand, []string{"in=" + path, "out=" + out})
			if err != nil {
				return saved, fmt.Errorf("could not convert %s to pdf: %w", path, err)
			}
			saved = append(saved, out)
			s.l.WithField("file", out).Debug("Converted body to pdf")
		}
	}

	logger.Info("Saved message")
	return saved, nil
}

func (s *MessageSaver) plan(msg *message.Message, name string, ss *settings.RuleSaveSettings) ([]file, error) {
	files := []file{}

	body := message.BodyPart(msg)
	if ss.SaveBody && body != nil {
		files = append(files, file{
			name: name + ExtensionFor(body.MediaType()),
			data: withPreamble(msg, body.Payload()),
			pdf:  ss.HtmlPdfTransformCommand != nil && body.MediaType() == "text/html",
		})
	}

	if ss.SaveAttachments != nil {
		pattern, err := matcher.NewPattern(*ss.SaveAttachments)
		if err != nil {
			return nil, fmt.Errorf("save_attachments: %w", err)
		}

		for i, part := range msg.Parts() {
			if !part.IsAttachment() {
				continue
			}
			filename := PartFilename(name, part, i+1)
			if !matchesAttachment(pattern, part, filename) {
				s.l.WithField("file", filename).Trace("Attachment not selected")
				continue
			}
			files = append(files, file{name: filename, data: part.Payload()})
		}
	}

	if ss.SaveEml {
		files = append(files, file{name: name + ".eml", data: msg.Raw()})
	}

	return files, nil
}

// matchesAttachment tests the original filename, unnamed parts are tested
// by their generated name.
func matchesAttachment(p *matcher.Pattern, part domain.Part, generated string) bool {
	if len(part.Filename()) > 0 {
		return p.MatchString(part.Filename())
	}
	return p.MatchString(generated)
}

func withPreamble(msg *message.Message, payload []byte) []byte {
	buf := &bytes.Buffer{}
	for _, h := range []string{"Date", "From", "To", "Subject"} {
		value, _ := msg.Header(h)
		fmt.Fprintf(buf, "%s: %s\n", h, value)
	}
	buf.WriteString("\n")
	buf.Write(payload)
	return buf.Bytes()
}

func pdfName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
}

func runShell(command string, env []string) error {
	cmd := exec.Command("sh", "-c", command)
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
