// SPDX-License-Identifier: GPL-3.0-or-later
package saver

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/CrawX/go-save-message/domain"
	"github.com/CrawX/go-save-message/message"
)

var (
	unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// preferredExtensions wins over the first entry of the system mime table,
// which is alphabetical (".jfif" for image/jpeg).
var preferredExtensions = map[string]string{
	"text/plain":      ".txt",
	"text/html":       ".html",
	"text/calendar":   ".ics",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
	"application/zip": ".zip",
	"message/rfc822":  ".eml",
}

// SanitizeToFilename replaces everything but letters, digits, underscores,
// dashes and whitespace with a space and collapses runs of whitespace.
func SanitizeToFilename(s string) string {
	s = unsafeChars.ReplaceAllString(s, " ")
	return whitespace.ReplaceAllString(s, " ")
}

// MessageName fills the name template of a message. Every placeholder value
// is sanitized, the literal text of the template is kept.
func MessageName(msg *message.Message, template string) string {
	fromName, fromAddr := msg.Address("From")
	toName, toAddr := msg.Address("To")
	if len(fromName) == 0 {
		fromName = fromAddr
	}
	if len(toName) == 0 {
		toName = toAddr
	}

	monthYear, day := "", ""
	date, ok, err := msg.Date()
	if ok && err == nil {
		monthYear = date.Format("Jan06")
		day = date.Format("02 Jan 2006")
	}

	r := strings.NewReplacer(
		"{from_name}", SanitizeToFilename(fromName),
		"{from_addr}", SanitizeToFilename(fromAddr),
		"{to_name}", SanitizeToFilename(toName),
		"{to_addr}", SanitizeToFilename(toAddr),
		"{subject}", SanitizeToFilename(msg.Subject()),
		"{month_year}", monthYear,
		"{date}", day,
	)

	name := strings.TrimSpace(whitespace.ReplaceAllString(r.Replace(template), " "))
	name = strings.ReplaceAll(name, string(os.PathSeparator), " ")
	if len(name) == 0 || name == "." || name == ".." {
		name = "message"
	}
	return name
}

// PartFilename names a part on disk. Named parts keep their extension from
// the first dot on, unnamed ones are called <messageName>-NN with an
// extension guessed from the media type.
func PartFilename(messageName string, part domain.Part, counter int) string {
	filename := filepath.Base(filepath.Clean("/" + part.Filename()))
	if filename == "/" || filename == "." {
		filename = ""
	}

	if len(filename) == 0 {
		return fmt.Sprintf("%s-%02d%s", messageName, counter, ExtensionFor(part.MediaType()))
	}

	if idx := strings.Index(filename, "."); idx >= 0 {
		base := strings.TrimSpace(SanitizeToFilename(filename[:idx]))
		if len(base) == 0 {
			base = messageName
		}
		return base + filename[idx:]
	}

	return strings.TrimSpace(SanitizeToFilename(filename)) + ExtensionFor(part.MediaType())
}

// ExtensionFor guesses a file extension for a media type, ".bin" when
// nothing is known.
func ExtensionFor(mediaType string) string {
	if ext, ok := preferredExtensions[mediaType]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ".bin"
	}
	return exts[0]
}

// uniquePath returns path, or path with a " (n)" suffix before the
// extension when a file of that name already exists or is reserved.
func uniquePath(path string, reserved map[string]bool) string {
	exists := func(p string) bool {
		if reserved[p] {
			return true
		}
		_, err := os.Lstat(p)
		return err == nil
	}

	if !exists(path) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if !exists(candidate) {
			return candidate
		}
	}
}
