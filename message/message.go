// SPDX-License-Identifier: GPL-3.0-or-later
package message

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	stdmail "net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/CrawX/go-save-message/domain"

	"github.com/araddon/dateparse"
	gomessage "github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/k3a/html2text"
)

// Part is a decoded leaf of the MIME tree.
type Part struct {
	mediaType  string
	filename   string
	attachment bool
	payload    []byte
}

func (p *Part) MediaType() string {
	return p.mediaType
}

func (p *Part) Filename() string {
	return p.filename
}

func (p *Part) IsAttachment() bool {
	return p.attachment
}

func (p *Part) Payload() []byte {
	return p.payload
}

// Message is a fully read message. It implements domain.Message.
type Message struct {
	raw    []byte
	header mail.Header
	parts  []domain.Part
}

// Parse reads a whole RFC 5322 message including all parts. Unknown
// charsets are tolerated, the affected parts keep their raw bytes.
func Parse(raw []byte) (*Message, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && !gomessage.IsUnknownCharset(err) {
		return nil, fmt.Errorf("could not parse mail: %w", err)
	}
	defer mr.Close()

	m := &Message{
		raw:    raw,
		header: mr.Header,
		parts:  []domain.Part{},
	}

	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !(gomessage.IsUnknownCharset(err) && p != nil) {
			return nil, fmt.Errorf("could not read mail part: %w", err)
		}

		part, err := readPart(p)
		if err != nil {
			return nil, err
		}
		m.parts = append(m.parts, part)
	}

	return m, nil
}

func readPart(p *mail.Part) (*Part, error) {
	part := &Part{}

	switch h := p.Header.(type) {
	case *mail.InlineHeader:
		mediaType, params, _ := h.ContentType()
		part.mediaType = mediaType
		part.filename = params["name"]
	case *mail.AttachmentHeader:
		mediaType, _, _ := h.ContentType()
		part.mediaType = mediaType
		part.filename, _ = h.Filename()
		part.attachment = true
	}
	if len(part.mediaType) == 0 {
		part.mediaType = "text/plain"
	}
	part.mediaType = strings.ToLower(part.mediaType)
	if len(part.filename) > 0 {
		part.attachment = true
	}

	payload, err := io.ReadAll(p.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read body of %s part: %w", part.mediaType, err)
	}
	part.payload = payload

	return part, nil
}

func (m *Message) Header(name string) (string, bool) {
	if !m.header.Has(name) {
		return "", false
	}

	value, err := m.header.Text(name)
	if err != nil {
		// undecodable words, fall back to the raw value
		value = m.header.Get(name)
	}
	return value, true
}

func (m *Message) Parts() []domain.Part {
	return m.parts
}

func (m *Message) Raw() []byte {
	return m.raw
}

func (m *Message) Subject() string {
	subject, _ := m.Header("Subject")
	return subject
}

// Date is the instant of the Date header, ok is false when it is missing.
func (m *Message) Date() (date time.Time, ok bool, err error) {
	value, ok := m.Header("Date")
	if !ok || len(strings.TrimSpace(value)) == 0 {
		return time.Time{}, false, nil
	}
	date, err = ParseDate(value)
	if err != nil {
		return time.Time{}, false, err
	}
	return date, true, nil
}

// Address returns display name and address of the first entry of an
// address header. Unparseable values are returned as the name.
func (m *Message) Address(header string) (name string, address string) {
	value, ok := m.Header(header)
	if !ok {
		return "", ""
	}

	addresses, err := mail.ParseAddressList(value)
	if err != nil || len(addresses) == 0 {
		return strings.TrimSpace(value), ""
	}
	return addresses[0].Name, addresses[0].Address
}

// IdHash identifies a message independent of its maildir key and flags.
func (m *Message) IdHash() string {
	messageIdHeader := m.header.Values("Message-Id")
	receivedHeader := m.header.Values("Received")
	if len(receivedHeader) == 0 && len(messageIdHeader) == 0 {
		return hash([][]string{{string(m.raw)}})
	}

	return hash([][]string{messageIdHeader, receivedHeader})
}

// Preview is the first n characters of the body as single line plain text.
func (m *Message) Preview(n int) string {
	part := BodyPart(m)
	if part == nil {
		return ""
	}

	text := string(part.Payload())
	if part.MediaType() == "text/html" {
		text = html2text.HTML2Text(text)
	}
	text = strings.Join(strings.Fields(text), " ")

	if utf8.RuneCountInString(text) > n {
		text = string([]rune(text)[:n]) + "..."
	}
	return text
}

// BodyPart returns the first inline text/html part, then the first inline
// text/plain part, or nil.
func BodyPart(msg domain.Message) domain.Part {
	for _, mediaType := range []string{"text/html", "text/plain"} {
		for _, p := range msg.Parts() {
			if !p.IsAttachment() && p.MediaType() == mediaType {
				return p
			}
		}
	}
	return nil
}

// ParseDate reads an RFC 5322 date, falling back to a lenient parser for
// the many malformed variants found in the wild.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	date, err := stdmail.ParseDate(value)
	if err == nil {
		return date, nil
	}

	date, lenientErr := dateparse.ParseAny(value)
	if lenientErr != nil {
		return time.Time{}, fmt.Errorf("could not parse date %q: %w", value, err)
	}
	return date, nil
}

func ShortSubject(subject string) string {
	if utf8.RuneCountInString(subject) > 30 {
		subject = string([]rune(subject)[:30]) + "..."
	}
	return subject
}

func hash(input [][]string) string {
	sha := sha256.New()
	for _, i := range input {
		for _, ii := range i {
			sha.Write([]byte(ii))
		}
	}

	return fmt.Sprintf("%x", sha.Sum(nil))
}
