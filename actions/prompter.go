// SPDX-License-Identifier: GPL-3.0-or-later
package actions

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ConfirmWord must be typed exactly to confirm a question.
const ConfirmWord = "YES"

// LinePrompter asks on out and reads the answer as one line from in.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *LinePrompter) Confirm(question string) (bool, error) {
	_, err := fmt.Fprintf(p.out, "%s (type %s to proceed) ", question, ConfirmWord)
	if err != nil {
		return false, fmt.Errorf("could not write prompt: %w", err)
	}

	answer, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(answer) > 0) {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("could not read answer: %w", err)
	}

	return strings.TrimSpace(answer) == ConfirmWord, nil
}
