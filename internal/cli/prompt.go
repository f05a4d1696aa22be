// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - Interactive input for the console.
//
// Line input goes through liner for editing and in-memory history.
// Passwords are read with term.ReadPassword so they never echo; the
// history deliberately never sees them.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrAborted is returned when the operator cancels a prompt with
// Ctrl-C or closes stdin.
var ErrAborted = errors.New("prompt aborted")

// Prompter reads interactive input with line editing support.
type Prompter struct {
	line   *liner.State
	reader *bufio.Reader
}

// NewPrompter creates a Prompter. Close must be called to restore the
// terminal state.
func NewPrompter() *Prompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &Prompter{
		line:   line,
		reader: bufio.NewReader(os.Stdin),
	}
}

// Close restores the terminal state.
func (p *Prompter) Close() {
	p.line.Close()
}

// ReadLine reads one line of input with the given prompt. Leading and
// trailing whitespace is trimmed. Usernames and menu commands stay in
// the in-memory history for arrow-key recall.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	input, err := p.line.Prompt(prompt)
	if err != nil {
		if err == liner.ErrPromptAborted || err == io.EOF {
			return "", ErrAborted
		}
		return "", err
	}
	input = strings.TrimSpace(input)
	if input != "" {
		p.line.AppendHistory(input)
	}
	return input, nil
}

// ReadSecret reads a password without echoing it. On a non-TTY stdin
// it falls back to a plain line read so scripted input still works.
func (p *Prompter) ReadSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	if !IsTTY() {
		line, err := p.reader.ReadString('\n')
		if err != nil && line == "" {
			return "", ErrAborted
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", ErrAborted
	}
	return string(secret), nil
}

// Confirm asks a yes/no question and returns the answer. An empty
// response picks the default.
func (p *Prompter) Confirm(prompt string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	answer, err := p.ReadLine(fmt.Sprintf("%s %s ", prompt, hint))
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
