package auth

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPrompt asks for the key on a terminal without echoing it.
type TerminalPrompt struct {
	In  *os.File
	Out io.Writer
}

// NewTerminalPrompt prompts on stdin, writing the question to stderr.
func NewTerminalPrompt() TerminalPrompt {
	return TerminalPrompt{In: os.Stdin, Out: os.Stderr}
}

func (p TerminalPrompt) Name() string { return "prompt" }

// APIKey returns ErrNoCredential when the input is not a terminal.
func (p TerminalPrompt) APIKey() (string, error) {
	if p.In == nil || !term.IsTerminal(int(p.In.Fd())) {
		return "", ErrNoCredential
	}
	out := p.Out
	if out == nil {
		out = os.Stderr
	}
	_, _ = fmt.Fprintln(out, "Please provide a SimpleMDM API key")
	_, _ = fmt.Fprint(out, "API key: ")
	b, err := term.ReadPassword(int(p.In.Fd()))
	_, _ = fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read api key: %w", err)
	}
	if k := strings.TrimSpace(string(b)); k != "" {
		return k, nil
	}
	return "", ErrNoCredential
}
