// Package prompt provides the interactive input capability used by the
// bootstrap pipeline. Prompts are an injected dependency so every branch
// of the pipeline can be driven deterministically in tests.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Answer classifies a parsed yes/no reply.
type Answer int

const (
	// AnswerUnknown means the input matched neither yes nor no.
	AnswerUnknown Answer = iota
	// AnswerYes is an affirmative reply.
	AnswerYes
	// AnswerNo is a negative reply.
	AnswerNo
)

// Prompter asks the operator yes/no questions.
type Prompter interface {
	// Confirm asks a yes/no question once and returns the reply, falling
	// back to def when the operator just presses enter.
	Confirm(question string, def bool) (bool, error)

	// ConfirmLoop asks a yes/no question and re-asks indefinitely until
	// the reply is recognizable as yes or no.
	ConfirmLoop(question string) (bool, error)
}

// ParseAnswer interprets a reply as yes or no. Matching is
// case-insensitive and accepts distinguishing prefixes of English
// "yes"/"no" and Spanish "sí"/"no".
func ParseAnswer(input string) Answer {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "y", "ye", "yes", "s", "si", "sí":
		return AnswerYes
	case "n", "no":
		return AnswerNo
	}
	return AnswerUnknown
}

// IO is a Prompter reading replies line by line from an input stream,
// normally standard input.
type IO struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewIO creates a stream-backed prompter.
func NewIO(in io.Reader, out io.Writer) *IO {
	return &IO{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Confirm implements Prompter.
func (p *IO) Confirm(question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	fmt.Fprintf(p.out, "%s %s ", question, hint)

	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("read answer: %w", err)
	}

	switch ParseAnswer(line) {
	case AnswerYes:
		return true, nil
	case AnswerNo:
		return false, nil
	default:
		return def, nil
	}
}

// ConfirmLoop implements Prompter. Unrecognized input re-prompts without
// side effect; the loop only ends on a recognizable reply or a read error.
func (p *IO) ConfirmLoop(question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s [yes/no] ", question)

		line, err := p.reader.ReadString('\n')
		if err != nil && line == "" {
			return false, fmt.Errorf("read answer: %w", err)
		}

		switch ParseAnswer(line) {
		case AnswerYes:
			return true, nil
		case AnswerNo:
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer yes or no.")
	}
}

// Assume is a Prompter that answers every question with a fixed reply,
// used for the --yes flag.
type Assume bool

// Confirm implements Prompter.
func (a Assume) Confirm(string, bool) (bool, error) { return bool(a), nil }

// ConfirmLoop implements Prompter.
func (a Assume) ConfirmLoop(string) (bool, error) { return bool(a), nil }
