package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoInput is returned when input ends before an answer is given
var ErrNoInput = errors.New("no input: stdin closed")

// Prompter reads answers line by line. Reads block until a line arrives and
// cannot be interrupted.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Text asks for a line of text. An empty answer takes suggestion.
func (p *Prompter) Text(ctx context.Context, label, suggestion string) (string, error) {
	answer, err := p.ask(ctx, renderLabel(label, suggestion))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return suggestion, nil
	}
	return answer, nil
}

// Path asks for a file path. Surrounding quotes, as left by drag-and-drop in
// most terminals, are stripped.
func (p *Prompter) Path(ctx context.Context, label string) (string, error) {
	answer, err := p.ask(ctx, renderLabel(label, ""))
	if err != nil {
		return "", err
	}
	return strings.Trim(answer, `"'`), nil
}

// Confirm asks a yes/no question
func (p *Prompter) Confirm(ctx context.Context, label string) (bool, error) {
	answer, err := p.ask(ctx, renderLabel(label+" (y/n)", ""))
	if err != nil {
		return false, err
	}
	return ParseYes(answer), nil
}

func (p *Prompter) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, prompt)

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ParseYes reports whether s is an affirmative answer: y, yes, true or 1
func ParseYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1":
		return true
	default:
		return false
	}
}
