// Package interactive provides line-oriented prompts for the terminal
// session.
package interactive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrNotANumber is returned by Int for input that is not an integer.
var ErrNotANumber = errors.New("not a number")

// Response represents the user's answer to a yes/no question.
type Response int

const (
	ResponseYes  Response = iota // Proceed
	ResponseNo                   // Decline
	ResponseQuit                 // Abort, also returned at end of input
)

// Prompter reads answers from a line-oriented input.
type Prompter struct {
	in      io.Reader
	out     io.Writer
	scanner *bufio.Scanner
}

// NewPrompterWithIO creates a prompter reading from in and writing to out.
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:      in,
		out:     out,
		scanner: bufio.NewScanner(in),
	}
}

// fder is implemented by *os.File.
type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether rw is a file attached to a terminal (TTY).
// Buffers, pipes and other non-file streams never are.
func IsTerminal(rw any) bool {
	f, ok := rw.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the column width of the terminal w writes to, or
// fallback when w is not a terminal.
func TerminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(fder)
	if !ok {
		return fallback
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		return width
	}
	return fallback
}

// Line displays prompt and returns the next input line with surrounding
// whitespace removed. It returns io.EOF once input is exhausted.
func (p *Prompter) Line(prompt string) (string, error) {
	if prompt != "" {
		_, _ = fmt.Fprint(p.out, prompt)
	}
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// Int displays prompt and parses the answer as an integer.
func (p *Prompter) Int(prompt string) (int, error) {
	line, err := p.Line(prompt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, line)
	}
	return n, nil
}

// Confirm asks a yes/no question. Anything other than y/yes or q/quit is
// treated as no.
func (p *Prompter) Confirm(format string, args ...any) Response {
	_, _ = fmt.Fprintf(p.out, format, args...)
	_, _ = fmt.Fprint(p.out, " [y/n] ")

	line, err := p.Line("")
	if err != nil {
		return ResponseQuit
	}

	switch strings.ToLower(line) {
	case "y", "yes":
		return ResponseYes
	case "q", "quit":
		return ResponseQuit
	default:
		return ResponseNo
	}
}
