// Package prompt reads credentials and confirmations from the user.
//
// On a terminal it uses liner for line editing and hidden password input.
// Otherwise it reads plain lines, so scripted input works.
package prompt

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

// ErrAborted is returned when the user cancels a prompt with Ctrl-C.
var ErrAborted = errors.New("prompt aborted")

// Prompter asks questions.
type Prompter struct {
	in          io.Reader
	out         io.Writer
	interactive bool
	reader      *bufio.Reader
}

// New returns a Prompter for the process's stdin and stderr.
func New() *Prompter {
	return &Prompter{
		in:          os.Stdin,
		out:         os.Stderr,
		interactive: term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// NewScripted returns a Prompter that reads lines from in and echoes
// prompts to out.
func NewScripted(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Line asks for a single line of text.
func (p *Prompter) Line(label string) (string, error) {
	if p.interactive {
		return p.withLiner(func(s *liner.State) (string, error) {
			return s.Prompt(label)
		})
	}
	return p.readLine(label)
}

// Password asks for a secret without echoing it.
func (p *Prompter) Password(label string) (string, error) {
	if p.interactive {
		return p.withLiner(func(s *liner.State) (string, error) {
			return s.PasswordPrompt(label)
		})
	}
	return p.readLine(label)
}

// Confirm asks a yes/no question. Anything other than y or yes is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Line(question + " [y/N]: ")
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Credentials asks for a username and password. A non-empty username skips
// the first question.
func (p *Prompter) Credentials(username string) (string, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		value, err := p.Line("Username: ")
		if err != nil {
			return "", "", err
		}
		username = strings.TrimSpace(value)
	}
	if username == "" {
		return "", "", fmt.Errorf("username is required")
	}

	password, err := p.Password("Password: ")
	if err != nil {
		return "", "", err
	}
	if password == "" {
		return "", "", fmt.Errorf("password is required")
	}
	return username, password, nil
}

func (p *Prompter) withLiner(fn func(*liner.State) (string, error)) (string, error) {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	value, err := fn(state)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrAborted
	}
	return value, err
}

func (p *Prompter) readLine(label string) (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.in)
	}
	if p.out != nil {
		fmt.Fprint(p.out, label)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
