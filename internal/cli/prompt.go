package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/validation"
)

// prompter reads answers from an input stream. Passwords are read without
// echo when the input is a terminal.
type prompter struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok {
		p.fd = int(f.Fd())
		p.isTerm = term.IsTerminal(p.fd)
	}
	return p
}

// line asks for a value, returning def when the answer is empty.
func (p *prompter) line(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	input, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return def, nil
	}
	return input, nil
}

// validated asks until v accepts the answer.
func (p *prompter) validated(label string, v validation.Validator) (string, error) {
	for {
		input, err := p.line(label, "")
		if err != nil {
			return "", err
		}
		if err := v.Validate(input); err != nil {
			fmt.Fprintf(p.out, "  Error: %v\n", err)
			continue
		}
		return input, nil
	}
}

// password reads a secret without echo on terminals.
func (p *prompter) password(label string) (string, error) {
	if !p.isTerm {
		return p.line(label, "")
	}
	fmt.Fprintf(p.out, "%s: ", label)
	raw, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

// confirm asks a yes/no question. Anything but y/yes is no.
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.line(question+" [y/N]", "")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
