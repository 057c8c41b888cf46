package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/doeshing/budgetq/internal/infrastructure/cli/helpers"
	"github.com/doeshing/budgetq/internal/ports"
)

// Prompter implements ConfirmationPrompter using stdin/stdout.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter constructs a prompter referencing stdio.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Enabled indicates the prompter is interactive.
func (p *Prompter) Enabled() bool {
	return true
}

// Confirm asks a yes/no question; anything but y/yes declines.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	return helpers.IsAffirmativeResponse(line), nil
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
