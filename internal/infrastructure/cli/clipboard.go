package cli

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/doeshing/budgetq/internal/ports"
)

// Clipboard implements ports.Clipboard by piping into pbcopy, xclip or wl-copy.
type Clipboard struct {
	goos     string
	lookPath func(file string) (string, error)
	run      func(name string, args []string, input string) error
}

// NewClipboard builds the clipboard helper for the running platform.
func NewClipboard() *Clipboard {
	return &Clipboard{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run:      runWithInput,
	}
}

func runWithInput(name string, args []string, input string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(input)
	return cmd.Run()
}

// Enabled reports whether the platform has a known clipboard tool.
func (c *Clipboard) Enabled() bool {
	switch c.goos {
	case "darwin", "linux":
		return true
	default:
		return false
	}
}

// Copy copies text to the system clipboard.
func (c *Clipboard) Copy(text string) error {
	if !c.Enabled() {
		return fmt.Errorf("clipboard not supported on %s", c.goos)
	}
	name, args, err := c.tool()
	if err != nil {
		return err
	}
	if err := c.run(name, args, text); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (c *Clipboard) tool() (string, []string, error) {
	if c.goos == "darwin" {
		return "pbcopy", nil, nil
	}
	if _, err := c.lookPath("xclip"); err == nil {
		return "xclip", []string{"-selection", "clipboard"}, nil
	}
	if _, err := c.lookPath("wl-copy"); err == nil {
		return "wl-copy", nil, nil
	}
	return "", nil, fmt.Errorf("clipboard utilities not found (install xclip or wl-clipboard)")
}

var _ ports.Clipboard = (*Clipboard)(nil)
