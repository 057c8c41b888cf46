package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/mattn/go-isatty"
)

// Spinner animates a status line on stderr while a query is pending.
type Spinner struct {
	style   spinner.Spinner
	writer  io.Writer
	message string
}

// NewSpinner uses the same frames as the interactive view.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{style: spinner.MiniDot, writer: w, message: message}
}

// Until blocks until done is closed. Nothing is drawn unless the writer is a
// terminal.
func (s *Spinner) Until(done <-chan struct{}) {
	if !isTerminal(s.writer) {
		<-done
		return
	}

	ticker := time.NewTicker(s.style.FPS)
	defer ticker.Stop()
	for i := 0; ; i++ {
		fmt.Fprintf(s.writer, "\r%s %s", s.style.Frames[i%len(s.style.Frames)], s.message)
		select {
		case <-done:
			fmt.Fprint(s.writer, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
