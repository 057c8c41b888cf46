package helpers

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptForString asks for one line of input, falling back to fallback when
// the answer is blank.
func PromptForString(out io.Writer, reader *bufio.Reader, label, fallback string) string {
	if fallback != "" {
		fmt.Fprintf(out, "%s (default: %s): ", label, fallback)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}

	line, _ := reader.ReadString('\n')
	if answer := strings.TrimSpace(line); answer != "" {
		return answer
	}
	return fallback
}

// IsAffirmativeResponse accepts y and yes in any case.
func IsAffirmativeResponse(response string) bool {
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true
	}
	return false
}

// PrintWarnings writes each non-blank message on its own Warning: line.
func PrintWarnings(out io.Writer, warnings []string) {
	for _, w := range warnings {
		if w = strings.TrimSpace(w); w != "" {
			fmt.Fprintln(out, "Warning: "+w)
		}
	}
}
