package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestStdLoggerSilentUnlessVerbose(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Info("hidden", map[string]interface{}{"k": 1})
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestStdLoggerFormatsFieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Error("submit failed", errors.New("boom"), map[string]interface{}{"seq": 2, "endpoint": "/query"})
	line := buf.String()
	for _, want := range []string{"[ERROR] submit failed", `error="boom"`, "endpoint=/query seq=2"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}
