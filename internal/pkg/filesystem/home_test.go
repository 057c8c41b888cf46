package filesystem

import (
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/tmp/analyst")

	tests := []struct {
		in   string
		want string
	}{
		{"~/.budgetq/history.db", filepath.Join("/tmp/analyst", ".budgetq/history.db")},
		{"~", "/tmp/analyst"},
		{"/var/lib/budgetq.db", "/var/lib/budgetq.db"},
		{"relative.db", "relative.db"},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
