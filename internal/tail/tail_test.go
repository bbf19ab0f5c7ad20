package tail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing fixture failed: %v", err)
	}
	return path
}

func TestLastLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		n       int
		want    string
	}{
		{"last two of three", "one\ntwo\nthree\n", 2, "two\nthree"},
		{"trailing newline not an extra line", "one\ntwo\n", 5, "one\ntwo"},
		{"exact count", "a\nb\nc", 3, "a\nb\nc"},
		{"single line file", "only", 10, "only"},
		{"zero lines requested", "a\nb", 0, ""},
		{"empty file", "", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, tt.content)
			got, err := LastLines(path, tt.n)
			if err != nil {
				t.Fatalf("LastLines failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("LastLines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLastLinesSpansChunks(t *testing.T) {
	t.Parallel()

	// Build a file well past the read chunk size so the backward scan has
	// to cross chunk boundaries.
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&sb, "this is log line number %06d\n", i)
	}
	path := writeFile(t, sb.String())

	got, err := LastLines(path, 3)
	if err != nil {
		t.Fatalf("LastLines failed: %v", err)
	}

	want := "this is log line number 001997\n" +
		"this is log line number 001998\n" +
		"this is log line number 001999"
	if got != want {
		t.Errorf("LastLines = %q, want %q", got, want)
	}
}

func TestLastLinesMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LastLines(filepath.Join(t.TempDir(), "absent.log"), 3); err == nil {
		t.Error("LastLines on missing file succeeded, want error")
	}
}
