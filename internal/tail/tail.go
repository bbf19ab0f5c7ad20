// Package tail reads the trailing lines of a file without loading the whole
// file into memory.
package tail

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

const chunkSize = 8192

// LastLines returns the last n lines of the file at path, joined with
// newlines. A trailing newline in the file does not count as an extra line.
func LastLines(path string, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	size := info.Size()
	if size == 0 {
		return "", nil
	}

	var (
		buf    []byte
		offset = size
	)
	for offset > 0 {
		step := int64(chunkSize)
		if offset < step {
			step = offset
		}
		offset -= step

		chunk := make([]byte, step)
		if _, err := f.ReadAt(chunk, offset); err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		buf = append(chunk, buf...)

		if bytes.Count(bytes.TrimRight(buf, "\n"), []byte{'\n'}) >= n {
			break
		}
	}

	lines := strings.Split(strings.TrimRight(string(buf), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n"), nil
}
