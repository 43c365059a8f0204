package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteQueries writes one query per line to path. Nothing is written when
// lines is empty; the returned bool reports whether the file was written.
func WriteQueries(path string, lines []string) (bool, error) {
	if len(lines) == 0 {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("queries: create output dir: %w", err)
	}

	data := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return false, fmt.Errorf("queries: write %q: %w", path, err)
	}
	return true, nil
}
