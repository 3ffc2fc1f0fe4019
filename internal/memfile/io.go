// Package memfile reads, converts and reshapes .mem memory-initialization
// files: plain text, one hex word (or packed row of words) per line.
package memfile

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// ReadLines loads the whole file and splits it into lines. A trailing
// newline does not produce an extra empty line.
func ReadLines(fs afero.Fs, path string) ([]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return splitLines(string(data)), nil
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// writeWords writes one newline-terminated line per entry. No entries
// yields an empty file.
func writeWords(fs afero.Fs, path string, words []string) error {
	var b strings.Builder
	for _, w := range words {
		b.WriteString(w)
		b.WriteByte('\n')
	}
	return writeFile(fs, path, b.String())
}

// writeJoined writes lines joined by newlines plus one final newline, so an
// empty slice still produces a single "\n".
func writeJoined(fs afero.Fs, path string, lines []string) error {
	return writeFile(fs, path, strings.Join(lines, "\n")+"\n")
}

func writeFile(fs afero.Fs, path, content string) error {
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
