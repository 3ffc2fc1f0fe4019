package memfile

import (
	"strings"

	"github.com/spf13/afero"
)

// ReshapeConcat packs every groupSize consecutive lines into one line,
// trimming each and joining without a separator. A short final group is
// kept.
func ReshapeConcat(lines []string, groupSize int) []string {
	if groupSize < 1 {
		groupSize = 1
	}
	out := make([]string, 0, (len(lines)+groupSize-1)/groupSize)
	for i := 0; i < len(lines); i += groupSize {
		end := min(i+groupSize, len(lines))
		var b strings.Builder
		for _, l := range lines[i:end] {
			b.WriteString(strings.TrimSpace(l))
		}
		out = append(out, b.String())
	}
	return out
}

// CleanLines trims every line and drops the blank ones.
func CleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if s := strings.TrimSpace(l); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ReshapeFile rewrites path in place with ReshapeConcat applied. It returns
// the new line count. Running it twice on the same file packs it twice.
func ReshapeFile(fs afero.Fs, path string, groupSize int) (int, error) {
	lines, err := ReadLines(fs, path)
	if err != nil {
		return 0, err
	}
	out := ReshapeConcat(lines, groupSize)
	if err := writeJoined(fs, path, out); err != nil {
		return 0, err
	}
	return len(out), nil
}

// CleanFile rewrites path in place with CleanLines applied.
func CleanFile(fs afero.Fs, path string) (int, error) {
	lines, err := ReadLines(fs, path)
	if err != nil {
		return 0, err
	}
	out := CleanLines(lines)
	if err := writeJoined(fs, path, out); err != nil {
		return 0, err
	}
	return len(out), nil
}
