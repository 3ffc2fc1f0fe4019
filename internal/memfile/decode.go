package memfile

import (
	"fmt"
	"strings"

	"github.com/23skdu/longbow-memprep/internal/fixedpoint"
	"github.com/spf13/afero"
)

// DecodeFile reads a .mem file back into reals, one slice per line. Packed
// rows produced by ReshapeFile hold several words and are split on the
// word width.
func DecodeFile(fs afero.Fs, path string, format fixedpoint.Format) ([][]float64, error) {
	lines, err := ReadLines(fs, path)
	if err != nil {
		return nil, err
	}

	width := (format.Bits() + 3) / 4
	rows := make([][]float64, 0, len(lines))
	for i, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		if len(s)%width != 0 {
			return nil, fmt.Errorf("%s:%d: row %q is not a multiple of %d hex digits", path, i+1, s, width)
		}
		row := make([]float64, 0, len(s)/width)
		for off := 0; off < len(s); off += width {
			q, err := fixedpoint.DecodeHex(s[off:off+width], format.Bits())
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, i+1, err)
			}
			row = append(row, fixedpoint.ToFloat(q, format))
		}
		rows = append(rows, row)
	}
	return rows, nil
}
