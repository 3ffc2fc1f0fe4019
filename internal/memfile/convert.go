package memfile

import (
	"math"
	"strconv"
	"strings"

	"github.com/23skdu/longbow-memprep/internal/fixedpoint"
	"github.com/23skdu/longbow-memprep/internal/logger"
	"github.com/23skdu/longbow-memprep/internal/metrics"
	"github.com/spf13/afero"
)

// Result summarizes one converted file.
type Result struct {
	Written int
	Skipped int
	// Wrapped counts values outside the format range. They are still
	// written, masked to the word width.
	Wrapped int
}

// Converter turns text files of one real per line into .mem files.
type Converter struct {
	fs     afero.Fs
	format fixedpoint.Format
}

func NewConverter(fs afero.Fs, format fixedpoint.Format) *Converter {
	return &Converter{fs: fs, format: format}
}

// ConvertFile quantizes every parsable line of inputPath and rewrites
// outputPath with one hex word per line. Unparsable lines are logged and
// skipped; values are not clamped.
func (c *Converter) ConvertFile(inputPath, outputPath string) (Result, error) {
	var res Result

	lines, err := ReadLines(c.fs, inputPath)
	if err != nil {
		return res, err
	}

	words := make([]string, 0, len(lines))
	for _, line := range lines {
		s := strings.TrimSpace(line)
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			logger.Log.Warn("skipping invalid line", "file", inputPath, "line", s)
			metrics.RecordSkippedLine(inputPath)
			res.Skipped++
			continue
		}

		if fixedpoint.Overflows(v, c.format) {
			logger.Log.Warn("value outside fixed-point range, word wraps",
				"file", inputPath, "value", v, "format", c.format.String())
			metrics.RecordWrapped()
			res.Wrapped++
		}
		words = append(words, fixedpoint.Word(v, c.format))
	}

	if err := writeWords(c.fs, outputPath, words); err != nil {
		return res, err
	}
	res.Written = len(words)
	metrics.RecordWords(res.Written)
	return res, nil
}
