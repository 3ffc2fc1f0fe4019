// Package inputgen builds the input-vector memory image fed to the network
// from a free-form blob of numbers.
package inputgen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/23skdu/longbow-memprep/internal/fixedpoint"
	"github.com/23skdu/longbow-memprep/internal/logger"
	"github.com/23skdu/longbow-memprep/internal/metrics"
	"github.com/spf13/afero"
)

// Stats describes one generated file.
type Stats struct {
	Tokens  int
	Clamped int
}

// Tokenize splits on runs of Unicode whitespace and commas, dropping empty
// tokens.
func Tokenize(blob string) []string {
	return strings.FieldsFunc(blob, isSeparator)
}

func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// EncodeTokens saturates every token to the format range, then quantizes it.
// A token that is not a number aborts the whole batch.
func EncodeTokens(tokens []string, f fixedpoint.Format) ([]string, Stats, error) {
	st := Stats{Tokens: len(tokens)}
	words := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, st, fmt.Errorf("token %d %q: %w", i, tok, err)
		}
		c := fixedpoint.Clamp(v, f)
		if c != v {
			st.Clamped++
			metrics.RecordClamped()
			logger.Log.Debug("clamped input token", "index", i, "value", v, "clamped", c)
		}
		words = append(words, fixedpoint.Word(c, f))
	}
	return words, st, nil
}

type Generator struct {
	fs     afero.Fs
	format fixedpoint.Format
}

func NewGenerator(fs afero.Fs, format fixedpoint.Format) *Generator {
	return &Generator{fs: fs, format: format}
}

// GenerateFile reads the blob at inputPath and writes one word per token to
// outputPath, in token order.
func (g *Generator) GenerateFile(inputPath, outputPath string) (Stats, error) {
	data, err := afero.ReadFile(g.fs, inputPath)
	if err != nil {
		return Stats{}, fmt.Errorf("read %s: %w", inputPath, err)
	}

	words, st, err := EncodeTokens(Tokenize(string(data)), g.format)
	if err != nil {
		return st, fmt.Errorf("%s: %w", inputPath, err)
	}

	var b strings.Builder
	for _, w := range words {
		b.WriteString(w)
		b.WriteByte('\n')
	}
	if err := afero.WriteFile(g.fs, outputPath, []byte(b.String()), 0o644); err != nil {
		return st, fmt.Errorf("write %s: %w", outputPath, err)
	}

	metrics.RecordWords(len(words))
	logger.Log.Info("generated input memory", "input", inputPath, "output", outputPath,
		"tokens", st.Tokens, "clamped", st.Clamped)
	return st, nil
}
