package inputgen

import (
	"testing"

	"github.com/23skdu/longbow-memprep/internal/fixedpoint"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want []string
	}{
		{"commas", "1, -8, 8", []string{"1", "-8", "8"}},
		{"mixed", "  0.5\n\t-0.25,,\r\n1e-3 , 2  ", []string{"0.5", "-0.25", "1e-3", "2"}},
		{"vertical tab and nbsp", "1\v2\u00a03", []string{"1", "2", "3"}},
		{"form feed and ideographic space", "4\f5\u30006,\u20037", []string{"4", "5", "6", "7"}},
		{"empty", "", nil},
		{"only separators", " ,\n,\v ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.blob)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeTokensClamps(t *testing.T) {
	words, st, err := EncodeTokens([]string{"1", "-8", "8"}, fixedpoint.Q4_12)
	require.NoError(t, err)
	assert.Equal(t, []string{"1000", "8000", "7FFF"}, words)
	assert.Equal(t, Stats{Tokens: 3, Clamped: 1}, st)
}

func TestEncodeTokensSaturatesBothEnds(t *testing.T) {
	words, st, err := EncodeTokens([]string{"-1000", "1000", "-8.0001"}, fixedpoint.Q4_12)
	require.NoError(t, err)
	assert.Equal(t, []string{"8000", "7FFF", "8000"}, words)
	assert.Equal(t, 3, st.Clamped)
}

func TestEncodeTokensRejectsGarbage(t *testing.T) {
	_, _, err := EncodeTokens([]string{"1", "x2"}, fixedpoint.Q4_12)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"x2"`)
}

func TestGenerateFileUnicodeSeparators(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "in.txt", []byte("1\v-1\u00a00.5"), 0o644))

	st, err := NewGenerator(fs, fixedpoint.Q4_12).GenerateFile("in.txt", "out.mem")
	require.NoError(t, err)
	assert.Equal(t, 3, st.Tokens)

	data, err := afero.ReadFile(fs, "out.mem")
	require.NoError(t, err)
	assert.Equal(t, "1000\nF000\n0800\n", string(data))
}

func TestGenerateFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "in.txt", []byte("1, -8, 8\n0.5 -0.5\n"), 0o644))

	st, err := NewGenerator(fs, fixedpoint.Q4_12).GenerateFile("in.txt", "out.mem")
	require.NoError(t, err)
	assert.Equal(t, 5, st.Tokens)
	assert.Equal(t, 1, st.Clamped)

	data, err := afero.ReadFile(fs, "out.mem")
	require.NoError(t, err)
	assert.Equal(t, "1000\n8000\n7FFF\n0800\nF800\n", string(data))
}

func TestGenerateFileErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := NewGenerator(fs, fixedpoint.Q4_12)

	_, err := g.GenerateFile("missing.txt", "out.mem")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "bad.txt", []byte("1, two, 3"), 0o644))
	_, err = g.GenerateFile("bad.txt", "out.mem")
	assert.Error(t, err)

	exists, err := afero.Exists(fs, "out.mem")
	require.NoError(t, err)
	assert.False(t, exists)
}
