package config

import (
	"testing"

	"github.com/23skdu/longbow-memprep/internal/fixedpoint"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Format != fixedpoint.Q4_12 {
		t.Errorf("expected Q4.12, got %v", cfg.Format)
	}
	if cfg.MaxCompareRows != 100 {
		t.Errorf("expected MaxCompareRows 100, got %d", cfg.MaxCompareRows)
	}
	if len(cfg.Gates) != 4 {
		t.Errorf("expected 4 gates, got %v", cfg.Gates)
	}
	if !cfg.Guard {
		t.Error("expected Guard to be enabled")
	}
	if cfg.StateFile != DefaultStateFile {
		t.Errorf("expected StateFile %s, got %s", DefaultStateFile, cfg.StateFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"Q8.8 is still 16 bits", func(c *Config) { c.Format = fixedpoint.Format{IntBits: 8, FracBits: 8} }, false},
		{"not 16 bits", func(c *Config) { c.Format = fixedpoint.Format{IntBits: 4, FracBits: 4} }, true},
		{"no sign bit", func(c *Config) { c.Format = fixedpoint.Format{IntBits: 0, FracBits: 16} }, true},
		{"zero rows", func(c *Config) { c.MaxCompareRows = 0 }, true},
		{"empty gate", func(c *Config) { c.Gates = []string{"input_gate", " "} }, true},
		{"gate with path", func(c *Config) { c.Gates = []string{"../x"} }, true},
		{"guard without state file", func(c *Config) { c.StateFile = "" }, true},
		{"unguarded without state file", func(c *Config) { c.Guard = false; c.StateFile = "" }, false},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "memprep.yaml", []byte(`
dir: weights
int_bits: 4
frac_bits: 12
gates: [input_gate, forget_gate]
max_compare_rows: 50
guard: false
log_format: json
`), 0o644))

	cfg, err := Load(fs, "memprep.yaml")
	require.NoError(t, err)
	assert.Equal(t, "weights", cfg.Dir)
	assert.Equal(t, fixedpoint.Q4_12, cfg.Format)
	assert.Equal(t, []string{"input_gate", "forget_gate"}, cfg.Gates)
	assert.Equal(t, 50, cfg.MaxCompareRows)
	assert.False(t, cfg.Guard)
	assert.Equal(t, "json", cfg.LogFormat)
	// untouched keys keep defaults
	assert.Equal(t, DefaultStateFile, cfg.StateFile)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := Load(fs, "missing.yaml")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("gates: [unterminated"), 0o644))
	_, err = Load(fs, "bad.yaml")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "wide.yaml", []byte("int_bits: 8\nfrac_bits: 16\n"), 0o644))
	_, err = Load(fs, "wide.yaml")
	assert.Error(t, err)
}
