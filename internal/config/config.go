package config

import (
	"fmt"
	"strings"

	"github.com/23skdu/longbow-memprep/internal/fixedpoint"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultStateFile is where the pipeline records what it already reshaped.
const DefaultStateFile = ".memprep-state.yaml"

type Config struct {
	Dir string `yaml:"dir"`

	Format fixedpoint.Format `yaml:",inline"`

	// Gates whose <gate>_bias.txt is converted in the final pipeline pass.
	Gates []string `yaml:"gates"`

	MaxCompareRows int  `yaml:"max_compare_rows"`
	AllowMismatch  bool `yaml:"allow_mismatch"`

	Guard     bool   `yaml:"guard"`
	StateFile string `yaml:"state_file"`

	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsFile string `yaml:"metrics_file"`
}

func (c *Config) Validate() error {
	if err := c.Format.Validate(); err != nil {
		return err
	}
	if c.Format.Bits() != 16 {
		return fmt.Errorf("invalid format %s: memory words are 16 bits (int_bits + frac_bits = %d)", c.Format, c.Format.Bits())
	}
	if c.MaxCompareRows <= 0 {
		return fmt.Errorf("invalid max_compare_rows: %d (must be positive)", c.MaxCompareRows)
	}
	for _, g := range c.Gates {
		if strings.TrimSpace(g) == "" {
			return fmt.Errorf("invalid gates: empty gate name")
		}
		if strings.ContainsAny(g, `/\`) {
			return fmt.Errorf("invalid gate %q: must be a bare name", g)
		}
	}
	if c.Guard && c.StateFile == "" {
		return fmt.Errorf("invalid state_file: required when guard is enabled")
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log_format: %q (console or json)", c.LogFormat)
	}
	return nil
}

func Default() Config {
	return Config{
		Dir:            ".",
		Format:         fixedpoint.Q4_12,
		Gates:          []string{"input_gate", "forget_gate", "output_gate", "cell_gate"},
		MaxCompareRows: 100,
		Guard:          true,
		StateFile:      DefaultStateFile,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// Load reads a YAML file over Default(). Keys absent from the file keep
// their default values.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := Default()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
