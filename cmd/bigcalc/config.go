package main

import (
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/zephyrtronium/bigcalc"
)

// Config holds settings from a config.toml file. Command-line flags override
// any setting given here.
type Config struct {
	// Precision is the precision of calculations in bits.
	Precision uint `toml:"precision"`
	// Format is the fmt verb used to print results.
	Format string `toml:"format"`
	// MaxDepth limits expression nesting.
	MaxDepth int `toml:"max_depth"`
	// Lines evaluates each input line as a separate expression.
	Lines bool `toml:"lines"`
	// Echo prints parse trees along with results.
	Echo bool `toml:"echo"`
	// Verbosity is the log verbosity. 0 logs notices and above.
	Verbosity int `toml:"verbosity"`
	// History is the interactive history file. Empty uses the default;
	// "-" disables history.
	History string `toml:"history"`
}

func defaultConfig() Config {
	return Config{
		Precision: bigcalc.DefaultPrec,
		Format:    "%g",
		MaxDepth:  bigcalc.DefaultMaxDepth,
	}
}

// defaultConfigPath is the config file used when -config is not given.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "bigcalc", "config.toml")
}

// loadConfig reads a config file over the defaults. If the file does not
// exist and must is false, the result is the defaults.
func loadConfig(path string, must bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !must && errors.Is(err, fs.ErrNotExist) {
			return defaultConfig(), nil
		}
		return cfg, fmt.Errorf("couldn't read config: %w", err)
	}
	if un := md.Undecoded(); len(un) != 0 {
		keys := make([]string, len(un))
		for i, k := range un {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Precision == 0 || c.Precision > big.MaxPrec {
		return fmt.Errorf("precision (%d) must be between 1 and %d", c.Precision, uint(big.MaxPrec))
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max depth (%d) must be positive", c.MaxDepth)
	}
	if c.Format == "" {
		return errors.New("result format must not be empty")
	}
	return nil
}

// historyPath resolves the interactive history file, or the empty string to
// keep no history.
func (c *Config) historyPath() string {
	switch c.History {
	case "-":
		return ""
	case "":
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, ".bigcalc_history")
	default:
		return c.History
	}
}
