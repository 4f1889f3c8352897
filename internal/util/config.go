package util

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"tally/internal/parser"
)

// Configuration carries build metadata, flags and the optional TOML
// config file contents.
type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`
	RootPath  string `toml:"-"`

	Repl      ReplConfig                `toml:"repl"`
	Log       LogConfig                 `toml:"log"`
	Operators map[string]OperatorConfig `toml:"operators"`
}

type ReplConfig struct {
	Prompt string `toml:"prompt"`
	Color  bool   `toml:"color"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// OperatorConfig is one `[operators."<name>"]` entry: a priority override
// merged into the parser options at startup.
type OperatorConfig struct {
	Strength      int    `toml:"strength"`
	Associativity string `toml:"associativity"`
}

// DefaultConfiguration is what runs when no config file exists.
func DefaultConfiguration() Configuration {
	return Configuration{
		Repl: ReplConfig{Prompt: ">> ", Color: true},
		Log:  LogConfig{Level: "error"},
	}
}

// LoadConfiguration reads a TOML config file over the defaults. A missing
// file at the default location is fine; a named file that cannot be read
// or parsed is a startup error.
func LoadConfiguration(path string, required bool) (Configuration, error) {
	cfg := DefaultConfiguration()
	if _, err := os.Stat(path); err != nil {
		if required {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config file %s: unknown key %s", path, undecoded[0].String())
	}
	return cfg, nil
}

// ApplyOperators merges the config's operator table into parser options.
func (c Configuration) ApplyOperators(opts *parser.Options) error {
	for name, op := range c.Operators {
		var assoc parser.Assoc
		switch op.Associativity {
		case "left", "":
			assoc = parser.Left
		case "right":
			assoc = parser.Right
		default:
			return fmt.Errorf("operator %q: bad associativity %q (want left or right)", name, op.Associativity)
		}
		opts.Priorities[name] = parser.Priority{Strength: op.Strength, Assoc: assoc}
	}
	return nil
}
