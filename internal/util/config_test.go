package util

import (
	"os"
	"path/filepath"
	"testing"

	"tally/internal/parser"
)

func TestLoadConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tally.toml")
	content := `
[repl]
prompt = "λ "
color = false

[log]
level = "debug"

[operators."|>"]
strength = 1
associativity = "left"

[operators."$"]
strength = 1
associativity = "right"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfiguration(path, true)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Repl.Prompt != "λ " || cfg.Repl.Color {
		t.Errorf("repl config %+v", cfg.Repl)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log config %+v", cfg.Log)
	}

	opts := parser.DefaultOptions()
	if err := cfg.ApplyOperators(opts); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if pri := opts.Priorities["$"]; pri.Assoc != parser.Right || pri.Strength != 1 {
		t.Errorf("$ priority %+v", pri)
	}
}

func TestMissingConfigFile(t *testing.T) {
	cfg, err := LoadConfiguration(filepath.Join(t.TempDir(), "nope.toml"), false)
	if err != nil {
		t.Fatalf("optional missing file should not error: %v", err)
	}
	if cfg.Repl.Prompt != ">> " {
		t.Errorf("defaults not applied: %+v", cfg.Repl)
	}

	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "nope.toml"), true); err == nil {
		t.Error("required missing file should error")
	}
}

func TestBadAssociativity(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Operators = map[string]OperatorConfig{"+": {Strength: 5, Associativity: "sideways"}}
	if err := cfg.ApplyOperators(parser.DefaultOptions()); err == nil {
		t.Error("bad associativity should error")
	}
}

func TestUnknownKeyRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tally.toml")
	if err := os.WriteFile(path, []byte("[repl]\npromt = \">\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfiguration(path, true); err == nil {
		t.Error("misspelled key should be a startup error")
	}
}
