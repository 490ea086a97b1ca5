package thicket

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
debug = true
max_children = 50

[index]
max_entries = 32
`))
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	want.Debug = true
	want.MaxChildren = 50
	want.Index.MaxEntries = 32
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name, data, want string
	}{
		{"unknown key", "debgu = true", `unknown key "debgu"`},
		{"syntax", "debug = ", ""},
		{"negative", "capacity = -1", "capacity must not be negative"},
		{"min entries", "[index]\nmin_entries = 0", "index.min_entries"},
		{"max entries", "[index]\nmin_entries = 8\nmax_entries = 10", "at least twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Config{Capacity: -1, MaxTreeDepth: -1}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"capacity", "max_tree_depth", "min_entries"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thicket.toml")
	if err := os.WriteFile(path, []byte("max_tree_depth = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxTreeDepth != 8 || cfg.Capacity != DefaultConfig().Capacity {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestNewSceneWithConfigRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Index.MinEntries = 0
	if _, err := NewSceneWithConfig(cfg); err == nil {
		t.Error("expected error")
	}
}
