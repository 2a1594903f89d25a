package constitution

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_CarriesBaselinePolicy(t *testing.T) {
	cfg := Default()
	if cfg.LockdownMode {
		t.Errorf("Default().LockdownMode = true, want false")
	}
	if len(cfg.BlockedStrings) == 0 || len(cfg.BlockedPaths) == 0 || len(cfg.BlockedTools) == 0 {
		t.Errorf("Default() should not have empty hard-kill lists")
	}
}

func TestLoad_MissingFileYieldsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
	if cfg.LockdownMode != Default().LockdownMode {
		t.Errorf("Load() on missing file should yield Default()")
	}
}

func TestLoad_EmptyPathYieldsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if len(cfg.BlockedStrings) != len(Default().BlockedStrings) {
		t.Errorf("Load(\"\") should yield Default()")
	}
}

func TestLoad_ScalarCoercedToOneElementList(t *testing.T) {
	path := writeConstitution(t, `
hard_kill:
  blocked_strings: sudo
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.BlockedStrings) != 1 || cfg.BlockedStrings[0] != "sudo" {
		t.Errorf("BlockedStrings = %v, want [\"sudo\"]", cfg.BlockedStrings)
	}
}

func TestLoad_SequenceOverridesDefault(t *testing.T) {
	path := writeConstitution(t, `
hard_kill:
  blocked_tools:
    - perl
    - ruby
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.BlockedTools) != 2 || cfg.BlockedTools[0] != "perl" {
		t.Errorf("BlockedTools = %v, want [perl ruby]", cfg.BlockedTools)
	}
	// Unrelated defaults survive a partial override.
	if len(cfg.BlockedPaths) != len(Default().BlockedPaths) {
		t.Errorf("BlockedPaths should remain at default when unset in the file")
	}
}

func TestLoad_LockdownModeAndAllowedCommands(t *testing.T) {
	path := writeConstitution(t, `
execution_mode:
  lockdown_mode: true
  allowed_commands:
    - ls
    - git status
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.LockdownMode {
		t.Errorf("LockdownMode = false, want true")
	}
	if len(cfg.AllowedCommands) != 2 {
		t.Errorf("AllowedCommands = %v, want 2 entries", cfg.AllowedCommands)
	}
}

func TestLoad_MalformedYAMLErrors(t *testing.T) {
	path := writeConstitution(t, "hard_kill: [this is not a mapping")
	if _, err := Load(path); err == nil {
		t.Errorf("Load() with malformed YAML should return an error")
	}
}

func TestMatchesDomain_ExactAndSubdomain(t *testing.T) {
	cfg := PolicyConfig{WhitelistedDomains: []string{"example.com"}}

	tests := []struct {
		host string
		want bool
	}{
		{"example.com", true},
		{"EXAMPLE.COM", true},
		{"api.example.com", true},
		{"deep.sub.example.com", true},
		{"notexample.com", false},
		{"example.com.evil.net", false},
		{"evil.com", false},
	}

	for _, tt := range tests {
		if got := cfg.MatchesDomain(tt.host); got != tt.want {
			t.Errorf("MatchesDomain(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func writeConstitution(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "constitution.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write test constitution: %v", err)
	}
	return path
}
