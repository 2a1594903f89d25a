// Package constitution loads and freezes the declarative policy document
// ("constitution") that drives the deterministic audit layers.
package constitution

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyConfig is a frozen, process-scoped view over a parsed constitution
// document. All matching against it is case-insensitive; iteration order
// of BlockedStrings and AllowedCommands is preserved.
type PolicyConfig struct {
	BlockedStrings      []string
	BlockedPaths        []string
	BlockedTools        []string
	BlockedNetworkTools []string
	WhitelistedDomains  []string
	LockdownMode        bool
	AllowedCommands     []string
}

// Default returns the baseline policy applied when the constitution is
// silent or absent.
func Default() PolicyConfig {
	return PolicyConfig{
		BlockedStrings:      []string{"sudo", "rm -rf", "mkfs"},
		BlockedPaths:        []string{"~/.ssh", "~/.env", "/etc/"},
		BlockedTools:        []string{"python", "pip", "npm"},
		BlockedNetworkTools: []string{"curl", "wget"},
		WhitelistedDomains:  nil,
		LockdownMode:        false,
		AllowedCommands:     nil,
	}
}

// document is the on-disk shape of a constitution file.
type document struct {
	HardKill      hardKillSection      `yaml:"hard_kill"`
	NetworkLock   networkLockSection   `yaml:"network_lock"`
	ExecutionMode executionModeSection `yaml:"execution_mode"`
}

type hardKillSection struct {
	BlockedStrings stringOrList `yaml:"blocked_strings"`
	BlockedPaths   stringOrList `yaml:"blocked_paths"`
	BlockedTools   stringOrList `yaml:"blocked_tools"`
}

type networkLockSection struct {
	BlockedTools       stringOrList `yaml:"blocked_tools"`
	WhitelistedDomains stringOrList `yaml:"whitelisted_domains"`
}

type executionModeSection struct {
	LockdownMode    bool         `yaml:"lockdown_mode"`
	AllowedCommands stringOrList `yaml:"allowed_commands"`
}

// stringOrList accepts either a scalar string or a sequence in YAML,
// normalizing both to a slice: a scalar string where a sequence is
// expected is accepted as a one-element sequence.
type stringOrList []string

func (s *stringOrList) UnmarshalYAML(value *yaml.Node) error {
	var single string
	if err := value.Decode(&single); err == nil {
		*s = []string{single}
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*s = list
	return nil
}

// Load reads a constitution document from path and merges it over the
// defaults. A missing file is not an error — it yields Default().
func Load(path string) (PolicyConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return PolicyConfig{}, fmt.Errorf("read constitution: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return PolicyConfig{}, fmt.Errorf("parse constitution: %w", err)
	}

	applyIfSet(&cfg.BlockedStrings, doc.HardKill.BlockedStrings)
	applyIfSet(&cfg.BlockedPaths, doc.HardKill.BlockedPaths)
	applyIfSet(&cfg.BlockedTools, doc.HardKill.BlockedTools)
	applyIfSet(&cfg.BlockedNetworkTools, doc.NetworkLock.BlockedTools)

	// Whitelisted domains and allowed_commands have no non-empty default,
	// so any presence (even explicit empty) simply stays empty.
	if doc.NetworkLock.WhitelistedDomains != nil {
		cfg.WhitelistedDomains = []string(doc.NetworkLock.WhitelistedDomains)
	}
	if doc.ExecutionMode.AllowedCommands != nil {
		cfg.AllowedCommands = []string(doc.ExecutionMode.AllowedCommands)
	}
	cfg.LockdownMode = doc.ExecutionMode.LockdownMode

	return cfg, nil
}

func applyIfSet(dst *[]string, src stringOrList) {
	if src != nil {
		*dst = []string(src)
	}
}
