// Package cli implements the sentinelctl command tree: serve, audit, and
// check-constitution.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	constitutionPath string
	logPath          string
	interactive      bool
)

var rootCmd = &cobra.Command{
	Use:   "sentinelctl",
	Short: "sentinel - command-auditing gateway for AI agents",
	Long: `sentinel audits shell commands proposed by an AI agent before they run:
a deterministic hard-kill filter, a network/domain whitelist gate, a
lockdown allow-list, and an optional LLM auditor decide whether a
command may execute at all.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&constitutionPath, "constitution", "", "Path to constitution YAML file (default: ~/.sentinel/constitution.yaml)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Path to audit log file (default: ~/.sentinel/audit.jsonl)")
}

// Execute runs the sentinelctl command tree.
func Execute() error {
	return rootCmd.Execute()
}
