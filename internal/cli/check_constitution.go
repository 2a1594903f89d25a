package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taajirah/sentinel/internal/constitution"
)

var checkConstitutionCmd = &cobra.Command{
	Use:   "check-constitution <path>",
	Short: "Validate and print a resolved constitution file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckConstitution,
}

func init() {
	rootCmd.AddCommand(checkConstitutionCmd)
}

func runCheckConstitution(cmd *cobra.Command, args []string) error {
	policy, err := constitution.Load(args[0])
	if err != nil {
		return fmt.Errorf("invalid constitution: %w", err)
	}

	fmt.Printf("lockdown_mode: %v\n", policy.LockdownMode)
	fmt.Printf("blocked_strings: %v\n", policy.BlockedStrings)
	fmt.Printf("blocked_paths: %v\n", policy.BlockedPaths)
	fmt.Printf("blocked_tools: %v\n", policy.BlockedTools)
	fmt.Printf("blocked_network_tools: %v\n", policy.BlockedNetworkTools)
	fmt.Printf("whitelisted_domains: %v\n", policy.WhitelistedDomains)
	fmt.Printf("allowed_commands: %v\n", policy.AllowedCommands)
	return nil
}
