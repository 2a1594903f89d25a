package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taajirah/sentinel/internal/approval"
	"github.com/taajirah/sentinel/internal/auditor"
	"github.com/taajirah/sentinel/internal/config"
	"github.com/taajirah/sentinel/internal/constitution"
	"github.com/taajirah/sentinel/internal/decision"
	"github.com/taajirah/sentinel/internal/executor"
	"github.com/taajirah/sentinel/internal/llmauditor"
	"github.com/taajirah/sentinel/internal/logger"
)

var auditCmd = &cobra.Command{
	Use:   "audit [flags] -- <command> [args...]",
	Short: "Audit a command, and run it if allowed",
	Long: `Audit runs a command through sentinel's audit pipeline. If the
command is allowed it is then executed; otherwise it is reported blocked
and left unexecuted.

Example:
  sentinelctl audit -- echo "hello world"
  sentinelctl audit --constitution ./custom.yaml -- npm install lodash`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().BoolVar(&interactive, "interactive", false, "Prompt for operator approval when sentinel would otherwise block")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command provided. Usage: sentinelctl audit -- <command> [args...]")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if constitutionPath != "" {
		cfg.ConstitutionPath = constitutionPath
	}
	if logPath != "" {
		cfg.LogPath = logPath
	}

	policy, err := constitution.Load(cfg.ConstitutionPath)
	if err != nil {
		return fmt.Errorf("load constitution: %w", err)
	}

	auditLogger, err := logger.New(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer auditLogger.Close()

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "unknown"
	}

	commandStr := strings.Join(args, " ")

	llm := llmauditor.FromConfig(cfg.LLMEndpoint, cfg.LLMModel, cfg.LLMTimeout)
	if llm == nil {
		// The CLI always has a built-in auditor to fall back on so a bare
		// `sentinelctl audit` doesn't fail closed for lack of configuration.
		llm = llmauditor.NewHeuristicAuditor()
	}
	a := auditor.New(policy, llm)
	d := a.Audit(cmd.Context(), commandStr)

	event := logger.AuditEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   commandStr,
		Cwd:       cwd,
		Allowed:   d.Allowed,
		RiskScore: d.RiskScore,
		Reason:    d.Reason,
		Source:    "cli",
	}

	if !d.Allowed && interactive {
		result := approval.Ask(approval.Prompt{Command: commandStr, Decision: d})
		if result.Approved {
			d = decision.Accept("Operator override: "+result.UserAction, d.RiskScore)
			event.Allowed = true
			event.Reason = d.Reason
		}
	}

	if !d.Allowed {
		fmt.Fprintln(os.Stderr, "\nBLOCKED by sentinel")
		fmt.Fprintf(os.Stderr, "Reason: %s (risk %d/10)\n", d.Reason, d.RiskScore)
		if err := auditLogger.Log(event); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write audit log: %v\n", err)
		}
		os.Exit(1)
	}

	result := executor.Run(context.Background(), commandStr, cwd, executor.DefaultTimeout)
	fmt.Fprint(os.Stdout, result.Stdout)
	fmt.Fprint(os.Stderr, result.Stderr)

	rc := result.ReturnCode
	event.ReturnCode = &rc
	event.Stdout = result.Stdout
	event.Stderr = result.Stderr
	if result.TimedOut {
		event.ExecutedError = "execution timed out"
	}
	if err := auditLogger.Log(event); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write audit log: %v\n", err)
	}

	os.Exit(result.ReturnCode)
	return nil
}
