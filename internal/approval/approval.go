// Package approval prompts an interactive operator to confirm a command
// the auditor flagged, for use by sentinelctl's --interactive mode.
package approval

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/taajirah/sentinel/internal/decision"
)

// Result records what the operator chose and why, for inclusion in the
// audit log.
type Result struct {
	Approved   bool
	UserAction string
}

// Prompt is the information shown to the operator before asking for a
// decision.
type Prompt struct {
	Command   string
	Decision  decision.Decision
}

// IsInteractive reports whether stdin is attached to a terminal. A
// non-interactive session can never approve anything — the fail-closed
// posture extends to the operator-override path.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Ask shows p on stderr and blocks for an operator decision. Outside a
// terminal it auto-denies rather than blocking forever.
func Ask(p Prompt) Result {
	if !IsInteractive() {
		return Result{
			Approved:   false,
			UserAction: "auto_deny_non_interactive",
		}
	}

	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "╔══════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(os.Stderr, "║              ⚠️  SENTINEL REJECTED THIS COMMAND                ║")
	fmt.Fprintln(os.Stderr, "╚══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "Command: %s\n", p.Command)
	fmt.Fprintf(os.Stderr, "Risk score: %d/10\n", p.Decision.RiskScore)
	fmt.Fprintf(os.Stderr, "Reason: %s\n", p.Decision.Reason)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  [a] Approve once - execute this command anyway")
	fmt.Fprintln(os.Stderr, "  [d] Deny - leave the command blocked")
	fmt.Fprintln(os.Stderr, "")

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Fprint(os.Stderr, "Your choice [a/d]: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return Result{
				Approved:   false,
				UserAction: "error_reading_input",
			}
		}

		input = strings.TrimSpace(strings.ToLower(input))

		switch input {
		case "a", "approve", "yes", "y":
			return Result{
				Approved:   true,
				UserAction: "approve_once",
			}
		case "d", "deny", "no", "n":
			return Result{
				Approved:   false,
				UserAction: "deny",
			}
		default:
			fmt.Fprintln(os.Stderr, "Invalid input. Please enter 'a' to approve or 'd' to deny.")
		}
	}
}
