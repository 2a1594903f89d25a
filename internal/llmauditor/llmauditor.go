// Package llmauditor defines the external semantic-audit contract and
// ships a bounded-time HTTP implementation plus a built-in heuristic
// fallback that needs no network access.
package llmauditor

import (
	"context"
	"time"

	"github.com/taajirah/sentinel/internal/decision"
)

// Auditor is consulted only when the deterministic layer neither rejects
// nor explicitly allows a command. Implementations MUST return within a
// bounded time, MUST NOT panic, and MUST return a risk score in [0,10]
// (the caller clamps defensively regardless). There is no "absent"
// implementation of this interface by design — absence is represented by
// a nil Auditor inside the orchestrator.
type Auditor interface {
	AuditCommand(ctx context.Context, normalizedCommand string) decision.Decision
}

// FromConfig picks the Auditor implementation an operator's configuration
// calls for: a real HTTP scoring endpoint when one is configured, the
// built-in heuristic fallback when only a model name is set, or nil
// (absent) when neither is configured.
func FromConfig(endpoint, model string, timeout time.Duration) Auditor {
	switch {
	case endpoint != "":
		return NewHTTPAuditor(endpoint, model, timeout)
	case model != "":
		return NewHeuristicAuditor()
	default:
		return nil
	}
}
