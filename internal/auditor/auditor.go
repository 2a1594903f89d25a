// Package auditor composes the normalizer, hard-kill filter, network gate,
// lockdown gate, and optional LLM auditor into the full command-audit
// pipeline.
package auditor

import (
	"context"

	"github.com/taajirah/sentinel/internal/constitution"
	"github.com/taajirah/sentinel/internal/decision"
	"github.com/taajirah/sentinel/internal/llmauditor"
	"github.com/taajirah/sentinel/internal/normalize"
)

// Auditor holds a frozen PolicyConfig and an optional LLM auditor handle.
// Both are constructed once at process startup and are read-only for the
// lifetime of the Auditor — there is no shared mutable state in the hot
// path.
type Auditor struct {
	policy constitution.PolicyConfig
	llm    llmauditor.Auditor // nil is a valid, meaningful state: "absent"
}

// New builds an Auditor. Passing a nil llm represents the "LLM auditor
// unavailable" operational fault — not a programming error.
func New(policy constitution.PolicyConfig, llm llmauditor.Auditor) *Auditor {
	return &Auditor{policy: policy, llm: llm}
}

// Audit runs the full pipeline against a raw command string:
//
//	cmd = normalize(raw)
//	d = hard_kill(cmd)
//	if d is a rejection: return d
//	if lockdown and allow-listed(cmd): return accept("explicitly allowed", 0)
//	if llm_auditor is absent: return reject("LLM auditor unavailable...", 9)
//	return llm_auditor.audit(cmd)
func (a *Auditor) Audit(ctx context.Context, raw string) decision.Decision {
	cmd := normalize.Normalize(raw)

	if d := hardKillFilter(cmd, raw, a.policy); d != nil {
		return *d
	}

	if a.policy.LockdownMode && isAllowedInLockdown(cmd, a.policy) {
		return decision.Accept("Command explicitly allowed by policy.", 0)
	}

	if a.llm == nil {
		return decision.RejectWithRisk("LLM auditor unavailable; fail-closed policy applied.", 9)
	}

	return a.llm.AuditCommand(ctx, cmd).Clamp()
}

// Policy exposes the frozen PolicyConfig, for inspection and testing.
func (a *Auditor) Policy() constitution.PolicyConfig {
	return a.policy
}
