package auditor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/taajirah/sentinel/internal/constitution"
	"github.com/taajirah/sentinel/internal/decision"
)

var (
	pythonVersionedTool = regexp.MustCompile(`^python(?:\d+(?:\.\d+)*)?$`)
	base64DecodeToShell = regexp.MustCompile(`[|&;]\s*(?:bash|sh)\b`)
)

// hardKillFilter evaluates the deterministic ordered rules against the
// normalized command. Rules are evaluated in exactly this order; the
// first match wins. Returns nil when no rule fires, meaning the caller
// proceeds to the lockdown allow-list / LLM auditor.
func hardKillFilter(cmd, rawCommand string, cfg constitution.PolicyConfig) *decision.Decision {
	// Rule 1: empty after normalization.
	if strings.TrimSpace(cmd) == "" {
		d := decision.Reject("Empty command is rejected under fail-closed policy.")
		return &d
	}

	// Rule 2: lockdown active and not allow-listed.
	if cfg.LockdownMode && !isAllowedInLockdown(cmd, cfg) {
		d := decision.Reject("Lockdown mode active: command not in allowed_commands.")
		return &d
	}

	lowered := strings.ToLower(cmd)

	// Rule 3: blocked string, case-insensitive substring match. The
	// original-case entry is used in the reported reason.
	for _, blocked := range cfg.BlockedStrings {
		if strings.Contains(lowered, strings.ToLower(blocked)) {
			d := decision.Reject(fmt.Sprintf("Blocked token detected: %s", blocked))
			return &d
		}
	}

	// Rule 4: blocked path, same substring rule.
	for _, blockedPath := range cfg.BlockedPaths {
		if strings.Contains(lowered, strings.ToLower(blockedPath)) {
			d := decision.Reject(fmt.Sprintf("Blocked path access detected: %s", blockedPath))
			return &d
		}
	}

	// Rule 5: blocked tool at token granularity.
	if tool, found := matchBlockedTool(cmd, cfg.BlockedTools); found {
		d := decision.Reject(fmt.Sprintf("Blocked tool detected: %s", tool))
		return &d
	}

	// Rule 6: base64-to-shell obfuscation pipeline.
	hasBase64Decode := strings.Contains(lowered, "base64 -d") || strings.Contains(lowered, "base64 --decode")
	if hasBase64Decode && base64DecodeToShell.MatchString(lowered) {
		d := decision.Reject("Obfuscated payload execution pattern detected: base64 to shell.")
		return &d
	}

	// Rule 7: network tool invoked without a valid whitelisted target.
	if networkToolInvoked(lowered, cfg) {
		if d := networkGate(rawCommand, cmd, cfg); d != nil {
			return d
		}
	}

	return nil
}

// matchBlockedTool tokenizes cmd with POSIX word-splitting (falling back
// to whitespace splitting on a parse error) and checks each token's
// basename against the configured blocked tools, including the
// python(\d+(\.\d+)*)? versioned-interpreter pattern.
func matchBlockedTool(cmd string, blockedTools []string) (string, bool) {
	for _, token := range tokenize(cmd) {
		candidate := basename(token)
		if candidate == "" {
			continue
		}
		for _, blocked := range blockedTools {
			b := strings.ToLower(strings.TrimSpace(blocked))
			if candidate == b {
				return blocked, true
			}
			if b == "python" && pythonVersionedTool.MatchString(candidate) {
				return blocked, true
			}
		}
	}
	return "", false
}
