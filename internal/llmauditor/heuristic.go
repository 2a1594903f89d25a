package llmauditor

import (
	"context"
	"regexp"
	"strings"

	"github.com/taajirah/sentinel/internal/decision"
)

// HeuristicAuditor is a zero-dependency, regex-based Auditor usable when no
// real LLM scoring endpoint is configured. It detects prompt-injection
// language, obfuscation, and bulk-exfiltration shapes that the fixed-order
// hard-kill filter doesn't cover, and maps its verdict to the same
// allowed/risk_score/reason contract any other Auditor implementation
// returns. Adapted from a heuristic signal-detection rule set; escalation
// is monotonic — the worst matching rule decides the outcome.
type HeuristicAuditor struct {
	rules []heuristicRule
}

type signal struct {
	id          string
	description string
}

type heuristicRule struct {
	signal   signal
	match    func(command string) bool
	escalate verdict
}

type verdict int

const (
	verdictAllow verdict = iota
	verdictAudit
	verdictBlock
)

// NewHeuristicAuditor builds a HeuristicAuditor with its built-in rule set.
func NewHeuristicAuditor() *HeuristicAuditor {
	a := &HeuristicAuditor{}
	a.rules = a.buildRules()
	return a
}

// AuditCommand never panics and always returns within the time it takes to
// run a handful of regexes — well inside  bounded-time contract.
func (a *HeuristicAuditor) AuditCommand(_ context.Context, normalizedCommand string) decision.Decision {
	var descriptions []string
	best := verdictAllow

	for _, r := range a.rules {
		if r.match(normalizedCommand) {
			descriptions = append(descriptions, r.signal.description)
			if r.escalate > best {
				best = r.escalate
			}
		}
	}

	explanation := strings.Join(descriptions, "; ")

	switch best {
	case verdictBlock:
		return decision.RejectWithRisk(explanation, 10)
	case verdictAudit:
		if explanation == "" {
			explanation = "Heuristic auditor flagged this command for review."
		}
		return decision.Accept(explanation, 6)
	default:
		return decision.Accept("No heuristic signals detected.", 0)
	}
}

func (a *HeuristicAuditor) buildRules() []heuristicRule {
	return []heuristicRule{
		{
			signal: signal{"instruction_override", "command contains instruction-override language (e.g. 'ignore previous')"},
			match:  func(c string) bool { return matchesAnyPattern(c, instructionOverridePatterns) },
			escalate: verdictBlock,
		},
		{
			signal: signal{"prompt_exfiltration", "command attempts to reveal system prompt or instructions"},
			match:  func(c string) bool { return matchesAnyPattern(c, promptExfilPatterns) },
			escalate: verdictAudit,
		},
		{
			signal: signal{"disable_security", "command attempts to disable or bypass security controls"},
			match:  func(c string) bool { return matchesAnyPattern(c, disableSecurityPatterns) },
			escalate: verdictBlock,
		},
		{
			signal: signal{"obfuscated_base64", "command contains a long base64-encoded payload that may hide intent"},
			match:  func(c string) bool { return base64PayloadPattern.MatchString(c) },
			escalate: verdictAudit,
		},
		{
			signal: signal{"obfuscated_hex", "command contains hex escape sequences that may hide intent"},
			match:  func(c string) bool { return hexEscapePattern.MatchString(c) },
			escalate: verdictAudit,
		},
		{
			signal: signal{"eval_risk", "command uses eval/exec for dynamic code execution"},
			match:  func(c string) bool { return evalRiskPattern.MatchString(c) },
			escalate: verdictAudit,
		},
		{
			signal: signal{"bulk_exfiltration", "command archives and/or uploads a large directory (possible bulk exfiltration)"},
			match:  matchesBulkExfil,
			escalate: verdictBlock,
		},
		{
			signal: signal{"secrets_in_command", "command contains what appears to be an inline API key or secret token"},
			match:  func(c string) bool { return secretsInCommandPattern.MatchString(c) },
			escalate: verdictAudit,
		},
		{
			signal: signal{"indirect_injection", "command contains embedded instructions targeting an AI agent"},
			match:  func(c string) bool { return matchesAnyPattern(c, indirectInjectionPatterns) },
			escalate: verdictBlock,
		},
	}
}

var instructionOverridePatterns = compilePatterns([]string{
	`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+(instructions?|rules?)`,
	`(?i)disregard\s+(all\s+)?(previous|prior|your)\s+(previous\s+)?(instructions?|rules?|guidelines?)`,
	`(?i)disregard\s+(all\s+)?your\s+(previous\s+)?(instructions?|rules?|guidelines?)`,
	`(?i)forget\s+(all\s+)?(your|previous)\s+(instructions?|rules?)`,
	`(?i)override\s+(all\s+)?(safety|security)\s+(rules?|protocols?|guidelines?)`,
	`(?i)you\s+are\s+now\s+(free|unrestricted|unfiltered)`,
	`(?i)new\s+instructions?:\s+`,
	`(?i)system\s*:\s*(you\s+are|ignore|forget)`,
})

var promptExfilPatterns = compilePatterns([]string{
	`(?i)(show|reveal|display|print|output)\s+(me\s+)?(your|the)\s+(system\s+)?prompt`,
	`(?i)(what\s+are|tell\s+me)\s+(your|the)\s+(instructions?|rules?|guidelines?)`,
	`(?i)repeat\s+(your\s+)?(system\s+)?(prompt|instructions?)`,
})

var disableSecurityPatterns = compilePatterns([]string{
	`(?i)(disable|turn\s+off|bypass|skip|ignore)\s+(sentinel|security|guard|policy|policies)`,
	`(?i)(remove|delete|uninstall)\s+(sentinel|security\s+guard)`,
	`(?i)--no-?(verify|check|security|guard|policy)`,
	`(?i)SENTINEL_DISABLE`,
})

var indirectInjectionPatterns = compilePatterns([]string{
	`(?i)SYSTEM:\s*(ignore|forget|override|you\s+are)`,
	`(?i)\[INST\]`,
	`(?i)<\|im_start\|>system`,
	`(?i)BEGIN\s+HIDDEN\s+INSTRUCTIONS?`,
	`(?i)IMPORTANT:\s*(ignore|disregard|override)`,
})

var base64PayloadPattern = regexp.MustCompile(`[A-Za-z0-9+/]{40,}={0,2}`)

var hexEscapePattern = regexp.MustCompile(`(\\\\?x[0-9a-fA-F]{2}){4,}`)

var evalRiskPattern = regexp.MustCompile(`(?i)\b(eval|exec)\s*\(`)

var secretsInCommandPattern = regexp.MustCompile(
	`(?i)(` +
		`(api[_-]?key|api[_-]?secret|auth[_-]?token|access[_-]?token)\s*[=:]\s*\S{8,}` +
		`|Bearer\s+[A-Za-z0-9._\-]{20,}` +
		`|ghp_[A-Za-z0-9]{36,}` +
		`|\bsk-[A-Za-z0-9]{20,}` +
		`|AKIA[A-Z0-9]{16}` +
		`)`,
)

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

func matchesAnyPattern(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func matchesBulkExfil(cmd string) bool {
	lower := strings.ToLower(cmd)

	hasArchive := (strings.Contains(lower, "tar ") || strings.Contains(lower, "zip ")) &&
		(strings.Contains(lower, "~/") ||
			strings.Contains(lower, "$home") ||
			strings.Contains(lower, "/home/") ||
			strings.Contains(lower, ".git") ||
			strings.Contains(lower, "/repo"))

	hasUpload := strings.Contains(lower, "curl") ||
		strings.Contains(lower, "wget") ||
		strings.Contains(lower, "scp ") ||
		strings.Contains(lower, "rsync") ||
		strings.Contains(lower, "transfer.sh") ||
		strings.Contains(lower, "file.io") ||
		strings.Contains(lower, "0x0.st")

	if hasArchive && hasUpload {
		return true
	}

	if (strings.Contains(lower, "tar ") || strings.Contains(lower, "zip ")) &&
		strings.Contains(lower, "|") &&
		(strings.Contains(lower, "curl") || strings.Contains(lower, "nc ")) {
		return true
	}

	return false
}
