package auditor

import (
	"strings"

	"github.com/taajirah/sentinel/internal/constitution"
)

// isAllowedInLockdown matches a normalized, lowercased command against the
// lockdown allow-list. Returns false whenever allowed_commands is empty,
// regardless of lockdown_mode — an empty allow-list admits nothing.
func isAllowedInLockdown(normalizedCommand string, cfg constitution.PolicyConfig) bool {
	if len(cfg.AllowedCommands) == 0 {
		return false
	}

	command := strings.ToLower(strings.TrimSpace(normalizedCommand))
	tokens := tokenize(command)

	var firstToken, firstBasename string
	if len(tokens) > 0 {
		firstToken = strings.ToLower(tokens[0])
		firstBasename = basename(tokens[0])
	}

	for _, rawEntry := range cfg.AllowedCommands {
		entry := strings.ToLower(strings.TrimSpace(rawEntry))
		if entry == "" {
			continue
		}

		if strings.Contains(entry, " ") {
			// Phrase prefix: admit iff the command equals the entry or
			// starts with it followed by anything.
			if command == entry || strings.HasPrefix(command, entry) {
				return true
			}
			continue
		}

		// Bare token: admit on exact match, "<entry> " prefix, or a match
		// against the first token / its basename.
		if command == entry || strings.HasPrefix(command, entry+" ") {
			return true
		}
		if firstToken == entry || firstBasename == entry {
			return true
		}
	}

	return false
}
