package auditor

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/taajirah/sentinel/internal/constitution"
	"github.com/taajirah/sentinel/internal/decision"
)

var bareURLPattern = regexp.MustCompile(`https?://[^\s'"]+`)

// networkToolInvoked reports whether any blocked_network_tools entry
// appears as a whole-word token in the (lowercased) normalized command.
func networkToolInvoked(lowered string, cfg constitution.PolicyConfig) bool {
	for _, tool := range cfg.BlockedNetworkTools {
		pattern := `\b` + regexp.QuoteMeta(strings.ToLower(tool)) + `\b`
		if matched, _ := regexp.MatchString(pattern, lowered); matched {
			return true
		}
	}
	return false
}

// networkGate runs the network/domain whitelist gate. Returns a rejection Decision,
// or nil to yield to the next layer.
func networkGate(rawCommand, normalizedCommand string, cfg constitution.PolicyConfig) *decision.Decision {
	urls := extractURLs(normalizedCommand, rawCommand)
	if len(urls) == 0 {
		d := decision.Reject("Network command without explicit URL/domain is rejected.")
		return &d
	}

	for _, target := range urls {
		hostname, ok := extractHostname(target)
		if !ok {
			d := decision.Reject(fmt.Sprintf("Could not parse domain from network target: %s", target))
			return &d
		}
		if !cfg.MatchesDomain(hostname) {
			d := decision.Reject(fmt.Sprintf("Outbound network domain not whitelisted: %s", hostname))
			return &d
		}
	}

	return nil
}

// extractURLs re-tokenizes the command and collects tokens
// beginning with http(s)://; on no hits, fall back to a raw regex scan
// over the original (not normalized) command.
func extractURLs(normalizedCommand, rawCommand string) []string {
	var urls []string
	for _, token := range tokenize(normalizedCommand) {
		if strings.HasPrefix(token, "http://") || strings.HasPrefix(token, "https://") {
			urls = append(urls, token)
		}
	}
	if len(urls) > 0 {
		return urls
	}
	return bareURLPattern.FindAllString(rawCommand, -1)
}

func extractHostname(target string) (string, bool) {
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	return strings.ToLower(u.Hostname()), true
}
