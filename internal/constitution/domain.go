package constitution

import "strings"

// MatchesDomain reports whether hostname is covered by the whitelist: it
// either equals an allowed entry or is a subdomain of one.
func (c PolicyConfig) MatchesDomain(hostname string) bool {
	hostname = strings.ToLower(hostname)
	for _, allowed := range c.WhitelistedDomains {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if allowed == "" {
			continue
		}
		if hostname == allowed || strings.HasSuffix(hostname, "."+allowed) {
			return true
		}
	}
	return false
}
