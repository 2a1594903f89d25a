// Package normalize reduces a raw command string to a canonical form that
// resists common shell obfuscation: unicode compatibility tricks,
// zero-width characters, and backslash escaping noise.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const zeroWidthSpace = "\u200B"

var (
	lineContinuation  = regexp.MustCompile(`\\\r?\n`)
	backslashEscape   = regexp.MustCompile(`\\(\S)`)
	backslashAndSpace = regexp.MustCompile(`\\+\s+`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// Normalize is total: it never fails, and an empty or nil-equivalent input
// normalizes to the empty string.
func Normalize(raw string) string {
	s := raw

	// Step 2: NFKC folds fullwidth/halfwidth forms and compatibility
	// ligatures. It does NOT fold Cyrillic/Greek homoglyphs onto Latin —
	// see DESIGN.md for why that gap is accepted rather than patched here.
	s = norm.NFKC.String(s)

	// Step 3: strip zero-width space wherever it appears.
	s = strings.ReplaceAll(s, zeroWidthSpace, "")

	// Step 4: join shell line continuations.
	s = lineContinuation.ReplaceAllString(s, "")

	// Step 5: strip single backslashes preceding a non-whitespace char.
	s = backslashEscape.ReplaceAllString(s, "$1")

	// Step 6: collapse backslash-plus-whitespace to a single space.
	s = backslashAndSpace.ReplaceAllString(s, " ")

	// Step 7: collapse whitespace runs.
	s = whitespaceRun.ReplaceAllString(s, " ")

	// Step 8: trim.
	return strings.TrimSpace(s)
}

// Command carries both the original and normalized forms of a command so
// downstream rules can match against the normalization while logs retain
// what the caller actually sent.
type Command struct {
	Raw        string
	Normalized string
}

// New normalizes raw and returns the paired Command value.
func New(raw string) Command {
	return Command{Raw: raw, Normalized: Normalize(raw)}
}
