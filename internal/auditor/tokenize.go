package auditor

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// tokenize splits command into words using POSIX shell rules (quoting and
// escaping respected), falling back to ASCII whitespace splitting on a
// parse error, so tool-name and URL matching operate on actual shell words
// rather than naive string splitting.
func tokenize(command string) []string {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX), syntax.KeepComments(false))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return strings.Fields(command)
	}

	var tokens []string
	syntax.Walk(file, func(node syntax.Node) bool {
		if word, ok := node.(*syntax.Word); ok {
			tokens = append(tokens, wordLiteral(word))
			return false
		}
		return true
	})
	if len(tokens) == 0 {
		return strings.Fields(command)
	}
	return tokens
}

// wordLiteral renders a shell word to its literal runtime value for simple
// literal/quoted words, falling back to the parser's own source rendering
// for anything containing expansions (parameters, command substitution) —
// those aren't evaluated, but nor are they dropped.
func wordLiteral(w *syntax.Word) string {
	var sb strings.Builder
	simple := true

	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				if lit, ok := inner.(*syntax.Lit); ok {
					sb.WriteString(lit.Value)
				} else {
					simple = false
				}
			}
		default:
			simple = false
		}
	}

	if simple {
		return sb.String()
	}

	var printed strings.Builder
	printer := syntax.NewPrinter()
	_ = printer.Print(&printed, w)
	return printed.String()
}

// basename returns the last path segment of a token, lowercased — used to
// match a tool invocation regardless of the path it was invoked through.
func basename(token string) string {
	token = strings.ToLower(token)
	if idx := strings.LastIndex(token, "/"); idx >= 0 {
		token = token[idx+1:]
	}
	return token
}
