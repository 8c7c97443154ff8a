package engine

import (
	"regexp"
	"strings"
	"unicode"
)

// powerOperator is the spelling of exponentiation the evaluator understands.
const powerOperator = "**"

// percentLiteral matches a numeric literal immediately followed by '%'.
var percentLiteral = regexp.MustCompile(`(\d+\.?\d*|\.\d+)%`)

// Sanitize normalises raw calculator input into the string handed to
// Evaluate. Characters outside the accepted set are dropped silently;
// structural problems are left for the evaluator to reject.
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) || !allowedRune(r) {
			continue
		}
		b.WriteRune(r)
	}

	s := strings.ReplaceAll(b.String(), "^", powerOperator)
	return percentLiteral.ReplaceAllString(s, "($1/100)")
}

func allowedRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	}
	return strings.ContainsRune("+-*/^().%", r)
}
