package arbiter

import (
	"strings"
	"unicode"
)

// #region soften

// soften adjusts the imperative strength of a message to its confidence:
// rule templates are written as strong imperatives, so high confidence
// passes them through, mid confidence moderates, low confidence hedges.
func soften(text string, score float64) string {
	switch {
	case score > 0.8:
		return text
	case score >= 0.6:
		return "Consider this: " + lowerFirst(text)
	default:
		return "Shaky read, but " + lowerFirst(text)
	}
}

// appendCaveats attaches the caveat list in parentheses for operators on
// detailed explanations.
func appendCaveats(text string, caveats []string) string {
	if len(caveats) == 0 {
		return text
	}
	return text + " (" + strings.Join(caveats, "; ") + ")"
}

// lowerFirst lowercases the leading rune so prefixed phrasing reads naturally.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// #endregion soften
