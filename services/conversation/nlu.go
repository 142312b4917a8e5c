package conversation

import (
	"strings"
	"unicode"
)

// nameLeadIns are stripped before treating the remainder as a caller name.
var nameLeadIns = []string{
	"my name is",
	"this is",
	"i am",
	"i'm",
}

// parseName extracts a caller name from free-form input. It handles lead-in
// phrases like "my name is Jane Doe" and falls back to treating reasonably
// short phrases as names. Returns "" when nothing name-like is found.
func parseName(text string) string {
	stripped := strings.TrimSpace(text)
	if stripped == "" {
		return ""
	}

	lower := strings.ToLower(stripped)
	for _, prefix := range nameLeadIns {
		if strings.HasPrefix(lower, prefix) {
			candidate := strings.Trim(stripped[len(prefix):], " ,.")
			if candidate != "" {
				return candidate
			}
		}
	}

	if len(stripped) <= 40 && strings.ContainsFunc(stripped, unicode.IsSpace) {
		return stripped
	}
	return ""
}

var streetSuffixes = []string{
	" st", " street",
	" ave", " avenue",
	" rd", " road",
	" blvd", " boulevard",
	" dr", " drive",
	" ln", " lane",
	" ct", " court",
}

// parseAddress extracts a street-style address: at least one digit plus a
// common street suffix. Deliberately conservative; returns "" when uncertain.
func parseAddress(text string) string {
	stripped := strings.TrimSpace(text)
	if stripped == "" {
		return ""
	}
	if !strings.ContainsFunc(stripped, unicode.IsDigit) {
		return ""
	}

	lower := strings.ToLower(stripped)
	for _, suffix := range streetSuffixes {
		if strings.Contains(lower, suffix) {
			return stripped
		}
	}
	return ""
}

var affirmativeTokens = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "yup": true, "y": true,
	"sure": true, "ok": true, "okay": true, "correct": true, "right": true,
	"1": true,
	"si": true, "sí": true, "claro": true,
}

var negativeTokens = map[string]bool{
	"no": true, "nope": true, "nah": true,
	"2": true,
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// isAffirmative reports whether the utterance contains a yes-token.
func isAffirmative(text string) bool {
	for _, token := range tokenize(text) {
		if affirmativeTokens[token] {
			return true
		}
	}
	return false
}

// isNegative reports whether the utterance contains a no-token. Token-based
// so "I don't know" does not match on the "no" inside "know".
func isNegative(text string) bool {
	for _, token := range tokenize(text) {
		if negativeTokens[token] {
			return true
		}
	}
	return false
}
