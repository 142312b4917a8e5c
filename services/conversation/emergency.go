package conversation

import (
	"strings"

	"dispatchly/models"
)

const (
	// emergencyThreshold flips isEmergency outright.
	emergencyThreshold = 0.8
	// confirmThreshold opens the ambiguous band that asks the caller to confirm.
	confirmThreshold = 0.5
	// maxKeywordReasons caps how many keyword hits are recorded per turn.
	maxKeywordReasons = 3
)

// defaultEmergencyKeywords apply when a tenant has not configured their own.
var defaultEmergencyKeywords = []string{
	"burst",
	"flood",
	"flooding",
	"no water",
	"no hot water",
	"sewage",
	"sewer",
	"backing up",
	"backup",
	"gas leak",
}

// scoreEmergency combines keyword hits and the intent signal into a
// confidence. It is pure: no I/O, no session mutation. The returned
// confidence never drops below priorConfidence, and reasons extend
// priorReasons with duplicates removed, order preserved.
func scoreEmergency(
	text string,
	intentLabel string,
	keywords []string,
	priorConfidence float64,
	priorReasons []string,
) (float64, []string) {
	confidence := priorConfidence
	reasons := append([]string(nil), priorReasons...)
	seen := make(map[string]bool, len(reasons))
	for _, r := range reasons {
		seen[r] = true
	}
	addReason := func(r string) {
		if !seen[r] {
			seen[r] = true
			reasons = append(reasons, r)
		}
	}

	lower := strings.ToLower(text)
	hits := 0
	for _, keyword := range keywords {
		if keyword == "" || !strings.Contains(lower, keyword) {
			continue
		}
		hits++
		if hits <= maxKeywordReasons {
			addReason("keyword:" + keyword)
		}
	}
	if hits > 0 {
		keywordConfidence := 0.6 + 0.1*float64(hits)
		if keywordConfidence > 0.9 {
			keywordConfidence = 0.9
		}
		if keywordConfidence > confidence {
			confidence = keywordConfidence
		}
	}

	if intentLabel == models.IntentEmergency {
		addReason("intent:emergency")
		if confidence < 0.85 {
			confidence = 0.85
		}
	}

	return confidence, reasons
}

// reasonLabel turns a tagged reason into caller-facing wording for the
// confirmation question.
func reasonLabel(reasons []string) string {
	if len(reasons) == 0 {
		return "urgent issue"
	}
	first := reasons[0]
	if kw, ok := strings.CutPrefix(first, "keyword:"); ok {
		return kw
	}
	if strings.HasPrefix(first, "intent:") {
		return "urgent issue"
	}
	return first
}
