package intelligence

import (
	"context"
	"strings"

	"dispatchly/models"
)

// phraseRule scores an utterance containing the phrase.
type phraseRule struct {
	phrase     string
	intent     string
	confidence float64
}

// Rules are checked in order; the first hit wins, so more specific phrases
// come before generic ones.
var keywordRules = []phraseRule{
	{"gas leak", models.IntentEmergency, 0.95},
	{"burst", models.IntentEmergency, 0.9},
	{"flooding", models.IntentEmergency, 0.9},
	{"flood", models.IntentEmergency, 0.85},
	{"sewage", models.IntentEmergency, 0.85},
	{"emergency", models.IntentEmergency, 0.9},
	{"emergencia", models.IntentEmergency, 0.9},
	{"fuga de gas", models.IntentEmergency, 0.95},
	{"inundación", models.IntentEmergency, 0.9},

	{"reschedule", models.IntentReschedule, 0.85},
	{"move my appointment", models.IntentReschedule, 0.85},
	{"different time", models.IntentReschedule, 0.7},
	{"reprogramar", models.IntentReschedule, 0.85},
	{"cambiar mi cita", models.IntentReschedule, 0.85},

	{"cancel", models.IntentCancel, 0.85},
	{"cancelar", models.IntentCancel, 0.85},

	{"how much", models.IntentFAQ, 0.7},
	{"what do you charge", models.IntentFAQ, 0.7},
	{"do you service", models.IntentFAQ, 0.6},
	{"cuánto cuesta", models.IntentFAQ, 0.7},

	{"appointment", models.IntentSchedule, 0.75},
	{"schedule", models.IntentSchedule, 0.75},
	{"book", models.IntentSchedule, 0.7},
	{"come out", models.IntentSchedule, 0.6},
	{"agendar", models.IntentSchedule, 0.75},
	{"una cita", models.IntentSchedule, 0.7},

	{"hello", models.IntentGreeting, 0.5},
	{"hi ", models.IntentGreeting, 0.5},
	{"hola", models.IntentGreeting, 0.5},
}

// KeywordClassifier is the deterministic fallback classifier. It never fails,
// so it can back safety-critical flows when the LLM provider is down.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier { return &KeywordClassifier{} }

func (c *KeywordClassifier) Classify(_ context.Context, req Request) (models.IntentResult, error) {
	text := " " + strings.ToLower(strings.TrimSpace(req.Utterance)) + " "
	for _, rule := range keywordRules {
		if strings.Contains(text, rule.phrase) {
			return models.IntentResult{
				Intent:     rule.intent,
				Confidence: rule.confidence,
				Provider:   "keyword",
			}, nil
		}
	}
	return models.IntentResult{Intent: models.IntentOther, Confidence: 0, Provider: "keyword"}, nil
}
