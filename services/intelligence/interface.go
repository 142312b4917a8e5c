package intelligence

import (
	"context"

	"dispatchly/models"
)

// Request carries one utterance plus the dialogue context a classifier may
// use to disambiguate it.
type Request struct {
	Utterance    string
	LanguageCode string
	BusinessID   string
	// History holds the caller's most recent prior utterances, oldest first.
	History []string
}

// IntentClassifier labels a caller utterance with an intent and a confidence
// in [0,1]. Implementations must be safe for concurrent use.
type IntentClassifier interface {
	Classify(ctx context.Context, req Request) (models.IntentResult, error)
}
