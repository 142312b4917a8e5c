package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"dispatchly/models"
)

var intentLabels = []string{
	models.IntentEmergency,
	models.IntentSchedule,
	models.IntentReschedule,
	models.IntentCancel,
	models.IntentFAQ,
	models.IntentGreeting,
	models.IntentOther,
}

// GeminiClassifier labels utterances with Gemini. Failures are surfaced to
// the caller, which falls back to the keyword classifier.
type GeminiClassifier struct {
	model *genai.GenerativeModel
}

func NewGeminiClassifier(apiKey string) (*GeminiClassifier, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("models/gemini-1.5-flash")
	model.ResponseMIMEType = "application/json"
	return &GeminiClassifier{model: model}, nil
}

func (g *GeminiClassifier) Classify(ctx context.Context, req Request) (models.IntentResult, error) {
	history := "(none)"
	if len(req.History) > 0 {
		history = strings.Join(req.History, "\n")
	}
	prompt := fmt.Sprintf(
		`Classify the latest caller utterance for a home-services answering assistant.
Tenant: %s.
Utterance language: %s.
Allowed intents: %s.
Earlier caller turns, oldest first:
%s
Respond with JSON: {"intent": "<label>", "confidence": <0..1>}.
Latest utterance: %q`,
		req.BusinessID, req.LanguageCode, strings.Join(intentLabels, ", "), history, req.Utterance,
	)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return models.IntentResult{}, fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return models.IntentResult{}, fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}

	var parsed struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(sb.String()), &parsed); err != nil {
		return models.IntentResult{}, fmt.Errorf("gemini response parse error: %w", err)
	}

	result := models.IntentResult{
		Intent:     strings.ToLower(strings.TrimSpace(parsed.Intent)),
		Confidence: clamp01(parsed.Confidence),
		Provider:   "gemini",
	}
	if !validIntent(result.Intent) {
		result.Intent = models.IntentOther
	}
	return result, nil
}

func validIntent(label string) bool {
	for _, known := range intentLabels {
		if label == known {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
