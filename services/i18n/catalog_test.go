package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLocale(t *testing.T) {
	assert.Equal(t, "en", NormalizeLocale("en"))
	assert.Equal(t, "es", NormalizeLocale("es"))
	assert.Equal(t, "es", NormalizeLocale("es-MX"))
	assert.Equal(t, "en", NormalizeLocale("en_US"))
	assert.Equal(t, "en", NormalizeLocale("fr"))
	assert.Equal(t, "en", NormalizeLocale(""))
}

func TestTextSubstitutesVars(t *testing.T) {
	got := Text("en", "schedule_propose", Vars{"when": "Monday at 9:00 AM"})
	assert.Equal(t, "I can book you for Monday at 9:00 AM. Does that time work for you?", got)
}

func TestTextSpanish(t *testing.T) {
	got := Text("es-419", "schedule_question", nil)
	assert.Equal(t, "¿Quieres que busque la siguiente cita disponible?", got)
}

func TestTextFallbacks(t *testing.T) {
	// Unknown locale falls back to English.
	assert.Equal(t,
		Text("en", "schedule_question", nil),
		Text("de", "schedule_question", nil))

	// Unknown key returns the key so callers always have a reply.
	assert.Equal(t, "no_such_key", Text("en", "no_such_key", nil))
}

func TestEveryEnglishKeyHasSpanish(t *testing.T) {
	for key := range conversationStrings["en"] {
		_, ok := conversationStrings["es"][key]
		assert.True(t, ok, "missing Spanish translation for %q", key)
	}
}
