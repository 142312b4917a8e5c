package conversation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"my name is Jane Doe", "Jane Doe"},
		{"My name is Jane Doe.", "Jane Doe"},
		{"this is Bob Smith", "Bob Smith"},
		{"I'm Maria", "Maria"},
		{"Jane Doe", "Jane Doe"},
		{"supercalifragilisticexpialidocious", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, parseName(tc.input), "input: %q", tc.input)
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"123 Main St", "123 Main St"},
		{"it's 42 Elm Street, apartment 3", "it's 42 Elm Street, apartment 3"},
		{"9 Oak Avenue", "9 Oak Avenue"},
		// No digits: not confident enough.
		{"Main Street", ""},
		// Digits but no street suffix.
		{"call me at 555-1234", ""},
		{"", ""},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, parseAddress(tc.input), "input: %q", tc.input)
	}
}

func TestAffirmativeAndNegative(t *testing.T) {
	for _, text := range []string{"yes", "Yeah!", "yep", "sure thing", "OK", "1", "sí, claro"} {
		require.True(t, isAffirmative(text), "expected affirmative: %q", text)
	}
	for _, text := range []string{"no", "Nope.", "nah", "2"} {
		require.True(t, isNegative(text), "expected negative: %q", text)
	}

	// "no" inside a word must not count as negation.
	require.False(t, isNegative("I know the address"), `"know" is not a no`)
	require.False(t, isNegative("november works"), "substring match is too eager")
	require.False(t, isAffirmative("yesterday it broke"), `"yesterday" is not a yes`)

	require.False(t, isAffirmative(""))
	require.False(t, isNegative(""))
}
