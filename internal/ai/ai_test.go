package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/formfill/internal/form"
)

func TestParseSuggestionsJSON(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     map[string]string
	}{
		{
			name:     "bare object",
			response: `{"username": "janedoe", "country": "France"}`,
			want:     map[string]string{"username": "janedoe", "country": "France"},
		},
		{
			name:     "wrapped in prose",
			response: "Here you go:\n```json\n{\"email\": \"jane@example.com\"}\n```",
			want:     map[string]string{"email": "jane@example.com"},
		},
		{
			name:     "braces inside strings",
			response: `Sure: {"bio": "likes {curly} braces", "q": "a\"}b"} thanks`,
			want:     map[string]string{"bio": "likes {curly} braces", "q": `a"}b`},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseSuggestionsJSON(tc.response)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseSuggestionsJSONErrors(t *testing.T) {
	for _, response := range []string{
		"I cannot help with that",
		`{"username": "jane"`,
		`{"age": 42}`,
	} {
		_, err := parseSuggestionsJSON(response)
		assert.Error(t, err, response)
	}
}

func TestBuildUserPrompt(t *testing.T) {
	prompt, err := buildUserPrompt("https://example.com/signup", []form.Descriptor{
		{Category: form.TextInput, Name: "email", Type: "email"},
		{Category: form.Dropdown, Name: "country", Type: "select"},
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "Page: https://example.com/signup")
	assert.Contains(t, prompt, `"name": "email"`)
	assert.Contains(t, prompt, `"category": "dropdown"`)
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider("gemini", "")
	assert.ErrorContains(t, err, "unknown provider")

	t.Setenv("FORMFILL_ANTHROPIC_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err = NewProvider("claude", "")
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")

	t.Setenv("FORMFILL_OPENAI_KEY", "test-key")
	p, err := NewProvider("openai", "")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.(*OpenAIProvider).model)
}
