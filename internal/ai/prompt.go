package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/v0xg/formfill/internal/form"
)

const systemPrompt = `You help a user fill in web forms. You will receive the URL of the page and a list of form fields, each with its name, category (text or dropdown) and input type.

For each field, suggest a short, realistic default value that a typical user would enter. Use placeholder data (e.g. "Jane Doe", "jane@example.com"), never real personal data. For dropdowns suggest the likely visible option text.

Output a JSON object mapping each field name to the suggested value. Omit fields you cannot guess.

Example output:
{"username": "janedoe", "email": "jane@example.com", "country": "United States"}

Respond ONLY with the JSON object, no explanation or markdown.`

type fieldInfo struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Type     string `json:"type"`
}

func buildUserPrompt(pageURL string, fields []form.Descriptor) (string, error) {
	infos := make([]fieldInfo, len(fields))
	for i, f := range fields {
		infos[i] = fieldInfo{Name: f.Name, Category: f.Category.String(), Type: f.Type}
	}
	fieldsJSON, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal fields: %w", err)
	}
	return "Page: " + pageURL + "\n\nFields:\n" + string(fieldsJSON), nil
}

// parseSuggestionsJSON extracts and parses a JSON object from a response that may contain surrounding text
func parseSuggestionsJSON(response string) (map[string]string, error) {
	var suggestions map[string]string
	if err := json.Unmarshal([]byte(response), &suggestions); err == nil {
		return suggestions, nil
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	// Find matching closing brace, skipping braces inside strings
	depth := 0
	end := -1
	inString := false
	escaped := false
	for i := start; i < len(response) && end == -1; i++ {
		c := response[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				end = i + 1
			}
		}
	}

	if end == -1 {
		return nil, fmt.Errorf("no matching closing brace found")
	}

	if err := json.Unmarshal([]byte(response[start:end]), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse extracted JSON: %w", err)
	}
	return suggestions, nil
}
