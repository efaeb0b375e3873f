// Package tools holds the deterministic tools registered with the agent.
package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
)

// TextStats reports character and word counts for a text snippet. It is
// the only tool the agent endpoint registers.
type TextStats struct{}

func (TextStats) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        "text_stats",
		Description: "Return quick statistics about the supplied text snippet.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"text": {Type: genai.TypeString, Description: "The text to analyse."},
			},
			Required: []string{"text"},
		},
	}
}

func (TextStats) Call(_ context.Context, args map[string]any) (string, error) {
	text, ok := args["text"].(string)
	if !ok {
		return "", fmt.Errorf("text_stats: missing text argument")
	}
	chars := utf8.RuneCountInString(text)
	words := len(strings.Fields(text))
	return fmt.Sprintf("Characters: %d, Words: %d", chars, words), nil
}
