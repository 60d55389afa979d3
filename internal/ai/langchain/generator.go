// Package langchain adapts any langchaingo model to the matcher backend.
package langchain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const defaultModel = "gemini-2.5-flash"

type Generator struct {
	llm   llms.Model
	model string
}

func New(llm llms.Model, model string) *Generator {
	return &Generator{llm: llm, model: model}
}

// NewGoogleAI builds a generator on the langchaingo Google AI provider.
func NewGoogleAI(ctx context.Context, apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("google ai api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create googleai client: %w", err)
	}

	return New(llm, model), nil
}

func (g *Generator) GenerateContent(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if g == nil || g.llm == nil {
		return "", errors.New("langchain generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var messages []llms.MessageContent
	if s := strings.TrimSpace(systemInstruction); s != "" {
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(s)},
		})
	}
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(prompt)},
	})

	resp, err := g.llm.GenerateContent(ctx, messages, llms.WithJSONMode(), llms.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}

	out := strings.TrimSpace(resp.Choices[0].Content)
	if out == "" {
		return "", errors.New("model returned empty response")
	}

	return out, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
