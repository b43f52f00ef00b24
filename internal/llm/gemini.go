package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey string, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	return &Gemini{client, model}, nil
}

func (g *Gemini) Complete(ctx context.Context, system string, messages []Message, temperature float64) (string, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: 2048,
	}

	if temperature > 0 {
		temp := float32(temperature)
		config.Temperature = &temp
	}

	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	contents := make([]*genai.Content, len(messages))
	for i, m := range messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents[i] = &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", err
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("empty completion")
	}

	return text, nil
}

func (g *Gemini) ModelID() string {
	return g.model
}
