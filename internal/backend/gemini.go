package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the official SDK.
type GeminiClient struct {
	apiKey string
	model  string

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiClient creates a Gemini client. The underlying SDK client is
// built lazily on first use so a misconfigured key surfaces as a call
// failure, not a construction failure.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiClient{apiKey: apiKey, model: model}
}

// Provider returns the provider identifier.
func (c *GeminiClient) Provider() string { return "gemini" }

// Complete sends one prompt pair and returns the text completion.
func (c *GeminiClient) Complete(ctx context.Context, systemMsg, userMsg string) (string, error) {
	if c.apiKey == "" {
		return "", &APIError{Status: 401, Body: "API key not configured"}
	}

	c.once.Do(func() {
		c.client, c.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: c.apiKey,
		})
	})
	if c.initErr != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", c.initErr)
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.1),
	}
	if systemMsg != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemMsg, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(userMsg, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("Gemini request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no completion returned")
	}
	return text, nil
}
