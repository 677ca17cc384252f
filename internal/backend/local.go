package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scenesmith/internal/extract"
	"scenesmith/internal/logging"
	"scenesmith/internal/scene"
)

// LocalClient talks to an OpenAI-compatible chat completions server such
// as LM Studio or llama.cpp.
type LocalClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewLocalClient creates a client for the given endpoint. baseURL may be
// empty, in which case every call fails immediately.
func NewLocalClient(baseURL, model string, timeout time.Duration) *LocalClient {
	return &LocalClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat completion request. The local server gets a
// single attempt; callers handle recovery.
func (c *LocalClient) Complete(ctx context.Context, systemMsg, userMsg string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMsg},
			{Role: "user", Content: userMsg},
		},
		Temperature: 0.1,
		MaxTokens:   4096,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var reply chatResponse
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(reply.Choices) == 0 || reply.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("response contained no completion")
	}
	return reply.Choices[0].Message.Content, nil
}

// Local generates specifications from a local model, synthesizing one
// from prompt keywords whenever the model's reply is unusable. Only a
// request that cannot be attempted at all surfaces an error.
type Local struct {
	client  *LocalClient
	baseURL string
}

// NewLocal wraps a local chat client as a generation backend.
func NewLocal(client *LocalClient) *Local {
	return &Local{client: client, baseURL: client.baseURL}
}

// Name identifies this backend in records and telemetry.
func (l *Local) Name() string { return "local" }

// Generate asks the local model for a specification. Malformed replies,
// transport failures mid-flight, and schema violations all degrade to
// keyword synthesis rather than an error.
func (l *Local) Generate(ctx context.Context, req Request) (*scene.Specification, error) {
	log := logging.Get(logging.CategoryBackend)

	if l.baseURL == "" {
		return nil, &GenerationError{
			Backend: l.Name(),
			Kind:    ErrNetwork,
			Message: "local endpoint not configured",
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, classify(l.Name(), err)
	}

	systemMsg, userMsg := BuildPrompt(req)
	reply, err := l.client.Complete(ctx, systemMsg, userMsg)
	if err != nil {
		log.Warn("local completion failed, synthesizing from keywords: %v", err)
		return Synthesize(req.Prompt), nil
	}

	raw, err := extract.Object(reply)
	if err != nil {
		log.Warn("local reply carried no JSON object, synthesizing from keywords: %v", err)
		return Synthesize(req.Prompt), nil
	}

	spec, err := scene.Parse(raw)
	if err != nil {
		log.Warn("local reply failed validation, synthesizing from keywords: %v", err)
		return Synthesize(req.Prompt), nil
	}

	log.Info("local backend produced specification %q (prior: %s)", spec.Name, specOrNil(req.Prior))
	return spec, nil
}
