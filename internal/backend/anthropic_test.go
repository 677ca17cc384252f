package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAnthropicClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("Expected test-key in x-api-key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("Expected anthropic-version header")
		}

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["max_tokens"] == nil {
			t.Error("Expected max_tokens in request body")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"content": [
				{"type": "text", "text": "part one "},
				{"type": "text", "text": "part two"}
			]
		}`))
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key")
	client.baseURL = server.URL

	resp, err := client.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp != "part one part two" {
		t.Errorf("Expected concatenated text parts, got %q", resp)
	}
}

func TestAnthropicClient_Complete_RetryOn429(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"content": [{"type": "text", "text": "ok"}]}`))
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key")
	client.baseURL = server.URL
	client.backoff = time.Millisecond

	resp, err := client.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts (2 retries), got %d", attempts)
	}
	if resp != "ok" {
		t.Errorf("Unexpected response: %q", resp)
	}
}

func TestAnthropicClient_Complete_NoRetryOn401(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"type": "authentication_error"}}`))
	}))
	defer server.Close()

	client := NewAnthropicClient("bad-key")
	client.baseURL = server.URL
	client.backoff = time.Millisecond

	_, err := client.Complete(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}
	if attempts != 1 {
		t.Errorf("Expected single attempt for 401, got %d", attempts)
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", apiErr.Status)
	}
}

func TestAnthropicClient_Complete_MissingKey(t *testing.T) {
	client := NewAnthropicClient("")

	_, err := client.Complete(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("Expected error when API key is empty")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.Status != 401 {
		t.Errorf("Expected status 401, got %d", apiErr.Status)
	}
}

func TestAnthropicClient_Complete_ExhaustedRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key")
	client.baseURL = server.URL
	client.backoff = time.Millisecond

	_, err := client.Complete(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}
