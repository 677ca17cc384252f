// Package backend turns a free-text prompt into a scene Specification.
// Two implementations share the contract: a remote hosted provider and a
// local self-hosted server with a deterministic heuristic fallback.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"scenesmith/internal/scene"
)

// Request carries one generation request. Prior, when set, is the
// specification a refinement should start from.
type Request struct {
	Prompt string
	Prior  *scene.Specification
	UserID string
}

// Backend is the common generation contract.
type Backend interface {
	Name() string
	Generate(ctx context.Context, req Request) (*scene.Specification, error)
}

// ErrorKind classifies a generation failure.
type ErrorKind string

const (
	ErrNetwork         ErrorKind = "network"
	ErrAuth            ErrorKind = "auth"
	ErrTimeout         ErrorKind = "timeout"
	ErrMalformedOutput ErrorKind = "malformed-output"
)

// GenerationError is the only error type a Backend returns.
type GenerationError struct {
	Backend string
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s backend: %s: %s: %v", e.Backend, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s backend: %s: %s", e.Backend, e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// APIError is an HTTP-level provider failure with its status code.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.Status, e.Body)
}

// classify maps a transport-level error onto the GenerationError taxonomy.
func classify(backendName string, err error) *GenerationError {
	ge := &GenerationError{Backend: backendName, Err: err}

	var apiErr *APIError
	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		ge.Kind = ErrTimeout
		ge.Message = "request deadline exceeded"
	case errors.Is(err, context.Canceled):
		ge.Kind = ErrNetwork
		ge.Message = "request cancelled"
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case 401, 403:
			ge.Kind = ErrAuth
			ge.Message = "provider rejected credentials"
		case 408:
			ge.Kind = ErrTimeout
			ge.Message = "provider timed out"
		default:
			ge.Kind = ErrNetwork
			ge.Message = fmt.Sprintf("provider returned status %d", apiErr.Status)
		}
	case errors.As(err, &netErr) && netErr.Timeout():
		ge.Kind = ErrTimeout
		ge.Message = "network timeout"
	case looksLikeAuthFailure(err):
		ge.Kind = ErrAuth
		ge.Message = "provider rejected credentials"
	default:
		ge.Kind = ErrNetwork
		ge.Message = "transport failure"
	}

	return ge
}

func looksLikeAuthFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "api key") ||
		strings.Contains(msg, "401") ||
		strings.Contains(msg, "403")
}
