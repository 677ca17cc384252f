package backend

import (
	"context"

	"scenesmith/internal/extract"
	"scenesmith/internal/logging"
	"scenesmith/internal/scene"
)

// ProviderClient is the transport a Remote backend speaks through.
type ProviderClient interface {
	Provider() string
	Complete(ctx context.Context, systemMsg, userMsg string) (string, error)
}

// Remote generates specifications through a hosted text-generation
// provider. Any extraction or validation failure of the provider's reply
// is a malformed-output GenerationError; transport failures map to
// network/auth/timeout.
type Remote struct {
	client ProviderClient
}

// NewRemote wraps a provider client.
func NewRemote(client ProviderClient) *Remote {
	return &Remote{client: client}
}

// Name identifies this backend in records and counters.
func (r *Remote) Name() string { return "remote" }

// Provider exposes the underlying provider identifier for telemetry.
func (r *Remote) Provider() string { return r.client.Provider() }

// Generate implements Backend.
func (r *Remote) Generate(ctx context.Context, req Request) (*scene.Specification, error) {
	log := logging.Get(logging.CategoryBackend)
	systemMsg, userMsg := BuildPrompt(req)

	log.Debug("remote: generating via %s (prior=%s)", r.client.Provider(), specOrNil(req.Prior))
	reply, err := r.client.Complete(ctx, systemMsg, userMsg)
	if err != nil {
		genErr := classify(r.Name(), err)
		log.Warn("remote: provider call failed: %v", genErr)
		return nil, genErr
	}

	raw, err := extract.Object(reply)
	if err != nil {
		log.Warn("remote: reply carried no usable JSON: %v", err)
		return nil, &GenerationError{
			Backend: r.Name(),
			Kind:    ErrMalformedOutput,
			Message: "reply carried no usable JSON object",
			Err:     err,
		}
	}

	spec, err := scene.Parse(raw)
	if err != nil {
		log.Warn("remote: extracted JSON failed validation: %v", err)
		return nil, &GenerationError{
			Backend: r.Name(),
			Kind:    ErrMalformedOutput,
			Message: "extracted JSON is not a valid specification",
			Err:     err,
		}
	}

	log.Info("remote: generated %q (%d objects, %d steps)", spec.Name, len(spec.Objects), len(spec.Steps))
	return spec, nil
}
