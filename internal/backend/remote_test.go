package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenesmith/internal/scene"
)

// stubProvider returns a canned reply or error and records the last
// prompt pair it saw.
type stubProvider struct {
	reply      string
	err        error
	lastSystem string
	lastUser   string
}

func (s *stubProvider) Provider() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, systemMsg, userMsg string) (string, error) {
	s.lastSystem = systemMsg
	s.lastUser = userMsg
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestRemote_Generate_Success(t *testing.T) {
	stub := &stubProvider{reply: "Sure, here is the scene:\n```json\n" +
		`{"name": "Orbit", "objects": [{"name": "planet", "kind": "circle"}], "steps": [{"kind": "create", "target": "planet", "duration": 2}]}` +
		"\n```\nLet me know if you need changes."}
	remote := NewRemote(stub)

	spec, err := remote.Generate(context.Background(), Request{Prompt: "a planet"})
	require.NoError(t, err)
	assert.Equal(t, "Orbit", spec.Name)
	require.Len(t, spec.Objects, 1)
	assert.Equal(t, scene.KindCircle, spec.Objects[0].Kind)
	require.Len(t, spec.Steps, 1)
	assert.Equal(t, 2.0, spec.Steps[0].Duration)
}

func TestRemote_Generate_MalformedReply(t *testing.T) {
	stub := &stubProvider{reply: "I am unable to produce a scene for that."}
	remote := NewRemote(stub)

	_, err := remote.Generate(context.Background(), Request{Prompt: "a planet"})
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ErrMalformedOutput, genErr.Kind)
	assert.Equal(t, "remote", genErr.Backend)
}

func TestRemote_Generate_SchemaViolation(t *testing.T) {
	// Valid JSON, but the name field is missing.
	stub := &stubProvider{reply: `{"objects": [], "steps": []}`}
	remote := NewRemote(stub)

	_, err := remote.Generate(context.Background(), Request{Prompt: "a planet"})
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ErrMalformedOutput, genErr.Kind)

	var schemaErr *scene.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestRemote_Generate_TransportError(t *testing.T) {
	stub := &stubProvider{err: &APIError{Status: 500, Body: "upstream exploded"}}
	remote := NewRemote(stub)

	_, err := remote.Generate(context.Background(), Request{Prompt: "a planet"})
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ErrNetwork, genErr.Kind)
}

func TestRemote_Generate_AuthError(t *testing.T) {
	stub := &stubProvider{err: &APIError{Status: 401, Body: "invalid x-api-key"}}
	remote := NewRemote(stub)

	_, err := remote.Generate(context.Background(), Request{Prompt: "a planet"})
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ErrAuth, genErr.Kind)
}

func TestRemote_Generate_Timeout(t *testing.T) {
	stub := &stubProvider{err: context.DeadlineExceeded}
	remote := NewRemote(stub)

	_, err := remote.Generate(context.Background(), Request{Prompt: "a planet"})
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ErrTimeout, genErr.Kind)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRemote_Generate_RefinementEmbedsPrior(t *testing.T) {
	prior := &scene.Specification{
		Name:    "FirstDraft",
		Objects: []scene.SceneObject{{Name: "ball", Kind: scene.KindCircle}},
		Steps:   []scene.AnimationStep{{Kind: scene.StepCreate, Target: "ball"}},
	}
	stub := &stubProvider{reply: `{"name": "SecondDraft", "objects": [{"name": "ball", "kind": "circle"}], "steps": []}`}
	remote := NewRemote(stub)

	spec, err := remote.Generate(context.Background(), Request{Prompt: "make it bounce", Prior: prior})
	require.NoError(t, err)
	assert.Equal(t, "SecondDraft", spec.Name)

	assert.True(t, strings.Contains(stub.lastUser, `"FirstDraft"`),
		"refinement prompt should embed the prior specification")
	assert.True(t, strings.Contains(stub.lastUser, "make it bounce"))
}
