package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() *Specification {
	return &Specification{
		Name:       "DemoScene",
		Background: "#1e1e2e",
		Resolution: Resolution{Width: 1920, Height: 1080},
		Imports:    []string{"from manim import *"},
		Objects: []SceneObject{
			{Name: "ball", Kind: KindCircle, Properties: map[string]interface{}{"radius": 0.5, "color": "red"}},
			{Name: "label", Kind: KindText, Properties: map[string]interface{}{"content": "hello"}},
		},
		Steps: []AnimationStep{
			{Kind: StepCreate, Target: "ball", Duration: 1.0},
			{Kind: StepFadeIn, Target: "label", Duration: 0.5, WaitAfter: 0.25},
		},
		Constraints: map[string]interface{}{"max_duration": 30.0},
	}
}

func TestValidateAcceptsWellFormedSpec(t *testing.T) {
	require.NoError(t, validSpec().Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Specification)
		field   string
	}{
		{"missing name", func(s *Specification) { s.Name = "" }, "name"},
		{"name not identifier", func(s *Specification) { s.Name = "123 scene" }, "name"},
		{"negative width", func(s *Specification) { s.Resolution.Width = -1 }, "resolution.width"},
		{"negative height", func(s *Specification) { s.Resolution.Height = -10 }, "resolution.height"},
		{"object missing name", func(s *Specification) { s.Objects[0].Name = "" }, "objects[0].name"},
		{"object name not identifier", func(s *Specification) { s.Objects[1].Name = "my-ball" }, "objects[1].name"},
		{"object missing kind", func(s *Specification) { s.Objects[0].Kind = "" }, "objects[0].kind"},
		{"object kind outside enum", func(s *Specification) { s.Objects[0].Kind = "hexagon" }, "objects[0].kind"},
		{"duplicate object name", func(s *Specification) { s.Objects[1].Name = "ball" }, "objects[1].name"},
		{"step missing kind", func(s *Specification) { s.Steps[0].Kind = "" }, "steps[0].kind"},
		{"step kind outside enum", func(s *Specification) { s.Steps[1].Kind = "teleport" }, "steps[1].kind"},
		{"negative duration", func(s *Specification) { s.Steps[0].Duration = -0.1 }, "steps[0].duration"},
		{"negative wait_after", func(s *Specification) { s.Steps[1].WaitAfter = -1 }, "steps[1].wait_after"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(spec)

			err := spec.Validate()
			require.Error(t, err)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr), "expected *SchemaError, got %T", err)
			assert.Equal(t, tt.field, schemaErr.Field)
		})
	}
}

func TestValidateAllowsDanglingStepTarget(t *testing.T) {
	spec := validSpec()
	spec.Steps[0].Target = "ghost"
	require.NoError(t, spec.Validate())
}

func TestParseRejectsNonObjectPayload(t *testing.T) {
	_, err := Parse([]byte(`["not", "a", "spec"]`))
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
}

func TestParseValidates(t *testing.T) {
	_, err := Parse([]byte(`{"name":"Scene","objects":[{"name":"a","kind":"warp"}],"steps":[]}`))
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "objects[0].kind", schemaErr.Field)
}

func TestMinimalSpecificationValidates(t *testing.T) {
	spec := MinimalSpecification()
	require.NoError(t, spec.Validate())
	assert.Len(t, spec.Objects, 1)
	assert.Len(t, spec.Steps, 1)
	assert.Equal(t, KindCircle, spec.Objects[0].Kind)
	assert.Equal(t, StepCreate, spec.Steps[0].Kind)
}
