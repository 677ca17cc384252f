package backend

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"scenesmith/internal/scene"
)

func TestSynthesize_Deterministic(t *testing.T) {
	prompts := []string{
		"Create a red circle that fades in",
		"plot sine and cosine",
		"complete gibberish with no scene words",
	}
	for _, p := range prompts {
		first := Synthesize(p)
		second := Synthesize(p)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Synthesize(%q) not deterministic (-first +second):\n%s", p, diff)
		}
	}
}

func TestSynthesize_TrigPrompt(t *testing.T) {
	spec := Synthesize("show me the sine and cosine functions")

	if len(spec.Objects) != 3 {
		t.Fatalf("Expected axes plus two graphs, got %d objects", len(spec.Objects))
	}
	if spec.Objects[0].Kind != scene.KindAxes {
		t.Errorf("Expected axes first, got %s", spec.Objects[0].Kind)
	}
	if spec.Objects[1].Kind != scene.KindFunctionGraph || spec.Objects[2].Kind != scene.KindFunctionGraph {
		t.Error("Expected two function graphs")
	}
	if spec.Objects[1].Properties["expression"] != "np.sin(x)" {
		t.Errorf("Expected sine expression, got %v", spec.Objects[1].Properties["expression"])
	}
	if len(spec.Steps) != 3 {
		t.Errorf("Expected three create steps, got %d", len(spec.Steps))
	}
}

func TestSynthesize_ShapePrompts(t *testing.T) {
	tests := []struct {
		prompt string
		kind   scene.ObjectKind
		color  string
		steps  []scene.StepKind
	}{
		{
			prompt: "Create a red circle that fades in",
			kind:   scene.KindCircle,
			color:  "red",
			steps:  []scene.StepKind{scene.StepCreate, scene.StepFadeIn},
		},
		{
			prompt: "a blue square spinning around",
			kind:   scene.KindSquare,
			color:  "blue",
			steps:  []scene.StepKind{scene.StepCreate, scene.StepRotate},
		},
		{
			prompt: "green triangle sliding to the right",
			kind:   scene.KindTriangle,
			color:  "green",
			steps:  []scene.StepKind{scene.StepCreate, scene.StepMove},
		},
		{
			prompt: "a circle that fades out slowly",
			kind:   scene.KindCircle,
			color:  "",
			steps:  []scene.StepKind{scene.StepCreate, scene.StepFadeOut},
		},
		{
			prompt: "draw a dot that grows",
			kind:   scene.KindDot,
			color:  "",
			steps:  []scene.StepKind{scene.StepCreate, scene.StepScale},
		},
		{
			prompt: "show a title",
			kind:   scene.KindText,
			color:  "",
			steps:  []scene.StepKind{scene.StepCreate},
		},
	}

	for _, tt := range tests {
		spec := Synthesize(tt.prompt)

		if len(spec.Objects) != 1 {
			t.Errorf("%q: expected one object, got %d", tt.prompt, len(spec.Objects))
			continue
		}
		obj := spec.Objects[0]
		if obj.Kind != tt.kind {
			t.Errorf("%q: expected kind %s, got %s", tt.prompt, tt.kind, obj.Kind)
		}
		if tt.color != "" && obj.Properties["color"] != tt.color {
			t.Errorf("%q: expected color %s, got %v", tt.prompt, tt.color, obj.Properties)
		}

		var kinds []scene.StepKind
		for _, s := range spec.Steps {
			kinds = append(kinds, s.Kind)
		}
		if diff := cmp.Diff(tt.steps, kinds); diff != "" {
			t.Errorf("%q: step mismatch (-want +got):\n%s", tt.prompt, diff)
		}
	}
}

func TestSynthesize_TextGetsContent(t *testing.T) {
	spec := Synthesize("put some text on screen")
	if spec.Objects[0].Kind != scene.KindText {
		t.Fatalf("Expected text object, got %s", spec.Objects[0].Kind)
	}
	content, ok := spec.Objects[0].Properties["content"].(string)
	if !ok || content == "" {
		t.Error("Expected text object to carry content")
	}
}

func TestSynthesize_NoKeywordsGivesMinimalScene(t *testing.T) {
	spec := Synthesize("asdf qwerty zxcv")

	want := scene.MinimalSpecification()
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Errorf("Expected the minimal scene (-want +got):\n%s", diff)
	}
}

func TestSynthesize_AlwaysValid(t *testing.T) {
	prompts := []string{
		"Create a red circle that fades in",
		"sine wave please",
		"blue square that moves and rotates and fades out",
		"",
		"!!!???",
		"a yellow line",
	}
	for _, p := range prompts {
		if err := Synthesize(p).Validate(); err != nil {
			t.Errorf("Synthesize(%q) produced invalid specification: %v", p, err)
		}
	}
}
