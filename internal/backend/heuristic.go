package backend

import (
	"regexp"

	"scenesmith/internal/scene"
)

// Heuristic synthesis builds a valid Specification directly from prompt
// keywords when the local server's reply is unusable. Pattern tables are
// ordered slices so identical prompts always synthesize identical
// specifications.

var trigPattern = regexp.MustCompile(`(?i)\b(sin|sine|cos|cosine|trig\w*)\b`)

// shapePatterns map a shape keyword to its object kind, checked in order.
var shapePatterns = []struct {
	re   *regexp.Regexp
	kind scene.ObjectKind
	name string
}{
	{regexp.MustCompile(`(?i)\bcircles?\b`), scene.KindCircle, "circle"},
	{regexp.MustCompile(`(?i)\bsquares?\b`), scene.KindSquare, "square"},
	{regexp.MustCompile(`(?i)\brectangles?\b`), scene.KindRectangle, "rectangle"},
	{regexp.MustCompile(`(?i)\btriangles?\b`), scene.KindTriangle, "triangle"},
	{regexp.MustCompile(`(?i)\bellipses?\b`), scene.KindEllipse, "ellipse"},
	{regexp.MustCompile(`(?i)\blines?\b`), scene.KindLine, "line"},
	{regexp.MustCompile(`(?i)\bdots?\b`), scene.KindDot, "dot"},
	{regexp.MustCompile(`(?i)\b(text|label|words?|title)\b`), scene.KindText, "label"},
}

// colorPatterns are checked in order; the first hit wins.
var colorPatterns = []struct {
	re    *regexp.Regexp
	color string
}{
	{regexp.MustCompile(`(?i)\bred\b`), "red"},
	{regexp.MustCompile(`(?i)\bblue\b`), "blue"},
	{regexp.MustCompile(`(?i)\bgreen\b`), "green"},
	{regexp.MustCompile(`(?i)\byellow\b`), "yellow"},
	{regexp.MustCompile(`(?i)\borange\b`), "orange"},
	{regexp.MustCompile(`(?i)\bpurple\b`), "purple"},
	{regexp.MustCompile(`(?i)\bpink\b`), "pink"},
	{regexp.MustCompile(`(?i)\bwhite\b`), "white"},
	{regexp.MustCompile(`(?i)\bblack\b`), "black"},
}

// motionPatterns append animation steps after the create, in table order.
// Fade-out must be tested before the generic fade.
var motionPatterns = []struct {
	re   *regexp.Regexp
	kind scene.StepKind
}{
	{regexp.MustCompile(`(?i)\b(fades?\s+out|fading\s+out|disappears?|vanish\w*)\b`), scene.StepFadeOut},
	{regexp.MustCompile(`(?i)\b(fades?|fading|appears?)\b`), scene.StepFadeIn},
	{regexp.MustCompile(`(?i)\b(rotates?|rotating|spins?|spinning|turns?)\b`), scene.StepRotate},
	{regexp.MustCompile(`(?i)\b(moves?|moving|shifts?|slides?|sliding)\b`), scene.StepMove},
	{regexp.MustCompile(`(?i)\b(grows?|growing|scales?|scaling|shrinks?|shrinking)\b`), scene.StepScale},
}

// Synthesize matches the prompt against the canonical pattern table and
// builds a specification directly. It always returns a valid spec; the
// final fallback is the minimal one-object scene.
func Synthesize(prompt string) *scene.Specification {
	if trigPattern.MatchString(prompt) {
		return trigScene()
	}

	for _, sp := range shapePatterns {
		if !sp.re.MatchString(prompt) {
			continue
		}
		return shapeScene(prompt, sp.kind, sp.name)
	}

	return scene.MinimalSpecification()
}

// trigScene is the canonical dual-graph pattern: axes plus sine and
// cosine curves.
func trigScene() *scene.Specification {
	return &scene.Specification{
		Name: "TrigScene",
		Objects: []scene.SceneObject{
			{Name: "plane", Kind: scene.KindAxes, Properties: map[string]interface{}{
				"x-range": []interface{}{-6.0, 6.0, 1.0},
				"y-range": []interface{}{-1.5, 1.5, 0.5},
			}},
			{Name: "sin_graph", Kind: scene.KindFunctionGraph, Properties: map[string]interface{}{
				"expression": "np.sin(x)",
				"color":      "blue",
			}},
			{Name: "cos_graph", Kind: scene.KindFunctionGraph, Properties: map[string]interface{}{
				"expression": "np.cos(x)",
				"color":      "red",
			}},
		},
		Steps: []scene.AnimationStep{
			{Kind: scene.StepCreate, Target: "plane", Duration: 1.0},
			{Kind: scene.StepCreate, Target: "sin_graph", Duration: 1.5},
			{Kind: scene.StepCreate, Target: "cos_graph", Duration: 1.5, WaitAfter: 1.0},
		},
	}
}

// shapeScene is the single-primitive pattern: one object of the detected
// kind, optional color, create step, then any detected motions.
func shapeScene(prompt string, kind scene.ObjectKind, name string) *scene.Specification {
	props := map[string]interface{}{}
	for _, cp := range colorPatterns {
		if cp.re.MatchString(prompt) {
			props["color"] = cp.color
			break
		}
	}
	if kind == scene.KindText {
		props["content"] = "Hello"
	}
	if len(props) == 0 {
		props = nil
	}

	spec := &scene.Specification{
		Name: "ShapeScene",
		Objects: []scene.SceneObject{
			{Name: name, Kind: kind, Properties: props},
		},
		Steps: []scene.AnimationStep{
			{Kind: scene.StepCreate, Target: name, Duration: 1.0},
		},
	}

	matched := map[scene.StepKind]bool{}
	for _, mp := range motionPatterns {
		if !mp.re.MatchString(prompt) {
			continue
		}
		// "fades out" also satisfies the bare fade pattern.
		if mp.kind == scene.StepFadeIn && matched[scene.StepFadeOut] {
			continue
		}
		matched[mp.kind] = true
		spec.Steps = append(spec.Steps, scene.AnimationStep{
			Kind:     mp.kind,
			Target:   name,
			Duration: 1.0,
		})
	}

	return spec
}
