// Package scene defines the typed scene specification produced by the
// generation backends and consumed by the compiler. A Specification is
// built once, may be replaced wholesale by the repair ladder, and is
// never mutated in place.
package scene

import "encoding/json"

// ObjectKind enumerates the renderable object kinds.
type ObjectKind string

const (
	KindCircle          ObjectKind = "circle"
	KindSquare          ObjectKind = "square"
	KindRectangle       ObjectKind = "rectangle"
	KindEllipse         ObjectKind = "ellipse"
	KindTriangle        ObjectKind = "triangle"
	KindText            ObjectKind = "text"
	KindTexLabel        ObjectKind = "tex-label"
	KindLine            ObjectKind = "line"
	KindDot             ObjectKind = "dot"
	KindAxes            ObjectKind = "axes"
	KindNumberLine      ObjectKind = "number-line"
	KindNumberPlane     ObjectKind = "number-plane"
	KindFunctionGraph   ObjectKind = "function-graph"
	KindPolygon         ObjectKind = "polygon"
	KindArc             ObjectKind = "arc"
	KindVectorGraphic   ObjectKind = "vector-graphic"
	KindImage           ObjectKind = "image"
	KindBrace           ObjectKind = "brace"
	KindBoundingBox     ObjectKind = "bounding-box"
	KindGroup           ObjectKind = "group"
	KindParametricCurve ObjectKind = "parametric-curve"
	KindTable           ObjectKind = "table"
	KindMatrix          ObjectKind = "matrix"
	KindCodeBlock       ObjectKind = "code-block"
)

// StepKind enumerates the animation step kinds.
type StepKind string

const (
	StepCreate    StepKind = "create"
	StepTransform StepKind = "transform"
	StepMove      StepKind = "move"
	StepRotate    StepKind = "rotate"
	StepScale     StepKind = "scale"
	StepFadeIn    StepKind = "fade-in"
	StepFadeOut   StepKind = "fade-out"
	StepWait      StepKind = "wait"
	StepSetColor  StepKind = "set-color"
	StepSetStroke StepKind = "set-stroke"
	StepSetFill   StepKind = "set-fill"
)

var objectKinds = map[ObjectKind]bool{
	KindCircle: true, KindSquare: true, KindRectangle: true,
	KindEllipse: true, KindTriangle: true, KindText: true,
	KindTexLabel: true, KindLine: true, KindDot: true,
	KindAxes: true, KindNumberLine: true, KindNumberPlane: true,
	KindFunctionGraph: true, KindPolygon: true, KindArc: true,
	KindVectorGraphic: true, KindImage: true, KindBrace: true,
	KindBoundingBox: true, KindGroup: true, KindParametricCurve: true,
	KindTable: true, KindMatrix: true, KindCodeBlock: true,
}

var stepKinds = map[StepKind]bool{
	StepCreate: true, StepTransform: true, StepMove: true,
	StepRotate: true, StepScale: true, StepFadeIn: true,
	StepFadeOut: true, StepWait: true, StepSetColor: true,
	StepSetStroke: true, StepSetFill: true,
}

// KnownObjectKind reports whether k is in the fixed object enumeration.
func KnownObjectKind(k ObjectKind) bool { return objectKinds[k] }

// KnownStepKind reports whether k is in the fixed step enumeration.
func KnownStepKind(k StepKind) bool { return stepKinds[k] }

// Resolution is the output frame size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SceneObject is one renderable object. Property semantics depend on the
// kind; the compiler reads only the keys it recognizes.
type SceneObject struct {
	Name       string                 `json:"name"`
	Kind       ObjectKind             `json:"kind"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// AnimationStep is one animation statement. Target may reference a name
// absent from the object list; it is passed through unchecked.
type AnimationStep struct {
	Kind       StepKind               `json:"kind"`
	Target     string                 `json:"target,omitempty"`
	Duration   float64                `json:"duration,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	WaitAfter  float64                `json:"wait_after,omitempty"`
}

// Specification is the renderer-agnostic description of one scene.
type Specification struct {
	Name        string                 `json:"name"`
	Background  string                 `json:"background,omitempty"`
	Resolution  Resolution             `json:"resolution,omitempty"`
	Imports     []string               `json:"imports,omitempty"`
	Objects     []SceneObject          `json:"objects"`
	Steps       []AnimationStep        `json:"steps"`
	Constraints map[string]interface{} `json:"constraints,omitempty"`
}

// JSON returns the canonical serialized form. encoding/json sorts map
// keys, so serialization of equal Specifications is byte-stable.
func (s *Specification) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Clone returns a deep copy. The repair ladder builds each attempt from a
// clone so earlier attempts stay intact.
func (s *Specification) Clone() *Specification {
	if s == nil {
		return nil
	}
	out := &Specification{
		Name:       s.Name,
		Background: s.Background,
		Resolution: s.Resolution,
	}
	if s.Imports != nil {
		out.Imports = append([]string(nil), s.Imports...)
	}
	if s.Objects != nil {
		out.Objects = make([]SceneObject, len(s.Objects))
		for i, obj := range s.Objects {
			out.Objects[i] = SceneObject{
				Name:       obj.Name,
				Kind:       obj.Kind,
				Properties: cloneMap(obj.Properties),
			}
		}
	}
	if s.Steps != nil {
		out.Steps = make([]AnimationStep, len(s.Steps))
		for i, st := range s.Steps {
			out.Steps[i] = AnimationStep{
				Kind:       st.Kind,
				Target:     st.Target,
				Duration:   st.Duration,
				Parameters: cloneMap(st.Parameters),
				WaitAfter:  st.WaitAfter,
			}
		}
	}
	out.Constraints = cloneMap(s.Constraints)
	return out
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

// MinimalSpecification returns the canonical one-object, one-step scene.
// It is the repair ladder's final rung and the local backend's last
// resort; it must always validate and compile.
func MinimalSpecification() *Specification {
	return &Specification{
		Name: "GeneratedScene",
		Objects: []SceneObject{
			{Name: "shape", Kind: KindCircle},
		},
		Steps: []AnimationStep{
			{Kind: StepCreate, Target: "shape", Duration: 1.0},
		},
	}
}
