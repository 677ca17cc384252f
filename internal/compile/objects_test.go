package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scenesmith/internal/scene"
)

func compileSingle(t *testing.T, obj scene.SceneObject) string {
	t.Helper()
	res := Compile(&scene.Specification{Name: "One", Objects: []scene.SceneObject{obj}})
	assert.Empty(t, res.Substitutions)
	return res.Program
}

func TestObjectConstructors(t *testing.T) {
	tests := []struct {
		name string
		obj  scene.SceneObject
		want string
	}{
		{
			name: "square defaults",
			obj:  scene.SceneObject{Name: "s", Kind: scene.KindSquare},
			want: "s = Square(side_length=2, color=WHITE)",
		},
		{
			name: "rectangle with size",
			obj: scene.SceneObject{Name: "r", Kind: scene.KindRectangle, Properties: map[string]interface{}{
				"width": 3.5, "height": 1.0, "color": "blue",
			}},
			want: "r = Rectangle(width=3.5, height=1, color=BLUE)",
		},
		{
			name: "text content",
			obj: scene.SceneObject{Name: "t", Kind: scene.KindText, Properties: map[string]interface{}{
				"content": "E = mc^2", "font-size": 48.0,
			}},
			want: `t = Text("E = mc^2", font_size=48)`,
		},
		{
			name: "tex raw string",
			obj: scene.SceneObject{Name: "eq", Kind: scene.KindTexLabel, Properties: map[string]interface{}{
				"content": `\frac{a}{b}`,
			}},
			want: `eq = MathTex(r"\frac{a}{b}")`,
		},
		{
			name: "line endpoints padded to three components",
			obj: scene.SceneObject{Name: "l", Kind: scene.KindLine, Properties: map[string]interface{}{
				"start": []interface{}{-2.0, 1.0}, "end": []interface{}{2.0, -1.0},
			}},
			want: "l = Line(start=[-2, 1, 0], end=[2, -1, 0], color=WHITE)",
		},
		{
			name: "dot defaults",
			obj:  scene.SceneObject{Name: "d", Kind: scene.KindDot},
			want: "d = Dot(point=[0, 0, 0], color=WHITE)",
		},
		{
			name: "axes ranges kept verbatim",
			obj: scene.SceneObject{Name: "ax", Kind: scene.KindAxes, Properties: map[string]interface{}{
				"x-range": []interface{}{-6.0, 6.0, 1.0},
			}},
			want: "ax = Axes(x_range=[-6, 6, 1], y_range=[-3, 3, 1])",
		},
		{
			name: "number line",
			obj:  scene.SceneObject{Name: "nl", Kind: scene.KindNumberLine},
			want: "nl = NumberLine(x_range=[-5, 5, 1])",
		},
		{
			name: "number plane",
			obj:  scene.SceneObject{Name: "np_", Kind: scene.KindNumberPlane},
			want: "np_ = NumberPlane()",
		},
		{
			name: "function graph expression verbatim",
			obj: scene.SceneObject{Name: "f", Kind: scene.KindFunctionGraph, Properties: map[string]interface{}{
				"expression": "np.sin(x)",
			}},
			want: "f = FunctionGraph(lambda x: np.sin(x))",
		},
		{
			name: "polygon default triangle",
			obj:  scene.SceneObject{Name: "p", Kind: scene.KindPolygon},
			want: "p = Polygon([0, 1, 0], [-1, -1, 0], [1, -1, 0], color=WHITE)",
		},
		{
			name: "arc default quarter turn",
			obj:  scene.SceneObject{Name: "a", Kind: scene.KindArc},
			want: "a = Arc(radius=1, start_angle=0, angle=PI / 2)",
		},
		{
			name: "svg file",
			obj: scene.SceneObject{Name: "v", Kind: scene.KindVectorGraphic, Properties: map[string]interface{}{
				"file": "logo.svg",
			}},
			want: `v = SVGMobject("logo.svg")`,
		},
		{
			name: "image default",
			obj:  scene.SceneObject{Name: "img", Kind: scene.KindImage},
			want: `img = ImageMobject("image.png")`,
		},
		{
			name: "brace with target",
			obj: scene.SceneObject{Name: "b", Kind: scene.KindBrace, Properties: map[string]interface{}{
				"target": "seg",
			}},
			want: "b = Brace(seg)",
		},
		{
			name: "brace without target",
			obj:  scene.SceneObject{Name: "b", Kind: scene.KindBrace},
			want: "b = Brace(Line(LEFT, RIGHT))",
		},
		{
			name: "bounding box without target",
			obj:  scene.SceneObject{Name: "bb", Kind: scene.KindBoundingBox},
			want: "bb = SurroundingRectangle(Dot())",
		},
		{
			name: "group members",
			obj: scene.SceneObject{Name: "g", Kind: scene.KindGroup, Properties: map[string]interface{}{
				"members": []interface{}{"a", "b"},
			}},
			want: "g = VGroup(a, b)",
		},
		{
			name: "group empty",
			obj:  scene.SceneObject{Name: "g", Kind: scene.KindGroup},
			want: "g = VGroup()",
		},
		{
			name: "parametric curve defaults",
			obj:  scene.SceneObject{Name: "pc", Kind: scene.KindParametricCurve},
			want: "pc = ParametricFunction(lambda t: np.array([np.cos(t), np.sin(t), 0]), t_range=[0, TAU])",
		},
		{
			name: "table rows quoted",
			obj: scene.SceneObject{Name: "tbl", Kind: scene.KindTable, Properties: map[string]interface{}{
				"rows": []interface{}{
					[]interface{}{"x", "y"},
					[]interface{}{"1", "2"},
				},
			}},
			want: `tbl = Table([["x", "y"], ["1", "2"]])`,
		},
		{
			name: "matrix defaults",
			obj:  scene.SceneObject{Name: "m", Kind: scene.KindMatrix},
			want: "m = Matrix([[1, 2], [3, 4]])",
		},
		{
			name: "code block",
			obj:  scene.SceneObject{Name: "cb", Kind: scene.KindCodeBlock},
			want: `cb = Code(code_string="print('hello')", language="python")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := compileSingle(t, tt.obj)
			assert.Contains(t, program, tt.want)
		})
	}
}

func TestObjectConstructors_MalformedListFallsBack(t *testing.T) {
	program := compileSingle(t, scene.SceneObject{
		Name: "l", Kind: scene.KindLine, Properties: map[string]interface{}{
			"start": []interface{}{"left", "edge"},
		},
	})
	assert.Contains(t, program, "l = Line(start=[-1, 0, 0], end=[1, 0, 0], color=WHITE)")
}
