package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scenesmith/internal/scene"
)

func compileStep(step scene.AnimationStep) string {
	spec := &scene.Specification{
		Name:    "StepCase",
		Objects: []scene.SceneObject{{Name: "obj", Kind: scene.KindDot}},
		Steps:   []scene.AnimationStep{step},
	}
	return Compile(spec).Program
}

func TestStepEmission(t *testing.T) {
	tests := []struct {
		name string
		step scene.AnimationStep
		want string
	}{
		{
			name: "transform defaults to self",
			step: scene.AnimationStep{Kind: scene.StepTransform, Target: "obj"},
			want: "self.play(Transform(obj, obj), run_time=1)",
		},
		{
			name: "transform with destination",
			step: scene.AnimationStep{Kind: scene.StepTransform, Target: "obj", Parameters: map[string]interface{}{
				"to": "other",
			}},
			want: "self.play(Transform(obj, other), run_time=1)",
		},
		{
			name: "move absolute",
			step: scene.AnimationStep{Kind: scene.StepMove, Target: "obj", Duration: 2, Parameters: map[string]interface{}{
				"to": []interface{}{1.0, -1.0},
			}},
			want: "self.play(obj.animate.move_to([1, -1, 0]), run_time=2)",
		},
		{
			name: "move relative",
			step: scene.AnimationStep{Kind: scene.StepMove, Target: "obj", Parameters: map[string]interface{}{
				"by": []interface{}{0.5, 0.0},
			}},
			want: "self.play(obj.animate.shift([0.5, 0, 0]), run_time=1)",
		},
		{
			name: "move without parameters nudges right",
			step: scene.AnimationStep{Kind: scene.StepMove, Target: "obj"},
			want: "self.play(obj.animate.shift(RIGHT), run_time=1)",
		},
		{
			name: "rotate default quarter turn",
			step: scene.AnimationStep{Kind: scene.StepRotate, Target: "obj"},
			want: "self.play(Rotate(obj, angle=PI / 2), run_time=1)",
		},
		{
			name: "rotate explicit angle",
			step: scene.AnimationStep{Kind: scene.StepRotate, Target: "obj", Parameters: map[string]interface{}{
				"angle": 3.14,
			}},
			want: "self.play(Rotate(obj, angle=3.14), run_time=1)",
		},
		{
			name: "scale default factor",
			step: scene.AnimationStep{Kind: scene.StepScale, Target: "obj"},
			want: "self.play(obj.animate.scale(2), run_time=1)",
		},
		{
			name: "set color",
			step: scene.AnimationStep{Kind: scene.StepSetColor, Target: "obj", Parameters: map[string]interface{}{
				"color": "gold",
			}},
			want: "self.play(obj.animate.set_color(GOLD), run_time=1)",
		},
		{
			name: "set stroke defaults",
			step: scene.AnimationStep{Kind: scene.StepSetStroke, Target: "obj"},
			want: "self.play(obj.animate.set_stroke(color=WHITE, width=4), run_time=1)",
		},
		{
			name: "set fill with opacity",
			step: scene.AnimationStep{Kind: scene.StepSetFill, Target: "obj", Parameters: map[string]interface{}{
				"color": "#00ff00", "opacity": 0.25,
			}},
			want: `self.play(obj.animate.set_fill(color="#00ff00", opacity=0.25), run_time=1)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, compileStep(tt.step), tt.want)
		})
	}
}

func TestStepWaitAfterAppendsWait(t *testing.T) {
	program := compileStep(scene.AnimationStep{
		Kind: scene.StepFadeIn, Target: "obj", WaitAfter: 1.5,
	})
	assert.Contains(t, program, "self.play(FadeIn(obj), run_time=1)\n        self.wait(1.5)")
}
