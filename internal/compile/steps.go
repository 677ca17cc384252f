package compile

import (
	"fmt"

	"scenesmith/internal/scene"
)

// stepStatements renders one animation step. Most kinds become a single
// self.play line; wait_after appends a self.wait. The second return is a
// substitution note when the kind was unknown.
func stepStatements(index int, step scene.AnimationStep) ([]string, string) {
	target := sanitizeIdentifier(step.Target)
	runTime := step.Duration
	if runTime <= 0 {
		runTime = 1.0
	}
	params := step.Parameters

	var stmt string
	sub := ""

	switch step.Kind {
	case scene.StepCreate:
		stmt = fmt.Sprintf("self.play(Create(%s), run_time=%s)", target, formatFloat(runTime))

	case scene.StepTransform:
		dest := identProp(params, "to")
		if dest == "" {
			dest = target
		}
		stmt = fmt.Sprintf("self.play(Transform(%s, %s), run_time=%s)", target, dest, formatFloat(runTime))

	case scene.StepMove:
		stmt = moveStatement(target, params, runTime)

	case scene.StepRotate:
		stmt = fmt.Sprintf("self.play(Rotate(%s, angle=%s), run_time=%s)",
			target, angleProp(params, "angle"), formatFloat(runTime))

	case scene.StepScale:
		stmt = fmt.Sprintf("self.play(%s.animate.scale(%s), run_time=%s)",
			target, formatFloat(floatProp(params, "factor", 2.0)), formatFloat(runTime))

	case scene.StepFadeIn:
		stmt = fmt.Sprintf("self.play(FadeIn(%s), run_time=%s)", target, formatFloat(runTime))

	case scene.StepFadeOut:
		stmt = fmt.Sprintf("self.play(FadeOut(%s), run_time=%s)", target, formatFloat(runTime))

	case scene.StepWait:
		stmt = fmt.Sprintf("self.wait(%s)", formatFloat(runTime))

	case scene.StepSetColor:
		stmt = fmt.Sprintf("self.play(%s.animate.set_color(%s), run_time=%s)",
			target, colorProp(params), formatFloat(runTime))

	case scene.StepSetStroke:
		stmt = fmt.Sprintf("self.play(%s.animate.set_stroke(color=%s, width=%s), run_time=%s)",
			target, colorProp(params), formatFloat(floatProp(params, "width", 4)), formatFloat(runTime))

	case scene.StepSetFill:
		stmt = fmt.Sprintf("self.play(%s.animate.set_fill(color=%s, opacity=%s), run_time=%s)",
			target, colorProp(params), formatFloat(floatProp(params, "opacity", 1.0)), formatFloat(runTime))

	default:
		stmt = "self.wait(1)"
		sub = fmt.Sprintf("step %d: unknown kind %q compiled as wait", index, string(step.Kind))
	}

	out := []string{stmt}
	if step.WaitAfter > 0 {
		out = append(out, fmt.Sprintf("self.wait(%s)", formatFloat(step.WaitAfter)))
	}
	return out, sub
}

// moveStatement prefers an absolute move_to, then a relative shift, then
// the canonical nudge right.
func moveStatement(target string, params map[string]interface{}, runTime float64) string {
	if _, ok := params["to"]; ok {
		to := floatListProp(params, "to", []float64{0, 0})
		return fmt.Sprintf("self.play(%s.animate.move_to(%s), run_time=%s)",
			target, pointLiteral(to), formatFloat(runTime))
	}
	if _, ok := params["by"]; ok {
		by := floatListProp(params, "by", []float64{0, 0})
		return fmt.Sprintf("self.play(%s.animate.shift(%s), run_time=%s)",
			target, pointLiteral(by), formatFloat(runTime))
	}
	return fmt.Sprintf("self.play(%s.animate.shift(RIGHT), run_time=%s)", target, formatFloat(runTime))
}
