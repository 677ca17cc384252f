// Package repair drives a compiled program through the validity check,
// simplifying the specification rung by rung until a check passes. The
// ladder ends in a canonical minimal scene, so the engine never reports
// failure to its caller; the worst case is the canonical program with
// Passed unset.
package repair

import (
	"context"

	"scenesmith/internal/compile"
	"scenesmith/internal/logging"
	"scenesmith/internal/scene"
)

// Checker is the two-stage validity check the engine retries against.
type Checker interface {
	Check(ctx context.Context, program string) error
}

// Attempt records one compile-and-check round. Index 0 is the original
// specification; rungs count from 1.
type Attempt struct {
	Index    int
	Action   string
	CheckErr string
}

// Result is the outcome of Ensure: the specification and program that
// ended the ladder, the compiler substitutions for that program, and the
// full attempt trail.
type Result struct {
	Spec          *scene.Specification
	Program       string
	Substitutions []string
	Attempts      []Attempt
	Passed        bool
}

// Engine owns the simplification ladder.
type Engine struct {
	checker     Checker
	maxAttempts int
}

// NewEngine creates an engine with the given rung budget. The ladder is
// truncated, never extended, by a smaller budget.
func NewEngine(checker Checker, maxAttempts int) *Engine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if maxAttempts > len(rungs) {
		maxAttempts = len(rungs)
	}
	return &Engine{checker: checker, maxAttempts: maxAttempts}
}

var safeObjectKinds = map[scene.ObjectKind]bool{
	scene.KindCircle: true,
	scene.KindSquare: true,
	scene.KindText:   true,
	scene.KindLine:   true,
	scene.KindDot:    true,
}

var safeStepKinds = map[scene.StepKind]bool{
	scene.StepCreate: true,
	scene.StepMove:   true,
	scene.StepWait:   true,
}

// rung transforms run in order, each strictly more conservative than the
// last. Every transform clones its input.
var rungs = []struct {
	action string
	apply  func(*scene.Specification) *scene.Specification
}{
	{action: "truncate-steps", apply: truncateSteps},
	{action: "safe-kinds", apply: restrictKinds},
	{action: "canonical", apply: func(*scene.Specification) *scene.Specification {
		return scene.MinimalSpecification()
	}},
}

// Ensure compiles the specification and walks the ladder until a check
// passes. It never returns an error; the result's Passed flag reports
// whether any program survived the check.
func (e *Engine) Ensure(ctx context.Context, spec *scene.Specification) Result {
	log := logging.Get(logging.CategoryRepair)

	current := spec
	compiled := compile.Compile(current)
	attempts := []Attempt{{Index: 0, Action: "original"}}

	err := e.checker.Check(ctx, compiled.Program)
	if err == nil {
		return Result{
			Spec:          current,
			Program:       compiled.Program,
			Substitutions: compiled.Substitutions,
			Attempts:      attempts,
			Passed:        true,
		}
	}
	attempts[0].CheckErr = err.Error()
	log.Warn("original program failed check: %v", err)

	for i := 0; i < e.maxAttempts; i++ {
		rung := rungs[i]
		current = rung.apply(current)
		compiled = compile.Compile(current)

		attempt := Attempt{Index: i + 1, Action: rung.action}
		err = e.checker.Check(ctx, compiled.Program)
		if err == nil {
			attempts = append(attempts, attempt)
			log.Info("repair passed at attempt %d (%s)", attempt.Index, attempt.Action)
			return Result{
				Spec:          current,
				Program:       compiled.Program,
				Substitutions: compiled.Substitutions,
				Attempts:      attempts,
				Passed:        true,
			}
		}
		attempt.CheckErr = err.Error()
		attempts = append(attempts, attempt)
		log.Warn("repair attempt %d (%s) failed check: %v", attempt.Index, attempt.Action, err)
	}

	// Even the last rung failed. Return what it produced anyway.
	log.Error("repair exhausted its ladder without a passing check")
	return Result{
		Spec:          current,
		Program:       compiled.Program,
		Substitutions: compiled.Substitutions,
		Attempts:      attempts,
		Passed:        false,
	}
}

func truncateSteps(spec *scene.Specification) *scene.Specification {
	out := spec.Clone()
	if len(out.Steps) > 3 {
		out.Steps = out.Steps[:3]
	}
	return out
}

func restrictKinds(spec *scene.Specification) *scene.Specification {
	out := spec.Clone()

	objects := out.Objects[:0:0]
	for _, obj := range out.Objects {
		if safeObjectKinds[obj.Kind] {
			objects = append(objects, obj)
		}
	}
	steps := out.Steps[:0:0]
	for _, step := range out.Steps {
		if safeStepKinds[step.Kind] {
			steps = append(steps, step)
		}
	}

	if len(objects) == 0 {
		minimal := scene.MinimalSpecification()
		objects = minimal.Objects
		steps = minimal.Steps
	}

	out.Objects = objects
	out.Steps = steps
	return out
}
