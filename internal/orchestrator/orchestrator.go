// Package orchestrator runs one prompt-to-program generation end to end:
// backend selection, the single cross-backend fallback, repair, quality
// scoring, and telemetry. A caller always receives a compilable program
// unless both backends fail before producing any specification.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scenesmith/internal/backend"
	"scenesmith/internal/config"
	"scenesmith/internal/logging"
	"scenesmith/internal/repair"
	"scenesmith/internal/sandbox"
	"scenesmith/internal/scene"
	"scenesmith/internal/telemetry"
	"scenesmith/internal/verify"
)

// Input is one generation request. Prior, when set, seeds an iterative
// refinement of an earlier specification.
type Input struct {
	Prompt string
	Prior  *scene.Specification
	UserID string
}

// Output is the result of one successful orchestration.
type Output struct {
	Spec         *scene.Specification
	Program      string
	RecordID     string
	Backend      string
	FallbackUsed bool
	Quality      float64
}

// ExhaustedError is the only fatal orchestration error: both backends
// raised a generation error before yielding any specification.
type ExhaustedError struct {
	RecordID    string
	PrimaryErr  error
	FallbackErr error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generation failed on both backends (record %s): primary: %v; fallback: %v",
		e.RecordID, e.PrimaryErr, e.FallbackErr)
}

// Orchestrator coordinates the backends, the repair engine, and the
// telemetry store. Safe for concurrent use; the rolling counters are the
// only state shared between runs.
type Orchestrator struct {
	remote backend.Backend
	local  backend.Backend
	engine *repair.Engine
	store  telemetry.Store

	complexityThreshold  float64
	suitabilityThreshold float64

	remoteCounter backendCounter
	localCounter  backendCounter
}

// New wires an orchestrator from already-built parts. Thresholds come
// from the config.
func New(remote, local backend.Backend, engine *repair.Engine, store telemetry.Store, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		remote:               remote,
		local:                local,
		engine:               engine,
		store:                store,
		complexityThreshold:  cfg.Routing.ComplexityThreshold,
		suitabilityThreshold: cfg.Quality.SuitabilityThreshold,
	}
}

// NewFromConfig builds the full pipeline: both backends, the sandboxed
// two-stage checker, the repair engine, and the telemetry store.
func NewFromConfig(cfg *config.Config) (*Orchestrator, error) {
	remote, err := backend.NewRemoteFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	local := backend.NewLocalFromConfig(cfg)

	runner := sandbox.NewDirectRunner()
	checker := verify.NewCheckerFromConfig(cfg, runner)
	engine := repair.NewEngine(checker, cfg.Repair.MaxAttempts)

	store, err := telemetry.NewStoreFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return New(remote, local, engine, store, cfg), nil
}

// Close releases the telemetry store.
func (o *Orchestrator) Close() error { return o.store.Close() }

// Run executes one orchestration.
func (o *Orchestrator) Run(ctx context.Context, in Input) (*Output, error) {
	log := logging.Get(logging.CategoryOrchestrator)
	start := time.Now()

	recordID := uuid.New().String()
	if _, err := o.store.CreateRecord(ctx, &telemetry.GenerationRecord{
		ID:     recordID,
		Prompt: in.Prompt,
		UserID: in.UserID,
	}); err != nil {
		log.Warn("telemetry create failed for %s: %v", recordID, err)
	}

	req := backend.Request{Prompt: in.Prompt, Prior: in.Prior, UserID: in.UserID}

	primary := o.pick(ctx, in.Prompt, recordID)
	var absorbed []string
	var genMs, compileMs int64
	var primaryResult *repair.Result

	spec, genErr := o.generate(ctx, primary, req, &genMs)
	if genErr == nil {
		result := o.ensure(ctx, spec, &compileMs)
		if result.Passed {
			return o.emit(ctx, recordID, primary.Name(), false, result, absorbed, genMs, compileMs, start), nil
		}
		primaryResult = &result
		absorbed = append(absorbed, checkFailures(result)...)
		log.Warn("%s result failed verification after repair, falling back", primary.Name())
	} else {
		absorbed = append(absorbed, genErr.Error())
		log.Warn("%s backend failed: %v, falling back", primary.Name(), genErr)
	}

	// The one cross-backend fallback. Never the same backend twice.
	fb := o.other(primary)
	o.amend(ctx, recordID, map[string]interface{}{"fallback_used": true, "backend": fb.Name()})

	fbSpec, fbErr := o.generate(ctx, fb, req, &genMs)
	if fbErr == nil {
		result := o.ensure(ctx, fbSpec, &compileMs)
		if !result.Passed {
			absorbed = append(absorbed, checkFailures(result)...)
		}
		return o.emit(ctx, recordID, fb.Name(), true, result, absorbed, genMs, compileMs, start), nil
	}
	absorbed = append(absorbed, fbErr.Error())

	if primaryResult != nil {
		// The primary produced a specification, so the repair ladder has
		// a canonical program for it; return that rather than failing.
		return o.emit(ctx, recordID, primary.Name(), true, *primaryResult, absorbed, genMs, compileMs, start), nil
	}

	o.amend(ctx, recordID, map[string]interface{}{
		"generation_ok":     false,
		"gen_duration_ms":   genMs,
		"total_duration_ms": time.Since(start).Milliseconds(),
		"error_detail":      strings.Join(absorbed, "; "),
	})
	log.Error("both backends failed for record %s: %v; %v", recordID, genErr, fbErr)
	return nil, &ExhaustedError{RecordID: recordID, PrimaryErr: genErr, FallbackErr: fbErr}
}

// pick selects the primary backend for a prompt and records the choice.
func (o *Orchestrator) pick(ctx context.Context, prompt, recordID string) backend.Backend {
	log := logging.Get(logging.CategoryOrchestrator)

	name, score := selectBackend(prompt, o.complexityThreshold, o.remoteCounter.ratio(), o.localCounter.ratio())
	log.Info("routing to %s backend (complexity %.2f)", name, score)
	o.amend(ctx, recordID, map[string]interface{}{"backend": name})

	if name == backendLocal {
		return o.local
	}
	return o.remote
}

func (o *Orchestrator) other(b backend.Backend) backend.Backend {
	if b.Name() == backendLocal {
		return o.remote
	}
	return o.local
}

func (o *Orchestrator) counterFor(name string) *backendCounter {
	if name == backendLocal {
		return &o.localCounter
	}
	return &o.remoteCounter
}

// generate runs one backend attempt and maintains its rolling counter.
func (o *Orchestrator) generate(ctx context.Context, b backend.Backend, req backend.Request, genMs *int64) (*scene.Specification, error) {
	begin := time.Now()
	spec, err := b.Generate(ctx, req)
	*genMs += time.Since(begin).Milliseconds()
	o.counterFor(b.Name()).record(err == nil)
	return spec, err
}

// ensure runs the compile-and-repair ladder and accounts its time.
func (o *Orchestrator) ensure(ctx context.Context, spec *scene.Specification, compileMs *int64) repair.Result {
	begin := time.Now()
	result := o.engine.Ensure(ctx, spec)
	*compileMs += time.Since(begin).Milliseconds()
	return result
}

// emit scores the result, writes the final telemetry amendment, and
// shapes the caller-facing output.
func (o *Orchestrator) emit(ctx context.Context, recordID, backendName string, fallback bool, result repair.Result, absorbed []string, genMs, compileMs int64, start time.Time) *Output {
	log := logging.Get(logging.CategoryOrchestrator)

	quality := qualityScore(result.Spec)
	suitable := trainingSuitable(quality, o.suitabilityThreshold, result.Passed, len(result.Substitutions))

	fields := map[string]interface{}{
		"backend":             backendName,
		"fallback_used":       fallback,
		"generation_ok":       true,
		"check_passed":        result.Passed,
		"program":             result.Program,
		"gen_duration_ms":     genMs,
		"compile_duration_ms": compileMs,
		"total_duration_ms":   time.Since(start).Milliseconds(),
		"quality_score":       quality,
		"training_suitable":   suitable,
	}
	if data, err := result.Spec.JSON(); err == nil {
		fields["specification"] = string(data)
	}
	if len(result.Substitutions) > 0 {
		fields["substitutions"] = strings.Join(result.Substitutions, "; ")
	}
	if len(absorbed) > 0 {
		fields["error_detail"] = strings.Join(absorbed, "; ")
	}
	o.amend(ctx, recordID, fields)

	log.Info("record %s: backend=%s fallback=%v quality=%.2f passed=%v",
		recordID, backendName, fallback, quality, result.Passed)

	return &Output{
		Spec:         result.Spec,
		Program:      result.Program,
		RecordID:     recordID,
		Backend:      backendName,
		FallbackUsed: fallback,
		Quality:      quality,
	}
}

// amend applies a telemetry update. Store failures are logged, never fatal.
func (o *Orchestrator) amend(ctx context.Context, id string, fields map[string]interface{}) {
	if err := o.store.UpdateRecord(ctx, id, fields); err != nil {
		logging.Get(logging.CategoryOrchestrator).Warn("telemetry update failed for %s: %v", id, err)
	}
}

// checkFailures collects the check errors a repair pass absorbed.
func checkFailures(result repair.Result) []string {
	var out []string
	for _, attempt := range result.Attempts {
		if attempt.CheckErr != "" {
			out = append(out, attempt.CheckErr)
		}
	}
	return out
}
