package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scenesmith/internal/scene"
)

func TestQualityScore(t *testing.T) {
	minimal := scene.MinimalSpecification()
	assert.InDelta(t, 0.13, qualityScore(minimal), 0.001, "one object, one step, no imports")

	rich := richSpec()
	assert.InDelta(t, 0.5067, qualityScore(rich), 0.001)

	saturated := &scene.Specification{
		Name:    "Busy",
		Imports: []string{"a", "b", "c", "d", "e"},
	}
	for i := 0; i < 10; i++ {
		saturated.Objects = append(saturated.Objects, scene.SceneObject{Kind: scene.KindDot})
	}
	for i := 0; i < 20; i++ {
		saturated.Steps = append(saturated.Steps, scene.AnimationStep{Kind: scene.StepWait})
	}
	assert.Equal(t, 1.0, qualityScore(saturated), "components saturate, never exceed 1")
}

func TestTrainingSuitable(t *testing.T) {
	assert.True(t, trainingSuitable(0.6, 0.5, true, 0))
	assert.True(t, trainingSuitable(0.5, 0.5, true, 0), "threshold is inclusive")
	assert.False(t, trainingSuitable(0.49, 0.5, true, 0), "below threshold")
	assert.False(t, trainingSuitable(0.9, 0.5, false, 0), "final check never passed")
	assert.False(t, trainingSuitable(0.9, 0.5, true, 2), "compiler substitutions")
}
