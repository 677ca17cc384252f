package orchestrator

import "scenesmith/internal/scene"

// qualityScore rates a specification in [0,1] by how much usable content
// it carries: 0.4 for objects (saturating at 5), 0.4 for steps
// (saturating at 8), 0.2 for import richness (saturating at 3).
func qualityScore(spec *scene.Specification) float64 {
	return 0.4*boundedRatio(len(spec.Objects), 5) +
		0.4*boundedRatio(len(spec.Steps), 8) +
		0.2*boundedRatio(len(spec.Imports), 3)
}

func boundedRatio(count, limit int) float64 {
	if count > limit {
		count = limit
	}
	return float64(count) / float64(limit)
}

// trainingSuitable decides whether a record can feed the training set.
// Low quality, a final check that never passed, and compiler kind
// substitutions each disqualify; the returned program is unaffected.
func trainingSuitable(quality, threshold float64, checkPassed bool, substitutions int) bool {
	return quality >= threshold && checkPassed && substitutions == 0
}
