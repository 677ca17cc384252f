package orchestrator

import "regexp"

const (
	backendRemote = "remote"
	backendLocal  = "local"
)

// complexityLengthCap is the prompt length, in bytes, at which the length
// component of the complexity score saturates.
const complexityLengthCap = 300.0

var (
	sequencingPattern = regexp.MustCompile(`(?i)\b(then|after|next|finally|sequence|followed\s+by|steps?)\b`)
	mathPattern       = regexp.MustCompile(`(?i)\b(sin|sine|cos|cosine|graphs?|axes|functions?|equations?|derivatives?|integrals?|matrix|matrices|vectors?|plots?)\b`)
)

// complexityScore rates a prompt in [0,1]. Length contributes up to 0.4;
// sequencing and mathematical keyword hits contribute up to 0.3 each,
// saturating at three hits per table.
func complexityScore(prompt string) float64 {
	length := float64(len(prompt)) / complexityLengthCap
	if length > 1 {
		length = 1
	}
	seq := float64(len(sequencingPattern.FindAllString(prompt, 3))) / 3.0
	math := float64(len(mathPattern.FindAllString(prompt, 3))) / 3.0

	score := 0.4*length + 0.3*seq + 0.3*math
	if score > 1 {
		score = 1
	}
	return score
}

// selectBackend routes one prompt. Complexity at or above the threshold
// goes remote; below it, the backend with the better rolling success
// ratio wins and ties favor remote.
func selectBackend(prompt string, threshold, remoteRatio, localRatio float64) (string, float64) {
	score := complexityScore(prompt)
	if score >= threshold {
		return backendRemote, score
	}
	if localRatio > remoteRatio {
		return backendLocal, score
	}
	return backendRemote, score
}
