// Package extract recovers a JSON object from noisy model output.
// Replies routinely arrive wrapped in markdown fences, prose, or partial
// duplicates; the scanner pulls out the first balanced object span.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractionError reports that no balanced, parseable JSON object was
// found in the input.
type ExtractionError struct {
	Reason string
	Input  string // truncated excerpt for diagnostics
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

const excerptLen = 120

func excerpt(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= excerptLen {
		return text
	}
	return text[:excerptLen] + "..."
}

// Object locates the first syntactically balanced {...} span in text and
// returns it as raw JSON. Fast path: input that is already a single JSON
// object after trimming is returned whole. The scan tracks brace depth
// and an in-string flag with escape awareness, so braces inside quoted
// strings never affect the depth. The candidate span must unmarshal as an
// object; otherwise an *ExtractionError is returned.
func Object(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && isJSONObject([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}

	start := strings.IndexByte(text, '{')
	if start == -1 {
		return nil, &ExtractionError{Reason: "no opening brace in input", Input: excerpt(text)}
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			if inString {
				escaped = true
			}
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := []byte(text[start : i+1])
				if !isJSONObject(candidate) {
					return nil, &ExtractionError{Reason: "balanced span is not valid JSON", Input: excerpt(text[start : i+1])}
				}
				return json.RawMessage(candidate), nil
			}
		}
	}

	return nil, &ExtractionError{Reason: "no balanced object span found", Input: excerpt(text)}
}

func isJSONObject(data []byte) bool {
	var obj map[string]interface{}
	return json.Unmarshal(data, &obj) == nil
}
