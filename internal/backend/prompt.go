package backend

import (
	"fmt"
	"strings"

	"scenesmith/internal/scene"
)

// systemPrompt is the fixed instruction template shared by both backends.
// It embeds the specification schema so the model has the full contract
// in context.
const systemPrompt = `You are a scene specification generator for a 2D animation engine.
Reply with exactly one JSON object and no other text. The object must follow this schema:

{
  "name": "SceneName",
  "background": "#1a1a2e",
  "resolution": {"width": 1920, "height": 1080},
  "imports": ["from manim import *"],
  "objects": [
    {"name": "ball", "kind": "circle", "properties": {"radius": 1.0, "color": "red"}}
  ],
  "steps": [
    {"kind": "create", "target": "ball", "duration": 1.0, "parameters": {}, "wait_after": 0.5}
  ],
  "constraints": {}
}

Rules:
- "name" and every object "name" must be valid identifiers (letters, digits, underscore, not starting with a digit); object names must be unique.
- object "kind" must be one of: circle, square, rectangle, ellipse, triangle, text, tex-label, line, dot, axes, number-line, number-plane, function-graph, polygon, arc, vector-graphic, image, brace, bounding-box, group, parametric-curve, table, matrix, code-block.
- step "kind" must be one of: create, transform, move, rotate, scale, fade-in, fade-out, wait, set-color, set-stroke, set-fill.
- "duration" and "wait_after" are seconds and must be non-negative.
- every step "target" should reference an object name.
- keep scenes small: a handful of objects and steps that directly express the request.`

// BuildPrompt renders the system and user messages for a request. When a
// prior specification is present the model is asked to refine it in place
// rather than start over.
func BuildPrompt(req Request) (system, user string) {
	if req.Prior == nil {
		return systemPrompt, fmt.Sprintf("Create a scene specification for this request:\n%s", req.Prompt)
	}

	var sb strings.Builder
	sb.WriteString("Refine the existing scene specification below according to the request. ")
	sb.WriteString("Keep unchanged parts intact and return the complete updated specification.\n\n")
	sb.WriteString("Current specification:\n")
	if data, err := req.Prior.JSON(); err == nil {
		sb.Write(data)
	}
	sb.WriteString("\n\nRequest: ")
	sb.WriteString(req.Prompt)
	return systemPrompt, sb.String()
}

// specOrNil is a small helper for logging refinement requests.
func specOrNil(s *scene.Specification) string {
	if s == nil {
		return "none"
	}
	return s.Name
}
