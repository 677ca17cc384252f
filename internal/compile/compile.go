// Package compile renders a validated scene Specification into a Manim
// community edition Python program. Compilation is pure and total: the
// same specification always yields the same bytes, unknown kinds degrade
// to default primitives, and the only record of that degradation is the
// substitution list in the result.
package compile

import (
	"fmt"
	"strconv"
	"strings"

	"scenesmith/internal/scene"
)

// Result is a compiled program plus the substitutions made while
// compiling it.
type Result struct {
	Program       string
	Substitutions []string
}

const defaultImport = "from manim import *"

// Compile renders the specification. Objects are emitted before steps,
// both in input order, with no reordering or reference checking.
func Compile(spec *scene.Specification) Result {
	var subs []string
	var b strings.Builder

	if len(spec.Imports) == 0 {
		b.WriteString(defaultImport)
		b.WriteString("\n")
	} else {
		for _, imp := range spec.Imports {
			b.WriteString(imp)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	if spec.Resolution.Width > 0 && spec.Resolution.Height > 0 {
		fmt.Fprintf(&b, "config.pixel_width = %d\n", spec.Resolution.Width)
		fmt.Fprintf(&b, "config.pixel_height = %d\n", spec.Resolution.Height)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "class %s(Scene):\n", sanitizeIdentifier(spec.Name))
	b.WriteString("    def construct(self):\n")

	var body []string
	if spec.Background != "" {
		body = append(body, fmt.Sprintf("self.camera.background_color = %s", colorLiteral(spec.Background)))
	}
	for _, obj := range spec.Objects {
		stmt, sub := objectStatement(obj)
		body = append(body, stmt)
		if sub != "" {
			subs = append(subs, sub)
		}
	}
	for i, step := range spec.Steps {
		stmts, sub := stepStatements(i, step)
		body = append(body, stmts...)
		if sub != "" {
			subs = append(subs, sub)
		}
	}
	if len(body) == 0 {
		body = append(body, "pass")
	}

	for _, line := range body {
		b.WriteString("        ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	return Result{Program: b.String(), Substitutions: subs}
}

// manimColors maps lowercase color names onto Manim constants.
var manimColors = map[string]string{
	"red":    "RED",
	"blue":   "BLUE",
	"green":  "GREEN",
	"yellow": "YELLOW",
	"orange": "ORANGE",
	"purple": "PURPLE",
	"pink":   "PINK",
	"white":  "WHITE",
	"black":  "BLACK",
	"gray":   "GRAY",
	"grey":   "GRAY",
	"gold":   "GOLD",
	"teal":   "TEAL",
	"maroon": "MAROON",
}

// colorLiteral renders a color value: hex strings stay quoted strings,
// known names become Manim constants, anything else is WHITE.
func colorLiteral(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return "WHITE"
	}
	if strings.HasPrefix(s, "#") {
		return strconv.Quote(s)
	}
	if c, ok := manimColors[strings.ToLower(s)]; ok {
		return c
	}
	return "WHITE"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// floatProp reads a numeric property, falling back on the default when
// the key is absent or not a number.
func floatProp(props map[string]interface{}, key string, def float64) float64 {
	if v, ok := props[key]; ok {
		if n, ok := v.(float64); ok {
			return n
		}
		if n, ok := v.(int); ok {
			return float64(n)
		}
	}
	return def
}

func stringProp(props map[string]interface{}, key, def string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// floatListProp reads a list of numbers. Any non-numeric element rejects
// the whole list in favour of the default.
func floatListProp(props map[string]interface{}, key string, def []float64) []float64 {
	v, ok := props[key]
	if !ok {
		return def
	}
	raw, ok := v.([]interface{})
	if !ok || len(raw) == 0 {
		return def
	}
	out := make([]float64, 0, len(raw))
	for _, e := range raw {
		n, ok := e.(float64)
		if !ok {
			if i, ok := e.(int); ok {
				n = float64(i)
			} else {
				return def
			}
		}
		out = append(out, n)
	}
	return out
}

// pointLiteral renders a coordinate as a 3-component Python list, padding
// with zeros and ignoring extra components.
func pointLiteral(vals []float64) string {
	coords := make([]float64, 3)
	for i := 0; i < 3 && i < len(vals); i++ {
		coords[i] = vals[i]
	}
	parts := make([]string, 3)
	for i, c := range coords {
		parts[i] = formatFloat(c)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// rangeLiteral renders an axis range exactly as given.
func rangeLiteral(vals []float64) string {
	parts := make([]string, len(vals))
	for i, c := range vals {
		parts[i] = formatFloat(c)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// pyRawString prefers the raw form for TeX content, falling back on a
// normal quoted string when raw syntax cannot represent it.
func pyRawString(s string) string {
	if !strings.ContainsAny(s, "\"\n\r") && !strings.HasSuffix(s, "\\") {
		return `r"` + s + `"`
	}
	return strconv.Quote(s)
}

// pythonKeywords are identifier-shaped names that cannot be assignment
// targets.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true,
	"for": true, "from": true, "global": true, "if": true, "import": true,
	"in": true, "is": true, "lambda": true, "nonlocal": true, "not": true,
	"or": true, "pass": true, "raise": true, "return": true, "try": true,
	"while": true, "with": true, "yield": true,
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// sanitizeIdentifier makes any name usable as a Python identifier:
// invalid characters become underscores, a leading digit gets prefixed,
// keywords get suffixed, and the empty result becomes scene_obj.
func sanitizeIdentifier(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		if isIdentByte(name[i]) {
			b.WriteByte(name[i])
		} else {
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return "scene_obj"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	if pythonKeywords[out] {
		out += "_"
	}
	return out
}
