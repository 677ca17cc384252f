package compile

import (
	"fmt"
	"strconv"
	"strings"

	"scenesmith/internal/scene"
)

// objectStatement renders one object as an assignment. The second return
// is a substitution note when the kind was unknown and a default circle
// was emitted instead.
func objectStatement(obj scene.SceneObject) (string, string) {
	name := sanitizeIdentifier(obj.Name)
	ctor, known := constructor(obj.Kind, obj.Properties)
	stmt := fmt.Sprintf("%s = %s", name, ctor)
	if known {
		return stmt, ""
	}
	return stmt, fmt.Sprintf("object %q: unknown kind %q compiled as circle", obj.Name, string(obj.Kind))
}

func constructor(kind scene.ObjectKind, props map[string]interface{}) (string, bool) {
	switch kind {
	case scene.KindCircle:
		return circleConstructor(props), true

	case scene.KindSquare:
		return fmt.Sprintf("Square(side_length=%s, color=%s)",
			formatFloat(floatProp(props, "side", 2.0)),
			colorProp(props)), true

	case scene.KindRectangle:
		return fmt.Sprintf("Rectangle(width=%s, height=%s, color=%s)",
			formatFloat(floatProp(props, "width", 4.0)),
			formatFloat(floatProp(props, "height", 2.0)),
			colorProp(props)), true

	case scene.KindEllipse:
		return fmt.Sprintf("Ellipse(width=%s, height=%s, color=%s)",
			formatFloat(floatProp(props, "width", 2.0)),
			formatFloat(floatProp(props, "height", 1.0)),
			colorProp(props)), true

	case scene.KindTriangle:
		return fmt.Sprintf("Triangle(color=%s)", colorProp(props)), true

	case scene.KindText:
		return fmt.Sprintf("Text(%s, font_size=%s)",
			strconv.Quote(stringProp(props, "content", "Hello")),
			formatFloat(floatProp(props, "font-size", 36))), true

	case scene.KindTexLabel:
		return fmt.Sprintf("MathTex(%s)", pyRawString(stringProp(props, "content", "x"))), true

	case scene.KindLine:
		return fmt.Sprintf("Line(start=%s, end=%s, color=%s)",
			pointLiteral(floatListProp(props, "start", []float64{-1, 0})),
			pointLiteral(floatListProp(props, "end", []float64{1, 0})),
			colorProp(props)), true

	case scene.KindDot:
		return fmt.Sprintf("Dot(point=%s, color=%s)",
			pointLiteral(floatListProp(props, "point", []float64{0, 0})),
			colorProp(props)), true

	case scene.KindAxes:
		return fmt.Sprintf("Axes(x_range=%s, y_range=%s)",
			rangeLiteral(floatListProp(props, "x-range", []float64{-5, 5, 1})),
			rangeLiteral(floatListProp(props, "y-range", []float64{-3, 3, 1}))), true

	case scene.KindNumberLine:
		return fmt.Sprintf("NumberLine(x_range=%s)",
			rangeLiteral(floatListProp(props, "x-range", []float64{-5, 5, 1}))), true

	case scene.KindNumberPlane:
		return "NumberPlane()", true

	case scene.KindFunctionGraph:
		return fmt.Sprintf("FunctionGraph(lambda x: %s)",
			stringProp(props, "expression", "x")), true

	case scene.KindPolygon:
		return polygonConstructor(props), true

	case scene.KindArc:
		return fmt.Sprintf("Arc(radius=%s, start_angle=%s, angle=%s)",
			formatFloat(floatProp(props, "radius", 1.0)),
			formatFloat(floatProp(props, "start-angle", 0)),
			angleProp(props, "angle")), true

	case scene.KindVectorGraphic:
		return fmt.Sprintf("SVGMobject(%s)",
			strconv.Quote(stringProp(props, "file", "asset.svg"))), true

	case scene.KindImage:
		return fmt.Sprintf("ImageMobject(%s)",
			strconv.Quote(stringProp(props, "file", "image.png"))), true

	case scene.KindBrace:
		if target := identProp(props, "target"); target != "" {
			return fmt.Sprintf("Brace(%s)", target), true
		}
		return "Brace(Line(LEFT, RIGHT))", true

	case scene.KindBoundingBox:
		if target := identProp(props, "target"); target != "" {
			return fmt.Sprintf("SurroundingRectangle(%s)", target), true
		}
		return "SurroundingRectangle(Dot())", true

	case scene.KindGroup:
		return fmt.Sprintf("VGroup(%s)", strings.Join(memberList(props), ", ")), true

	case scene.KindParametricCurve:
		return fmt.Sprintf("ParametricFunction(lambda t: np.array([%s, %s, 0]), t_range=[0, TAU])",
			stringProp(props, "x", "np.cos(t)"),
			stringProp(props, "y", "np.sin(t)")), true

	case scene.KindTable:
		return fmt.Sprintf("Table(%s)", tableRowsLiteral(props)), true

	case scene.KindMatrix:
		return fmt.Sprintf("Matrix(%s)", matrixRowsLiteral(props)), true

	case scene.KindCodeBlock:
		return fmt.Sprintf("Code(code_string=%s, language=%s)",
			strconv.Quote(stringProp(props, "code", "print('hello')")),
			strconv.Quote(stringProp(props, "language", "python"))), true

	default:
		return circleConstructor(nil), false
	}
}

func circleConstructor(props map[string]interface{}) string {
	return fmt.Sprintf("Circle(radius=%s, color=%s, fill_opacity=%s)",
		formatFloat(floatProp(props, "radius", 1.0)),
		colorProp(props),
		formatFloat(floatProp(props, "fill-opacity", 0.0)))
}

func polygonConstructor(props map[string]interface{}) string {
	points := pointListProp(props, "points", [][]float64{{0, 1}, {-1, -1}, {1, -1}})
	parts := make([]string, 0, len(points)+1)
	for _, p := range points {
		parts = append(parts, pointLiteral(p))
	}
	parts = append(parts, "color="+colorProp(props))
	return fmt.Sprintf("Polygon(%s)", strings.Join(parts, ", "))
}

func colorProp(props map[string]interface{}) string {
	if v, ok := props["color"]; ok {
		return colorLiteral(v)
	}
	return "WHITE"
}

// angleProp renders a numeric angle, defaulting to a quarter turn.
func angleProp(props map[string]interface{}, key string) string {
	if v, ok := props[key]; ok {
		if n, ok := v.(float64); ok {
			return formatFloat(n)
		}
	}
	return "PI / 2"
}

// identProp reads a string property usable as a Python identifier.
func identProp(props map[string]interface{}, key string) string {
	s := stringProp(props, key, "")
	if s == "" {
		return ""
	}
	return sanitizeIdentifier(s)
}

// memberList reads the group member names, dropping non-strings.
func memberList(props map[string]interface{}) []string {
	v, ok := props["members"]
	if !ok {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok && s != "" {
			out = append(out, sanitizeIdentifier(s))
		}
	}
	return out
}

// pointListProp reads a list of coordinate pairs. Any malformed entry
// rejects the whole list in favour of the default.
func pointListProp(props map[string]interface{}, key string, def [][]float64) [][]float64 {
	return floatRowsProp(props, key, def)
}

// tableRowsLiteral renders string rows for Table.
func tableRowsLiteral(props map[string]interface{}) string {
	rows := stringRowsProp(props, "rows", [][]string{{"a", "b"}, {"c", "d"}})
	rowParts := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strconv.Quote(cell)
		}
		rowParts[i] = "[" + strings.Join(cells, ", ") + "]"
	}
	return "[" + strings.Join(rowParts, ", ") + "]"
}

// matrixRowsLiteral renders numeric rows for Matrix.
func matrixRowsLiteral(props map[string]interface{}) string {
	rows := floatRowsProp(props, "rows", [][]float64{{1, 2}, {3, 4}})
	rowParts := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = formatFloat(cell)
		}
		rowParts[i] = "[" + strings.Join(cells, ", ") + "]"
	}
	return "[" + strings.Join(rowParts, ", ") + "]"
}

func stringRowsProp(props map[string]interface{}, key string, def [][]string) [][]string {
	v, ok := props[key]
	if !ok {
		return def
	}
	raw, ok := v.([]interface{})
	if !ok || len(raw) == 0 {
		return def
	}
	out := make([][]string, 0, len(raw))
	for _, e := range raw {
		row, ok := e.([]interface{})
		if !ok || len(row) == 0 {
			return def
		}
		cells := make([]string, 0, len(row))
		for _, c := range row {
			s, ok := c.(string)
			if !ok {
				return def
			}
			cells = append(cells, s)
		}
		out = append(out, cells)
	}
	return out
}

func floatRowsProp(props map[string]interface{}, key string, def [][]float64) [][]float64 {
	v, ok := props[key]
	if !ok {
		return def
	}
	raw, ok := v.([]interface{})
	if !ok || len(raw) == 0 {
		return def
	}
	out := make([][]float64, 0, len(raw))
	for _, e := range raw {
		row, ok := e.([]interface{})
		if !ok || len(row) == 0 {
			return def
		}
		cells := make([]float64, 0, len(row))
		for _, c := range row {
			n, ok := c.(float64)
			if !ok {
				return def
			}
			cells = append(cells, n)
		}
		out = append(out, cells)
	}
	return out
}
