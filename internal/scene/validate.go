package scene

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// SchemaError reports a specification that fails validation.
type SchemaError struct {
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema error: %s", e.Message)
	}
	return fmt.Sprintf("schema error: %s: %s", e.Field, e.Message)
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is usable as a generated-program
// identifier.
func ValidIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}

// Parse decodes raw JSON into a validated Specification. It is pure; any
// failure is a *SchemaError.
func Parse(raw []byte) (*Specification, error) {
	var spec Specification
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, &SchemaError{Field: "specification", Message: fmt.Sprintf("invalid structure: %v", err)}
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks the specification invariants: required fields present,
// enum values inside their fixed sets, numeric fields in range, object
// names unique and identifier-shaped. Step targets are not checked
// against the object list.
func (s *Specification) Validate() error {
	if s.Name == "" {
		return &SchemaError{Field: "name", Message: "required field is missing"}
	}
	if !ValidIdentifier(s.Name) {
		return &SchemaError{Field: "name", Message: fmt.Sprintf("%q is not a valid identifier", s.Name)}
	}
	if s.Resolution.Width < 0 {
		return &SchemaError{Field: "resolution.width", Message: fmt.Sprintf("must be non-negative, got %d", s.Resolution.Width)}
	}
	if s.Resolution.Height < 0 {
		return &SchemaError{Field: "resolution.height", Message: fmt.Sprintf("must be non-negative, got %d", s.Resolution.Height)}
	}

	seen := make(map[string]bool, len(s.Objects))
	for i, obj := range s.Objects {
		field := fmt.Sprintf("objects[%d]", i)
		if obj.Name == "" {
			return &SchemaError{Field: field + ".name", Message: "required field is missing"}
		}
		if !ValidIdentifier(obj.Name) {
			return &SchemaError{Field: field + ".name", Message: fmt.Sprintf("%q is not a valid identifier", obj.Name)}
		}
		if obj.Kind == "" {
			return &SchemaError{Field: field + ".kind", Message: "required field is missing"}
		}
		if !KnownObjectKind(obj.Kind) {
			return &SchemaError{Field: field + ".kind", Message: fmt.Sprintf("%q is not a recognized object kind", obj.Kind)}
		}
		if seen[obj.Name] {
			return &SchemaError{Field: field + ".name", Message: fmt.Sprintf("duplicate object name %q", obj.Name)}
		}
		seen[obj.Name] = true
	}

	for i, st := range s.Steps {
		field := fmt.Sprintf("steps[%d]", i)
		if st.Kind == "" {
			return &SchemaError{Field: field + ".kind", Message: "required field is missing"}
		}
		if !KnownStepKind(st.Kind) {
			return &SchemaError{Field: field + ".kind", Message: fmt.Sprintf("%q is not a recognized step kind", st.Kind)}
		}
		if st.Duration < 0 {
			return &SchemaError{Field: field + ".duration", Message: fmt.Sprintf("must be non-negative, got %v", st.Duration)}
		}
		if st.WaitAfter < 0 {
			return &SchemaError{Field: field + ".wait_after", Message: fmt.Sprintf("must be non-negative, got %v", st.WaitAfter)}
		}
	}

	return nil
}
