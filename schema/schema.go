// Package schema provides a JSON-Schema-compatible model used to describe
// plugin configuration and task input/output contracts.
//
// Schemas are optional everywhere they appear: a plugin that declares no
// schema for a given kind accepts any value. Validation produces a list of
// field-level issues with dotted paths rather than a single opaque error,
// so callers can report precisely which configuration field is wrong.
package schema

// JSON represents a JSON Schema definition.
type JSON struct {
	Type        string          `json:"type,omitempty" yaml:"type,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Properties  map[string]JSON `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required    []string        `json:"required,omitempty" yaml:"required,omitempty"`
	Items       *JSON           `json:"items,omitempty" yaml:"items,omitempty"`
	Enum        []any           `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default     any             `json:"default,omitempty" yaml:"default,omitempty"`
	Minimum     *float64        `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     *float64        `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	MinLength   *int            `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int            `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern     string          `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Format      string          `json:"format,omitempty" yaml:"format,omitempty"`
}

// Any creates a schema that accepts any value.
func Any() JSON {
	return JSON{}
}

// String creates a schema for a string type.
func String() JSON {
	return JSON{Type: "string"}
}

// StringWithDesc creates a schema for a string type with a description.
func StringWithDesc(desc string) JSON {
	return JSON{Type: "string", Description: desc}
}

// Int creates a schema for an integer type.
func Int() JSON {
	return JSON{Type: "integer"}
}

// Number creates a schema for a number type.
func Number() JSON {
	return JSON{Type: "number"}
}

// Bool creates a schema for a boolean type.
func Bool() JSON {
	return JSON{Type: "boolean"}
}

// Array creates a schema for an array with the given item schema.
func Array(items JSON) JSON {
	return JSON{Type: "array", Items: &items}
}

// Object creates a schema for an object with the given properties and
// required property names.
func Object(properties map[string]JSON, required ...string) JSON {
	return JSON{Type: "object", Properties: properties, Required: required}
}

// Enum creates a schema restricted to the given values.
func Enum(values ...any) JSON {
	return JSON{Enum: values}
}

// WithDefault returns a copy of the schema carrying a default value.
// Defaults for object properties are applied by Conform when the property
// is absent from the input.
func (s JSON) WithDefault(v any) JSON {
	out := s
	out.Default = v
	return out
}

// IsZero reports whether the schema is empty, i.e. accepts any value and
// contributes nothing to conformance. A schema carrying only a default or
// a format is not zero: defaults are applied by Conform.
func (s JSON) IsZero() bool {
	return s.Type == "" && len(s.Properties) == 0 && s.Items == nil &&
		len(s.Enum) == 0 && s.Pattern == "" && s.Format == "" &&
		s.Minimum == nil && s.Maximum == nil && s.MinLength == nil &&
		s.MaxLength == nil && s.Default == nil
}
