package ir

import (
	"encoding/json"
	"sort"
)

// SchemaKind discriminates the shapes a tool input schema node can take.
// Polymorphic OpenAPI constructs (oneOf/anyOf) that the mapper cannot model
// are reduced to KindUnresolved, which serializes as an opaque string.
type SchemaKind string

const (
	KindScalar     SchemaKind = "scalar"
	KindObject     SchemaKind = "object"
	KindArray      SchemaKind = "array"
	KindEnum       SchemaKind = "enum"
	KindUnresolved SchemaKind = "unresolved"
)

// Schema is a JSON-Schema-like structural type used for tool input schemas.
// It is a value object: once built by the mapper it is never mutated.
type Schema struct {
	Kind        SchemaKind
	Type        string // "string", "number", "boolean" for scalars and enums
	Format      string
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Enum        []any
	Default     any
}

// PropertyNames returns the object property names in sorted order.
// Generators and the differ iterate properties through this to stay
// deterministic across runs.
func (s *Schema) PropertyNames() []string {
	if s == nil || len(s.Properties) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRequired reports whether name appears in the schema's required list.
func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// jsonSchema is the wire shape: a plain JSON-Schema object.
type jsonSchema struct {
	Type        string             `json:"type,omitempty"`
	Format      string             `json:"format,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Default     any                `json:"default,omitempty"`
}

// MarshalJSON emits the schema in JSON-Schema shape. The tagged Kind is an
// in-memory concern only; consumers of the wire format see plain JSON Schema.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	out := jsonSchema{
		Format:      s.Format,
		Description: s.Description,
		Default:     s.Default,
	}
	switch s.Kind {
	case KindObject:
		out.Type = "object"
		out.Properties = s.Properties
		out.Required = s.Required
	case KindArray:
		out.Type = "array"
		out.Items = s.Items
	case KindEnum:
		out.Type = s.Type
		if out.Type == "" {
			out.Type = "string"
		}
		out.Enum = s.Enum
	case KindUnresolved:
		out.Type = "string"
	default:
		out.Type = s.Type
		if out.Type == "" {
			out.Type = "string"
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the tagged form from the wire shape, inferring Kind
// from the fields present. Round-tripping a marshaled schema yields an
// equivalent value.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw jsonSchema
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Type = raw.Type
	s.Format = raw.Format
	s.Description = raw.Description
	s.Properties = raw.Properties
	s.Required = raw.Required
	s.Items = raw.Items
	s.Enum = raw.Enum
	s.Default = raw.Default
	switch {
	case len(raw.Enum) > 0:
		s.Kind = KindEnum
	case raw.Type == "object":
		s.Kind = KindObject
	case raw.Type == "array":
		s.Kind = KindArray
	default:
		s.Kind = KindScalar
	}
	return nil
}
