// Package openapi parses OpenAPI 3.x documents (JSON or YAML) into a flat,
// reference-free ParsedSpec. Only document-internal $ref pointers are
// resolved; external references are left in place and reported as warnings.
package openapi

import "fmt"

// ParsedSpec is the validated, fully-resolved view of one OpenAPI document.
// After parsing, no schema reachable from a ParsedSpec contains a $ref or
// an allOf composition.
type ParsedSpec struct {
	Title           string
	Description     string
	Version         string
	BaseURL         string
	Servers         []string
	Endpoints       []Endpoint
	SecuritySchemes []SecurityScheme
	Schemas         map[string]map[string]any
}

// Endpoint is one HTTP operation. Path retains {param} placeholders verbatim.
type Endpoint struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
	Description string
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   map[string]Response
	Security    []SecurityRequirement
	Deprecated  bool
}

// Parameter is one path/query/header/cookie parameter with its resolved schema.
type Parameter struct {
	Name        string
	In          string
	Description string
	Required    bool
	Schema      map[string]any
}

// RequestBody carries the schema of the preferred media type
// (application/json when present, otherwise the first one by name).
type RequestBody struct {
	Description string
	Required    bool
	ContentType string
	Schema      map[string]any
}

// Response is one status-code entry of an operation.
type Response struct {
	Description string
	Schema      map[string]any
}

// SecurityRequirement maps a security scheme name to its required scopes.
type SecurityRequirement map[string][]string

// SecurityScheme is a discriminated union over the OpenAPI scheme types.
// Type selects which of the remaining fields are meaningful.
type SecurityScheme struct {
	Name         string // key under components.securitySchemes
	Type         string // "apiKey", "http", "oauth2", "openIdConnect"
	Description  string
	In           string // apiKey: "header", "query", "cookie"
	ParamName    string // apiKey: the header/query/cookie parameter name
	Scheme       string // http: "bearer", "basic", ...
	BearerFormat string // http bearer
	Flows        map[string]any // oauth2
	OpenIDURL    string // openIdConnect
}

// FindScheme returns the security scheme declared under the given name.
func (s *ParsedSpec) FindScheme(name string) (SecurityScheme, bool) {
	for _, sch := range s.SecuritySchemes {
		if sch.Name == name {
			return sch, true
		}
	}
	return SecurityScheme{}, false
}

// Error is one structural problem found while parsing. It is a value, not a
// panic: callers branch on Result.Success rather than recovering.
type Error struct {
	Path    string
	Message string
}

func (e Error) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Result is the outcome of one Parse call. Warnings are non-fatal; a Result
// with warnings but no errors still carries a usable Spec.
type Result struct {
	Spec     *ParsedSpec
	Errors   []Error
	Warnings []string
}

// Success reports whether parsing produced a usable spec.
func (r Result) Success() bool {
	return len(r.Errors) == 0 && r.Spec != nil
}
