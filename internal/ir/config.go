// Package ir defines the intermediate representation produced by the mapper
// and consumed by the composer, differ, code generators, and the live proxy.
// All types here are value objects: producers build them once and consumers
// never mutate them, so repeated pipeline runs over the same input are safe
// to execute concurrently without coordination.
package ir

// BodyObjectSentinel marks a handler whose request body is reconstructed
// from the flattened top-level input properties not claimed by path, query,
// or header parameters.
const BodyObjectSentinel = "__body_object__"

// ServerConfig is the IR root: everything needed to generate or serve an
// MCP server that proxies one (or, after composition, several) HTTP APIs.
type ServerConfig struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	BaseURL     string   `json:"baseUrl,omitempty"`
	Tools       []Tool   `json:"tools"`
	EnvVars     []EnvVar `json:"envVars,omitempty"`
}

// Tool is one callable operation exposed to an agent, corresponding to one
// API endpoint. Enabled is the only field toggled after creation.
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	InputSchema *Schema `json:"inputSchema"`
	Handler     Handler `json:"handler"`
	Source      string  `json:"source,omitempty"`
	OperationID string  `json:"operationId,omitempty"`
	Enabled     bool    `json:"enabled"`
}

// Handler describes the HTTP call a tool performs. BodyParam is either
// empty (no body), "body" (opaque passthrough property), or
// BodyObjectSentinel (body rebuilt from unclaimed input properties).
type Handler struct {
	Method        string     `json:"method"`
	Path          string     `json:"path"`
	BaseURL       string     `json:"baseUrl,omitempty"`
	BaseURLEnvVar string     `json:"baseUrlEnvVar,omitempty"`
	ContentType   string     `json:"contentType,omitempty"`
	PathParams    []string   `json:"pathParams,omitempty"`
	QueryParams   []string   `json:"queryParams,omitempty"`
	HeaderParams  []string   `json:"headerParams,omitempty"`
	BodyParam     string     `json:"bodyParam,omitempty"`
	Auth          []ToolAuth `json:"auth,omitempty"`
}

// ToolAuth is one resolved security requirement applied at call time.
type ToolAuth struct {
	Type      string `json:"type"`                // "http", "apiKey", "oauth2", "openIdConnect"
	Scheme    string `json:"scheme,omitempty"`    // for http: "bearer", "basic", ...
	In        string `json:"in,omitempty"`        // for apiKey: "header", "query", "cookie"
	ParamName string `json:"paramName,omitempty"` // for apiKey: header/query parameter name
	EnvVar    string `json:"envVar"`
}

// EnvVar is one environment variable the generated or proxied server reads.
// Name joins ToolAuth.EnvVar and Handler.BaseURLEnvVar to the emitted
// .env.example.
type EnvVar struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Example     string `json:"example,omitempty"`
}

// EnabledTools returns the tools still enabled, in declaration order.
func (c ServerConfig) EnabledTools() []Tool {
	out := make([]Tool, 0, len(c.Tools))
	for _, t := range c.Tools {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

// FindTool returns the tool with the given name, if present.
func (c ServerConfig) FindTool(name string) (Tool, bool) {
	for _, t := range c.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}
