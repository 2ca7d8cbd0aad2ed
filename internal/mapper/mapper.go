// Package mapper transforms a parsed OpenAPI spec into the MCP server IR:
// one tool per non-deprecated operation, with a flattened input schema, an
// HTTP call descriptor, and resolved authentication requirements.
package mapper

import (
	"sort"
	"strings"

	"github.com/yousuf/specforge-mcp/internal/ir"
	"github.com/yousuf/specforge-mcp/internal/openapi"
	"github.com/yousuf/specforge-mcp/internal/strutil"
)

// Map converts a ParsedSpec into a ServerConfig. It is a pure, total
// function: every endpoint not marked deprecated becomes exactly one tool,
// and deprecated endpoints are dropped silently.
func Map(spec *openapi.ParsedSpec) ir.ServerConfig {
	cfg := ir.ServerConfig{
		Name:        serverName(spec.Title),
		Version:     specVersion(spec.Version),
		Description: spec.Description,
		BaseURL:     spec.BaseURL,
	}

	envVars := map[string]ir.EnvVar{}
	var envOrder []string

	for _, ep := range spec.Endpoints {
		if ep.Deprecated {
			continue
		}
		tool := mapEndpoint(spec, ep)
		cfg.Tools = append(cfg.Tools, tool)

		for _, auth := range tool.Handler.Auth {
			if _, ok := envVars[auth.EnvVar]; ok {
				continue
			}
			scheme := schemeForAuth(spec, auth)
			envVars[auth.EnvVar] = ir.EnvVar{
				Name:        auth.EnvVar,
				Description: envVarDescription(scheme),
				Required:    true,
			}
			envOrder = append(envOrder, auth.EnvVar)
		}
	}

	for _, name := range envOrder {
		cfg.EnvVars = append(cfg.EnvVars, envVars[name])
	}
	return cfg
}

func mapEndpoint(spec *openapi.ParsedSpec, ep openapi.Endpoint) ir.Tool {
	input := &ir.Schema{
		Kind:       ir.KindObject,
		Properties: map[string]*ir.Schema{},
	}
	handler := ir.Handler{
		Method:      ep.Method,
		Path:        ep.Path,
		BaseURL:     spec.BaseURL,
		ContentType: "application/json",
	}

	for _, p := range ep.Parameters {
		propName := p.Name
		switch p.In {
		case "path":
			handler.PathParams = append(handler.PathParams, p.Name)
		case "query":
			handler.QueryParams = append(handler.QueryParams, p.Name)
		case "header":
			// Header parameters are namespaced so they cannot shadow a
			// same-named body or query property.
			propName = "header_" + p.Name
			handler.HeaderParams = append(handler.HeaderParams, p.Name)
		default:
			// Cookie parameters are not mapped.
			continue
		}

		prop := convertSchema(p.Schema)
		if prop.Description == "" {
			prop.Description = p.Description
		}
		input.Properties[propName] = prop
		if p.Required || p.In == "path" {
			input.Required = append(input.Required, propName)
		}
	}

	if ep.RequestBody != nil {
		handler.ContentType = ep.RequestBody.ContentType
		body := convertSchema(ep.RequestBody.Schema)
		if body.Kind == ir.KindObject && len(body.Properties) > 0 {
			// Flatten: hoist the body's top-level properties into the tool
			// input. Body-vs-parameter name collisions are not
			// disambiguated; the body property wins.
			for name, prop := range body.Properties {
				input.Properties[name] = prop
			}
			for _, name := range body.Required {
				if !input.IsRequired(name) {
					input.Required = append(input.Required, name)
				}
			}
			handler.BodyParam = ir.BodyObjectSentinel
		} else {
			opaque := body
			if opaque.Description == "" {
				opaque.Description = "Raw request body"
			}
			input.Properties["body"] = opaque
			if ep.RequestBody.Required {
				input.Required = append(input.Required, "body")
			}
			handler.BodyParam = "body"
		}
	}

	sort.Strings(input.Required)
	handler.Auth = resolveAuth(spec, ep.Security)

	return ir.Tool{
		Name:        toolName(ep),
		Description: toolDescription(ep),
		InputSchema: input,
		Handler:     handler,
		OperationID: ep.OperationID,
		Enabled:     true,
	}
}

func schemeForAuth(spec *openapi.ParsedSpec, auth ir.ToolAuth) openapi.SecurityScheme {
	for _, scheme := range spec.SecuritySchemes {
		if authEnvVar(scheme) == auth.EnvVar {
			return scheme
		}
	}
	return openapi.SecurityScheme{Type: auth.Type, Scheme: auth.Scheme, In: auth.In, ParamName: auth.ParamName}
}

func serverName(title string) string {
	name := strutil.SanitizeToolName(strings.TrimSpace(title))
	name = strings.ReplaceAll(name, "_", "-")
	if name == "" {
		return "mcp-server"
	}
	return name
}

func specVersion(v string) string {
	if strings.TrimSpace(v) == "" {
		return "1.0.0"
	}
	return v
}
