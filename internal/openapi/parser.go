package openapi

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// operationMethods is the fixed order in which a path item's operations are
// turned into endpoints.
var operationMethods = []string{"get", "post", "put", "patch", "delete", "head", "options"}

// Parse decodes an OpenAPI 3.x document from a JSON or YAML string, resolves
// all document-internal $ref pointers and allOf compositions, and extracts a
// ParsedSpec. Structural problems are reported as Result.Errors; lossy or
// suspicious-but-usable input is reported as Result.Warnings.
//
// Parse is a pure function of its input: no caching survives the call, so
// concurrent invocations need no coordination.
func Parse(input string) Result {
	var res Result

	doc, err := decode(input)
	if err != nil {
		res.Errors = append(res.Errors, Error{Path: "", Message: err.Error()})
		return res
	}

	version, _ := doc["openapi"].(string)
	if version == "" {
		res.Errors = append(res.Errors, Error{Path: "openapi", Message: "missing required field; Swagger 2.0 documents are not supported"})
		return res
	}
	if !strings.HasPrefix(version, "3.") {
		res.Errors = append(res.Errors, Error{Path: "openapi", Message: fmt.Sprintf("unsupported version %q, expected 3.x", version)})
		return res
	}

	r := newResolver(doc)
	resolved, ok := r.resolve(doc, 0).(map[string]any)
	if !ok {
		res.Errors = append(res.Errors, Error{Path: "", Message: "document root is not an object"})
		return res
	}
	res.Warnings = append(res.Warnings, r.warnings...)

	spec := &ParsedSpec{Schemas: map[string]map[string]any{}}
	extractInfo(resolved, spec)
	extractServers(resolved, spec)
	extractSecuritySchemes(resolved, spec)
	extractSchemas(resolved, spec)

	paths, _ := resolved["paths"].(map[string]any)
	if len(paths) == 0 {
		res.Warnings = append(res.Warnings, "document declares no paths; the resulting tool set will be empty")
	}
	spec.Endpoints = extractEndpoints(paths, documentSecurity(resolved))

	res.Spec = spec
	return res
}

// decode auto-detects the input format: strings whose first non-space byte
// is '{' are parsed as JSON, everything else as YAML.
func decode(input string) (map[string]any, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, fmt.Errorf("empty document")
	}

	var doc map[string]any
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %v", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %v", err)
	}
	return normalizeYAML(doc).(map[string]any), nil
}

// normalizeYAML rewrites yaml.v3's map[string]any/map[any]any mix into pure
// map[string]any so the resolver and mapper see one shape regardless of the
// input format.
func normalizeYAML(v any) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for k, val := range node {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, val := range node {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, val := range node {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}

func extractInfo(doc map[string]any, spec *ParsedSpec) {
	info, _ := doc["info"].(map[string]any)
	spec.Title, _ = info["title"].(string)
	spec.Description, _ = info["description"].(string)
	spec.Version, _ = info["version"].(string)
}

func extractServers(doc map[string]any, spec *ParsedSpec) {
	servers, _ := doc["servers"].([]any)
	for _, s := range servers {
		sm, ok := s.(map[string]any)
		if !ok {
			continue
		}
		if u, ok := sm["url"].(string); ok && u != "" {
			spec.Servers = append(spec.Servers, strings.TrimSuffix(u, "/"))
		}
	}
	if len(spec.Servers) > 0 {
		spec.BaseURL = spec.Servers[0]
	}
}

func extractSecuritySchemes(doc map[string]any, spec *ParsedSpec) {
	components, _ := doc["components"].(map[string]any)
	schemes, _ := components["securitySchemes"].(map[string]any)
	for _, name := range sortedKeys(schemes) {
		sm, ok := schemes[name].(map[string]any)
		if !ok {
			continue
		}
		scheme := SecurityScheme{Name: name}
		scheme.Type, _ = sm["type"].(string)
		scheme.Description, _ = sm["description"].(string)
		scheme.In, _ = sm["in"].(string)
		scheme.ParamName, _ = sm["name"].(string)
		scheme.Scheme, _ = sm["scheme"].(string)
		scheme.BearerFormat, _ = sm["bearerFormat"].(string)
		scheme.OpenIDURL, _ = sm["openIdConnectUrl"].(string)
		if flows, ok := sm["flows"].(map[string]any); ok {
			scheme.Flows = flows
		}
		spec.SecuritySchemes = append(spec.SecuritySchemes, scheme)
	}
}

func extractSchemas(doc map[string]any, spec *ParsedSpec) {
	components, _ := doc["components"].(map[string]any)
	schemas, _ := components["schemas"].(map[string]any)
	for name, raw := range schemas {
		if sm, ok := raw.(map[string]any); ok {
			spec.Schemas[name] = sm
		}
	}
}

func documentSecurity(doc map[string]any) []SecurityRequirement {
	raw, _ := doc["security"].([]any)
	return toSecurityRequirements(raw)
}

func toSecurityRequirements(raw []any) []SecurityRequirement {
	var out []SecurityRequirement
	for _, entry := range raw {
		em, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		req := SecurityRequirement{}
		for name, scopes := range em {
			var scopeList []string
			if sl, ok := scopes.([]any); ok {
				for _, s := range sl {
					if str, ok := s.(string); ok {
						scopeList = append(scopeList, str)
					}
				}
			}
			req[name] = scopeList
		}
		out = append(out, req)
	}
	return out
}

// extractEndpoints walks paths in sorted order (the decoded document is a
// map, so source declaration order is not recoverable) and each path item's
// operations in the fixed method order.
func extractEndpoints(paths map[string]any, docSecurity []SecurityRequirement) []Endpoint {
	var endpoints []Endpoint
	for _, path := range sortedKeys(paths) {
		item, ok := paths[path].(map[string]any)
		if !ok {
			continue
		}
		pathParams := extractParameters(item["parameters"])

		for _, method := range operationMethods {
			op, ok := item[method].(map[string]any)
			if !ok {
				continue
			}
			ep := Endpoint{
				Path:   path,
				Method: strings.ToUpper(method),
			}
			ep.OperationID, _ = op["operationId"].(string)
			ep.Summary, _ = op["summary"].(string)
			ep.Description, _ = op["description"].(string)
			ep.Deprecated, _ = op["deprecated"].(bool)
			ep.Parameters = mergeParameters(pathParams, extractParameters(op["parameters"]))
			ep.RequestBody = extractRequestBody(op["requestBody"])
			ep.Responses = extractResponses(op["responses"])

			if rawSec, ok := op["security"].([]any); ok {
				ep.Security = toSecurityRequirements(rawSec)
			} else {
				ep.Security = docSecurity
			}

			endpoints = append(endpoints, ep)
		}
	}
	return endpoints
}

func extractParameters(raw any) []Parameter {
	list, _ := raw.([]any)
	var out []Parameter
	for _, entry := range list {
		pm, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		p := Parameter{}
		p.Name, _ = pm["name"].(string)
		p.In, _ = pm["in"].(string)
		p.Description, _ = pm["description"].(string)
		p.Required, _ = pm["required"].(bool)
		if schema, ok := pm["schema"].(map[string]any); ok {
			p.Schema = schema
		}
		if p.Name == "" || p.In == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// mergeParameters layers operation-level parameters over path-level ones,
// keyed by (in, name). Operation-level entries win.
func mergeParameters(pathLevel, opLevel []Parameter) []Parameter {
	type key struct{ in, name string }
	merged := make([]Parameter, 0, len(pathLevel)+len(opLevel))
	index := map[key]int{}
	for _, p := range pathLevel {
		index[key{p.In, p.Name}] = len(merged)
		merged = append(merged, p)
	}
	for _, p := range opLevel {
		if i, ok := index[key{p.In, p.Name}]; ok {
			merged[i] = p
			continue
		}
		index[key{p.In, p.Name}] = len(merged)
		merged = append(merged, p)
	}
	return merged
}

// extractRequestBody picks application/json when declared, otherwise the
// first media type by name. Multi-content-type bodies are deliberately
// simplified to a single schema.
func extractRequestBody(raw any) *RequestBody {
	rb, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	body := &RequestBody{ContentType: "application/json"}
	body.Description, _ = rb["description"].(string)
	body.Required, _ = rb["required"].(bool)

	content, _ := rb["content"].(map[string]any)
	if len(content) == 0 {
		return body
	}
	mediaType := "application/json"
	if _, ok := content[mediaType]; !ok {
		mediaType = sortedKeys(content)[0]
	}
	body.ContentType = mediaType
	if mt, ok := content[mediaType].(map[string]any); ok {
		if schema, ok := mt["schema"].(map[string]any); ok {
			body.Schema = schema
		}
	}
	return body
}

func extractResponses(raw any) map[string]Response {
	rm, _ := raw.(map[string]any)
	out := make(map[string]Response, len(rm))
	for code, entry := range rm {
		em, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		resp := Response{}
		resp.Description, _ = em["description"].(string)
		if content, ok := em["content"].(map[string]any); ok && len(content) > 0 {
			mediaType := "application/json"
			if _, ok := content[mediaType]; !ok {
				mediaType = sortedKeys(content)[0]
			}
			if mt, ok := content[mediaType].(map[string]any); ok {
				if schema, ok := mt["schema"].(map[string]any); ok {
					resp.Schema = schema
				}
			}
		}
		out[code] = resp
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
