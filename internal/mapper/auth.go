package mapper

import (
	"fmt"
	"sort"

	"github.com/yousuf/specforge-mcp/internal/ir"
	"github.com/yousuf/specforge-mcp/internal/openapi"
	"github.com/yousuf/specforge-mcp/internal/strutil"
)

// resolveAuth turns an endpoint's security requirements into ToolAuth
// entries. Requirements naming a scheme the document never declares are
// skipped; an empty requirement object ({}: "no auth accepted") contributes
// nothing.
func resolveAuth(spec *openapi.ParsedSpec, requirements []openapi.SecurityRequirement) []ir.ToolAuth {
	var auths []ir.ToolAuth
	seen := map[string]struct{}{}
	for _, req := range requirements {
		for _, schemeName := range sortedRequirementNames(req) {
			scheme, ok := spec.FindScheme(schemeName)
			if !ok {
				continue
			}
			if _, dup := seen[schemeName]; dup {
				continue
			}
			seen[schemeName] = struct{}{}

			auth := ir.ToolAuth{
				Type:      scheme.Type,
				Scheme:    scheme.Scheme,
				In:        scheme.In,
				ParamName: scheme.ParamName,
				EnvVar:    authEnvVar(scheme),
			}
			if auth.EnvVar == "" {
				continue
			}
			auths = append(auths, auth)
		}
	}
	return auths
}

// authEnvVar derives the environment variable name deterministically from
// the scheme shape.
func authEnvVar(scheme openapi.SecurityScheme) string {
	switch scheme.Type {
	case "http":
		switch scheme.Scheme {
		case "bearer":
			return "API_BEARER_TOKEN"
		case "basic":
			return "API_BASIC_AUTH"
		default:
			return "API_HTTP_AUTH"
		}
	case "apiKey":
		name := strutil.SanitizeEnvName(scheme.ParamName)
		if name == "" {
			name = "VALUE"
		}
		return "API_KEY_" + name
	case "oauth2", "openIdConnect":
		return "API_OAUTH_TOKEN"
	}
	return ""
}

// envVarDescription produces the human-readable description attached to a
// collected auth env var.
func envVarDescription(scheme openapi.SecurityScheme) string {
	if scheme.Description != "" {
		return scheme.Description
	}
	switch scheme.Type {
	case "http":
		switch scheme.Scheme {
		case "bearer":
			if scheme.BearerFormat != "" {
				return fmt.Sprintf("Bearer token (%s) for the API", scheme.BearerFormat)
			}
			return "Bearer token for the API"
		case "basic":
			return "Base64-encoded user:password for HTTP basic auth"
		default:
			return fmt.Sprintf("Credentials for HTTP %q auth", scheme.Scheme)
		}
	case "apiKey":
		return fmt.Sprintf("API key sent as the %q %s parameter", scheme.ParamName, scheme.In)
	case "oauth2":
		return "OAuth2 access token for the API"
	case "openIdConnect":
		return "OpenID Connect access token for the API"
	}
	return "Credentials for the API"
}

func sortedRequirementNames(req openapi.SecurityRequirement) []string {
	names := make([]string, 0, len(req))
	for name := range req {
		names = append(names, name)
	}
	// Requirement objects rarely hold more than one scheme, but iteration
	// order still must not leak map randomness into the IR.
	sort.Strings(names)
	return names
}
