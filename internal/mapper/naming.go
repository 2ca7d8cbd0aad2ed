package mapper

import (
	"strings"

	"github.com/yousuf/specforge-mcp/internal/openapi"
	"github.com/yousuf/specforge-mcp/internal/strutil"
)

// methodVerbs maps HTTP methods to the verb used when synthesizing a tool
// name from the path.
var methodVerbs = map[string]string{
	"GET":     "get",
	"POST":    "create",
	"PUT":     "update",
	"PATCH":   "patch",
	"DELETE":  "delete",
	"HEAD":    "check",
	"OPTIONS": "options",
}

// descriptionVerbs maps HTTP methods to the verb used when synthesizing a
// human-readable description.
var descriptionVerbs = map[string]string{
	"GET":     "Retrieve",
	"POST":    "Create",
	"PUT":     "Update",
	"PATCH":   "Patch",
	"DELETE":  "Delete",
	"HEAD":    "Check",
	"OPTIONS": "Inspect",
}

// toolName prefers the sanitized operationId; without one it synthesizes
// "<verb>_<path segments>" where path parameters render as "by_<name>".
func toolName(ep openapi.Endpoint) string {
	if ep.OperationID != "" {
		return strutil.SanitizeToolName(ep.OperationID)
	}

	verb := methodVerbs[ep.Method]
	if verb == "" {
		verb = strings.ToLower(ep.Method)
	}
	parts := []string{verb}
	for _, segment := range strings.Split(strings.Trim(ep.Path, "/"), "/") {
		if segment == "" {
			continue
		}
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			parts = append(parts, "by_"+strings.Trim(segment, "{}"))
			continue
		}
		parts = append(parts, segment)
	}
	return strutil.SanitizeToolName(strings.Join(parts, "_"))
}

// toolDescription joins summary and description when both are present,
// otherwise uses whichever exists, otherwise synthesizes
// "<Verb> <last non-parameter path segment>".
func toolDescription(ep openapi.Endpoint) string {
	summary := strings.TrimSpace(ep.Summary)
	desc := strings.TrimSpace(ep.Description)
	switch {
	case summary != "" && desc != "":
		return strings.TrimSuffix(summary, ".") + ". " + desc
	case summary != "":
		return summary
	case desc != "":
		return desc
	}

	verb := descriptionVerbs[ep.Method]
	if verb == "" {
		verb = strutil.ToPascalCase(strings.ToLower(ep.Method))
	}
	subject := lastResourceSegment(ep.Path)
	if subject == "" {
		return verb + " resource"
	}
	return verb + " " + subject
}

// lastResourceSegment returns the last path segment that is not a {param}
// placeholder, with a plural trailing "s" trimmed ("pets" reads as "pet").
func lastResourceSegment(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		if s == "" || strings.HasPrefix(s, "{") {
			continue
		}
		if len(s) > 1 && strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") {
			s = strings.TrimSuffix(s, "s")
		}
		return s
	}
	return ""
}
