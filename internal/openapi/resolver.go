package openapi

import (
	"fmt"
	"strconv"
	"strings"
)

// maxRefDepth bounds chained $ref resolution. The memo cache already makes
// cycles terminate; the depth ceiling is a backstop for pathological chains.
const maxRefDepth = 50

// resolver walks a decoded document and replaces every document-internal
// $ref with its target content and flattens every allOf composition.
//
// Cycle handling: before recursing into a ref target, an empty placeholder
// map is inserted into the memo cache under the ref string. A cyclic chain
// bottoms out at that placeholder instead of recursing forever, so
// resolution is O(distinct refs). The memo slot is overwritten with the
// finished value once resolution completes; the partial value stays wherever
// the cycle captured it, which keeps the output acyclic.
type resolver struct {
	root     map[string]any
	memo     map[string]any
	warnings []string
}

func newResolver(root map[string]any) *resolver {
	return &resolver{
		root: root,
		memo: make(map[string]any),
	}
}

func (r *resolver) resolve(v any, depth int) any {
	switch node := v.(type) {
	case map[string]any:
		if ref, ok := node["$ref"].(string); ok {
			return r.resolveRef(ref, depth)
		}
		out := make(map[string]any, len(node))
		for k, val := range node {
			out[k] = r.resolve(val, depth)
		}
		if _, ok := out["allOf"]; ok {
			out = flattenAllOf(out)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, val := range node {
			out[i] = r.resolve(val, depth)
		}
		return out
	default:
		return v
	}
}

func (r *resolver) resolveRef(ref string, depth int) any {
	if cached, ok := r.memo[ref]; ok {
		return cached
	}
	if depth >= maxRefDepth {
		r.warnings = append(r.warnings, fmt.Sprintf("ref %q exceeds resolution depth %d, left unresolved", ref, maxRefDepth))
		return map[string]any{}
	}

	// Insert the placeholder before recursing so a cycle resolves to it.
	placeholder := map[string]any{}
	r.memo[ref] = placeholder

	target, err := lookupPointer(r.root, ref)
	if err != nil {
		r.warnings = append(r.warnings, err.Error())
		return placeholder
	}

	resolved := r.resolve(target, depth+1)
	r.memo[ref] = resolved
	return resolved
}

// lookupPointer follows a JSON-Pointer-style path ("#/a/b/c") from the
// document root, unescaping ~1 to "/" and ~0 to "~" per segment.
func lookupPointer(root map[string]any, ref string) (any, error) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, fmt.Errorf("unsupported external reference %q", ref)
	}
	var current any = root
	for _, segment := range strings.Split(strings.TrimPrefix(ref, "#/"), "/") {
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, fmt.Errorf("reference %q not found in document", ref)
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("reference %q indexes outside the array", ref)
			}
			current = node[idx]
		default:
			return nil, fmt.Errorf("reference %q traverses a non-container value", ref)
		}
	}
	return current, nil
}

// flattenAllOf merges an allOf composition into its parent node: properties
// are shallow-merged and required lists concatenated, left to right. A later
// branch overwrites an earlier same-named property (last write wins).
func flattenAllOf(node map[string]any) map[string]any {
	branches, ok := node["allOf"].([]any)
	if !ok {
		delete(node, "allOf")
		return node
	}

	merged := make(map[string]any, len(node))
	props := map[string]any{}
	var required []any

	for k, v := range node {
		if k == "allOf" {
			continue
		}
		merged[k] = v
	}
	if p, ok := merged["properties"].(map[string]any); ok {
		for k, v := range p {
			props[k] = v
		}
	}
	if req, ok := merged["required"].([]any); ok {
		required = append(required, req...)
	}

	for _, branch := range branches {
		bm, ok := branch.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range bm {
			switch k {
			case "properties":
				if pm, ok := v.(map[string]any); ok {
					for pk, pv := range pm {
						props[pk] = pv
					}
				}
			case "required":
				if ra, ok := v.([]any); ok {
					required = append(required, ra...)
				}
			case "allOf":
				// Branches are resolved before the parent, so a nested
				// allOf has already been flattened away.
			default:
				merged[k] = v
			}
		}
	}

	if len(props) > 0 {
		merged["properties"] = props
		merged["type"] = "object"
	}
	if len(required) > 0 {
		merged["required"] = dedupeStrings(required)
	}
	return merged
}

func dedupeStrings(values []any) []any {
	seen := make(map[string]struct{}, len(values))
	out := make([]any, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
