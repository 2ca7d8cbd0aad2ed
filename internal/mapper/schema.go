package mapper

import "github.com/yousuf/specforge-mcp/internal/ir"

// convertSchema turns a resolved (ref-free) OpenAPI schema node into the
// tagged IR form. Deliberate simplifications, matching what tool callers can
// actually express:
//   - integer becomes number (the canonical numeric type in MCP schemas)
//   - oneOf/anyOf degrade to KindUnresolved, which serializes as a string
func convertSchema(raw map[string]any) *ir.Schema {
	if raw == nil {
		return &ir.Schema{Kind: ir.KindScalar, Type: "string"}
	}

	out := &ir.Schema{}
	out.Description, _ = raw["description"].(string)
	out.Format, _ = raw["format"].(string)
	out.Default = raw["default"]

	typ, _ := raw["type"].(string)

	if _, ok := raw["oneOf"]; ok {
		out.Kind = ir.KindUnresolved
		return out
	}
	if _, ok := raw["anyOf"]; ok {
		out.Kind = ir.KindUnresolved
		return out
	}

	if enum, ok := raw["enum"].([]any); ok && len(enum) > 0 {
		out.Kind = ir.KindEnum
		out.Enum = enum
		out.Type = mapScalarType(typ)
		return out
	}

	switch typ {
	case "object":
		out.Kind = ir.KindObject
		if props, ok := raw["properties"].(map[string]any); ok {
			out.Properties = make(map[string]*ir.Schema, len(props))
			for name, p := range props {
				pm, ok := p.(map[string]any)
				if !ok {
					continue
				}
				out.Properties[name] = convertSchema(pm)
			}
		}
		if req, ok := raw["required"].([]any); ok {
			for _, r := range req {
				if s, ok := r.(string); ok {
					out.Required = append(out.Required, s)
				}
			}
		}
	case "array":
		out.Kind = ir.KindArray
		if items, ok := raw["items"].(map[string]any); ok {
			out.Items = convertSchema(items)
		} else {
			out.Items = &ir.Schema{Kind: ir.KindScalar, Type: "string"}
		}
	case "string", "boolean":
		out.Kind = ir.KindScalar
		out.Type = typ
	case "integer", "number":
		out.Kind = ir.KindScalar
		out.Type = "number"
	default:
		// No type and no composition: if properties are present treat it as
		// an object, otherwise fall back to an opaque string.
		if props, ok := raw["properties"].(map[string]any); ok && len(props) > 0 {
			typed := make(map[string]any, len(raw)+1)
			for k, v := range raw {
				typed[k] = v
			}
			typed["type"] = "object"
			return convertSchema(typed)
		}
		out.Kind = ir.KindScalar
		out.Type = "string"
	}
	return out
}

func mapScalarType(t string) string {
	switch t {
	case "integer", "number":
		return "number"
	case "boolean":
		return "boolean"
	default:
		return "string"
	}
}
