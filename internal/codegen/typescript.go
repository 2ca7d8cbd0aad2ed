package codegen

import (
	"fmt"
	"strings"

	"github.com/yousuf/specforge-mcp/internal/ir"
)

// TypeScriptGenerator emits a Node.js MCP server built on
// @modelcontextprotocol/sdk with zod input validation.
type TypeScriptGenerator struct{}

// NewTypeScriptGenerator creates a new TypeScript generator.
func NewTypeScriptGenerator() *TypeScriptGenerator {
	return &TypeScriptGenerator{}
}

func (g *TypeScriptGenerator) Target() string { return "typescript" }

// Generate renders the complete output tree for the config.
func (g *TypeScriptGenerator) Generate(cfg ir.ServerConfig) (map[string]string, error) {
	tools := cfg.EnabledTools()
	if len(tools) == 0 {
		return nil, fmt.Errorf("config %q has no enabled tools", cfg.Name)
	}

	files := map[string]string{
		"src/index.ts":  g.renderIndex(cfg, tools),
		"package.json":  g.renderPackageJSON(cfg),
		"tsconfig.json": tsconfigJSON,
		"Dockerfile":    tsDockerfile,
		".env.example":  envExample(cfg),
		"README.md":     readme(cfg, tsRunSection),
	}
	return files, nil
}

func (g *TypeScriptGenerator) renderIndex(cfg ir.ServerConfig, tools []ir.Tool) string {
	var sb strings.Builder

	sb.WriteString("#!/usr/bin/env node\n")
	sb.WriteString("/**\n")
	sb.WriteString(fmt.Sprintf(" * %s v%s\n", cfg.Name, cfg.Version))
	sb.WriteString(" * Generated MCP server. Do not edit manually.\n")
	sb.WriteString(" */\n")
	sb.WriteString("import { McpServer } from \"@modelcontextprotocol/sdk/server/mcp.js\";\n")
	sb.WriteString("import { StdioServerTransport } from \"@modelcontextprotocol/sdk/server/stdio.js\";\n")
	sb.WriteString("import { z } from \"zod\";\n\n")

	sb.WriteString(fmt.Sprintf("const server = new McpServer({ name: %q, version: %q });\n\n",
		cfg.Name, cfg.Version))

	sb.WriteString(fmt.Sprintf("const BASE_URL = process.env.%s ?? %q;\n\n", baseURLEnvDefault, cfg.BaseURL))

	sb.WriteString("async function callApi(method: string, url: string, headers: Record<string, string>, body?: unknown): Promise<string> {\n")
	sb.WriteString("  const res = await fetch(url, {\n")
	sb.WriteString("    method,\n")
	sb.WriteString("    headers,\n")
	sb.WriteString("    body: body === undefined ? undefined : JSON.stringify(body),\n")
	sb.WriteString("  });\n")
	sb.WriteString("  const text = await res.text();\n")
	sb.WriteString("  if (!res.ok) {\n")
	sb.WriteString("    throw new Error(`HTTP ${res.status}: ${text}`);\n")
	sb.WriteString("  }\n")
	sb.WriteString("  return text;\n")
	sb.WriteString("}\n\n")

	for _, tool := range tools {
		sb.WriteString(g.renderTool(tool))
		sb.WriteString("\n")
	}

	sb.WriteString("async function main() {\n")
	sb.WriteString("  const transport = new StdioServerTransport();\n")
	sb.WriteString("  await server.connect(transport);\n")
	sb.WriteString("}\n\n")
	sb.WriteString("main().catch((err) => {\n")
	sb.WriteString("  console.error(err);\n")
	sb.WriteString("  process.exit(1);\n")
	sb.WriteString("});\n")

	return sb.String()
}

func (g *TypeScriptGenerator) renderTool(tool ir.Tool) string {
	var sb strings.Builder
	h := tool.Handler

	sb.WriteString("server.tool(\n")
	sb.WriteString(fmt.Sprintf("  %q,\n", tool.Name))
	sb.WriteString(fmt.Sprintf("  \"%s\",\n", escapeDoubleQuoted(tool.Description)))
	sb.WriteString("  {\n")
	for _, name := range tool.InputSchema.PropertyNames() {
		prop := tool.InputSchema.Properties[name]
		expr := zodExpr(prop)
		if prop.Description != "" {
			expr += fmt.Sprintf(".describe(\"%s\")", escapeDoubleQuoted(prop.Description))
		}
		if !tool.InputSchema.IsRequired(name) {
			expr += ".optional()"
		}
		sb.WriteString(fmt.Sprintf("    %s: %s,\n", tsPropertyKey(name), expr))
	}
	sb.WriteString("  },\n")
	sb.WriteString("  async (args) => {\n")

	// Base URL: per-tool env override for composed servers, the shared
	// BASE_URL otherwise.
	if h.BaseURLEnvVar != "" {
		sb.WriteString(fmt.Sprintf("    const baseUrl = process.env.%s ?? %q;\n", h.BaseURLEnvVar, h.BaseURL))
	} else {
		sb.WriteString("    const baseUrl = BASE_URL;\n")
	}

	// Path interpolation.
	path := h.Path
	for _, p := range h.PathParams {
		path = strings.ReplaceAll(path, "{"+p+"}",
			fmt.Sprintf("${encodeURIComponent(String(args[%q]))}", p))
	}
	sb.WriteString(fmt.Sprintf("    const url = new URL(`${baseUrl}%s`);\n", path))

	// Query parameters, appended only when the caller supplied a value.
	for _, q := range h.QueryParams {
		sb.WriteString(fmt.Sprintf("    if (args[%q] !== undefined) url.searchParams.set(%q, String(args[%q]));\n", q, q, q))
	}

	sb.WriteString(fmt.Sprintf("    const headers: Record<string, string> = { \"content-type\": %q };\n", h.ContentType))
	for _, hp := range h.HeaderParams {
		key := "header_" + hp
		sb.WriteString(fmt.Sprintf("    if (args[%q] !== undefined) headers[%q] = String(args[%q]);\n", key, hp, key))
	}

	for _, auth := range h.Auth {
		sb.WriteString(renderTSAuth(auth))
	}

	switch h.BodyParam {
	case ir.BodyObjectSentinel:
		claimed := claimedInputKeys(h)
		quoted := make([]string, len(claimed))
		for i, k := range claimed {
			quoted[i] = fmt.Sprintf("%q", k)
		}
		sb.WriteString(fmt.Sprintf("    const claimed = new Set([%s]);\n", strings.Join(quoted, ", ")))
		sb.WriteString("    const body: Record<string, unknown> = {};\n")
		sb.WriteString("    for (const [key, value] of Object.entries(args)) {\n")
		sb.WriteString("      if (!claimed.has(key) && value !== undefined) body[key] = value;\n")
		sb.WriteString("    }\n")
		sb.WriteString(fmt.Sprintf("    const text = await callApi(%q, url.toString(), headers, body);\n", h.Method))
	case "body":
		sb.WriteString(fmt.Sprintf("    const text = await callApi(%q, url.toString(), headers, args[\"body\"]);\n", h.Method))
	default:
		sb.WriteString(fmt.Sprintf("    const text = await callApi(%q, url.toString(), headers);\n", h.Method))
	}

	sb.WriteString("    return { content: [{ type: \"text\" as const, text }] };\n")
	sb.WriteString("  },\n")
	sb.WriteString(");\n")
	return sb.String()
}

// renderTSAuth emits the env-var read injecting one auth requirement into
// the outgoing request. apiKey-in-query is folded into the query string
// rather than a header.
func renderTSAuth(auth ir.ToolAuth) string {
	env := auth.EnvVar
	switch {
	case auth.Type == "apiKey" && auth.In == "query":
		return fmt.Sprintf("    if (process.env.%s) url.searchParams.set(%q, process.env.%s);\n", env, auth.ParamName, env)
	case auth.Type == "apiKey":
		return fmt.Sprintf("    if (process.env.%s) headers[%q] = process.env.%s;\n", env, auth.ParamName, env)
	case auth.Type == "http" && auth.Scheme == "basic":
		return fmt.Sprintf("    if (process.env.%s) headers[\"authorization\"] = `Basic ${process.env.%s}`;\n", env, env)
	case auth.Type == "http" && auth.Scheme != "bearer" && auth.Scheme != "":
		return fmt.Sprintf("    if (process.env.%s) headers[\"authorization\"] = process.env.%s;\n", env, env)
	default:
		// http bearer, oauth2, openIdConnect
		return fmt.Sprintf("    if (process.env.%s) headers[\"authorization\"] = `Bearer ${process.env.%s}`;\n", env, env)
	}
}

// zodExpr renders the zod validator for one schema node.
func zodExpr(s *ir.Schema) string {
	if s == nil {
		return "z.string()"
	}
	switch s.Kind {
	case ir.KindEnum:
		return zodEnum(s)
	case ir.KindArray:
		return "z.array(" + zodExpr(s.Items) + ")"
	case ir.KindObject:
		if len(s.Properties) == 0 {
			return "z.record(z.unknown())"
		}
		var sb strings.Builder
		sb.WriteString("z.object({ ")
		for i, name := range s.PropertyNames() {
			if i > 0 {
				sb.WriteString(", ")
			}
			expr := zodExpr(s.Properties[name])
			if !s.IsRequired(name) {
				expr += ".optional()"
			}
			sb.WriteString(tsPropertyKey(name) + ": " + expr)
		}
		sb.WriteString(" })")
		return sb.String()
	case ir.KindUnresolved:
		return "z.string()"
	default:
		switch s.Type {
		case "number":
			return "z.number()"
		case "boolean":
			return "z.boolean()"
		default:
			return "z.string()"
		}
	}
}

// zodEnum renders a closed value set: z.enum for all-string values,
// literal unions otherwise.
func zodEnum(s *ir.Schema) string {
	allStrings := true
	for _, v := range s.Enum {
		if _, ok := v.(string); !ok {
			allStrings = false
			break
		}
	}
	if allStrings {
		parts := make([]string, len(s.Enum))
		for i, v := range s.Enum {
			parts[i] = fmt.Sprintf("%q", v.(string))
		}
		return "z.enum([" + strings.Join(parts, ", ") + "])"
	}

	literals := make([]string, len(s.Enum))
	for i, v := range s.Enum {
		literals[i] = fmt.Sprintf("z.literal(%s)", tsLiteral(v))
	}
	if len(literals) == 1 {
		return literals[0]
	}
	return "z.union([" + strings.Join(literals, ", ") + "])"
}

func tsLiteral(v any) string {
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("%q", t)
	case bool:
		return fmt.Sprintf("%t", t)
	case float64:
		return fmt.Sprintf("%v", t)
	case int:
		return fmt.Sprintf("%d", t)
	default:
		return fmt.Sprintf("%q", fmt.Sprintf("%v", t))
	}
}

// tsPropertyKey quotes a property name when it is not a valid identifier.
func tsPropertyKey(name string) string {
	valid := len(name) > 0
	for i, r := range name {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || (isDigit && i > 0)) {
			valid = false
			break
		}
	}
	if valid {
		return name
	}
	return fmt.Sprintf("%q", name)
}

func (g *TypeScriptGenerator) renderPackageJSON(cfg ir.ServerConfig) string {
	return fmt.Sprintf(`{
  "name": "%s",
  "version": "%s",
  "description": "%s",
  "type": "module",
  "bin": {
    "%s": "dist/index.js"
  },
  "scripts": {
    "build": "tsc",
    "start": "node dist/index.js"
  },
  "dependencies": {
    "@modelcontextprotocol/sdk": "^1.0.0",
    "zod": "^3.23.0"
  },
  "devDependencies": {
    "@types/node": "^20.0.0",
    "typescript": "^5.4.0"
  }
}
`, cfg.Name, cfg.Version, escapeDoubleQuoted(cfg.Description), cfg.Name)
}

const tsconfigJSON = `{
  "compilerOptions": {
    "target": "ES2022",
    "module": "Node16",
    "moduleResolution": "Node16",
    "outDir": "dist",
    "rootDir": "src",
    "strict": true,
    "esModuleInterop": true,
    "skipLibCheck": true
  },
  "include": ["src/**/*"]
}
`

const tsDockerfile = `FROM node:20-alpine AS build
WORKDIR /app
COPY package.json ./
RUN npm install
COPY tsconfig.json ./
COPY src ./src
RUN npm run build

FROM node:20-alpine
WORKDIR /app
COPY --from=build /app/package.json ./
COPY --from=build /app/node_modules ./node_modules
COPY --from=build /app/dist ./dist
ENTRYPOINT ["node", "dist/index.js"]
`

const tsRunSection = `## Running

` + "```bash" + `
npm install
npm run build
npm start
` + "```" + `

The server speaks MCP over stdio. Point your MCP client at the built
` + "`dist/index.js`" + ` entry, or build the Docker image:

` + "```bash" + `
docker build -t mcp-server .
docker run --rm -i --env-file .env mcp-server
` + "```" + `
`
