package codegen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yousuf/specforge-mcp/internal/ir"
)

// PythonGenerator emits a Python MCP server built on the mcp package with
// httpx for the upstream calls. Tool and operation tables are embedded as
// JSON so the generated source stays data-driven and deterministic.
type PythonGenerator struct{}

// NewPythonGenerator creates a new Python generator.
func NewPythonGenerator() *PythonGenerator {
	return &PythonGenerator{}
}

func (g *PythonGenerator) Target() string { return "python" }

// Generate renders the complete output tree for the config.
func (g *PythonGenerator) Generate(cfg ir.ServerConfig) (map[string]string, error) {
	tools := cfg.EnabledTools()
	if len(tools) == 0 {
		return nil, fmt.Errorf("config %q has no enabled tools", cfg.Name)
	}

	serverPy, err := g.renderServer(cfg, tools)
	if err != nil {
		return nil, err
	}

	files := map[string]string{
		"server.py":        serverPy,
		"requirements.txt": pyRequirements,
		"Dockerfile":       pyDockerfile,
		".env.example":     envExample(cfg),
		"README.md":        readme(cfg, pyRunSection),
	}
	return files, nil
}

// pyToolDef is the JSON shape of one entry in the generated TOOLS table.
type pyToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// pyOperation is the JSON shape of one entry in the generated OPERATIONS
// table; the generic executor in server.py interprets it at call time.
type pyOperation struct {
	Method       string   `json:"method"`
	Path         string   `json:"path"`
	BaseURL      string   `json:"base_url"`
	BaseURLEnv   string   `json:"base_url_env"`
	ContentType  string   `json:"content_type"`
	PathParams   []string `json:"path_params"`
	QueryParams  []string `json:"query_params"`
	HeaderParams []string `json:"header_params"`
	BodyParam    string   `json:"body_param"`
	Auth         []pyAuth `json:"auth"`
}

type pyAuth struct {
	Type   string `json:"type"`
	Scheme string `json:"scheme"`
	In     string `json:"in"`
	Name   string `json:"name"`
	EnvVar string `json:"env"`
}

func (g *PythonGenerator) renderServer(cfg ir.ServerConfig, tools []ir.Tool) (string, error) {
	toolDefs := make([]pyToolDef, 0, len(tools))
	operations := make(map[string]pyOperation, len(tools))

	for _, tool := range tools {
		schemaJSON, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return "", fmt.Errorf("failed to marshal schema for %q: %w", tool.Name, err)
		}
		toolDefs = append(toolDefs, pyToolDef{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schemaJSON,
		})

		h := tool.Handler
		auths := make([]pyAuth, 0, len(h.Auth))
		for _, a := range h.Auth {
			auths = append(auths, pyAuth{Type: a.Type, Scheme: a.Scheme, In: a.In, Name: a.ParamName, EnvVar: a.EnvVar})
		}
		operations[tool.Name] = pyOperation{
			Method:       h.Method,
			Path:         h.Path,
			BaseURL:      h.BaseURL,
			BaseURLEnv:   h.BaseURLEnvVar,
			ContentType:  h.ContentType,
			PathParams:   emptyIfNil(h.PathParams),
			QueryParams:  emptyIfNil(h.QueryParams),
			HeaderParams: emptyIfNil(h.HeaderParams),
			BodyParam:    h.BodyParam,
			Auth:         auths,
		}
	}

	toolsJSON, err := json.MarshalIndent(toolDefs, "", "  ")
	if err != nil {
		return "", err
	}
	opsJSON, err := json.MarshalIndent(operations, "", "  ")
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("#!/usr/bin/env python3\n")
	sb.WriteString(fmt.Sprintf("\"\"\"%s v%s. Generated MCP server, do not edit manually.\"\"\"\n\n", cfg.Name, cfg.Version))
	sb.WriteString("import asyncio\n")
	sb.WriteString("import json\n")
	sb.WriteString("import os\n")
	sb.WriteString("from typing import Any\n\n")
	sb.WriteString("import httpx\n")
	sb.WriteString("from mcp.server import Server\n")
	sb.WriteString("from mcp.server.stdio import stdio_server\n")
	sb.WriteString("from mcp.types import TextContent, Tool\n\n")

	sb.WriteString(fmt.Sprintf("server = Server(\"%s\")\n\n", escapeDoubleQuoted(cfg.Name)))
	sb.WriteString(fmt.Sprintf("BASE_URL = os.environ.get(\"%s\", \"%s\")\n\n", baseURLEnvDefault, escapeDoubleQuoted(cfg.BaseURL)))

	sb.WriteString("_TOOL_DEFS = json.loads(r\"\"\"\n")
	sb.Write(toolsJSON)
	sb.WriteString("\n\"\"\")\n\n")

	sb.WriteString("OPERATIONS: dict[str, dict[str, Any]] = json.loads(r\"\"\"\n")
	sb.Write(opsJSON)
	sb.WriteString("\n\"\"\")\n\n")

	sb.WriteString(pyExecutor)
	return sb.String(), nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

const pyExecutor = `async def _execute(name: str, args: dict[str, Any]) -> str:
    op = OPERATIONS[name]
    base = BASE_URL or op["base_url"]
    if op["base_url_env"]:
        base = os.environ.get(op["base_url_env"], op["base_url"])

    path = op["path"]
    for param in op["path_params"]:
        path = path.replace("{" + param + "}", str(args.get(param, "")))

    params = {q: args[q] for q in op["query_params"] if args.get(q) is not None}

    headers = {"content-type": op["content_type"]}
    for header in op["header_params"]:
        value = args.get("header_" + header)
        if value is not None:
            headers[header] = str(value)

    for auth in op["auth"]:
        secret = os.environ.get(auth["env"], "")
        if not secret:
            continue
        if auth["type"] == "apiKey" and auth["in"] == "query":
            params[auth["name"]] = secret
        elif auth["type"] == "apiKey":
            headers[auth["name"]] = secret
        elif auth["type"] == "http" and auth["scheme"] == "basic":
            headers["authorization"] = "Basic " + secret
        else:
            headers["authorization"] = "Bearer " + secret

    body = None
    if op["body_param"] == "__body_object__":
        claimed = set(op["path_params"]) | set(op["query_params"])
        claimed |= {"header_" + h for h in op["header_params"]}
        body = {k: v for k, v in args.items() if k not in claimed and v is not None}
    elif op["body_param"] == "body":
        body = args.get("body")

    async with httpx.AsyncClient() as client:
        resp = await client.request(
            op["method"], base + path, params=params, headers=headers, json=body
        )
        resp.raise_for_status()
        return resp.text


@server.list_tools()
async def list_tools() -> list[Tool]:
    return [Tool(**d) for d in _TOOL_DEFS]


@server.call_tool()
async def call_tool(name: str, arguments: dict[str, Any]) -> list[TextContent]:
    if name not in OPERATIONS:
        raise ValueError(f"unknown tool: {name}")
    text = await _execute(name, arguments or {})
    return [TextContent(type="text", text=text)]


async def main() -> None:
    async with stdio_server() as (read_stream, write_stream):
        await server.run(
            read_stream, write_stream, server.create_initialization_options()
        )


if __name__ == "__main__":
    asyncio.run(main())
`

const pyRequirements = `mcp>=1.2.0
httpx>=0.27.0
`

const pyDockerfile = `FROM python:3.12-slim
WORKDIR /app
COPY requirements.txt ./
RUN pip install --no-cache-dir -r requirements.txt
COPY server.py ./
ENTRYPOINT ["python", "server.py"]
`

const pyRunSection = `## Running

` + "```bash" + `
pip install -r requirements.txt
python server.py
` + "```" + `

The server speaks MCP over stdio. Or build the Docker image:

` + "```bash" + `
docker build -t mcp-server .
docker run --rm -i --env-file .env mcp-server
` + "```" + `
`
