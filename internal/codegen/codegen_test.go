package codegen

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yousuf/specforge-mcp/internal/ir"
)

func sampleConfig() ir.ServerConfig {
	return ir.ServerConfig{
		Name:        "pet-store",
		Version:     "1.0.5",
		Description: "A sample pet store API",
		BaseURL:     "https://petstore.example.com/v1",
		Tools: []ir.Tool{
			{
				Name:        "list_pets",
				Description: "List all pets",
				Enabled:     true,
				InputSchema: &ir.Schema{
					Kind: ir.KindObject,
					Properties: map[string]*ir.Schema{
						"limit":  {Kind: ir.KindScalar, Type: "number", Description: "Max items"},
						"status": {Kind: ir.KindEnum, Type: "string", Enum: []any{"available", "sold"}},
					},
				},
				Handler: ir.Handler{
					Method:      "GET",
					Path:        "/pets",
					BaseURL:     "https://petstore.example.com/v1",
					ContentType: "application/json",
					QueryParams: []string{"limit", "status"},
					Auth: []ir.ToolAuth{
						{Type: "apiKey", In: "query", ParamName: "api_key", EnvVar: "API_KEY_API_KEY"},
					},
				},
			},
			{
				Name:        "create_pet",
				Description: "Create a pet",
				Enabled:     true,
				InputSchema: &ir.Schema{
					Kind: ir.KindObject,
					Properties: map[string]*ir.Schema{
						"name":            {Kind: ir.KindScalar, Type: "string"},
						"tag":             {Kind: ir.KindScalar, Type: "string"},
						"header_X-Tenant": {Kind: ir.KindScalar, Type: "string"},
						"tags":            {Kind: ir.KindArray, Items: &ir.Schema{Kind: ir.KindScalar, Type: "string"}},
					},
					Required: []string{"name"},
				},
				Handler: ir.Handler{
					Method:       "POST",
					Path:         "/pets",
					BaseURL:      "https://petstore.example.com/v1",
					ContentType:  "application/json",
					HeaderParams: []string{"X-Tenant"},
					BodyParam:    ir.BodyObjectSentinel,
					Auth: []ir.ToolAuth{
						{Type: "http", Scheme: "bearer", EnvVar: "API_BEARER_TOKEN"},
					},
				},
			},
			{
				Name:        "purge_pets",
				Description: "Dangerous, disabled by default",
				Enabled:     false,
				InputSchema: &ir.Schema{Kind: ir.KindObject},
				Handler:     ir.Handler{Method: "DELETE", Path: "/pets"},
			},
		},
		EnvVars: []ir.EnvVar{
			{Name: "API_KEY_API_KEY", Description: "API key for the pet store", Required: true},
			{Name: "API_BEARER_TOKEN", Description: "Bearer token", Required: false},
		},
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	for _, target := range Targets() {
		t.Run(target, func(t *testing.T) {
			gen, err := ForTarget(target)
			require.NoError(t, err)

			first, err := gen.Generate(sampleConfig())
			require.NoError(t, err)
			second, err := gen.Generate(sampleConfig())
			require.NoError(t, err)

			assert.Empty(t, cmp.Diff(first, second), "same config must yield byte-identical output")
		})
	}
}

func TestForTarget(t *testing.T) {
	tests := []struct {
		alias    string
		expected string
	}{
		{"typescript", "typescript"},
		{"ts", "typescript"},
		{"python", "python"},
		{"py", "python"},
	}
	for _, tt := range tests {
		gen, err := ForTarget(tt.alias)
		require.NoError(t, err, tt.alias)
		assert.Equal(t, tt.expected, gen.Target())
	}

	_, err := ForTarget("rust")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target")
}

func TestGenerate_FailsWithoutEnabledTools(t *testing.T) {
	cfg := sampleConfig()
	for i := range cfg.Tools {
		cfg.Tools[i].Enabled = false
	}
	for _, target := range Targets() {
		gen, err := ForTarget(target)
		require.NoError(t, err)
		_, err = gen.Generate(cfg)
		require.Error(t, err, target)
	}
}

func TestTypeScript_OutputTree(t *testing.T) {
	files, err := NewTypeScriptGenerator().Generate(sampleConfig())
	require.NoError(t, err)

	for _, path := range []string{"src/index.ts", "package.json", "tsconfig.json", "Dockerfile", ".env.example", "README.md"} {
		assert.Contains(t, files, path)
	}

	var pkg map[string]any
	require.NoError(t, json.Unmarshal([]byte(files["package.json"]), &pkg), "package.json must be valid JSON")
	assert.Equal(t, "pet-store", pkg["name"])

	index := files["src/index.ts"]
	assert.Contains(t, index, `server.tool(`)
	assert.Contains(t, index, `"list_pets"`)
	assert.Contains(t, index, `"create_pet"`)
	assert.NotContains(t, index, "purge_pets", "disabled tools are omitted entirely")
	assert.Contains(t, index, "z.number()")
	assert.Contains(t, index, `z.enum(["available", "sold"])`)
	assert.Contains(t, index, "z.array(z.string())")
	assert.Contains(t, index, ".optional()")
}

func TestTypeScript_AuthInjection(t *testing.T) {
	files, err := NewTypeScriptGenerator().Generate(sampleConfig())
	require.NoError(t, err)
	index := files["src/index.ts"]

	// apiKey in query folds into the query string, not a header.
	assert.Contains(t, index, `url.searchParams.set("api_key", process.env.API_KEY_API_KEY)`)
	assert.Contains(t, index, "headers[\"authorization\"] = `Bearer ${process.env.API_BEARER_TOKEN}`")
}

func TestTypeScript_BodyReconstruction(t *testing.T) {
	files, err := NewTypeScriptGenerator().Generate(sampleConfig())
	require.NoError(t, err)
	index := files["src/index.ts"]

	assert.Contains(t, index, `const claimed = new Set(["header_X-Tenant"])`)
	assert.Contains(t, index, "if (!claimed.has(key) && value !== undefined) body[key] = value;")
}

func TestTypeScript_PerToolBaseURLForComposedConfigs(t *testing.T) {
	cfg := sampleConfig()
	cfg.Tools[0].Handler.BaseURLEnvVar = "PETS_API_BASE_URL"

	files, err := NewTypeScriptGenerator().Generate(cfg)
	require.NoError(t, err)
	assert.Contains(t, files["src/index.ts"], "process.env.PETS_API_BASE_URL")
}

func TestPython_OutputTree(t *testing.T) {
	files, err := NewPythonGenerator().Generate(sampleConfig())
	require.NoError(t, err)

	for _, path := range []string{"server.py", "requirements.txt", "Dockerfile", ".env.example", "README.md"} {
		assert.Contains(t, files, path)
	}
	assert.Contains(t, files["requirements.txt"], "mcp>=")
	assert.Contains(t, files["requirements.txt"], "httpx>=")

	server := files["server.py"]
	assert.Contains(t, server, `server = Server("pet-store")`)
	assert.Contains(t, server, `"list_pets"`)
	assert.NotContains(t, server, "purge_pets")
	assert.Contains(t, server, `"body_param": "__body_object__"`)
	assert.Contains(t, server, `params[auth["name"]] = secret`, "apiKey-in-query goes to the query string")
}

func TestPython_EmbeddedTablesAreValidJSON(t *testing.T) {
	files, err := NewPythonGenerator().Generate(sampleConfig())
	require.NoError(t, err)
	server := files["server.py"]

	for _, marker := range []string{"_TOOL_DEFS = json.loads(r\"\"\"\n", "OPERATIONS: dict[str, dict[str, Any]] = json.loads(r\"\"\"\n"} {
		start := strings.Index(server, marker)
		require.GreaterOrEqual(t, start, 0, "missing %q", marker)
		rest := server[start+len(marker):]
		end := strings.Index(rest, `"""`)
		require.GreaterOrEqual(t, end, 0)

		var decoded any
		require.NoError(t, json.Unmarshal([]byte(rest[:end]), &decoded), "embedded table must be valid JSON")
	}
}

func TestEnvExample(t *testing.T) {
	out := envExample(sampleConfig())

	assert.Contains(t, out, "# API_BASE_URL=https://petstore.example.com/v1")
	assert.Contains(t, out, "API_KEY_API_KEY=")
	assert.Contains(t, out, "API_BEARER_TOKEN=")
	assert.Contains(t, out, "# (optional)")
}

func TestReadme(t *testing.T) {
	out := readme(sampleConfig(), "## Running\n")

	assert.Contains(t, out, "# pet-store")
	assert.Contains(t, out, "| `list_pets` | GET | `/pets` | List all pets |")
	assert.NotContains(t, out, "purge_pets")
	assert.Contains(t, out, "`API_KEY_API_KEY` (required)")
}

func TestTSPropertyKey(t *testing.T) {
	assert.Equal(t, "limit", tsPropertyKey("limit"))
	assert.Equal(t, "_private", tsPropertyKey("_private"))
	assert.Equal(t, `"header_X-Tenant"`, tsPropertyKey("header_X-Tenant"))
	assert.Equal(t, `"1abc"`, tsPropertyKey("1abc"))
}

func TestZodExpr(t *testing.T) {
	tests := []struct {
		name     string
		schema   *ir.Schema
		expected string
	}{
		{"Nil", nil, "z.string()"},
		{"String", &ir.Schema{Kind: ir.KindScalar, Type: "string"}, "z.string()"},
		{"Number", &ir.Schema{Kind: ir.KindScalar, Type: "number"}, "z.number()"},
		{"Boolean", &ir.Schema{Kind: ir.KindScalar, Type: "boolean"}, "z.boolean()"},
		{"Unresolved", &ir.Schema{Kind: ir.KindUnresolved}, "z.string()"},
		{"Array", &ir.Schema{Kind: ir.KindArray, Items: &ir.Schema{Kind: ir.KindScalar, Type: "number"}}, "z.array(z.number())"},
		{"FreeFormObject", &ir.Schema{Kind: ir.KindObject}, "z.record(z.unknown())"},
		{"StringEnum", &ir.Schema{Kind: ir.KindEnum, Enum: []any{"a", "b"}}, `z.enum(["a", "b"])`},
		{"MixedEnum", &ir.Schema{Kind: ir.KindEnum, Enum: []any{"a", float64(1)}}, `z.union([z.literal("a"), z.literal(1)])`},
		{
			"Object",
			&ir.Schema{
				Kind:       ir.KindObject,
				Properties: map[string]*ir.Schema{"id": {Kind: ir.KindScalar, Type: "number"}},
				Required:   []string{"id"},
			},
			"z.object({ id: z.number() })",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, zodExpr(tt.schema))
		})
	}
}
