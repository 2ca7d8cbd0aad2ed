package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yousuf/specforge-mcp/internal/ir"
)

func TestNewServer(t *testing.T) {
	cfg := ir.ServerConfig{
		Name:        "pet-store",
		Version:     "1.0.0",
		Description: "Pets",
		BaseURL:     "https://api.example.com",
		Tools: []ir.Tool{
			{
				Name:        "list_pets",
				Description: "List pets",
				Enabled:     true,
				InputSchema: &ir.Schema{
					Kind:       ir.KindObject,
					Properties: map[string]*ir.Schema{"limit": {Kind: ir.KindScalar, Type: "number"}},
				},
				Handler: ir.Handler{Method: "GET", Path: "/pets", BaseURL: "https://api.example.com"},
			},
			{
				Name:        "purge_pets",
				Enabled:     false,
				InputSchema: &ir.Schema{Kind: ir.KindObject},
				Handler:     ir.Handler{Method: "DELETE", Path: "/pets"},
			},
		},
		EnvVars: []ir.EnvVar{
			{Name: "API_BEARER_TOKEN", Description: "token", Required: true},
		},
	}

	server, err := NewServer(cfg, NewExecutor(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, server)
}

func TestToJSONSchema(t *testing.T) {
	schema := &ir.Schema{
		Kind: ir.KindObject,
		Properties: map[string]*ir.Schema{
			"status": {Kind: ir.KindEnum, Type: "string", Enum: []any{"on", "off"}},
		},
		Required: []string{"status"},
	}

	js, err := toJSONSchema(schema)
	require.NoError(t, err)
	assert.Equal(t, "object", js.Type)
	require.Contains(t, js.Properties, "status")
	assert.Equal(t, []string{"status"}, js.Required)
}

func TestInstructions(t *testing.T) {
	cfg := ir.ServerConfig{
		Name:        "pet-store",
		Description: "Pets API",
		BaseURL:     "https://api.example.com",
		EnvVars: []ir.EnvVar{
			{Name: "API_BEARER_TOKEN", Description: "token", Required: true},
			{Name: "OPTIONAL_FLAG", Required: false},
		},
	}

	out := instructions(cfg)
	assert.Contains(t, out, "pet-store: Pets API")
	assert.Contains(t, out, "https://api.example.com")
	assert.Contains(t, out, "API_BEARER_TOKEN: token")
	assert.NotContains(t, out, "OPTIONAL_FLAG", "only required env vars are surfaced")
}
