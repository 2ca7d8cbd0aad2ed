package proxy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yousuf/specforge-mcp/internal/ir"
)

func envFrom(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}

func TestBuildRequest_PathQueryAndAuth(t *testing.T) {
	h := ir.Handler{
		Method:      "GET",
		Path:        "/pets/{petId}",
		BaseURL:     "https://api.example.com",
		PathParams:  []string{"petId"},
		QueryParams: []string{"limit", "verbose"},
		Auth: []ir.ToolAuth{
			{Type: "http", Scheme: "bearer", EnvVar: "API_BEARER_TOKEN"},
		},
	}
	args := map[string]any{
		"petId":   float64(7),
		"limit":   float64(10),
		"verbose": true,
	}
	env := envFrom(map[string]string{"API_BEARER_TOKEN": "tok"})

	req, err := BuildRequest(context.Background(), h, args, env)
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "https://api.example.com/pets/7?limit=10&verbose=true", req.URL.String())
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Nil(t, req.Body)
}

func TestBuildRequest_OmitsAbsentQueryParams(t *testing.T) {
	h := ir.Handler{
		Method:      "GET",
		Path:        "/pets",
		BaseURL:     "https://api.example.com",
		QueryParams: []string{"limit", "cursor"},
	}
	req, err := BuildRequest(context.Background(), h, map[string]any{"limit": "5"}, envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/pets?limit=5", req.URL.String())
}

func TestBuildRequest_MissingPathParamFails(t *testing.T) {
	h := ir.Handler{
		Method:     "GET",
		Path:       "/pets/{petId}",
		BaseURL:    "https://api.example.com",
		PathParams: []string{"petId"},
	}
	_, err := BuildRequest(context.Background(), h, map[string]any{}, envFrom(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "petId")
}

func TestBuildRequest_BaseURLResolution(t *testing.T) {
	tests := []struct {
		name     string
		handler  ir.Handler
		env      map[string]string
		expected string
		wantErr  bool
	}{
		{
			name:     "FromHandler",
			handler:  ir.Handler{Method: "GET", Path: "/x", BaseURL: "https://a.example.com"},
			expected: "https://a.example.com/x",
		},
		{
			name:     "GlobalOverride",
			handler:  ir.Handler{Method: "GET", Path: "/x", BaseURL: "https://a.example.com"},
			env:      map[string]string{"API_BASE_URL": "https://b.example.com"},
			expected: "https://b.example.com/x",
		},
		{
			name:     "PerToolVariableWins",
			handler:  ir.Handler{Method: "GET", Path: "/x", BaseURL: "https://a.example.com", BaseURLEnvVar: "WX_API_BASE_URL"},
			env:      map[string]string{"WX_API_BASE_URL": "https://c.example.com", "API_BASE_URL": "https://b.example.com"},
			expected: "https://c.example.com/x",
		},
		{
			name:     "PerToolVariableFallsBackToHandler",
			handler:  ir.Handler{Method: "GET", Path: "/x", BaseURL: "https://a.example.com/", BaseURLEnvVar: "WX_API_BASE_URL"},
			expected: "https://a.example.com/x",
		},
		{
			name:    "NoBaseURLAnywhere",
			handler: ir.Handler{Method: "GET", Path: "/x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := BuildRequest(context.Background(), tt.handler, nil, envFrom(tt.env))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, req.URL.String())
		})
	}
}

func TestBuildRequest_HeaderParams(t *testing.T) {
	h := ir.Handler{
		Method:       "GET",
		Path:         "/pets",
		BaseURL:      "https://api.example.com",
		HeaderParams: []string{"X-Tenant"},
	}
	req, err := BuildRequest(context.Background(), h, map[string]any{"header_X-Tenant": "acme"}, envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, "acme", req.Header.Get("X-Tenant"))
}

func TestBuildRequest_AuthVariants(t *testing.T) {
	base := ir.Handler{Method: "GET", Path: "/x", BaseURL: "https://api.example.com"}

	tests := []struct {
		name   string
		auth   ir.ToolAuth
		secret string
		check  func(t *testing.T, req *http.Request)
	}{
		{
			name:   "APIKeyHeader",
			auth:   ir.ToolAuth{Type: "apiKey", In: "header", ParamName: "X-API-Key", EnvVar: "API_KEY_X_API_KEY"},
			secret: "k1",
			check: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "k1", req.Header.Get("X-API-Key"))
			},
		},
		{
			name:   "APIKeyQuery",
			auth:   ir.ToolAuth{Type: "apiKey", In: "query", ParamName: "api_key", EnvVar: "API_KEY_API_KEY"},
			secret: "k2",
			check: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "k2", req.URL.Query().Get("api_key"))
				assert.Empty(t, req.Header.Get("Authorization"))
			},
		},
		{
			name:   "Basic",
			auth:   ir.ToolAuth{Type: "http", Scheme: "basic", EnvVar: "API_BASIC_AUTH"},
			secret: "dXNlcjpwdw==",
			check: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "Basic dXNlcjpwdw==", req.Header.Get("Authorization"))
			},
		},
		{
			name:   "OAuth2",
			auth:   ir.ToolAuth{Type: "oauth2", EnvVar: "API_OAUTH_TOKEN"},
			secret: "tok",
			check: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := base
			h.Auth = []ir.ToolAuth{tt.auth}
			req, err := BuildRequest(context.Background(), h, nil, envFrom(map[string]string{tt.auth.EnvVar: tt.secret}))
			require.NoError(t, err)
			tt.check(t, req)
		})
	}
}

func TestBuildRequest_MissingSecretIsSkipped(t *testing.T) {
	h := ir.Handler{
		Method:  "GET",
		Path:    "/x",
		BaseURL: "https://api.example.com",
		Auth:    []ir.ToolAuth{{Type: "http", Scheme: "bearer", EnvVar: "API_BEARER_TOKEN"}},
	}
	req, err := BuildRequest(context.Background(), h, nil, envFrom(nil))
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestBuildRequest_ReconstructsObjectBody(t *testing.T) {
	h := ir.Handler{
		Method:       "POST",
		Path:         "/pets/{petId}",
		BaseURL:      "https://api.example.com",
		PathParams:   []string{"petId"},
		QueryParams:  []string{"dryRun"},
		HeaderParams: []string{"X-Tenant"},
		BodyParam:    ir.BodyObjectSentinel,
	}
	args := map[string]any{
		"petId":           "9",
		"dryRun":          true,
		"header_X-Tenant": "acme",
		"name":            "Rex",
		"tag":             nil,
	}

	req, err := BuildRequest(context.Background(), h, args, envFrom(nil))
	require.NoError(t, err)
	require.NotNil(t, req.Body)

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, map[string]any{"name": "Rex"}, payload, "claimed and nil values stay out of the body")
}

func TestBuildRequest_OpaqueBody(t *testing.T) {
	h := ir.Handler{
		Method:      "POST",
		Path:        "/notes",
		BaseURL:     "https://api.example.com",
		ContentType: "text/plain",
		BodyParam:   "body",
	}
	req, err := BuildRequest(context.Background(), h, map[string]any{"body": "hello"}, envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", req.Header.Get("Content-Type"))

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw), "string bodies pass through unencoded")
}

func TestExecutorCall(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			io.WriteString(w, `{"status":"fine"}`)
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	exec := &Executor{
		client: &http.Client{Timeout: 5 * time.Second},
		getenv: envFrom(nil),
	}

	text, err := exec.Call(context.Background(), ir.Handler{Method: "GET", Path: "/ok", BaseURL: upstream.URL}, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"status":"fine"}`, text)

	_, err = exec.Call(context.Background(), ir.Handler{Method: "GET", Path: "/missing", BaseURL: upstream.URL}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
