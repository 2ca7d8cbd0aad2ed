package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yousuf/specforge-mcp/internal/ir"
)

// baseURLEnvDefault is the global base-URL override honored when a handler
// carries no per-API variable of its own.
const baseURLEnvDefault = "API_BASE_URL"

// Executor performs the HTTP call a tool handler describes. The environment
// lookup is injectable so request construction stays testable without
// touching the process environment.
type Executor struct {
	client *http.Client
	getenv func(string) string
}

// NewExecutor creates an executor with a default HTTP client.
func NewExecutor() *Executor {
	return &Executor{
		client: &http.Client{Timeout: 30 * time.Second},
		getenv: os.Getenv,
	}
}

// Call builds and performs the request, returning the response body text.
// Upstream errors (status >= 400) are returned as errors carrying the body.
func (e *Executor) Call(ctx context.Context, h ir.Handler, args map[string]any) (string, error) {
	req, err := BuildRequest(ctx, h, args, e.getenv)
	if err != nil {
		return "", err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upstream response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("upstream returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}

// BuildRequest constructs the HTTP request for one tool invocation. It is a
// pure function of the handler, the arguments, and the env lookup.
func BuildRequest(ctx context.Context, h ir.Handler, args map[string]any, getenv func(string) string) (*http.Request, error) {
	base := h.BaseURL
	if h.BaseURLEnvVar != "" {
		if v := getenv(h.BaseURLEnvVar); v != "" {
			base = v
		}
	} else if v := getenv(baseURLEnvDefault); v != "" {
		base = v
	}
	if base == "" {
		return nil, fmt.Errorf("no base URL: set %s", envVarOrDefault(h))
	}

	path := h.Path
	for _, p := range h.PathParams {
		v, ok := args[p]
		if !ok {
			return nil, fmt.Errorf("missing required path parameter %q", p)
		}
		path = strings.ReplaceAll(path, "{"+p+"}", url.PathEscape(argString(v)))
	}

	u, err := url.Parse(strings.TrimSuffix(base, "/") + path)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL: %w", err)
	}

	query := u.Query()
	for _, q := range h.QueryParams {
		if v, ok := args[q]; ok && v != nil {
			query.Set(q, argString(v))
		}
	}

	header := http.Header{}
	header.Set("Content-Type", contentTypeOrDefault(h))
	for _, name := range h.HeaderParams {
		if v, ok := args["header_"+name]; ok && v != nil {
			header.Set(name, argString(v))
		}
	}

	for _, auth := range h.Auth {
		secret := getenv(auth.EnvVar)
		if secret == "" {
			continue
		}
		switch {
		case auth.Type == "apiKey" && auth.In == "query":
			query.Set(auth.ParamName, secret)
		case auth.Type == "apiKey":
			header.Set(auth.ParamName, secret)
		case auth.Type == "http" && auth.Scheme == "basic":
			header.Set("Authorization", "Basic "+secret)
		case auth.Type == "http" && auth.Scheme != "" && auth.Scheme != "bearer":
			header.Set("Authorization", secret)
		default:
			header.Set("Authorization", "Bearer "+secret)
		}
	}
	u.RawQuery = query.Encode()

	var body io.Reader
	switch h.BodyParam {
	case ir.BodyObjectSentinel:
		claimed := map[string]struct{}{}
		for _, p := range h.PathParams {
			claimed[p] = struct{}{}
		}
		for _, q := range h.QueryParams {
			claimed[q] = struct{}{}
		}
		for _, name := range h.HeaderParams {
			claimed["header_"+name] = struct{}{}
		}
		payload := map[string]any{}
		for k, v := range args {
			if _, taken := claimed[k]; taken || v == nil {
				continue
			}
			payload[k] = v
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	case "body":
		if v, ok := args["body"]; ok && v != nil {
			if s, isString := v.(string); isString {
				body = strings.NewReader(s)
			} else {
				raw, err := json.Marshal(v)
				if err != nil {
					return nil, fmt.Errorf("failed to encode request body: %w", err)
				}
				body = bytes.NewReader(raw)
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, h.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header = header
	return req, nil
}

func argString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func contentTypeOrDefault(h ir.Handler) string {
	if h.ContentType != "" {
		return h.ContentType
	}
	return "application/json"
}

func envVarOrDefault(h ir.Handler) string {
	if h.BaseURLEnvVar != "" {
		return h.BaseURLEnvVar
	}
	return baseURLEnvDefault
}
