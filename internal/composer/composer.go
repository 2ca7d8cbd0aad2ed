// Package composer merges several independently-described APIs into one MCP
// server IR, namespacing tool names, base-URL variables, and auth env vars
// per source API so credentials never collide.
package composer

import (
	"fmt"
	"strings"

	"github.com/yousuf/specforge-mcp/internal/ir"
	"github.com/yousuf/specforge-mcp/internal/mapper"
	"github.com/yousuf/specforge-mcp/internal/openapi"
	"github.com/yousuf/specforge-mcp/internal/strutil"
)

// MaxAPIs is the admission ceiling on one composition.
const MaxAPIs = 20

// API is one input to a composition: a display name, the raw OpenAPI text,
// an optional explicit prefix, and tools to disable in the merged output.
type API struct {
	Name          string
	Spec          string
	Prefix        string
	DisabledTools []string
}

// Options carries overrides for the composed server's identity.
type Options struct {
	ServerName        string
	ServerDescription string
}

// Result is the outcome of a composition. Errors records per-API failures
// that did not abort the batch; Warnings records dropped tools and other
// lossy decisions.
type Result struct {
	Config   ir.ServerConfig
	Errors   []string
	Warnings []string
}

// Compose parses and maps each API independently and merges the results.
// It returns a non-nil error only for whole-batch rejections: an empty or
// oversized input list, duplicate prefixes, or every single API failing to
// parse. One bad API among good ones is recorded in Result.Errors and
// skipped. Inputs are never mutated.
func Compose(apis []API, opts Options) (*Result, error) {
	if len(apis) == 0 {
		return nil, fmt.Errorf("no APIs to compose")
	}
	if len(apis) > MaxAPIs {
		return nil, fmt.Errorf("cannot compose %d APIs, maximum is %d", len(apis), MaxAPIs)
	}

	prefixes := make([]string, len(apis))
	seen := map[string]string{}
	for i, api := range apis {
		prefix := api.Prefix
		if prefix == "" {
			prefix = api.Name
		}
		prefix = strutil.SanitizePrefix(prefix)
		if prev, dup := seen[prefix]; dup {
			return nil, fmt.Errorf("APIs %q and %q both sanitize to prefix %q", prev, api.Name, prefix)
		}
		seen[prefix] = api.Name
		prefixes[i] = prefix
	}

	res := &Result{}
	var succeeded []string

	for i, api := range apis {
		parsed := openapi.Parse(api.Spec)
		for _, w := range parsed.Warnings {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %s", api.Name, w))
		}
		if !parsed.Success() {
			for _, e := range parsed.Errors {
				res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", api.Name, e.Error()))
			}
			continue
		}

		cfg := mapper.Map(parsed.Spec)
		mergeAPI(res, api, prefixes[i], cfg)
		succeeded = append(succeeded, prefixes[i])
	}

	if len(succeeded) == 0 {
		return nil, fmt.Errorf("all %d APIs failed to parse: %s", len(apis), strings.Join(res.Errors, "; "))
	}

	res.Config.Name = opts.ServerName
	if res.Config.Name == "" {
		res.Config.Name = "composed-" + strings.Join(succeeded, "-")
	}
	res.Config.Description = opts.ServerDescription
	if res.Config.Description == "" {
		res.Config.Description = fmt.Sprintf("Composed MCP server aggregating %d APIs", len(succeeded))
	}
	res.Config.Version = "1.0.0"
	// No single base URL applies to a composed server; every tool carries
	// its own namespaced base-URL variable instead.
	res.Config.BaseURL = ""
	return res, nil
}

// mergeAPI appends one mapped API into the composed config, rewriting every
// name under the API's prefix.
func mergeAPI(res *Result, api API, prefix string, cfg ir.ServerConfig) {
	envPrefix := strings.ToUpper(prefix)
	baseURLVar := envPrefix + "_API_BASE_URL"

	envRename := map[string]string{}
	for _, ev := range cfg.EnvVars {
		envRename[ev.Name] = envPrefix + "_" + ev.Name
	}

	seenNames := map[string]struct{}{}
	for _, t := range res.Config.Tools {
		seenNames[t.Name] = struct{}{}
	}

	for _, tool := range cfg.Tools {
		name := strutil.TruncateName(prefix+"_"+tool.Name, strutil.MaxToolNameLen)
		if _, dup := seenNames[name]; dup {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: tool %q collides after prefixing, dropped", api.Name, tool.Name))
			continue
		}
		seenNames[name] = struct{}{}

		merged := tool
		merged.Name = name
		merged.Source = api.Name
		merged.Handler.BaseURLEnvVar = baseURLVar
		merged.Handler.Auth = append([]ir.ToolAuth(nil), tool.Handler.Auth...)
		for i := range merged.Handler.Auth {
			if renamed, ok := envRename[merged.Handler.Auth[i].EnvVar]; ok {
				merged.Handler.Auth[i].EnvVar = renamed
			}
		}
		if isDisabled(api.DisabledTools, merged.Name, tool.Name, tool.OperationID) {
			merged.Enabled = false
		}
		res.Config.Tools = append(res.Config.Tools, merged)
	}

	existing := map[string]struct{}{}
	for _, ev := range res.Config.EnvVars {
		existing[ev.Name] = struct{}{}
	}
	appendEnv := func(ev ir.EnvVar) {
		if _, dup := existing[ev.Name]; dup {
			return
		}
		existing[ev.Name] = struct{}{}
		res.Config.EnvVars = append(res.Config.EnvVars, ev)
	}

	appendEnv(ir.EnvVar{
		Name:        baseURLVar,
		Description: fmt.Sprintf("Base URL for the %s API", api.Name),
		Required:    cfg.BaseURL == "",
		Example:     cfg.BaseURL,
	})
	for _, ev := range cfg.EnvVars {
		renamed := ev
		renamed.Name = envRename[ev.Name]
		appendEnv(renamed)
	}
}

// isDisabled matches a disable-list entry against the prefixed tool name,
// the pre-prefix name (and its lowercase form), or the raw operationId.
func isDisabled(disabled []string, mappedName, originalName, operationID string) bool {
	for _, d := range disabled {
		if d == mappedName || d == originalName || strings.ToLower(d) == originalName {
			return true
		}
		if operationID != "" && d == operationID {
			return true
		}
	}
	return false
}
