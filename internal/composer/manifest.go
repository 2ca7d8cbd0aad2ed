package composer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk description of a composition: a server identity
// plus the list of source APIs, each pointing at a spec file.
type Manifest struct {
	Name        string          `json:"name,omitempty" yaml:"name,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	APIs        []ManifestEntry `json:"apis" yaml:"apis"`
}

// ManifestEntry is one API in a manifest. Spec is a path relative to the
// manifest file (or absolute).
type ManifestEntry struct {
	Name          string   `json:"name" yaml:"name"`
	Spec          string   `json:"spec" yaml:"spec"`
	Prefix        string   `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	DisabledTools []string `json:"disabledTools,omitempty" yaml:"disabledTools,omitempty"`
}

// LoadManifest reads and validates a composition manifest (JSON or YAML,
// detected by extension) and loads every referenced spec file.
func LoadManifest(path string) (Manifest, []API, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return Manifest{}, nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := validateManifest(&m); err != nil {
		return Manifest{}, nil, fmt.Errorf("invalid manifest: %w", err)
	}

	baseDir := filepath.Dir(path)
	apis := make([]API, 0, len(m.APIs))
	for _, entry := range m.APIs {
		specPath := entry.Spec
		if !filepath.IsAbs(specPath) {
			specPath = filepath.Join(baseDir, specPath)
		}
		raw, err := os.ReadFile(specPath)
		if err != nil {
			return Manifest{}, nil, fmt.Errorf("API %q: failed to read spec: %w", entry.Name, err)
		}
		apis = append(apis, API{
			Name:          entry.Name,
			Spec:          string(raw),
			Prefix:        entry.Prefix,
			DisabledTools: entry.DisabledTools,
		})
	}
	return m, apis, nil
}

func validateManifest(m *Manifest) error {
	if len(m.APIs) == 0 {
		return fmt.Errorf("no APIs listed")
	}
	if len(m.APIs) > MaxAPIs {
		return fmt.Errorf("%d APIs listed, maximum is %d", len(m.APIs), MaxAPIs)
	}
	for i, entry := range m.APIs {
		if strings.TrimSpace(entry.Name) == "" {
			return fmt.Errorf("apis[%d]: name is required", i)
		}
		if strings.TrimSpace(entry.Spec) == "" {
			return fmt.Errorf("apis[%d] (%s): spec path is required", i, entry.Name)
		}
	}
	return nil
}
