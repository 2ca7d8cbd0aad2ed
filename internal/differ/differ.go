// Package differ compares two server IR snapshots and classifies every
// change as info, warning, or breaking, with human-readable migration notes.
package differ

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yousuf/specforge-mcp/internal/ir"
)

// Severity ranks how disruptive a change is to existing callers.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityBreaking Severity = "breaking"
)

// ChangeKind identifies what a change entry is about.
type ChangeKind string

const (
	ToolAdded    ChangeKind = "tool_added"
	ToolRemoved  ChangeKind = "tool_removed"
	ToolModified ChangeKind = "tool_modified"
	EnvAdded     ChangeKind = "env_added"
	EnvRemoved   ChangeKind = "env_removed"
)

// Change is one entry in a diff. Details are populated for tool_modified
// only; individual details carry no severity of their own, the parent
// Change's severity is the aggregate.
type Change struct {
	Kind        ChangeKind     `json:"kind"`
	Severity    Severity       `json:"severity"`
	ToolName    string         `json:"toolName,omitempty"`
	Description string         `json:"description"`
	Details     []ChangeDetail `json:"details,omitempty"`
}

// ChangeDetail is one field-level difference inside a modified tool.
type ChangeDetail struct {
	Field    string `json:"field"`
	OldValue string `json:"oldValue,omitempty"`
	NewValue string `json:"newValue,omitempty"`
}

// Stats summarizes a diff numerically.
type Stats struct {
	ToolsAdded     int `json:"toolsAdded"`
	ToolsRemoved   int `json:"toolsRemoved"`
	ToolsModified  int `json:"toolsModified"`
	ToolsUnchanged int `json:"toolsUnchanged"`
	EnvVarsAdded   int `json:"envVarsAdded"`
	EnvVarsRemoved int `json:"envVarsRemoved"`
}

// VersionDiff is the complete comparison of two configs. It is computed
// once per (old, new) pair and never mutated.
type VersionDiff struct {
	Summary               string   `json:"summary"`
	Changes               []Change `json:"changes"`
	IsBackwardsCompatible bool     `json:"isBackwardsCompatible"`
	MigrationNotes        []string `json:"migrationNotes"`
	Stats                 Stats    `json:"stats"`
}

// Diff compares two configs. Tools are matched by exact name: removals are
// always breaking, additions always informational, and a modified tool's
// severity is warning when any of its field differences would break an
// existing caller (parameter removed, parameter added as required, a type
// change, or a method change).
func Diff(oldCfg, newCfg ir.ServerConfig) VersionDiff {
	var d VersionDiff

	oldTools := toolIndex(oldCfg)
	newTools := toolIndex(newCfg)

	for _, tool := range oldCfg.Tools {
		if _, stillThere := newTools[tool.Name]; stillThere {
			continue
		}
		d.Changes = append(d.Changes, Change{
			Kind:        ToolRemoved,
			Severity:    SeverityBreaking,
			ToolName:    tool.Name,
			Description: fmt.Sprintf("Tool %q was removed", tool.Name),
		})
		d.MigrationNotes = append(d.MigrationNotes, fmt.Sprintf("Tool %q no longer exists; callers must stop invoking it.", tool.Name))
		d.Stats.ToolsRemoved++
	}

	for _, tool := range newCfg.Tools {
		if _, existed := oldTools[tool.Name]; existed {
			continue
		}
		d.Changes = append(d.Changes, Change{
			Kind:        ToolAdded,
			Severity:    SeverityInfo,
			ToolName:    tool.Name,
			Description: fmt.Sprintf("Tool %q was added", tool.Name),
		})
		d.Stats.ToolsAdded++
	}

	for _, oldTool := range oldCfg.Tools {
		newTool, ok := newTools[oldTool.Name]
		if !ok {
			continue
		}
		details, breaking := diffTool(oldTool, newTool)
		if len(details) == 0 {
			d.Stats.ToolsUnchanged++
			continue
		}
		severity := SeverityInfo
		if breaking {
			severity = SeverityWarning
		}
		d.Changes = append(d.Changes, Change{
			Kind:        ToolModified,
			Severity:    severity,
			ToolName:    oldTool.Name,
			Description: fmt.Sprintf("Tool %q changed (%d field(s))", oldTool.Name, len(details)),
			Details:     details,
		})
		d.Stats.ToolsModified++
	}

	diffEnvVars(&d, oldCfg, newCfg)

	d.IsBackwardsCompatible = true
	for _, c := range d.Changes {
		if c.Severity == SeverityBreaking {
			d.IsBackwardsCompatible = false
			break
		}
	}
	d.Summary = summarize(d.Stats, d.IsBackwardsCompatible)
	return d
}

// diffTool field-diffs two same-named tools. The second return reports
// whether any detail qualifies as breaking under the aggregate rule.
func diffTool(oldTool, newTool ir.Tool) ([]ChangeDetail, bool) {
	var details []ChangeDetail
	breaking := false

	if oldTool.Description != newTool.Description {
		details = append(details, ChangeDetail{Field: "description", OldValue: oldTool.Description, NewValue: newTool.Description})
	}
	if oldTool.Handler.Method != newTool.Handler.Method {
		details = append(details, ChangeDetail{Field: "handler.method", OldValue: oldTool.Handler.Method, NewValue: newTool.Handler.Method})
		breaking = true
	}
	if oldTool.Handler.Path != newTool.Handler.Path {
		details = append(details, ChangeDetail{Field: "handler.path", OldValue: oldTool.Handler.Path, NewValue: newTool.Handler.Path})
	}
	if oldTool.Handler.BaseURL != newTool.Handler.BaseURL {
		details = append(details, ChangeDetail{Field: "handler.baseUrl", OldValue: oldTool.Handler.BaseURL, NewValue: newTool.Handler.BaseURL})
	}

	propDetails, propBreaking := diffProperties(oldTool.InputSchema, newTool.InputSchema)
	details = append(details, propDetails...)
	return details, breaking || propBreaking
}

func diffProperties(oldSchema, newSchema *ir.Schema) ([]ChangeDetail, bool) {
	var details []ChangeDetail
	breaking := false

	oldProps := schemaProps(oldSchema)
	newProps := schemaProps(newSchema)

	for _, name := range oldSchema.PropertyNames() {
		if _, still := newProps[name]; still {
			continue
		}
		details = append(details, ChangeDetail{
			Field:    "param." + name,
			OldValue: schemaTypeLabel(oldProps[name]),
		})
		breaking = true
	}

	for _, name := range newSchema.PropertyNames() {
		if _, existed := oldProps[name]; existed {
			continue
		}
		details = append(details, ChangeDetail{
			Field:    "param." + name,
			NewValue: schemaTypeLabel(newProps[name]),
		})
		if newSchema.IsRequired(name) {
			breaking = true
		}
	}

	for _, name := range oldSchema.PropertyNames() {
		newProp, still := newProps[name]
		if !still {
			continue
		}
		oldProp := oldProps[name]

		if oldLabel, newLabel := schemaTypeLabel(oldProp), schemaTypeLabel(newProp); oldLabel != newLabel {
			details = append(details, ChangeDetail{Field: "param." + name + ".type", OldValue: oldLabel, NewValue: newLabel})
			breaking = true
		}
		if oldReq, newReq := oldSchema.IsRequired(name), newSchema.IsRequired(name); oldReq != newReq {
			details = append(details, ChangeDetail{
				Field:    "param." + name + ".required",
				OldValue: fmt.Sprintf("%t", oldReq),
				NewValue: fmt.Sprintf("%t", newReq),
			})
			if newReq {
				breaking = true
			}
		}
		if oldEnum, newEnum := enumLabel(oldProp), enumLabel(newProp); oldEnum != newEnum {
			details = append(details, ChangeDetail{Field: "param." + name + ".enum", OldValue: oldEnum, NewValue: newEnum})
		}
	}

	return details, breaking
}

func diffEnvVars(d *VersionDiff, oldCfg, newCfg ir.ServerConfig) {
	oldEnv := map[string]ir.EnvVar{}
	for _, ev := range oldCfg.EnvVars {
		oldEnv[ev.Name] = ev
	}
	newEnv := map[string]ir.EnvVar{}
	for _, ev := range newCfg.EnvVars {
		newEnv[ev.Name] = ev
	}

	for _, ev := range oldCfg.EnvVars {
		if _, still := newEnv[ev.Name]; still {
			continue
		}
		d.Changes = append(d.Changes, Change{
			Kind:        EnvRemoved,
			Severity:    SeverityInfo,
			Description: fmt.Sprintf("Environment variable %q is no longer used", ev.Name),
		})
		d.Stats.EnvVarsRemoved++
	}
	for _, ev := range newCfg.EnvVars {
		if _, existed := oldEnv[ev.Name]; existed {
			continue
		}
		d.Changes = append(d.Changes, Change{
			Kind:        EnvAdded,
			Severity:    SeverityInfo,
			Description: fmt.Sprintf("Environment variable %q was added", ev.Name),
		})
		d.Stats.EnvVarsAdded++
		if ev.Required {
			// Not breaking at the change level, but a deployment blocker.
			d.MigrationNotes = append(d.MigrationNotes, fmt.Sprintf("Set the new required environment variable %q before deploying.", ev.Name))
		}
	}
}

func toolIndex(cfg ir.ServerConfig) map[string]ir.Tool {
	idx := make(map[string]ir.Tool, len(cfg.Tools))
	for _, t := range cfg.Tools {
		idx[t.Name] = t
	}
	return idx
}

func schemaProps(s *ir.Schema) map[string]*ir.Schema {
	if s == nil {
		return nil
	}
	return s.Properties
}

// schemaTypeLabel renders a property's effective type for change details.
func schemaTypeLabel(s *ir.Schema) string {
	if s == nil {
		return ""
	}
	switch s.Kind {
	case ir.KindObject:
		return "object"
	case ir.KindArray:
		if s.Items != nil {
			return "array<" + schemaTypeLabel(s.Items) + ">"
		}
		return "array"
	case ir.KindEnum:
		if s.Type != "" {
			return s.Type
		}
		return "string"
	case ir.KindUnresolved:
		return "string"
	default:
		if s.Type == "" {
			return "string"
		}
		return s.Type
	}
}

func enumLabel(s *ir.Schema) string {
	if s == nil || len(s.Enum) == 0 {
		return ""
	}
	raw, err := json.Marshal(s.Enum)
	if err != nil {
		return fmt.Sprintf("%v", s.Enum)
	}
	return string(raw)
}

func summarize(stats Stats, compatible bool) string {
	parts := []string{}
	if stats.ToolsAdded > 0 {
		parts = append(parts, fmt.Sprintf("%d tool(s) added", stats.ToolsAdded))
	}
	if stats.ToolsRemoved > 0 {
		parts = append(parts, fmt.Sprintf("%d tool(s) removed", stats.ToolsRemoved))
	}
	if stats.ToolsModified > 0 {
		parts = append(parts, fmt.Sprintf("%d tool(s) modified", stats.ToolsModified))
	}
	if stats.EnvVarsAdded > 0 || stats.EnvVarsRemoved > 0 {
		parts = append(parts, fmt.Sprintf("%d env var(s) added, %d removed", stats.EnvVarsAdded, stats.EnvVarsRemoved))
	}
	if len(parts) == 0 {
		return "No changes detected."
	}
	compat := "backwards compatible"
	if !compatible {
		compat = "contains breaking changes"
	}
	return strings.Join(parts, ", ") + "; " + compat + "."
}
