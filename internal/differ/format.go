package differ

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var severityMarkers = map[Severity]string{
	SeverityInfo:     "~",
	SeverityWarning:  "!",
	SeverityBreaking: "x",
}

// FormatText renders a diff as a plain-text change report for terminal
// output. Long prose fields (descriptions) are rendered as inline deltas;
// everything else as old -> new pairs.
func FormatText(d VersionDiff) string {
	var sb strings.Builder

	sb.WriteString(d.Summary)
	sb.WriteString("\n")

	for _, c := range d.Changes {
		marker := severityMarkers[c.Severity]
		if marker == "" {
			marker = "~"
		}
		sb.WriteString(fmt.Sprintf("[%s] %s\n", marker, c.Description))
		for _, detail := range c.Details {
			sb.WriteString("      ")
			sb.WriteString(formatDetail(detail))
			sb.WriteString("\n")
		}
	}

	if len(d.MigrationNotes) > 0 {
		sb.WriteString("\nMigration notes:\n")
		for _, note := range d.MigrationNotes {
			sb.WriteString("  - ")
			sb.WriteString(note)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func formatDetail(detail ChangeDetail) string {
	switch {
	case detail.OldValue == "":
		return fmt.Sprintf("%s: added (%s)", detail.Field, detail.NewValue)
	case detail.NewValue == "":
		return fmt.Sprintf("%s: removed (was %s)", detail.Field, detail.OldValue)
	case detail.Field == "description":
		return fmt.Sprintf("%s: %s", detail.Field, inlineDelta(detail.OldValue, detail.NewValue))
	default:
		return fmt.Sprintf("%s: %s -> %s", detail.Field, detail.OldValue, detail.NewValue)
	}
}

// inlineDelta renders a word-level delta of two prose values, marking
// removals as [-...] and insertions as [+...].
func inlineDelta(oldText, newText string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-")
			sb.WriteString(diff.Text)
			sb.WriteString("]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("[+")
			sb.WriteString(diff.Text)
			sb.WriteString("]")
		default:
			sb.WriteString(diff.Text)
		}
	}
	return sb.String()
}
