package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmarchante/relvet/internal/model"
)

// Renderer writes report artifacts. It is a pure function of the
// report it receives: no state beyond the output directory.
type Renderer struct {
	dir string
}

// NewRenderer creates a renderer writing into dir.
func NewRenderer(dir string) *Renderer {
	if dir == "" {
		dir = "."
	}
	return &Renderer{dir: dir}
}

// BaseName returns the timestamped artifact base name for a report.
func BaseName(report *model.Report) string {
	ts := report.FinishedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return "invalid_relations_" + ts.Format("20060102_150405")
}

// RenderJSON writes the report as an indented JSON document and returns
// the path written.
func (r *Renderer) RenderJSON(report *model.Report, name string) (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(r.dir, name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// RenderMarkdown writes a human-readable report and returns the path
// written. An empty invalid list produces a "none found" document, not
// an error.
func (r *Renderer) RenderMarkdown(report *model.Report, name string) (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Invalid Relationship Report\n\n")
	fmt.Fprintf(&b, "- Run: %s\n", report.RunID)
	fmt.Fprintf(&b, "- Model: %s\n", report.Model)
	fmt.Fprintf(&b, "- Checked: %d\n", report.TotalChecked)
	fmt.Fprintf(&b, "- Invalid: %d\n", report.TotalInvalid)
	fmt.Fprintf(&b, "- Errors (will retry): %d\n", report.TotalErrors)
	if report.Interrupted {
		b.WriteString("- Run was interrupted; remaining records await the next run\n")
	}
	b.WriteString("\n")

	if len(report.Invalid) == 0 {
		b.WriteString("No invalid relationships found.\n")
	} else {
		for _, inv := range report.Invalid {
			fmt.Fprintf(&b, "## ID %s\n\n", inv.ID)
			fmt.Fprintf(&b, "- Relationship: %s %s %s\n", inv.Entity, inv.Relation, inv.Related)
			fmt.Fprintf(&b, "- Problem: %s\n\n", inv.Reason)
		}
	}

	path := filepath.Join(r.dir, name+".md")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// RenderSummary prints the run summary to w.
func (r *Renderer) RenderSummary(report *model.Report, w io.Writer) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Verification Run Complete\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Model:     %s\n", report.Model)
	fmt.Fprintf(w, "  Checked:   %d\n", report.TotalChecked)
	fmt.Fprintf(w, "  Invalid:   %d\n", report.TotalInvalid)
	fmt.Fprintf(w, "  Errors:    %d\n", report.TotalErrors)
	if report.Interrupted {
		fmt.Fprintf(w, "  Status:    interrupted (resume with the same checkpoint)\n")
	}
	fmt.Fprintf(w, "\n")
}

// RenderPreview prints up to limit invalid relationships to w.
func (r *Renderer) RenderPreview(report *model.Report, w io.Writer, limit int) {
	fmt.Fprintf(w, "\nPreview of invalid relationships:\n")
	if len(report.Invalid) == 0 {
		fmt.Fprintf(w, "No invalid relationships found.\n")
		return
	}
	for i, inv := range report.Invalid {
		if i >= limit {
			fmt.Fprintf(w, "... and %d more\n", len(report.Invalid)-limit)
			break
		}
		fmt.Fprintf(w, "  %s: %s %s %s (%s)\n", inv.ID, inv.Entity, inv.Relation, inv.Related, inv.Reason)
	}
}
