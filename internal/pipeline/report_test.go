package pipeline

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dmarchante/relvet/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		RunID:        "run-1",
		Model:        "deepseek-r1:8b",
		StartedAt:    time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		FinishedAt:   time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		TotalChecked: 3,
		TotalInvalid: 1,
		Invalid: []model.InvalidRelation{
			{
				ID:       "44303",
				Entity:   "Greasy or oily stools",
				Relation: "Symptom1 implies Symptom2",
				Related:  "Increased appetite",
				Reason:   "the implication is reversed",
			},
		},
	}
}

func TestBaseName(t *testing.T) {
	got := BaseName(sampleReport())
	want := "invalid_relations_20250314_092653"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderer_JSON(t *testing.T) {
	r := NewRenderer(t.TempDir())

	path, err := r.RenderJSON(sampleReport(), "report")
	if err != nil {
		t.Fatalf("render json: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.TotalInvalid != 1 || len(decoded.Invalid) != 1 {
		t.Errorf("unexpected decoded report: %+v", decoded)
	}
	if decoded.Invalid[0].Reason != "the implication is reversed" {
		t.Errorf("unexpected reason: %q", decoded.Invalid[0].Reason)
	}
}

func TestRenderer_Markdown(t *testing.T) {
	r := NewRenderer(t.TempDir())

	path, err := r.RenderMarkdown(sampleReport(), "report")
	if err != nil {
		t.Fatalf("render markdown: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	for _, want := range []string{
		"# Invalid Relationship Report",
		"## ID 44303",
		"Greasy or oily stools",
		"the implication is reversed",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderer_MarkdownEmpty(t *testing.T) {
	r := NewRenderer(t.TempDir())

	report := sampleReport()
	report.Invalid = nil
	report.TotalInvalid = 0

	path, err := r.RenderMarkdown(report, "report")
	if err != nil {
		t.Fatalf("render markdown: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "No invalid relationships found.") {
		t.Error("empty report should say no invalid relationships were found")
	}
}

func TestRenderer_Summary(t *testing.T) {
	var b strings.Builder

	report := sampleReport()
	report.Interrupted = true
	NewRenderer("").RenderSummary(report, &b)

	out := b.String()
	if !strings.Contains(out, "Checked:   3") {
		t.Errorf("summary missing checked count:\n%s", out)
	}
	if !strings.Contains(out, "interrupted") {
		t.Errorf("summary missing interruption notice:\n%s", out)
	}
}

func TestRenderer_Preview(t *testing.T) {
	report := sampleReport()
	for i := 0; i < 4; i++ {
		report.Invalid = append(report.Invalid, model.InvalidRelation{ID: "extra", Reason: "r"})
	}

	var b strings.Builder
	NewRenderer("").RenderPreview(report, &b, 3)

	out := b.String()
	if !strings.Contains(out, "44303") {
		t.Errorf("preview missing first entry:\n%s", out)
	}
	if !strings.Contains(out, "... and 2 more") {
		t.Errorf("preview missing overflow line:\n%s", out)
	}
}
