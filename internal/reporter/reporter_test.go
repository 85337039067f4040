package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"stocklist-reconciliation-service/internal/models"
	"stocklist-reconciliation-service/internal/reconciler"
)

func sampleReport() *reconciler.Report {
	return &reconciler.Report{
		LinesTotal:          5,
		LinesApplied:        3,
		ItemsCreated:        1,
		ItemsMerged:         1,
		LinesSkipped:        1,
		LinesAbandoned:      1,
		ObservationsDropped: 2,
	}
}

func TestReporter_Console(t *testing.T) {
	r, err := NewReporter(nil)
	if err != nil {
		t.Fatalf("NewReporter failed: %v", err)
	}

	var buf bytes.Buffer
	if err := r.Write(&buf, sampleReport(), nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"5 total", "3 applied", "1 created", "1 merged", "2 duplicate"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestReporter_ConsoleWithCatalog(t *testing.T) {
	r, err := NewReporter(&ReportConfig{Format: FormatConsole, IncludeCatalog: true})
	if err != nil {
		t.Fatalf("NewReporter failed: %v", err)
	}

	catalog := []*models.Item{
		{ID: "1", Name: "Batata", Quantity: 7},
		{ID: "2", Name: "Arroz", Quantity: 2},
	}

	var buf bytes.Buffer
	if err := r.Write(&buf, sampleReport(), catalog); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Batata") || !strings.Contains(out, "Arroz") {
		t.Errorf("Expected catalog in output, got:\n%s", out)
	}
}

func TestReporter_JSON(t *testing.T) {
	r, err := NewReporter(&ReportConfig{Format: FormatJSON})
	if err != nil {
		t.Fatalf("NewReporter failed: %v", err)
	}

	var buf bytes.Buffer
	if err := r.Write(&buf, sampleReport(), nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded struct {
		Report *reconciler.Report `json:"report"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.Report.LinesApplied != 3 {
		t.Errorf("Expected 3 applied lines, got %d", decoded.Report.LinesApplied)
	}
}

func TestReportConfig_Validate(t *testing.T) {
	if err := (&ReportConfig{Format: "xml"}).Validate(); err == nil {
		t.Error("Expected invalid format to be rejected")
	}
	if err := DefaultReportConfig().Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestReporter_NilReport(t *testing.T) {
	r, _ := NewReporter(nil)
	if err := r.Write(&bytes.Buffer{}, nil, nil); err == nil {
		t.Error("Expected error for nil report")
	}
}
