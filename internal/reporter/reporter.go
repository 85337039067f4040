// Package reporter renders import batch results for terminal display and
// programmatic consumption.
//
// Supported output formats:
//   - Console: human-readable summary for the interactive CLI
//   - JSON: structured output for scripting
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"stocklist-reconciliation-service/internal/models"
	"stocklist-reconciliation-service/internal/reconciler"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeCatalog appends the final item list to the report.
	IncludeCatalog bool `json:"include_catalog"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:         FormatConsole,
		IncludeCatalog: false,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// Reporter renders import reports.
type Reporter struct {
	config *ReportConfig
}

// NewReporter creates a reporter with the given configuration. A nil
// configuration falls back to the defaults.
func NewReporter(config *ReportConfig) (*Reporter, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Reporter{config: config}, nil
}

// jsonReport is the JSON output envelope.
type jsonReport struct {
	Report  *reconciler.Report `json:"report"`
	Catalog []*models.Item     `json:"catalog,omitempty"`
}

// Write renders the batch report to w. catalog may be nil when the
// configuration does not include it.
func (r *Reporter) Write(w io.Writer, report *reconciler.Report, catalog []*models.Item) error {
	if report == nil {
		return fmt.Errorf("nil report")
	}

	switch r.config.Format {
	case FormatJSON:
		return r.writeJSON(w, report, catalog)
	default:
		return r.writeConsole(w, report, catalog)
	}
}

func (r *Reporter) writeJSON(w io.Writer, report *reconciler.Report, catalog []*models.Item) error {
	out := jsonReport{Report: report}
	if r.config.IncludeCatalog {
		out.Catalog = catalog
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func (r *Reporter) writeConsole(w io.Writer, report *reconciler.Report, catalog []*models.Item) error {
	var b strings.Builder

	b.WriteString("Import Summary\n")
	b.WriteString("==============\n")
	fmt.Fprintf(&b, "Lines:     %d total, %d applied, %d skipped, %d abandoned\n",
		report.LinesTotal, report.LinesApplied, report.LinesSkipped, report.LinesAbandoned)
	fmt.Fprintf(&b, "Items:     %d created, %d merged\n",
		report.ItemsCreated, report.ItemsMerged)

	if report.ObservationsDropped > 0 {
		fmt.Fprintf(&b, "History:   %d duplicate day record(s) dropped during merge\n",
			report.ObservationsDropped)
	}

	if r.config.IncludeCatalog && len(catalog) > 0 {
		b.WriteString("\nCatalog\n")
		b.WriteString("-------\n")
		for _, item := range catalog {
			fmt.Fprintf(&b, "%-30s %d\n", item.Name, item.Quantity)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
