// Package parsers turns freeform pasted text into an import batch: an
// optional batch-wide observation date plus one (name, quantity) line per
// qualifying input line.
//
// The parser is deliberately forgiving. Malformed lines are dropped, never
// surfaced as errors; the result is simply shorter, and ParseStats records
// what was skipped.
package parsers

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"stocklist-reconciliation-service/internal/models"
)

// ParserConfig controls import text parsing
type ParserConfig struct {
	// ObservationHour pins extracted dates to a fixed local time-of-day so
	// same-day comparisons are insensitive to when the import ran.
	ObservationHour int

	// Location is the timezone used for extracted dates and for the
	// "most recent past occurrence" year inference. Defaults to time.Local.
	Location *time.Location

	// Now supplies the current time for year inference. Defaults to
	// time.Now; overridable in tests.
	Now func() time.Time
}

// DefaultParserConfig returns the standard parser configuration
func DefaultParserConfig() *ParserConfig {
	return &ParserConfig{
		ObservationHour: 20,
		Location:        time.Local,
		Now:             time.Now,
	}
}

// ParseStats tracks counts from a single parse run
type ParseStats struct {
	TotalLines   int  `json:"total_lines"`
	ParsedLines  int  `json:"parsed_lines"`
	SkippedLines int  `json:"skipped_lines"`
	DateFound    bool `json:"date_found"`
}

// ImportParser extracts an ImportBatch from freeform multi-line text
type ImportParser struct {
	config *ParserConfig
}

// Date patterns in precedence order: full year, two-digit year, no year.
// The no-year pattern also covers single-digit day/month forms.
var (
	dateFullYearRe  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	dateShortYearRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2})\b`)
	dateNoYearRe    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)

	integerRe   = regexp.MustCompile(`\d+`)
	separatorRe = regexp.MustCompile(`[-/:_,;]`)
)

// NewImportParser creates a new import parser with the given configuration
func NewImportParser(config *ParserConfig) *ImportParser {
	if config == nil {
		config = DefaultParserConfig()
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &ImportParser{config: config}
}

// Parse extracts the batch observation date and the quantity lines from
// the given text. It never fails: unusable lines are skipped and counted.
func (p *ImportParser) Parse(text string) (*models.ImportBatch, *ParseStats) {
	lines := strings.Split(text, "\n")
	stats := &ParseStats{}

	observationDate := p.extractDate(lines)
	stats.DateFound = observationDate != nil

	var parsed []models.ImportLine
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		stats.TotalLines++

		importLine, ok := p.parseLine(line)
		if !ok {
			stats.SkippedLines++
			continue
		}

		parsed = append(parsed, importLine)
		stats.ParsedLines++
	}

	return models.NewImportBatch(observationDate, parsed), stats
}

// extractDate scans lines in order for the first date occurrence, trying
// patterns from most to least specific within each line.
func (p *ImportParser) extractDate(lines []string) *time.Time {
	for _, line := range lines {
		if t, ok := p.matchDate(line); ok {
			return &t
		}
	}
	return nil
}

func (p *ImportParser) matchDate(line string) (time.Time, bool) {
	if m := dateFullYearRe.FindStringSubmatch(line); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return p.buildDate(day, month, year)
	}

	if m := dateShortYearRe.FindStringSubmatch(line); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return p.buildDate(day, month, 2000+year)
	}

	if m := dateNoYearRe.FindStringSubmatch(line); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return p.buildDate(day, month, p.inferYear(day, month))
	}

	return time.Time{}, false
}

// inferYear resolves a year-less date to its most recent past occurrence:
// a month/day still ahead of today belongs to last year. The comparison is
// by calendar day, so today's month/day is this year no matter what time
// the import runs.
func (p *ImportParser) inferYear(day, month int) int {
	now := p.config.Now().In(p.config.Location)

	candidate := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, p.config.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.config.Location)
	if candidate.After(today) {
		return now.Year() - 1
	}
	return now.Year()
}

// buildDate validates the day/month pair and pins the result to the
// configured observation hour. Impossible dates (31/02) are rejected.
func (p *ImportParser) buildDate(day, month, year int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day,
		p.config.ObservationHour, 0, 0, 0, p.config.Location)
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}

	return t, true
}

// parseLine extracts a single (name, quantity) pair. Lines with zero or
// more than one integer are rejected: a full date carries two or three
// integer groups, so date and noise lines fail this filter naturally.
func (p *ImportParser) parseLine(line string) (models.ImportLine, bool) {
	integers := integerRe.FindAllStringIndex(line, -1)
	if len(integers) != 1 {
		return models.ImportLine{}, false
	}

	quantity, err := strconv.Atoi(line[integers[0][0]:integers[0][1]])
	if err != nil || quantity <= 0 {
		return models.ImportLine{}, false
	}

	name := cleanName(line[:integers[0][0]] + line[integers[0][1]:])
	if name == "" {
		return models.ImportLine{}, false
	}

	return models.ImportLine{OriginalName: name, Quantity: quantity}, true
}

// cleanName turns the integer-stripped remainder of a line into a display
// name: separators become spaces, emoji and other symbol runes are dropped,
// whitespace is collapsed. Accents and case are preserved; this is the
// display name, not the comparison key.
func cleanName(s string) string {
	s = separatorRe.ReplaceAllString(s, " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSymbol(r) || unicode.Is(unicode.Variation_Selector, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
