// Package reconciler implements the import reconciliation state machine.
//
// The engine consumes an ImportBatch one line at a time against the live
// catalog: exact name matches are applied immediately, lines with fuzzy
// candidates pause the machine for a user decision, and unmatched lines
// create new items. History consistency rules gate every write.
//
// The machine is single-writer per batch. It runs synchronously between
// external events (import start, user decision) and suspends only by
// returning an AwaitingDecision outcome; the cursor it hands out is the
// resumable state. Concurrent imports against one catalog are unsupported.
package reconciler

import (
	"context"
	"time"

	"stocklist-reconciliation-service/internal/history"
	"stocklist-reconciliation-service/internal/matcher"
	"stocklist-reconciliation-service/internal/models"
	"stocklist-reconciliation-service/internal/parsers"
	"stocklist-reconciliation-service/internal/store"
	apperrors "stocklist-reconciliation-service/pkg/errors"
	"stocklist-reconciliation-service/pkg/logger"
)

// State identifies where the machine is in a batch.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingDecision State = "awaiting_decision"
	StateDone             State = "done"
)

// Cursor is the paused state of the machine: the ambiguous line, its
// ranked candidates, and everything needed to resume after a decision.
// A cursor is single-use; applying a decision spends it.
type Cursor struct {
	CurrentLine     models.ImportLine
	Candidates      []matcher.Candidate
	BestMatch       *models.Item
	Remaining       []models.ImportLine
	ObservationDate *time.Time

	spent bool
}

// Report accumulates per-batch outcome counts across Run and Decide calls.
type Report struct {
	LinesTotal          int `json:"lines_total"`
	LinesApplied        int `json:"lines_applied"`
	ItemsCreated        int `json:"items_created"`
	ItemsMerged         int `json:"items_merged"`
	LinesSkipped        int `json:"lines_skipped"`
	LinesAbandoned      int `json:"lines_abandoned"`
	ObservationsDropped int `json:"observations_dropped"`
}

// Outcome is the result of a Run or Decide call. Cursor is set while
// awaiting a decision. Remaining is set alongside a returned error so a
// caller can retry the unprocessed tail of the batch.
type Outcome struct {
	State     State
	Cursor    *Cursor
	Report    *Report
	Remaining *models.ImportBatch
}

// Config bundles the engine's tunables.
type Config struct {
	Matching *matcher.Config
	Parser   *parsers.ParserConfig
}

// DefaultConfig returns the standard engine configuration: the loose
// import matching threshold and the default parser.
func DefaultConfig() *Config {
	return &Config{
		Matching: matcher.ImportConfig(),
		Parser:   parsers.DefaultParserConfig(),
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Matching == nil {
		return apperrors.ConfigurationError("matching", nil, nil)
	}
	if err := c.Matching.Validate(); err != nil {
		return apperrors.ConfigurationError("matching", c.Matching, err)
	}
	return nil
}

// Engine is the reconciliation state machine.
type Engine struct {
	store    store.Store
	matching *matcher.Config
	parser   *parsers.ImportParser
	logger   logger.Logger

	onDone func()
	report *Report
}

// NewEngine creates a reconciliation engine over the given store.
func NewEngine(s store.Store, config *Config) (*Engine, error) {
	if s == nil {
		return nil, apperrors.ValidationError(apperrors.CodeMissingField, "store", nil)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		store:    s,
		matching: config.Matching,
		parser:   parsers.NewImportParser(config.Parser),
		logger:   logger.GetGlobalLogger().WithComponent("reconciliation_engine"),
	}, nil
}

// OnDone registers a hook invoked whenever a batch reaches Done, so the
// caller can refresh its view of the catalog.
func (e *Engine) OnDone(hook func()) {
	e.onDone = hook
}

// StartImport parses the pasted text into a batch. No store access and no
// mutation happen here; reconciliation starts with Run.
func (e *Engine) StartImport(text string) (*models.ImportBatch, *parsers.ParseStats) {
	batch, stats := e.parser.Parse(text)

	e.logger.WithFields(logger.Fields{
		"lines_parsed":  stats.ParsedLines,
		"lines_skipped": stats.SkippedLines,
		"date_found":    stats.DateFound,
	}).Info("Import text parsed")

	return batch, stats
}

// Run processes the batch until it finishes or pauses on an ambiguous
// line. On a store failure the current line is abandoned and the returned
// outcome carries the unprocessed remainder alongside the error;
// re-invoking Run with that remainder is safe.
func (e *Engine) Run(ctx context.Context, batch *models.ImportBatch) (*Outcome, error) {
	if batch == nil {
		return nil, apperrors.ValidationError(apperrors.CodeMissingField, "batch", nil)
	}

	if e.report == nil {
		e.report = &Report{LinesTotal: len(batch.Lines)}
	}

	return e.process(ctx, batch.Lines, batch.ObservationDate)
}

// process drains the queue. This is the work-queue form of the
// transition in the state machine: pop, re-read catalog, apply or pause.
func (e *Engine) process(ctx context.Context, queue []models.ImportLine, date *time.Time) (*Outcome, error) {
	for len(queue) > 0 {
		line := queue[0]
		rest := queue[1:]

		// The catalog is re-read before every line so later lines observe
		// items created or merged by earlier decisions in this batch.
		catalog, err := e.store.ListItems(ctx)
		if err != nil {
			return e.abandon(line, rest, date, err)
		}

		if item := matcher.FindExact(line.OriginalName, catalog); item != nil {
			e.logger.WithFields(logger.Fields{
				"line": line.OriginalName,
				"item": item.ID,
			}).Debug("Exact match")

			if err := e.applyToItem(ctx, item, line.Quantity, date); err != nil {
				return e.abandon(line, rest, date, err)
			}
			e.report.LinesApplied++
			queue = rest
			continue
		}

		candidates := matcher.FindCandidates(line.OriginalName, catalog, e.matching)
		if len(candidates) > 0 {
			e.logger.WithFields(logger.Fields{
				"line":       line.OriginalName,
				"candidates": len(candidates),
			}).Info("Ambiguous match, awaiting decision")

			cursor := &Cursor{
				CurrentLine:     line,
				Candidates:      candidates,
				BestMatch:       candidates[0].Item,
				Remaining:       rest,
				ObservationDate: date,
			}
			return &Outcome{State: StateAwaitingDecision, Cursor: cursor, Report: e.report}, nil
		}

		if err := e.createItem(ctx, line, date); err != nil {
			return e.abandon(line, rest, date, err)
		}
		queue = rest
	}

	return e.finish(), nil
}

// finish transitions to Done, fires the refresh hook and releases the
// accumulated report.
func (e *Engine) finish() *Outcome {
	report := e.report
	if report == nil {
		report = &Report{}
	}
	e.report = nil

	e.logger.WithFields(logger.Fields{
		"applied":   report.LinesApplied,
		"created":   report.ItemsCreated,
		"merged":    report.ItemsMerged,
		"skipped":   report.LinesSkipped,
		"abandoned": report.LinesAbandoned,
	}).Info("Import batch done")

	if e.onDone != nil {
		e.onDone()
	}

	return &Outcome{State: StateDone, Report: report}
}

// abandon gives up on the current line after a store failure. The line is
// not re-queued; the rest of the queue is handed back for retry.
func (e *Engine) abandon(line models.ImportLine, rest []models.ImportLine, date *time.Time, err error) (*Outcome, error) {
	e.report.LinesAbandoned++

	e.logger.WithError(err).WithField("line", line.OriginalName).Error("Store failure, line abandoned")

	outcome := &Outcome{
		State:     StateIdle,
		Report:    e.report,
		Remaining: models.NewImportBatch(date, rest),
	}
	wrapped := apperrors.WrapIfNeeded(err, apperrors.CategoryStore, apperrors.CodeWriteFailed,
		"store operation failed during reconciliation").
		WithContext("abandoned_line", line.OriginalName).
		WithContext("remaining_lines", len(rest))
	return outcome, wrapped
}

// applyToItem updates an existing item from an import line, honoring the
// history consistency rules: the displayed quantity only moves forward in
// time, and at most one observation lands per calendar day.
func (e *Engine) applyToItem(ctx context.Context, item *models.Item, quantity int, date *time.Time) error {
	observations, err := e.store.ListObservations(ctx, item.ID)
	if err != nil {
		return err
	}

	// A dateless import counts as observed now for the staleness check.
	importDate := time.Now()
	hasDate := date != nil && !date.IsZero()
	if hasDate {
		importDate = *date
	}

	latest, hasLatest := history.LatestObservationDate(observations)
	if history.ShouldOverwriteQuantity(latest, hasLatest, importDate) {
		if err := e.store.SetQuantity(ctx, item.ID, quantity); err != nil {
			return err
		}
	} else {
		e.logger.WithFields(logger.Fields{
			"item":   item.ID,
			"latest": latest,
		}).Debug("Stale import, quantity kept")
	}

	if history.ShouldRecordObservation(observations, importDate, hasDate) {
		if err := e.store.AppendObservation(ctx, item.ID, quantity, importDate); err != nil {
			return err
		}
	}

	return nil
}

// createItem creates a new catalog entry from an import line and records
// its first observation when the batch carries a date.
func (e *Engine) createItem(ctx context.Context, line models.ImportLine, date *time.Time) error {
	id, err := e.store.CreateItem(ctx, line.OriginalName, line.Quantity)
	if err != nil {
		return err
	}

	if date != nil && !date.IsZero() {
		if err := e.store.AppendObservation(ctx, id, line.Quantity, *date); err != nil {
			return err
		}
	}

	e.report.ItemsCreated++
	e.report.LinesApplied++

	e.logger.WithFields(logger.Fields{
		"item": id,
		"name": line.OriginalName,
	}).Info("Created new item")

	return nil
}

// consolidate merges the source item into the target: colliding same-day
// source observations are dropped (the target's record wins), the rest are
// re-parented, and the source item is deleted. The target's quantity is
// untouched here.
func (e *Engine) consolidate(ctx context.Context, source, target *models.Item) error {
	sourceHistory, err := e.store.ListObservations(ctx, source.ID)
	if err != nil {
		return err
	}
	targetHistory, err := e.store.ListObservations(ctx, target.ID)
	if err != nil {
		return err
	}

	keep, dropped := history.MergeObservations(sourceHistory, targetHistory)
	for _, obs := range sourceHistory {
		kept := false
		for _, k := range keep {
			if k.ID == obs.ID {
				kept = true
				break
			}
		}
		if kept {
			continue
		}
		if err := e.store.DeleteObservation(ctx, obs.ID); err != nil {
			return err
		}
	}

	if err := e.store.ReparentObservations(ctx, source.ID, target.ID); err != nil {
		return err
	}

	if err := e.store.DeleteItem(ctx, source.ID); err != nil {
		return err
	}

	e.report.ItemsMerged++
	e.report.ObservationsDropped += dropped

	e.logger.WithFields(logger.Fields{
		"source":  source.ID,
		"target":  target.ID,
		"dropped": dropped,
	}).Info("Consolidated item")

	return nil
}
