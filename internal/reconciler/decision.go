package reconciler

import (
	"context"
	"fmt"

	"stocklist-reconciliation-service/internal/matcher"
	"stocklist-reconciliation-service/internal/models"
	apperrors "stocklist-reconciliation-service/pkg/errors"
	"stocklist-reconciliation-service/pkg/logger"
)

// DecisionKind enumerates the resolutions a user can pick for an
// ambiguous import line.
type DecisionKind string

const (
	// DecisionSameItem treats the line as the best match: quantity and
	// history flow onto that item.
	DecisionSameItem DecisionKind = "same_item"

	// DecisionDifferentItem creates a new item from the line despite the
	// candidates.
	DecisionDifferentItem DecisionKind = "different_item"

	// DecisionAcceptSuggestions consolidates every shown candidate into
	// the best match, then applies the line's quantity to it.
	DecisionAcceptSuggestions DecisionKind = "accept_suggestions"

	// DecisionAcceptAllSimilar sweeps the whole remaining queue: every
	// line with a candidate gets its top candidate's quantity overwritten
	// without further prompts.
	DecisionAcceptAllSimilar DecisionKind = "accept_all_similar"

	// DecisionSkip drops the current line without touching the catalog.
	DecisionSkip DecisionKind = "skip"

	// DecisionCancel abandons the current line and everything after it.
	DecisionCancel DecisionKind = "cancel"

	// DecisionPromote designates another shown candidate as the best
	// match. The cursor stays live; a follow-up decision resolves it.
	DecisionPromote DecisionKind = "promote"
)

// Decision is a user's resolution for a paused cursor. PromoteIndex is
// only read for DecisionPromote and indexes into the cursor's candidates.
type Decision struct {
	Kind         DecisionKind
	PromoteIndex int
}

// Decide applies a decision to a paused cursor and resumes processing.
// Every kind except Promote spends the cursor; applying a decision to a
// spent cursor is an error and mutates nothing.
func (e *Engine) Decide(ctx context.Context, cursor *Cursor, decision Decision) (*Outcome, error) {
	if cursor == nil {
		return nil, apperrors.DecisionError(apperrors.CodeInvalidDecision, "no cursor")
	}
	if cursor.spent {
		return nil, apperrors.DecisionError(apperrors.CodeStaleCursor, "cursor already resolved")
	}
	if e.report == nil {
		e.report = &Report{}
	}

	e.logger.WithFields(logger.Fields{
		"decision": string(decision.Kind),
		"line":     cursor.CurrentLine.OriginalName,
	}).Info("Applying decision")

	switch decision.Kind {
	case DecisionPromote:
		return e.promote(cursor, decision.PromoteIndex)
	case DecisionSameItem:
		return e.decideSameItem(ctx, cursor)
	case DecisionDifferentItem:
		return e.decideDifferentItem(ctx, cursor)
	case DecisionAcceptSuggestions:
		return e.decideAcceptSuggestions(ctx, cursor)
	case DecisionAcceptAllSimilar:
		return e.decideAcceptAllSimilar(ctx, cursor)
	case DecisionSkip:
		cursor.spent = true
		e.report.LinesSkipped++
		return e.process(ctx, cursor.Remaining, cursor.ObservationDate)
	case DecisionCancel:
		cursor.spent = true
		e.report.LinesSkipped += 1 + len(cursor.Remaining)
		return e.finish(), nil
	default:
		return nil, apperrors.DecisionError(apperrors.CodeInvalidDecision,
			fmt.Sprintf("unknown decision kind %q", decision.Kind))
	}
}

// promote swaps the best match without resolving the line.
func (e *Engine) promote(cursor *Cursor, index int) (*Outcome, error) {
	if index < 0 || index >= len(cursor.Candidates) {
		return nil, apperrors.DecisionError(apperrors.CodeInvalidDecision,
			fmt.Sprintf("candidate index %d out of range [0,%d)", index, len(cursor.Candidates)))
	}

	cursor.BestMatch = cursor.Candidates[index].Item
	return &Outcome{State: StateAwaitingDecision, Cursor: cursor, Report: e.report}, nil
}

func (e *Engine) decideSameItem(ctx context.Context, cursor *Cursor) (*Outcome, error) {
	cursor.spent = true

	if err := e.applyToItem(ctx, cursor.BestMatch, cursor.CurrentLine.Quantity, cursor.ObservationDate); err != nil {
		return e.abandon(cursor.CurrentLine, cursor.Remaining, cursor.ObservationDate, err)
	}
	e.report.LinesApplied++

	return e.process(ctx, cursor.Remaining, cursor.ObservationDate)
}

func (e *Engine) decideDifferentItem(ctx context.Context, cursor *Cursor) (*Outcome, error) {
	cursor.spent = true

	if err := e.createItem(ctx, cursor.CurrentLine, cursor.ObservationDate); err != nil {
		return e.abandon(cursor.CurrentLine, cursor.Remaining, cursor.ObservationDate, err)
	}

	return e.process(ctx, cursor.Remaining, cursor.ObservationDate)
}

// decideAcceptSuggestions folds every non-best candidate into the best
// match, then overwrites the best match's quantity with the line's.
func (e *Engine) decideAcceptSuggestions(ctx context.Context, cursor *Cursor) (*Outcome, error) {
	cursor.spent = true

	target := cursor.BestMatch
	for _, source := range matcher.Items(cursor.Candidates) {
		if source.ID == target.ID {
			continue
		}
		if err := e.consolidate(ctx, source, target); err != nil {
			return e.abandon(cursor.CurrentLine, cursor.Remaining, cursor.ObservationDate, err)
		}
	}

	if err := e.applyToItem(ctx, target, cursor.CurrentLine.Quantity, cursor.ObservationDate); err != nil {
		return e.abandon(cursor.CurrentLine, cursor.Remaining, cursor.ObservationDate, err)
	}
	e.report.LinesApplied++

	return e.process(ctx, cursor.Remaining, cursor.ObservationDate)
}

// decideAcceptAllSimilar sweeps the current line and the whole remaining
// queue in one pass: each line's top candidate gets the line's quantity,
// no further prompts. Lines with no candidate, and lines whose top
// candidate was already updated earlier in the sweep, fall through to
// normal one-by-one processing afterwards. Per-line store failures are
// collected rather than aborting the sweep.
func (e *Engine) decideAcceptAllSimilar(ctx context.Context, cursor *Cursor) (*Outcome, error) {
	cursor.spent = true

	catalog, err := e.store.ListItems(ctx)
	if err != nil {
		return e.abandon(cursor.CurrentLine, cursor.Remaining, cursor.ObservationDate, err)
	}

	sweep := append([]models.ImportLine{cursor.CurrentLine}, cursor.Remaining...)
	updated := make(map[string]bool)
	var leftover []models.ImportLine
	var sweepErrors []*apperrors.ReconcilerError

	for _, line := range sweep {
		candidates := matcher.FindCandidates(line.OriginalName, catalog, e.matching)
		if len(candidates) == 0 {
			leftover = append(leftover, line)
			continue
		}

		top := candidates[0].Item
		if updated[top.ID] {
			// Two lines mapping onto one item is exactly the ambiguity the
			// sweep cannot resolve; the later line goes back to the queue.
			leftover = append(leftover, line)
			continue
		}

		if err := e.applyToItem(ctx, top, line.Quantity, cursor.ObservationDate); err != nil {
			e.report.LinesAbandoned++
			sweepErrors = append(sweepErrors, apperrors.WrapIfNeeded(err,
				apperrors.CategoryStore, apperrors.CodeWriteFailed, "sweep update failed"))
			continue
		}

		updated[top.ID] = true
		e.report.LinesApplied++
	}

	if len(sweepErrors) > 0 {
		e.logger.WithError(apperrors.NewErrorSummary(sweepErrors)).Warn("Sweep finished with errors")
	}

	return e.process(ctx, leftover, cursor.ObservationDate)
}
