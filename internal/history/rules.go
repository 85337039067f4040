// Package history holds the pure decision rules that keep an item's
// quantity history consistent: one observation per calendar day, newest
// observation owns the displayed quantity, and merged histories never
// violate the per-day invariant.
package history

import (
	"time"

	"stocklist-reconciliation-service/internal/models"
)

// HasObservationOnDate reports whether any record in the history falls on
// the same local calendar day as the given date.
func HasObservationOnDate(history []*models.QuantityObservation, date time.Time) bool {
	for _, obs := range history {
		if obs.SameCalendarDay(date) {
			return true
		}
	}
	return false
}

// LatestObservationDate returns the most recent observation date in the
// history. The second return value is false when the history is empty.
func LatestObservationDate(history []*models.QuantityObservation) (time.Time, bool) {
	var latest time.Time
	found := false

	for _, obs := range history {
		if !found || obs.Date.After(latest) {
			latest = obs.Date
			found = true
		}
	}

	return latest, found
}

// ShouldOverwriteQuantity decides whether an import dated importDate may
// replace the item's displayed quantity. A first-ever or strictly newer
// observation always updates; an observation dated on or before the latest
// recorded one does not, so older re-imports cannot clobber newer edits.
func ShouldOverwriteQuantity(latest time.Time, hasLatest bool, importDate time.Time) bool {
	if !hasLatest {
		return true
	}
	return latest.Before(importDate)
}

// ShouldRecordObservation decides whether a new observation should be
// appended: the import must carry a date and the item must not already
// have a record on that calendar day.
func ShouldRecordObservation(history []*models.QuantityObservation, date time.Time, hasDate bool) bool {
	if !hasDate {
		return false
	}
	return !HasObservationOnDate(history, date)
}

// MergeObservations plans a consolidation of the source item's history
// into the target item's. Source observations whose calendar day collides
// with an existing target observation are dropped (the target's record
// wins), keeping the one-observation-per-day invariant intact post-merge.
// It returns the source observations to re-parent and how many were
// dropped.
func MergeObservations(source, target []*models.QuantityObservation) (keep []*models.QuantityObservation, dropped int) {
	for _, obs := range source {
		if HasObservationOnDate(target, obs.Date) {
			dropped++
			continue
		}
		keep = append(keep, obs)
	}
	return keep, dropped
}
