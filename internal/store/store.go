// Package store defines the persistence contract the reconciliation
// engine depends on, plus a map-backed implementation for tests and
// in-memory runs and a SQLite-backed one for real catalogs.
//
// Each operation is individually atomic. Cross-operation consistency
// (read-candidates-then-write) relies on the engine being the single
// writer for a batch; the store does not serialize whole batches.
package store

import (
	"context"
	"time"

	"stocklist-reconciliation-service/internal/models"
)

// Store is the catalog and history persistence contract.
type Store interface {
	// ListItems returns every catalog item in display order, reflecting
	// all prior writes in this process.
	ListItems(ctx context.Context) ([]*models.Item, error)

	// GetItem returns a single item by ID.
	GetItem(ctx context.Context, itemID string) (*models.Item, error)

	// CreateItem appends a new item to the catalog and returns its ID.
	CreateItem(ctx context.Context, name string, quantity int) (string, error)

	// SetQuantity overwrites an item's current quantity.
	SetQuantity(ctx context.Context, itemID string, quantity int) error

	// DeleteItem removes an item. Its observations are left untouched;
	// callers re-parent them first when consolidating.
	DeleteItem(ctx context.Context, itemID string) error

	// AppendObservation records a dated quantity observation for an item.
	AppendObservation(ctx context.Context, itemID string, quantity int, date time.Time) error

	// ListObservations returns an item's history ordered by date ascending.
	ListObservations(ctx context.Context, itemID string) ([]*models.QuantityObservation, error)

	// DeleteObservation removes a single observation by ID.
	DeleteObservation(ctx context.Context, observationID string) error

	// ReparentObservations moves every observation from one item to
	// another. Consolidation primitive; it does not deduplicate.
	ReparentObservations(ctx context.Context, fromItemID, toItemID string) error
}
