package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"stocklist-reconciliation-service/internal/models"
	apperrors "stocklist-reconciliation-service/pkg/errors"

	"github.com/google/uuid"
)

// MemoryStore is a map-backed Store. It is the default backend for tests
// and for imports run without a database file.
type MemoryStore struct {
	mu           sync.RWMutex
	items        map[string]*models.Item
	observations map[string]*models.QuantityObservation
	nextOrder    int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:        make(map[string]*models.Item),
		observations: make(map[string]*models.QuantityObservation),
	}
}

// ListItems returns every item sorted by display order.
func (s *MemoryStore) ListItems(ctx context.Context) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*models.Item, 0, len(s.items))
	for _, item := range s.items {
		copied := *item
		items = append(items, &copied)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})

	return items, nil
}

// GetItem returns a single item by ID.
func (s *MemoryStore) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, apperrors.StoreError(apperrors.CodeItemNotFound, "get_item", itemID, nil)
	}

	copied := *item
	return &copied, nil
}

// CreateItem appends a new item to the catalog.
func (s *MemoryStore) CreateItem(ctx context.Context, name string, quantity int) (string, error) {
	if quantity < 0 {
		return "", apperrors.ValidationError(apperrors.CodeInvalidQuantity, "quantity", quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.items[id] = &models.Item{
		ID:       id,
		Name:     name,
		Quantity: quantity,
		Order:    s.nextOrder,
	}
	s.nextOrder++

	return id, nil
}

// SetQuantity overwrites an item's current quantity.
func (s *MemoryStore) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 0 {
		return apperrors.ValidationError(apperrors.CodeInvalidQuantity, "quantity", quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return apperrors.StoreError(apperrors.CodeItemNotFound, "set_quantity", itemID, nil)
	}

	item.Quantity = quantity
	return nil
}

// DeleteItem removes an item from the catalog.
func (s *MemoryStore) DeleteItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[itemID]; !ok {
		return apperrors.StoreError(apperrors.CodeItemNotFound, "delete_item", itemID, nil)
	}

	delete(s.items, itemID)
	return nil
}

// AppendObservation records a dated quantity observation for an item.
func (s *MemoryStore) AppendObservation(ctx context.Context, itemID string, quantity int, date time.Time) error {
	if quantity < 0 {
		return apperrors.ValidationError(apperrors.CodeInvalidQuantity, "quantity", quantity)
	}
	if date.IsZero() {
		return apperrors.ValidationError(apperrors.CodeInvalidDate, "date", date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[itemID]; !ok {
		return apperrors.StoreError(apperrors.CodeItemNotFound, "append_observation", itemID, nil)
	}

	id := uuid.NewString()
	s.observations[id] = &models.QuantityObservation{
		ID:       id,
		ItemID:   itemID,
		Quantity: quantity,
		Date:     date,
	}

	return nil
}

// ListObservations returns an item's history ordered by date ascending.
func (s *MemoryStore) ListObservations(ctx context.Context, itemID string) ([]*models.QuantityObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var history []*models.QuantityObservation
	for _, obs := range s.observations {
		if obs.ItemID == itemID {
			copied := *obs
			history = append(history, &copied)
		}
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].Date.Before(history[j].Date)
	})

	return history, nil
}

// DeleteObservation removes a single observation by ID.
func (s *MemoryStore) DeleteObservation(ctx context.Context, observationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.observations[observationID]; !ok {
		return apperrors.StoreError(apperrors.CodeItemNotFound, "delete_observation", observationID, nil)
	}

	delete(s.observations, observationID)
	return nil
}

// ReparentObservations moves every observation from one item to another.
func (s *MemoryStore) ReparentObservations(ctx context.Context, fromItemID, toItemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[toItemID]; !ok {
		return apperrors.StoreError(apperrors.CodeItemNotFound, "reparent_observations", toItemID, nil)
	}

	for _, obs := range s.observations {
		if obs.ItemID == fromItemID {
			obs.ItemID = toItemID
		}
	}

	return nil
}
