package store

import (
	"context"
	"database/sql"
	"time"

	"stocklist-reconciliation-service/internal/models"
	apperrors "stocklist-reconciliation-service/pkg/errors"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by a SQLite database file. The schema is
// auto-migrated on open. WAL mode keeps readers unblocked during the
// engine's sequential writes.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at the given path.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, apperrors.StoreError(apperrors.CodeReadFailed, "open_database", "", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 0),
		display_order INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS observations (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 0),
		date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_observations_item_date
		ON observations(item_id, date);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return apperrors.StoreError(apperrors.CodeMigrationError, "migrate", "", err)
	}
	return nil
}

// ListItems returns every item ordered by display position.
func (s *SQLiteStore) ListItems(ctx context.Context) ([]*models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, quantity, display_order FROM items ORDER BY display_order`)
	if err != nil {
		return nil, apperrors.StoreError(apperrors.CodeReadFailed, "list_items", "", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &item.Order); err != nil {
			return nil, apperrors.StoreError(apperrors.CodeReadFailed, "list_items", "", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreError(apperrors.CodeReadFailed, "list_items", "", err)
	}

	return items, nil
}

// GetItem returns a single item by ID.
func (s *SQLiteStore) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	item := &models.Item{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, quantity, display_order FROM items WHERE id = ?`, itemID).
		Scan(&item.ID, &item.Name, &item.Quantity, &item.Order)

	if err == sql.ErrNoRows {
		return nil, apperrors.StoreError(apperrors.CodeItemNotFound, "get_item", itemID, nil)
	}
	if err != nil {
		return nil, apperrors.StoreError(apperrors.CodeReadFailed, "get_item", itemID, err)
	}

	return item, nil
}

// CreateItem appends a new item at the end of the display order.
func (s *SQLiteStore) CreateItem(ctx context.Context, name string, quantity int) (string, error) {
	if quantity < 0 {
		return "", apperrors.ValidationError(apperrors.CodeInvalidQuantity, "quantity", quantity)
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, name, quantity, display_order)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(display_order), -1) + 1 FROM items))`,
		id, name, quantity)
	if err != nil {
		return "", apperrors.StoreError(apperrors.CodeWriteFailed, "create_item", "", err)
	}

	return id, nil
}

// SetQuantity overwrites an item's current quantity.
func (s *SQLiteStore) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 0 {
		return apperrors.ValidationError(apperrors.CodeInvalidQuantity, "quantity", quantity)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE items SET quantity = ? WHERE id = ?`, quantity, itemID)
	if err != nil {
		return apperrors.StoreError(apperrors.CodeWriteFailed, "set_quantity", itemID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.StoreError(apperrors.CodeWriteFailed, "set_quantity", itemID, err)
	}
	if affected == 0 {
		return apperrors.StoreError(apperrors.CodeItemNotFound, "set_quantity", itemID, nil)
	}

	return nil
}

// DeleteItem removes an item from the catalog.
func (s *SQLiteStore) DeleteItem(ctx context.Context, itemID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, itemID)
	if err != nil {
		return apperrors.StoreError(apperrors.CodeWriteFailed, "delete_item", itemID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.StoreError(apperrors.CodeWriteFailed, "delete_item", itemID, err)
	}
	if affected == 0 {
		return apperrors.StoreError(apperrors.CodeItemNotFound, "delete_item", itemID, nil)
	}

	return nil
}

// AppendObservation records a dated quantity observation for an item.
func (s *SQLiteStore) AppendObservation(ctx context.Context, itemID string, quantity int, date time.Time) error {
	if quantity < 0 {
		return apperrors.ValidationError(apperrors.CodeInvalidQuantity, "quantity", quantity)
	}
	if date.IsZero() {
		return apperrors.ValidationError(apperrors.CodeInvalidDate, "date", date)
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM items WHERE id = ?`, itemID).Scan(&exists)
	if err == sql.ErrNoRows {
		return apperrors.StoreError(apperrors.CodeItemNotFound, "append_observation", itemID, nil)
	}
	if err != nil {
		return apperrors.StoreError(apperrors.CodeReadFailed, "append_observation", itemID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO observations (id, item_id, quantity, date) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), itemID, quantity, date.Format(time.RFC3339))
	if err != nil {
		return apperrors.StoreError(apperrors.CodeWriteFailed, "append_observation", itemID, err)
	}

	return nil
}

// ListObservations returns an item's history ordered by date ascending.
func (s *SQLiteStore) ListObservations(ctx context.Context, itemID string) ([]*models.QuantityObservation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, item_id, quantity, date FROM observations WHERE item_id = ? ORDER BY date`,
		itemID)
	if err != nil {
		return nil, apperrors.StoreError(apperrors.CodeReadFailed, "list_observations", itemID, err)
	}
	defer rows.Close()

	var history []*models.QuantityObservation
	for rows.Next() {
		obs := &models.QuantityObservation{}
		var date string
		if err := rows.Scan(&obs.ID, &obs.ItemID, &obs.Quantity, &date); err != nil {
			return nil, apperrors.StoreError(apperrors.CodeReadFailed, "list_observations", itemID, err)
		}

		obs.Date, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, apperrors.StoreError(apperrors.CodeReadFailed, "list_observations", itemID, err)
		}

		history = append(history, obs)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreError(apperrors.CodeReadFailed, "list_observations", itemID, err)
	}

	return history, nil
}

// DeleteObservation removes a single observation by ID.
func (s *SQLiteStore) DeleteObservation(ctx context.Context, observationID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM observations WHERE id = ?`, observationID)
	if err != nil {
		return apperrors.StoreError(apperrors.CodeWriteFailed, "delete_observation", observationID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.StoreError(apperrors.CodeWriteFailed, "delete_observation", observationID, err)
	}
	if affected == 0 {
		return apperrors.StoreError(apperrors.CodeItemNotFound, "delete_observation", observationID, nil)
	}

	return nil
}

// ReparentObservations moves every observation from one item to another.
func (s *SQLiteStore) ReparentObservations(ctx context.Context, fromItemID, toItemID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM items WHERE id = ?`, toItemID).Scan(&exists)
	if err == sql.ErrNoRows {
		return apperrors.StoreError(apperrors.CodeItemNotFound, "reparent_observations", toItemID, nil)
	}
	if err != nil {
		return apperrors.StoreError(apperrors.CodeReadFailed, "reparent_observations", toItemID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE observations SET item_id = ? WHERE item_id = ?`, toItemID, fromItemID)
	if err != nil {
		return apperrors.StoreError(apperrors.CodeWriteFailed, "reparent_observations", fromItemID, err)
	}

	return nil
}
