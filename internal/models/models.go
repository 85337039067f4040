package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Item represents a catalog entry with a display name and current quantity.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Order    int    `json:"order"`
}

// NewItem creates a new Item instance
func NewItem(id, name string, quantity, order int) *Item {
	return &Item{
		ID:       id,
		Name:     name,
		Quantity: quantity,
		Order:    order,
	}
}

// Validate performs basic validation on the Item
func (i *Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("item ID cannot be empty")
	}

	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("item name cannot be empty")
	}

	if i.Quantity < 0 {
		return fmt.Errorf("item quantity cannot be negative: %d", i.Quantity)
	}

	return nil
}

// String returns a string representation of the Item
func (i *Item) String() string {
	return fmt.Sprintf("Item{ID: %s, Name: %s, Quantity: %d}", i.ID, i.Name, i.Quantity)
}

// Equals compares two Item instances for equality
func (i *Item) Equals(other *Item) bool {
	if other == nil {
		return false
	}

	return i.ID == other.ID &&
		i.Name == other.Name &&
		i.Quantity == other.Quantity &&
		i.Order == other.Order
}

// QuantityObservation represents a single dated quantity record in an
// item's history. At most one observation per item per calendar day.
type QuantityObservation struct {
	ID       string    `json:"id"`
	ItemID   string    `json:"itemId"`
	Quantity int       `json:"quantity"`
	Date     time.Time `json:"date"`
}

// NewQuantityObservation creates a new QuantityObservation instance
func NewQuantityObservation(id, itemID string, quantity int, date time.Time) *QuantityObservation {
	return &QuantityObservation{
		ID:       id,
		ItemID:   itemID,
		Quantity: quantity,
		Date:     date,
	}
}

// Validate performs basic validation on the QuantityObservation
func (o *QuantityObservation) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("observation ID cannot be empty")
	}

	if strings.TrimSpace(o.ItemID) == "" {
		return fmt.Errorf("observation item ID cannot be empty")
	}

	if o.Quantity < 0 {
		return fmt.Errorf("observation quantity cannot be negative: %d", o.Quantity)
	}

	if o.Date.IsZero() {
		return fmt.Errorf("observation date cannot be zero")
	}

	return nil
}

// String returns a string representation of the QuantityObservation
func (o *QuantityObservation) String() string {
	return fmt.Sprintf("QuantityObservation{ID: %s, ItemID: %s, Quantity: %d, Date: %s}",
		o.ID, o.ItemID, o.Quantity, o.Date.Format("2006-01-02"))
}

// MarshalJSON implements custom JSON marshaling for QuantityObservation
func (o *QuantityObservation) MarshalJSON() ([]byte, error) {
	type Alias QuantityObservation
	return json.Marshal(&struct {
		Date string `json:"date"`
		*Alias
	}{
		Date:  o.Date.Format(time.RFC3339),
		Alias: (*Alias)(o),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for QuantityObservation
func (o *QuantityObservation) UnmarshalJSON(data []byte) error {
	type Alias QuantityObservation
	aux := &struct {
		Date string `json:"date"`
		*Alias
	}{
		Alias: (*Alias)(o),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	o.Date, err = time.Parse(time.RFC3339, aux.Date)
	if err != nil {
		return fmt.Errorf("invalid observation date format: %w", err)
	}

	return nil
}

// SameCalendarDay reports whether the observation falls on the same local
// calendar day as the given time.
func (o *QuantityObservation) SameCalendarDay(t time.Time) bool {
	oy, om, od := o.Date.Local().Date()
	ty, tm, td := t.Local().Date()
	return oy == ty && om == tm && od == td
}

// ImportLine is a single (name, quantity) pair extracted from pasted text.
// Lines are transient: produced by the parser, consumed by the engine.
type ImportLine struct {
	OriginalName string `json:"originalName"`
	Quantity     int    `json:"quantity"`
}

// Validate performs basic validation on the ImportLine
func (l *ImportLine) Validate() error {
	if strings.TrimSpace(l.OriginalName) == "" {
		return fmt.Errorf("import line name cannot be empty")
	}

	if l.Quantity <= 0 {
		return fmt.Errorf("import line quantity must be positive: %d", l.Quantity)
	}

	return nil
}

// String returns a string representation of the ImportLine
func (l *ImportLine) String() string {
	return fmt.Sprintf("ImportLine{Name: %s, Quantity: %d}", l.OriginalName, l.Quantity)
}

// ImportBatch is one user-initiated import: an optional batch-wide
// observation date plus the ordered lines to reconcile.
type ImportBatch struct {
	ObservationDate *time.Time   `json:"observationDate,omitempty"`
	Lines           []ImportLine `json:"lines"`
}

// NewImportBatch creates a new ImportBatch instance
func NewImportBatch(date *time.Time, lines []ImportLine) *ImportBatch {
	return &ImportBatch{
		ObservationDate: date,
		Lines:           lines,
	}
}

// HasDate reports whether the batch carries an observation date.
func (b *ImportBatch) HasDate() bool {
	return b.ObservationDate != nil && !b.ObservationDate.IsZero()
}

// IsEmpty reports whether the batch has no lines left to process.
func (b *ImportBatch) IsEmpty() bool {
	return len(b.Lines) == 0
}

// String returns a string representation of the ImportBatch
func (b *ImportBatch) String() string {
	date := "none"
	if b.HasDate() {
		date = b.ObservationDate.Format("2006-01-02")
	}
	return fmt.Sprintf("ImportBatch{Date: %s, Lines: %d}", date, len(b.Lines))
}
