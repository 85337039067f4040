package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestItem_Validate(t *testing.T) {
	tests := []struct {
		name        string
		item        *Item
		expectError bool
	}{
		{
			name:        "valid item",
			item:        NewItem("id-1", "Batata", 5, 0),
			expectError: false,
		},
		{
			name:        "zero quantity is valid",
			item:        NewItem("id-1", "Batata", 0, 0),
			expectError: false,
		},
		{
			name:        "empty ID",
			item:        NewItem("", "Batata", 5, 0),
			expectError: true,
		},
		{
			name:        "blank name",
			item:        NewItem("id-1", "   ", 5, 0),
			expectError: true,
		},
		{
			name:        "negative quantity",
			item:        NewItem("id-1", "Batata", -1, 0),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestItem_Equals(t *testing.T) {
	item := NewItem("id-1", "Batata", 5, 0)

	if !item.Equals(NewItem("id-1", "Batata", 5, 0)) {
		t.Error("expected identical items to be equal")
	}
	if item.Equals(NewItem("id-1", "Batata", 6, 0)) {
		t.Error("expected differing quantities to break equality")
	}
	if item.Equals(nil) {
		t.Error("expected nil comparison to be false")
	}
}

func TestQuantityObservation_Validate(t *testing.T) {
	date := time.Date(2025, 4, 5, 20, 0, 0, 0, time.Local)

	valid := NewQuantityObservation("obs-1", "id-1", 5, date)
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	noDate := NewQuantityObservation("obs-1", "id-1", 5, time.Time{})
	if err := noDate.Validate(); err == nil {
		t.Error("expected error for zero date")
	}

	negative := NewQuantityObservation("obs-1", "id-1", -2, date)
	if err := negative.Validate(); err == nil {
		t.Error("expected error for negative quantity")
	}
}

func TestQuantityObservation_SameCalendarDay(t *testing.T) {
	obs := NewQuantityObservation("obs-1", "id-1", 5,
		time.Date(2025, 4, 5, 20, 0, 0, 0, time.Local))

	// Same day, different times.
	if !obs.SameCalendarDay(time.Date(2025, 4, 5, 8, 30, 0, 0, time.Local)) {
		t.Error("expected same calendar day for different times")
	}
	if obs.SameCalendarDay(time.Date(2025, 4, 6, 20, 0, 0, 0, time.Local)) {
		t.Error("expected different days to not match")
	}
}

func TestQuantityObservation_JSONRoundTrip(t *testing.T) {
	obs := NewQuantityObservation("obs-1", "id-1", 5,
		time.Date(2025, 4, 5, 20, 0, 0, 0, time.UTC))

	data, err := json.Marshal(obs)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded QuantityObservation
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.ID != obs.ID || decoded.Quantity != obs.Quantity || !decoded.Date.Equal(obs.Date) {
		t.Errorf("round trip mismatch: got %v, want %v", &decoded, obs)
	}
}

func TestImportLine_Validate(t *testing.T) {
	valid := &ImportLine{OriginalName: "Batata", Quantity: 5}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	zero := &ImportLine{OriginalName: "Batata", Quantity: 0}
	if err := zero.Validate(); err == nil {
		t.Error("expected error for zero quantity")
	}

	blank := &ImportLine{OriginalName: " ", Quantity: 5}
	if err := blank.Validate(); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestImportBatch_HasDate(t *testing.T) {
	if NewImportBatch(nil, nil).HasDate() {
		t.Error("expected no date for nil pointer")
	}

	zero := time.Time{}
	if NewImportBatch(&zero, nil).HasDate() {
		t.Error("expected no date for zero time")
	}

	date := time.Date(2025, 4, 5, 20, 0, 0, 0, time.Local)
	batch := NewImportBatch(&date, []ImportLine{{OriginalName: "Batata", Quantity: 5}})
	if !batch.HasDate() {
		t.Error("expected date to be present")
	}
	if batch.IsEmpty() {
		t.Error("expected batch with lines to not be empty")
	}
}
