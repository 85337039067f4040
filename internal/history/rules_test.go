package history

import (
	"testing"
	"time"

	"stocklist-reconciliation-service/internal/models"
)

func obs(id string, date time.Time) *models.QuantityObservation {
	return &models.QuantityObservation{ID: id, ItemID: "item-1", Quantity: 1, Date: date}
}

func TestHasObservationOnDate(t *testing.T) {
	day := time.Date(2025, 4, 5, 20, 0, 0, 0, time.UTC)
	history := []*models.QuantityObservation{obs("1", day)}

	tests := []struct {
		name     string
		date     time.Time
		expected bool
	}{
		{"same instant", day, true},
		{"same day different time", time.Date(2025, 4, 5, 8, 30, 0, 0, time.UTC), true},
		{"previous day", time.Date(2025, 4, 4, 20, 0, 0, 0, time.UTC), false},
		{"next day", time.Date(2025, 4, 6, 0, 0, 1, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasObservationOnDate(history, tt.date); got != tt.expected {
				t.Errorf("HasObservationOnDate(%v) = %v, expected %v", tt.date, got, tt.expected)
			}
		})
	}
}

func TestHasObservationOnDate_EmptyHistory(t *testing.T) {
	if HasObservationOnDate(nil, time.Now()) {
		t.Error("Expected false for empty history")
	}
}

func TestLatestObservationDate(t *testing.T) {
	d1 := time.Date(2025, 4, 1, 20, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 4, 5, 20, 0, 0, 0, time.UTC)
	d3 := time.Date(2025, 3, 20, 20, 0, 0, 0, time.UTC)

	history := []*models.QuantityObservation{obs("1", d1), obs("2", d2), obs("3", d3)}

	latest, found := LatestObservationDate(history)
	if !found {
		t.Fatal("Expected a latest date")
	}
	if !latest.Equal(d2) {
		t.Errorf("Expected %v, got %v", d2, latest)
	}
}

func TestLatestObservationDate_Empty(t *testing.T) {
	_, found := LatestObservationDate(nil)
	if found {
		t.Error("Expected no latest date for empty history")
	}
}

func TestShouldOverwriteQuantity(t *testing.T) {
	earlier := time.Date(2025, 4, 1, 20, 0, 0, 0, time.UTC)
	later := time.Date(2025, 4, 5, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		latest     time.Time
		hasLatest  bool
		importDate time.Time
		expected   bool
	}{
		{"no history always overwrites", time.Time{}, false, earlier, true},
		{"newer import overwrites", earlier, true, later, true},
		{"older import does not", later, true, earlier, false},
		{"equal date does not", later, true, later, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldOverwriteQuantity(tt.latest, tt.hasLatest, tt.importDate)
			if got != tt.expected {
				t.Errorf("ShouldOverwriteQuantity() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestShouldRecordObservation(t *testing.T) {
	day := time.Date(2025, 4, 5, 20, 0, 0, 0, time.UTC)
	sameDayMorning := time.Date(2025, 4, 5, 9, 0, 0, 0, time.UTC)
	otherDay := time.Date(2025, 4, 6, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		history  []*models.QuantityObservation
		date     time.Time
		hasDate  bool
		expected bool
	}{
		{"empty history with date", nil, day, true, true},
		{"no date never records", nil, time.Time{}, false, false},
		{"same day blocks", []*models.QuantityObservation{obs("1", day)}, sameDayMorning, true, false},
		{"different day records", []*models.QuantityObservation{obs("1", day)}, otherDay, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldRecordObservation(tt.history, tt.date, tt.hasDate)
			if got != tt.expected {
				t.Errorf("ShouldRecordObservation() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestMergeObservations(t *testing.T) {
	d1 := time.Date(2025, 4, 1, 20, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 4, 2, 20, 0, 0, 0, time.UTC)
	d3 := time.Date(2025, 4, 3, 20, 0, 0, 0, time.UTC)

	source := []*models.QuantityObservation{obs("s1", d1), obs("s2", d2)}
	target := []*models.QuantityObservation{obs("t1", d2), obs("t2", d3)}

	keep, dropped := MergeObservations(source, target)

	// s2 collides with t1 on d2; the target's record wins.
	if dropped != 1 {
		t.Errorf("Expected 1 dropped observation, got %d", dropped)
	}
	if len(keep) != 1 {
		t.Fatalf("Expected 1 kept observation, got %d", len(keep))
	}
	if keep[0].ID != "s1" {
		t.Errorf("Expected s1 to survive, got %s", keep[0].ID)
	}
}

func TestMergeObservations_NoCollisions(t *testing.T) {
	d1 := time.Date(2025, 4, 1, 20, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 4, 2, 20, 0, 0, 0, time.UTC)

	source := []*models.QuantityObservation{obs("s1", d1)}
	target := []*models.QuantityObservation{obs("t1", d2)}

	keep, dropped := MergeObservations(source, target)
	if dropped != 0 || len(keep) != 1 {
		t.Errorf("Expected clean merge, got keep=%d dropped=%d", len(keep), dropped)
	}
}
