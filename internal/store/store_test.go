package store

import (
	"context"
	"testing"
	"time"

	apperrors "stocklist-reconciliation-service/pkg/errors"
)

// storeUnderTest runs the contract tests against both backends.
func storeUnderTest(t *testing.T) map[string]Store {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore,
	}
}

func TestStore_CreateAndListItems(t *testing.T) {
	for name, s := range storeUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			id1, err := s.CreateItem(ctx, "Batata", 5)
			if err != nil {
				t.Fatalf("CreateItem failed: %v", err)
			}
			id2, err := s.CreateItem(ctx, "Arroz", 2)
			if err != nil {
				t.Fatalf("CreateItem failed: %v", err)
			}

			items, err := s.ListItems(ctx)
			if err != nil {
				t.Fatalf("ListItems failed: %v", err)
			}

			if len(items) != 2 {
				t.Fatalf("Expected 2 items, got %d", len(items))
			}

			// Insertion order is display order.
			if items[0].ID != id1 || items[1].ID != id2 {
				t.Errorf("Expected order [%s %s], got [%s %s]", id1, id2, items[0].ID, items[1].ID)
			}
			if items[0].Name != "Batata" || items[0].Quantity != 5 {
				t.Errorf("Unexpected first item: %v", items[0])
			}
		})
	}
}

func TestStore_SetQuantity(t *testing.T) {
	for name, s := range storeUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			id, _ := s.CreateItem(ctx, "Batata", 5)
			if err := s.SetQuantity(ctx, id, 8); err != nil {
				t.Fatalf("SetQuantity failed: %v", err)
			}

			item, err := s.GetItem(ctx, id)
			if err != nil {
				t.Fatalf("GetItem failed: %v", err)
			}
			if item.Quantity != 8 {
				t.Errorf("Expected quantity 8, got %d", item.Quantity)
			}
		})
	}
}

func TestStore_SetQuantity_MissingItem(t *testing.T) {
	for name, s := range storeUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			err := s.SetQuantity(context.Background(), "no-such-item", 1)
			if err == nil {
				t.Fatal("Expected error for missing item")
			}

			appErr, ok := apperrors.AsReconcilerError(err)
			if !ok || appErr.Code != apperrors.CodeItemNotFound {
				t.Errorf("Expected item_not_found, got %v", err)
			}
		})
	}
}

func TestStore_NegativeQuantityRejected(t *testing.T) {
	for name, s := range storeUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := s.CreateItem(ctx, "Batata", -1); err == nil {
				t.Error("Expected CreateItem to reject negative quantity")
			}

			id, _ := s.CreateItem(ctx, "Batata", 0)
			if err := s.SetQuantity(ctx, id, -5); err == nil {
				t.Error("Expected SetQuantity to reject negative quantity")
			}
		})
	}
}

func TestStore_DeleteItem(t *testing.T) {
	for name, s := range storeUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			id, _ := s.CreateItem(ctx, "Batata", 5)
			if err := s.DeleteItem(ctx, id); err != nil {
				t.Fatalf("DeleteItem failed: %v", err)
			}

			if _, err := s.GetItem(ctx, id); err == nil {
				t.Error("Expected GetItem to fail after delete")
			}

			if err := s.DeleteItem(ctx, id); err == nil {
				t.Error("Expected second delete to fail")
			}
		})
	}
}

func TestStore_ObservationsRoundTrip(t *testing.T) {
	for name, s := range storeUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			id, _ := s.CreateItem(ctx, "Batata", 5)
			d1 := time.Date(2025, 4, 1, 20, 0, 0, 0, time.UTC)
			d2 := time.Date(2025, 4, 3, 20, 0, 0, 0, time.UTC)

			// Append out of order; listing sorts by date.
			if err := s.AppendObservation(ctx, id, 3, d2); err != nil {
				t.Fatalf("AppendObservation failed: %v", err)
			}
			if err := s.AppendObservation(ctx, id, 5, d1); err != nil {
				t.Fatalf("AppendObservation failed: %v", err)
			}

			history, err := s.ListObservations(ctx, id)
			if err != nil {
				t.Fatalf("ListObservations failed: %v", err)
			}

			if len(history) != 2 {
				t.Fatalf("Expected 2 observations, got %d", len(history))
			}
			if !history[0].Date.Equal(d1) || !history[1].Date.Equal(d2) {
				t.Errorf("History not sorted by date: %v then %v", history[0].Date, history[1].Date)
			}
			if history[0].Quantity != 5 || history[1].Quantity != 3 {
				t.Errorf("Unexpected quantities: %d, %d", history[0].Quantity, history[1].Quantity)
			}
		})
	}
}

func TestStore_AppendObservation_MissingItem(t *testing.T) {
	for name, s := range storeUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			err := s.AppendObservation(context.Background(), "no-such-item", 1,
				time.Date(2025, 4, 1, 20, 0, 0, 0, time.UTC))
			if err == nil {
				t.Fatal("Expected error for missing item")
			}
		})
	}
}

func TestStore_ReparentObservations(t *testing.T) {
	for name, s := range storeUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			source, _ := s.CreateItem(ctx, "Batatas", 1)
			target, _ := s.CreateItem(ctx, "Batata", 5)

			d1 := time.Date(2025, 4, 1, 20, 0, 0, 0, time.UTC)
			d2 := time.Date(2025, 4, 2, 20, 0, 0, 0, time.UTC)
			d3 := time.Date(2025, 4, 3, 20, 0, 0, 0, time.UTC)

			s.AppendObservation(ctx, source, 1, d1)
			s.AppendObservation(ctx, source, 2, d2)
			s.AppendObservation(ctx, target, 5, d3)

			if err := s.ReparentObservations(ctx, source, target); err != nil {
				t.Fatalf("ReparentObservations failed: %v", err)
			}

			targetHistory, _ := s.ListObservations(ctx, target)
			if len(targetHistory) != 3 {
				t.Errorf("Expected 3 observations on target, got %d", len(targetHistory))
			}

			sourceHistory, _ := s.ListObservations(ctx, source)
			if len(sourceHistory) != 0 {
				t.Errorf("Expected source history empty, got %d", len(sourceHistory))
			}

			// Reparenting does not touch the target's quantity.
			item, _ := s.GetItem(ctx, target)
			if item.Quantity != 5 {
				t.Errorf("Expected target quantity 5, got %d", item.Quantity)
			}
		})
	}
}

func TestStore_DeleteObservation(t *testing.T) {
	for name, s := range storeUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			id, _ := s.CreateItem(ctx, "Batata", 5)
			s.AppendObservation(ctx, id, 5, time.Date(2025, 4, 1, 20, 0, 0, 0, time.UTC))

			history, _ := s.ListObservations(ctx, id)
			if len(history) != 1 {
				t.Fatalf("Expected 1 observation, got %d", len(history))
			}

			if err := s.DeleteObservation(ctx, history[0].ID); err != nil {
				t.Fatalf("DeleteObservation failed: %v", err)
			}

			history, _ = s.ListObservations(ctx, id)
			if len(history) != 0 {
				t.Errorf("Expected empty history after delete, got %d", len(history))
			}
		})
	}
}
