// Package storagetest holds the contract tests every storage.Store backend must pass.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/mmynk/khata/internal/models"
	"github.com/mmynk/khata/internal/storage"
)

// Run exercises a fresh store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()

	t.Run("CreateEntry generates ID and creates customer", func(t *testing.T) {
		store := newStore(t)
		entry := &models.Entry{Date: "2024-01-01", Product: "Rice", Price: "100", PaymentType: models.PaymentCash}

		if err := store.CreateEntry(ctx, "Ali", entry); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
		if entry.ID == "" {
			t.Error("Expected entry ID to be generated")
		}
		if entry.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		customers, err := store.ListCustomers(ctx)
		if err != nil {
			t.Fatalf("ListCustomers failed: %v", err)
		}
		if len(customers) != 1 {
			t.Fatalf("Expected 1 customer, got %d", len(customers))
		}
		if customers[0].Name != "Ali" || customers[0].ID == "" {
			t.Errorf("Unexpected customer: %+v", customers[0])
		}
		if len(customers[0].Entries) != 1 || customers[0].Entries[0].ID != entry.ID {
			t.Errorf("Unexpected entries: %+v", customers[0].Entries)
		}
	})

	t.Run("Customers and entries keep insertion order", func(t *testing.T) {
		store := newStore(t)
		mustCreate(t, store, "Zara", "2024-01-01", "Tea", "10")
		mustCreate(t, store, "Ali", "2024-01-02", "Sugar", "20")
		mustCreate(t, store, "Zara", "2024-01-03", "Milk", "30")

		customers, err := store.ListCustomers(ctx)
		if err != nil {
			t.Fatalf("ListCustomers failed: %v", err)
		}
		if len(customers) != 2 || customers[0].Name != "Zara" || customers[1].Name != "Ali" {
			t.Fatalf("Unexpected customer order: %v", names(customers))
		}
		if got := customers[0].Entries; len(got) != 2 || got[0].Product != "Tea" || got[1].Product != "Milk" {
			t.Errorf("Unexpected entry order: %+v", got)
		}
	})

	t.Run("Customer names are case-sensitive", func(t *testing.T) {
		store := newStore(t)
		mustCreate(t, store, "ali", "2024-01-01", "Tea", "10")
		mustCreate(t, store, "Ali", "2024-01-01", "Tea", "10")

		customers, _ := store.ListCustomers(ctx)
		if len(customers) != 2 {
			t.Errorf("Expected 2 customers, got %v", names(customers))
		}
	})

	t.Run("FindEntry matches date and product within customer", func(t *testing.T) {
		store := newStore(t)
		created := mustCreate(t, store, "Ali", "2024-01-01", "Tea", "10")
		mustCreate(t, store, "Bilal", "2024-01-01", "Tea", "10")

		found, err := store.FindEntry(ctx, "Ali", models.EntryKey{Date: "2024-01-01", Product: "Tea"})
		if err != nil {
			t.Fatalf("FindEntry failed: %v", err)
		}
		if found == nil || found.ID != created.ID {
			t.Fatalf("FindEntry returned %+v, want ID %s", found, created.ID)
		}

		missing, err := store.FindEntry(ctx, "Ali", models.EntryKey{Date: "2024-01-02", Product: "Tea"})
		if err != nil || missing != nil {
			t.Errorf("Expected nil, nil for missing key, got %+v, %v", missing, err)
		}

		missing, err = store.FindEntry(ctx, "Nobody", models.EntryKey{Date: "2024-01-01", Product: "Tea"})
		if err != nil || missing != nil {
			t.Errorf("Expected nil, nil for missing customer, got %+v, %v", missing, err)
		}
	})

	t.Run("UpdateEntry replaces fields in place", func(t *testing.T) {
		store := newStore(t)
		first := mustCreate(t, store, "Ali", "2024-01-01", "Tea", "10")
		mustCreate(t, store, "Ali", "2024-01-02", "Milk", "20")

		first.Price = "15"
		first.PaymentType = models.PaymentDeferred
		if err := store.UpdateEntry(ctx, first); err != nil {
			t.Fatalf("UpdateEntry failed: %v", err)
		}

		got, err := store.GetEntry(ctx, first.ID)
		if err != nil {
			t.Fatalf("GetEntry failed: %v", err)
		}
		if got.Price != "15" || got.PaymentType != models.PaymentDeferred || got.CustomerName != "Ali" {
			t.Errorf("Unexpected entry after update: %+v", got)
		}

		customers, _ := store.ListCustomers(ctx)
		if entries := customers[0].Entries; len(entries) != 2 || entries[0].ID != first.ID {
			t.Errorf("Update moved the entry: %+v", entries)
		}
	})

	t.Run("UpdateEntry and GetEntry report missing entries", func(t *testing.T) {
		store := newStore(t)
		err := store.UpdateEntry(ctx, &models.Entry{ID: "nonexistent-id"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateEntry error = %v, want ErrNotFound", err)
		}
		_, err = store.GetEntry(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetEntry error = %v, want ErrNotFound", err)
		}
		_, err = store.DeleteEntry(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("DeleteEntry error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteEntry removes customer with its last entry", func(t *testing.T) {
		store := newStore(t)
		first := mustCreate(t, store, "Ali", "2024-01-01", "Tea", "10")
		second := mustCreate(t, store, "Ali", "2024-01-02", "Milk", "20")

		removed, err := store.DeleteEntry(ctx, first.ID)
		if err != nil {
			t.Fatalf("DeleteEntry failed: %v", err)
		}
		if removed {
			t.Error("Customer removed while it still has entries")
		}

		removed, err = store.DeleteEntry(ctx, second.ID)
		if err != nil {
			t.Fatalf("DeleteEntry failed: %v", err)
		}
		if !removed {
			t.Error("Expected customer to be removed with its last entry")
		}

		customers, _ := store.ListCustomers(ctx)
		if len(customers) != 0 {
			t.Errorf("Expected no customers, got %v", names(customers))
		}

		// The name can be reused afterwards
		mustCreate(t, store, "Ali", "2024-01-03", "Tea", "5")
		customers, _ = store.ListCustomers(ctx)
		if len(customers) != 1 || len(customers[0].Entries) != 1 {
			t.Errorf("Unexpected state after re-adding customer: %+v", customers)
		}
	})

	t.Run("ListCustomers returns copies", func(t *testing.T) {
		store := newStore(t)
		mustCreate(t, store, "Ali", "2024-01-01", "Tea", "10")

		customers, _ := store.ListCustomers(ctx)
		customers[0].Entries[0].Price = "999"

		again, _ := store.ListCustomers(ctx)
		if again[0].Entries[0].Price != "10" {
			t.Error("Mutating a listed customer changed the store")
		}
	})
}

func mustCreate(t *testing.T, store storage.Store, customer, date, product, price string) *models.Entry {
	t.Helper()
	entry := &models.Entry{Date: date, Product: product, Price: price, PaymentType: models.PaymentCash}
	if err := store.CreateEntry(context.Background(), customer, entry); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	return entry
}

func names(customers []*models.Customer) []string {
	out := make([]string, len(customers))
	for i, c := range customers {
		out[i] = c.Name
	}
	return out
}
