// Package storage provides abstractions for ledger state storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/khata/internal/models"
)

// ErrNotFound is returned when an entry or customer does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (memory, SQLite)
// without changing the ledger logic.
//
// A store never holds a customer without entries: removing the last entry of
// a customer removes the customer in the same operation.
type Store interface {
	// CreateEntry appends a new entry to the named customer, creating the
	// customer (at the end of the ledger order) when it does not exist.
	// The entry.ID and entry.CreatedAt fields will be populated by the store.
	CreateEntry(ctx context.Context, customerName string, entry *models.Entry) error

	// UpdateEntry overwrites the date, product, price and payment type of an
	// existing entry, keeping its position. Returns ErrNotFound if missing.
	UpdateEntry(ctx context.Context, entry *models.Entry) error

	// FindEntry looks up an entry by its (date, product) key within a customer.
	// Returns nil, nil if there is no such entry.
	FindEntry(ctx context.Context, customerName string, key models.EntryKey) (*models.Entry, error)

	// GetEntry retrieves an entry by its ID.
	// Returns nil and ErrNotFound if the entry is not found.
	GetEntry(ctx context.Context, entryID string) (*models.Entry, error)

	// DeleteEntry removes an entry by its ID and reports whether its customer
	// was removed along with it. Returns ErrNotFound if missing.
	DeleteEntry(ctx context.Context, entryID string) (customerRemoved bool, err error)

	// ListCustomers returns every customer with its entries, in creation order.
	ListCustomers(ctx context.Context) ([]*models.Customer, error)

	// Close releases any resources held by the store.
	Close() error
}
