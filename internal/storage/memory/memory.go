// Package memory provides the in-memory implementation of the storage.Store interface.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/khata/internal/models"
	"github.com/mmynk/khata/internal/storage"
)

// Ensure MemoryStore implements storage.Store
var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore keeps the ledger as a map from customer name to customer,
// plus the order in which customers were created.
type MemoryStore struct {
	mu        sync.RWMutex
	customers map[string]*models.Customer
	order     []string
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{customers: make(map[string]*models.Customer)}
}

// Close is a no-op; the ledger is dropped with the store.
func (s *MemoryStore) Close() error {
	return nil
}

// CreateEntry appends an entry to the named customer.
func (s *MemoryStore) CreateEntry(ctx context.Context, customerName string, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	customer, ok := s.customers[customerName]
	if !ok {
		customer = &models.Customer{
			ID:        uuid.New().String(),
			Name:      customerName,
			CreatedAt: now,
		}
		s.customers[customerName] = customer
		s.order = append(s.order, customerName)
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = now
	}
	entry.CustomerName = customerName

	customer.Entries = append(customer.Entries, *entry)
	return nil
}

// UpdateEntry overwrites an entry in place.
func (s *MemoryStore) UpdateEntry(ctx context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, idx := s.locate(entry.ID)
	if customer == nil {
		return fmt.Errorf("entry %s: %w", entry.ID, storage.ErrNotFound)
	}

	stored := &customer.Entries[idx]
	stored.Date = entry.Date
	stored.Product = entry.Product
	stored.Price = entry.Price
	stored.PaymentType = entry.PaymentType
	return nil
}

// FindEntry looks up an entry by key within a customer.
func (s *MemoryStore) FindEntry(ctx context.Context, customerName string, key models.EntryKey) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[customerName]
	if !ok {
		return nil, nil
	}
	found := customer.FindEntry(key)
	if found == nil {
		return nil, nil
	}
	entry := *found
	return &entry, nil
}

// GetEntry retrieves an entry by ID.
func (s *MemoryStore) GetEntry(ctx context.Context, entryID string) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, idx := s.locate(entryID)
	if customer == nil {
		return nil, fmt.Errorf("entry %s: %w", entryID, storage.ErrNotFound)
	}
	entry := customer.Entries[idx]
	return &entry, nil
}

// DeleteEntry removes an entry and, when it was the last one, its customer.
func (s *MemoryStore) DeleteEntry(ctx context.Context, entryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, idx := s.locate(entryID)
	if customer == nil {
		return false, fmt.Errorf("entry %s: %w", entryID, storage.ErrNotFound)
	}

	customer.Entries = append(customer.Entries[:idx], customer.Entries[idx+1:]...)
	if len(customer.Entries) > 0 {
		return false, nil
	}

	delete(s.customers, customer.Name)
	for i, name := range s.order {
		if name == customer.Name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// ListCustomers returns deep copies of all customers in creation order.
func (s *MemoryStore) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]*models.Customer, 0, len(s.order))
	for _, name := range s.order {
		stored := s.customers[name]
		customer := *stored
		customer.Entries = append([]models.Entry(nil), stored.Entries...)
		customers = append(customers, &customer)
	}
	return customers, nil
}

// locate finds the customer and index holding an entry. Callers hold s.mu.
func (s *MemoryStore) locate(entryID string) (*models.Customer, int) {
	for _, name := range s.order {
		customer := s.customers[name]
		for i := range customer.Entries {
			if customer.Entries[i].ID == entryID {
				return customer, i
			}
		}
	}
	return nil, -1
}
