// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
//
// The database always lives in memory: the ledger is not meant to outlive the
// process. All access goes through a single connection, since every new
// connection to ":memory:" would open a separate, empty database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/khata/internal/models"
	"github.com/mmynk/khata/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using an in-memory SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// New opens a fresh in-memory database and runs migrations.
func New(ctx context.Context) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection, dropping the ledger.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateEntry inserts an entry, creating its customer when needed.
func (s *SQLiteStore) CreateEntry(ctx context.Context, customerName string, entry *models.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}
	entry.CustomerName = customerName

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var customerID string
	err = tx.QueryRowContext(ctx, "SELECT id FROM customers WHERE name = ?", customerName).Scan(&customerID)
	if errors.Is(err, sql.ErrNoRows) {
		customerID = uuid.New().String()
		_, err = tx.ExecContext(ctx,
			"INSERT INTO customers (id, name, created_at) VALUES (?, ?, ?)",
			customerID, customerName, entry.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert customer: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to get customer: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (id, customer_id, date, product, price, payment_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, customerID, entry.Date, entry.Product, entry.Price, string(entry.PaymentType), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateEntry overwrites an entry in place.
func (s *SQLiteStore) UpdateEntry(ctx context.Context, entry *models.Entry) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE entries SET date = ?, product = ?, price = ?, payment_type = ? WHERE id = ?",
		entry.Date, entry.Product, entry.Price, string(entry.PaymentType), entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("entry %s: %w", entry.ID, storage.ErrNotFound)
	}
	return nil
}

const entryColumns = `e.id, c.name, e.date, e.product, e.price, e.payment_type, e.created_at`

// FindEntry looks up an entry by key within a customer.
func (s *SQLiteStore) FindEntry(ctx context.Context, customerName string, key models.EntryKey) (*models.Entry, error) {
	entry, err := scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+`
		 FROM entries e JOIN customers c ON c.id = e.customer_id
		 WHERE c.name = ? AND e.date = ? AND e.product = ?`,
		customerName, key.Date, key.Product,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Entry not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}
	return entry, nil
}

// GetEntry retrieves an entry by ID.
func (s *SQLiteStore) GetEntry(ctx context.Context, entryID string) (*models.Entry, error) {
	entry, err := scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+`
		 FROM entries e JOIN customers c ON c.id = e.customer_id
		 WHERE e.id = ?`,
		entryID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", entryID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// DeleteEntry removes an entry and, when it was the last one, its customer.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, entryID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var customerID string
	err = tx.QueryRowContext(ctx, "SELECT customer_id FROM entries WHERE id = ?", entryID).Scan(&customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("entry %s: %w", entryID, storage.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to check entry existence: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", entryID); err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", err)
	}

	var remaining int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE customer_id = ?", customerID).Scan(&remaining); err != nil {
		return false, fmt.Errorf("failed to count entries: %w", err)
	}

	removed := remaining == 0
	if removed {
		if _, err := tx.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", customerID); err != nil {
			return false, fmt.Errorf("failed to delete customer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return removed, nil
}

// ListCustomers retrieves all customers and their entries in creation order.
func (s *SQLiteStore) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM customers ORDER BY seq",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	byID := make(map[string]*models.Customer)
	for rows.Next() {
		customer := &models.Customer{}
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
		byID[customer.ID] = customer
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	rows.Close()

	entryRows, err := s.db.QueryContext(ctx,
		`SELECT e.customer_id, `+entryColumns+`
		 FROM entries e JOIN customers c ON c.id = e.customer_id
		 ORDER BY e.seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var customerID, paymentType string
		var entry models.Entry
		if err := entryRows.Scan(&customerID, &entry.ID, &entry.CustomerName, &entry.Date,
			&entry.Product, &entry.Price, &paymentType, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entry.PaymentType = models.PaymentType(paymentType)
		if customer, ok := byID[customerID]; ok {
			customer.Entries = append(customer.Entries, entry)
		}
	}
	if err := entryRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return customers, nil
}

func scanEntry(row *sql.Row) (*models.Entry, error) {
	var entry models.Entry
	var paymentType string
	if err := row.Scan(&entry.ID, &entry.CustomerName, &entry.Date, &entry.Product,
		&entry.Price, &paymentType, &entry.CreatedAt); err != nil {
		return nil, err
	}
	entry.PaymentType = models.PaymentType(paymentType)
	return &entry, nil
}
