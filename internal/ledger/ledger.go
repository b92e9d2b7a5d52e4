// Package ledger implements the customer ledger: form submission, in-place
// updates keyed by (date, product), deletion, search and per-customer totals.
//
// Every operation runs to completion under one lock, so callers on concurrent
// goroutines see the same one-handler-at-a-time behavior as a single event loop.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/khata/internal/calculator"
	"github.com/mmynk/khata/internal/models"
	"github.com/mmynk/khata/internal/storage"
)

// ErrUnknownTotal is returned for a total kind other than TotalCash or TotalGrand.
var ErrUnknownTotal = errors.New("unknown total kind")

// TotalKind names one of the two total controls of a customer.
type TotalKind string

const (
	TotalCash  TotalKind = "cash"
	TotalGrand TotalKind = "total"
)

// Submission and deletion outcomes reported to the Observer.
const (
	SubmissionCreated    = "created"
	SubmissionUpdated    = "updated"
	SubmissionInvalid    = "invalid"
	SubmissionUnparsable = "unparsable"

	DeletionDeleted  = "deleted"
	DeletionDeclined = "declined"
)

// Observer receives ledger events, e.g. for metrics.
type Observer interface {
	ObserveSubmission(result string)
	ObserveDeletion(result string)
	ObserveSize(customers, entries int)
}

type nopObserver struct{}

func (nopObserver) ObserveSubmission(string) {}
func (nopObserver) ObserveDeletion(string)   {}
func (nopObserver) ObserveSize(int, int)     {}

// Ledger coordinates the store, validation and totals.
type Ledger struct {
	mu              sync.Mutex
	store           storage.Store
	validate        *validator.Validate
	observer        Observer
	restyleOnUpdate bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithRestyleOnUpdate controls whether updating an existing entry also
// replaces its payment type. When disabled (the default) an entry keeps the
// payment type it was created with and only its text fields change.
func WithRestyleOnUpdate(enabled bool) Option {
	return func(l *Ledger) { l.restyleOnUpdate = enabled }
}

// WithObserver installs an Observer.
func WithObserver(o Observer) Option {
	return func(l *Ledger) {
		if o != nil {
			l.observer = o
		}
	}
}

// New creates a Ledger on top of the given store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		validate: newValidator(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CustomerTotals are the derived totals of one customer.
type CustomerTotals struct {
	CustomerID   string
	CustomerName string
	calculator.Totals
}

// SubmitResult describes a successful submission.
type SubmitResult struct {
	Entry   models.Entry
	Created bool
	// Form is the state of the form after submission. Submit clears it.
	Form   FormInput
	Totals []CustomerTotals
}

// Submit validates the form, records the entry and recomputes all totals.
// On a missing required field the Notifier receives MessageMissingFields and a
// *ValidationError is returned; on a malformed price it receives
// MessageInvalidPrice and a *calculator.ParseError is returned. Nothing is
// changed in either case.
func (l *Ledger) Submit(ctx context.Context, in FormInput, n Notifier) (*SubmitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slog.Info("Submit request received",
		"name", in.Name,
		"date", in.Date,
		"product", in.Product,
		"payment_type", in.PaymentType,
	)

	if err := l.validateForm(in); err != nil {
		slog.Warn("Submit rejected", "error", err)
		l.observer.ObserveSubmission(SubmissionInvalid)
		notify(ctx, n, MessageMissingFields)
		return nil, err
	}
	if _, err := calculator.ParsePrice(in.Price); err != nil {
		slog.Warn("Submit rejected", "error", err)
		l.observer.ObserveSubmission(SubmissionUnparsable)
		notify(ctx, n, MessageInvalidPrice)
		return nil, err
	}

	entry, created, err := l.upsert(ctx, in)
	if err != nil {
		slog.Error("Submit failed", "error", err)
		return nil, err
	}
	if created {
		l.observer.ObserveSubmission(SubmissionCreated)
	} else {
		l.observer.ObserveSubmission(SubmissionUpdated)
	}

	totals, err := l.recomputeAll(ctx)
	if err != nil {
		slog.Error("Submit failed - could not recompute totals", "error", err)
		return nil, err
	}

	slog.Info("Entry recorded", "entry_id", entry.ID, "customer", entry.CustomerName, "created", created)

	return &SubmitResult{
		Entry:   *entry,
		Created: created,
		Form:    FormInput{},
		Totals:  totals,
	}, nil
}

// upsert creates the entry or overwrites the one with the same (date, product)
// key under the same customer.
func (l *Ledger) upsert(ctx context.Context, in FormInput) (*models.Entry, bool, error) {
	key := models.EntryKey{Date: in.Date, Product: in.Product}
	existing, err := l.store.FindEntry(ctx, in.Name, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up entry: %w", err)
	}

	if existing != nil {
		existing.Date = in.Date
		existing.Product = in.Product
		existing.Price = in.Price
		if l.restyleOnUpdate {
			existing.PaymentType = models.PaymentType(in.PaymentType)
		}
		if err := l.store.UpdateEntry(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("failed to update entry: %w", err)
		}
		return existing, false, nil
	}

	entry := &models.Entry{
		Date:        in.Date,
		Product:     in.Product,
		Price:       in.Price,
		PaymentType: models.PaymentType(in.PaymentType),
	}
	if err := l.store.CreateEntry(ctx, in.Name, entry); err != nil {
		return nil, false, fmt.Errorf("failed to create entry: %w", err)
	}
	return entry, true, nil
}

// Edit returns the form values for editing an entry: name, date, product and
// price. The payment type is not restored and stays at the default option.
func (l *Ledger) Edit(ctx context.Context, entryID string) (FormInput, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.store.GetEntry(ctx, entryID)
	if err != nil {
		return FormInput{}, err
	}
	return FormInput{
		Name:    entry.CustomerName,
		Date:    entry.Date,
		Product: entry.Product,
		Price:   entry.Price,
	}, nil
}

// DeleteResult describes the outcome of a delete request.
type DeleteResult struct {
	Entry           models.Entry
	Deleted         bool
	CustomerRemoved bool
	Totals          []CustomerTotals
}

// Delete asks the Confirmer with DeletePrompt and, on confirmation, removes
// the entry (and its customer when it was the last entry). Totals are
// recomputed afterwards. A nil Confirmer declines.
func (l *Ledger) Delete(ctx context.Context, entryID string, c Confirmer) (*DeleteResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slog.Info("Delete request received", "entry_id", entryID)

	entry, err := l.store.GetEntry(ctx, entryID)
	if err != nil {
		slog.Warn("Delete failed - entry not found", "entry_id", entryID, "error", err)
		return nil, err
	}

	if c == nil || !c.Confirm(ctx, DeletePrompt) {
		slog.Info("Delete declined", "entry_id", entryID)
		l.observer.ObserveDeletion(DeletionDeclined)
		return &DeleteResult{Entry: *entry}, nil
	}

	removed, err := l.store.DeleteEntry(ctx, entryID)
	if err != nil {
		slog.Error("Delete failed", "entry_id", entryID, "error", err)
		return nil, err
	}
	l.observer.ObserveDeletion(DeletionDeleted)

	totals, err := l.recomputeAll(ctx)
	if err != nil {
		slog.Error("Delete failed - could not recompute totals", "error", err)
		return nil, err
	}

	slog.Info("Entry deleted", "entry_id", entryID, "customer", entry.CustomerName, "customer_removed", removed)

	return &DeleteResult{
		Entry:           *entry,
		Deleted:         true,
		CustomerRemoved: removed,
		Totals:          totals,
	}, nil
}

// RecomputeAll derives the totals of every customer, in ledger order.
func (l *Ledger) RecomputeAll(ctx context.Context) ([]CustomerTotals, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recomputeAll(ctx)
}

func (l *Ledger) recomputeAll(ctx context.Context) ([]CustomerTotals, error) {
	customers, err := l.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	entries := 0
	all := make([]CustomerTotals, 0, len(customers))
	for _, customer := range customers {
		totals, err := totalsFor(customer)
		if err != nil {
			return nil, err
		}
		all = append(all, totals)
		entries += len(customer.Entries)
	}
	l.observer.ObserveSize(len(customers), entries)
	return all, nil
}

func totalsFor(customer *models.Customer) (CustomerTotals, error) {
	lines := make([]calculator.Line, len(customer.Entries))
	for i, entry := range customer.Entries {
		lines[i] = calculator.Line{
			Price:       entry.Price,
			PaymentType: string(entry.PaymentType),
		}
	}
	totals, err := calculator.CalculateTotals(lines)
	if err != nil {
		return CustomerTotals{}, fmt.Errorf("failed to calculate totals for %q: %w", customer.Name, err)
	}
	return CustomerTotals{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Totals:       totals,
	}, nil
}

// AnnounceTotal sends the label of one total control of a customer to the
// Notifier and returns it.
func (l *Ledger) AnnounceTotal(ctx context.Context, customerID string, kind TotalKind, n Notifier) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if kind != TotalCash && kind != TotalGrand {
		return "", fmt.Errorf("%w: %q", ErrUnknownTotal, kind)
	}

	customer, err := l.findCustomer(ctx, customerID)
	if err != nil {
		return "", err
	}
	totals, err := totalsFor(customer)
	if err != nil {
		return "", err
	}

	label := totals.GrandLabel()
	if kind == TotalCash {
		label = totals.CashLabel()
	}
	notify(ctx, n, label)
	return label, nil
}

// Search reports which customers are visible for the query.
func (l *Ledger) Search(ctx context.Context, query string) ([]Visibility, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	customers, err := l.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	normalized := NormalizeQuery(query)
	result := make([]Visibility, len(customers))
	for i, customer := range customers {
		result[i] = Visibility{
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			Visible:      Matches(customer.Name, normalized),
		}
	}
	return result, nil
}

// Page returns the projection of the current ledger for the query.
func (l *Ledger) Page(ctx context.Context, query string) (*Page, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	customers, err := l.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return Project(customers, query)
}

func (l *Ledger) findCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	customers, err := l.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	for _, customer := range customers {
		if customer.ID == customerID {
			return customer, nil
		}
	}
	return nil, fmt.Errorf("customer %s: %w", customerID, storage.ErrNotFound)
}
