package service

import (
	"github.com/mmynk/khata/internal/ledger"
	"github.com/mmynk/khata/internal/models"
)

// Entry is the wire form of a ledger entry.
type Entry struct {
	ID           string `json:"id"`
	CustomerName string `json:"customer_name"`
	Date         string `json:"date"`
	Product      string `json:"product"`
	Price        string `json:"price"`
	PaymentType  string `json:"payment_type"`
	CreatedAt    int64  `json:"created_at"`
}

// Customer is the wire form of a customer group.
type Customer struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Hidden  bool    `json:"hidden"`
	Entries []Entry `json:"entries"`
	Totals  Totals  `json:"totals"`
}

// Totals are amounts rendered with two decimals, plus the display labels.
type Totals struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	Cash          string `json:"cash"`
	Total         string `json:"total"`
	Excluded      string `json:"excluded"`
	CashLabel     string `json:"cash_label"`
	TotalLabel    string `json:"total_label"`
	CashCount     int    `json:"cash_count"`
	DeferredCount int    `json:"deferred_count"`
	OtherCount    int    `json:"other_count"`
}

type SubmitEntryRequest struct {
	Form ledger.FormInput `json:"form"`
}

type SubmitEntryResponse struct {
	Entry    Entry            `json:"entry"`
	Created  bool             `json:"created"`
	Form     ledger.FormInput `json:"form"`
	Totals   []Totals         `json:"totals"`
	Messages []string         `json:"messages,omitempty"`
}

type EditEntryRequest struct {
	EntryID string `json:"entry_id"`
}

type EditEntryResponse struct {
	Form ledger.FormInput `json:"form"`
}

type DeleteEntryRequest struct {
	EntryID string `json:"entry_id"`
	Confirm bool   `json:"confirm"`
}

type DeleteEntryResponse struct {
	Entry           Entry    `json:"entry"`
	Deleted         bool     `json:"deleted"`
	CustomerRemoved bool     `json:"customer_removed"`
	Totals          []Totals `json:"totals,omitempty"`
	Messages        []string `json:"messages,omitempty"`
}

type SearchCustomersRequest struct {
	Query string `json:"query"`
}

type SearchCustomersResponse struct {
	Customers []ledger.Visibility `json:"customers"`
}

type ListCustomersRequest struct {
	Query string `json:"query"`
}

type ListCustomersResponse struct {
	Customers []Customer `json:"customers"`
}

type GetTotalsRequest struct{}

type GetTotalsResponse struct {
	Totals []Totals `json:"totals"`
}

type AnnounceTotalRequest struct {
	CustomerID string `json:"customer_id"`
	Kind       string `json:"kind"`
}

type AnnounceTotalResponse struct {
	Label    string   `json:"label"`
	Messages []string `json:"messages,omitempty"`
}

func toEntry(e models.Entry) Entry {
	return Entry{
		ID:           e.ID,
		CustomerName: e.CustomerName,
		Date:         e.Date,
		Product:      e.Product,
		Price:        e.Price,
		PaymentType:  string(e.PaymentType),
		CreatedAt:    e.CreatedAt,
	}
}

func toTotals(t ledger.CustomerTotals) Totals {
	return Totals{
		CustomerID:    t.CustomerID,
		CustomerName:  t.CustomerName,
		Cash:          t.Cash.StringFixed(2),
		Total:         t.Grand.StringFixed(2),
		Excluded:      t.Excluded.StringFixed(2),
		CashLabel:     t.CashLabel(),
		TotalLabel:    t.GrandLabel(),
		CashCount:     t.CashCount,
		DeferredCount: t.DeferredCount,
		OtherCount:    t.OtherCount,
	}
}

func toTotalsList(all []ledger.CustomerTotals) []Totals {
	out := make([]Totals, len(all))
	for i, t := range all {
		out[i] = toTotals(t)
	}
	return out
}
