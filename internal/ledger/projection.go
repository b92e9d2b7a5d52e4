package ledger

import (
	"github.com/mmynk/khata/internal/calculator"
	"github.com/mmynk/khata/internal/models"
)

// Page is the view model of the whole ledger.
type Page struct {
	Query     string
	Customers []CustomerView
}

// VisibleCount returns how many customers match the query.
func (p *Page) VisibleCount() int {
	n := 0
	for _, c := range p.Customers {
		if !c.Hidden {
			n++
		}
	}
	return n
}

// CustomerView is one customer section: heading, entries and two totals.
type CustomerView struct {
	ID      string
	Name    string
	Hidden  bool
	Entries []EntryView
	Totals  CustomerTotals
}

// EntryView is one rendered entry row.
type EntryView struct {
	ID          string
	Date        string
	Product     string
	Price       string
	PaymentType string
	// Class is "cash", "deferred" or empty.
	Class string
}

// PriceLabel renders the price as entered, prefixed with the currency.
func (e EntryView) PriceLabel() string {
	return calculator.Currency + " " + e.Price
}

// Project builds the view model of the customers for a search query. Hidden
// customers are kept in the result; searching never drops entries.
func Project(customers []*models.Customer, query string) (*Page, error) {
	normalized := NormalizeQuery(query)
	page := &Page{
		Query:     query,
		Customers: make([]CustomerView, 0, len(customers)),
	}

	for _, customer := range customers {
		totals, err := totalsFor(customer)
		if err != nil {
			return nil, err
		}

		view := CustomerView{
			ID:      customer.ID,
			Name:    customer.Name,
			Hidden:  !Matches(customer.Name, normalized),
			Entries: make([]EntryView, len(customer.Entries)),
			Totals:  totals,
		}
		for i, entry := range customer.Entries {
			view.Entries[i] = EntryView{
				ID:          entry.ID,
				Date:        entry.Date,
				Product:     entry.Product,
				Price:       entry.Price,
				PaymentType: string(entry.PaymentType),
				Class:       entry.PaymentType.StyleClass(),
			}
		}
		page.Customers = append(page.Customers, view)
	}
	return page, nil
}
