package ledger

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeQuery trims and lower-cases a search query.
func NormalizeQuery(query string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(query))
}

// Matches reports whether a customer name is visible for a normalized query.
// The empty query matches every name.
func Matches(name, normalizedQuery string) bool {
	return strings.Contains(cases.Lower(language.Und).String(name), normalizedQuery)
}

// Visibility is the search outcome for one customer.
type Visibility struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Visible      bool   `json:"visible"`
}
