package calculator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the fixed currency prefix used for every amount.
const Currency = "PKR"

// Line represents a single entry with the minimal information needed for totals.
type Line struct {
	Price       string // Price text as entered
	PaymentType string
}

// Totals represents the derived totals of one customer.
type Totals struct {
	Cash     decimal.Decimal // Sum over cash entries
	Grand    decimal.Decimal // Cash plus deferred entries
	Excluded decimal.Decimal // Entries of any other payment type; counted in neither total

	CashCount     int
	DeferredCount int
	OtherCount    int
}

// ParseError reports a price that is not a non-negative decimal amount.
type ParseError struct {
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid price %q: %s", e.Value, e.Reason)
}

// maxPriceDigits bounds the digits of a price, integer and fraction together.
const maxPriceDigits = 24

// pricePattern is plain decimal notation: no sign, no exponent.
var pricePattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)

// ParsePrice converts price text into a decimal amount.
// Surrounding whitespace is ignored. Only plain decimal notation is accepted,
// so "1e3" and negative amounts are rejected.
func ParsePrice(text string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return decimal.Zero, &ParseError{Value: text, Reason: "empty"}
	}
	if strings.HasPrefix(trimmed, "-") {
		return decimal.Zero, &ParseError{Value: text, Reason: "negative amount"}
	}
	if !pricePattern.MatchString(trimmed) {
		return decimal.Zero, &ParseError{Value: text, Reason: "not a number"}
	}
	if len(strings.Replace(trimmed, ".", "", 1)) > maxPriceDigits {
		return decimal.Zero, &ParseError{Value: text, Reason: "too many digits"}
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, &ParseError{Value: text, Reason: "not a number"}
	}
	if amount.IsNegative() {
		return decimal.Zero, &ParseError{Value: text, Reason: "negative amount"}
	}
	return amount, nil
}

// CalculateTotals computes the cash total and the grand total of one customer.
// Based on: cash = Σ cash prices, grand = cash + Σ deferred prices.
// Prices of other payment types are reported in Excluded only.
func CalculateTotals(lines []Line) (Totals, error) {
	totals := Totals{
		Cash:     decimal.Zero,
		Grand:    decimal.Zero,
		Excluded: decimal.Zero,
	}

	for _, line := range lines {
		amount, err := ParsePrice(line.Price)
		if err != nil {
			return Totals{}, err
		}

		switch line.PaymentType {
		case "cash":
			totals.Cash = totals.Cash.Add(amount)
			totals.CashCount++
		case "deferred":
			totals.Grand = totals.Grand.Add(amount)
			totals.DeferredCount++
		default:
			totals.Excluded = totals.Excluded.Add(amount)
			totals.OtherCount++
		}
	}

	// Grand so far only holds deferred amounts
	totals.Grand = totals.Grand.Add(totals.Cash)

	return totals, nil
}

// FormatAmount renders an amount as "PKR 0.00": fixed two decimals, no grouping.
func FormatAmount(amount decimal.Decimal) string {
	return Currency + " " + amount.StringFixed(2)
}

// CashLabel is the text of the cash total control.
func (t Totals) CashLabel() string {
	return "Total Cash Amount: " + FormatAmount(t.Cash)
}

// GrandLabel is the text of the grand total control.
func (t Totals) GrandLabel() string {
	return "Total Amount: " + FormatAmount(t.Grand)
}
