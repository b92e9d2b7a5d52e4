package models

// PaymentType is the payment method selected for an entry.
// Any value other than PaymentCash and PaymentDeferred is kept as typed and
// treated as unstyled.
type PaymentType string

const (
	PaymentCash     PaymentType = "cash"
	PaymentDeferred PaymentType = "deferred"
	// PaymentUnspecified is the default option of the payment selector.
	PaymentUnspecified PaymentType = ""
)

// StyleClass returns the presentation class derived from the payment type:
// "cash", "deferred", or "" for every other value.
func (p PaymentType) StyleClass() string {
	switch p {
	case PaymentCash, PaymentDeferred:
		return string(p)
	default:
		return ""
	}
}

// Entry represents one transaction recorded for a customer.
type Entry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// CustomerName is the name of the owning customer.
	CustomerName string

	// Date is the transaction date as entered (free-form).
	Date string

	// Product is a free-text description; may be empty.
	Product string

	// Price is the amount in PKR as entered. It always parses as a
	// non-negative decimal (checked on submit).
	Price string

	// PaymentType is assigned when the entry is created. Updates keep it
	// unless restyling on update is enabled.
	PaymentType PaymentType

	// CreatedAt is the Unix timestamp when the entry was created.
	CreatedAt int64
}

// EntryKey identifies an entry within its customer.
type EntryKey struct {
	Date    string
	Product string
}

// Key returns the (date, product) key of the entry.
func (e *Entry) Key() EntryKey {
	return EntryKey{Date: e.Date, Product: e.Product}
}
