// Package models defines the core domain models for khata.
//
// # Models
//
//   - Customer: a named group of ledger entries (the "khata" of one customer)
//   - Entry: one transaction recorded for a customer
//   - PaymentType: how an entry was paid; drives styling and totals
//
// Customers are keyed by name (case-sensitive). Entries are keyed by their
// (date, product) pair, which is only unique within one customer.
//
// # Design Principles
//
// 1. **Explicit state**: the ledger is a plain data structure; pages are projections of it
// 2. **Text as entered**: dates, products and prices keep the text the user typed
// 3. **Avoid circular references**: entries refer to their customer by name, not by pointer
package models
