package models

// Customer groups the entries recorded under one customer name.
// A customer only exists while it has at least one entry.
type Customer struct {
	// ID is the unique identifier for the customer (UUID format).
	// It is used as the element identifier of the customer's section in the page,
	// since a free-text name is not a valid identifier in general.
	ID string

	// Name is the customer name as typed in the form. It is the customer's key.
	Name string

	// Entries are the customer's entries in insertion order.
	Entries []Entry

	// CreatedAt is the Unix timestamp when the first entry was recorded.
	CreatedAt int64
}

// FindEntry returns the entry with the given key, or nil.
func (c *Customer) FindEntry(key EntryKey) *Entry {
	for i := range c.Entries {
		if c.Entries[i].Key() == key {
			return &c.Entries[i]
		}
	}
	return nil
}
