package database

import "context"

// Row represents a single result row.
type Row interface {
	// Get returns the value of a column by label.
	// Supports dot notation for struct attributes and array positions.
	Get(field string) (interface{}, error)
	// Primitive returns the underlying data structure.
	Primitive() interface{}
}

// RowIterator allows iterating over rows in a table.
type RowIterator interface {
	// Next advances the iterator. Returns false if no more rows or error.
	Next() bool
	// Row returns the current row.
	Row() Row
	// Error returns any error that occurred during iteration.
	Error() error
	// Close releases resources.
	Close() error
}

// Table represents a dataset that can be scanned.
type Table interface {
	// Iterate returns a new iterator for scanning the table. ctx bounds
	// every fetch the iterator performs.
	Iterate(ctx context.Context) (RowIterator, error)
}
