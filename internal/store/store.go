// Package store abstracts the remote document store backing the social
// graph. The store supports single-record atomic writes and
// eventually-consistent queries only; there are no cross-record
// transactions and no compare-and-swap. Every check-then-act sequence
// built on top of it (username uniqueness, duplicate-edge prevention) is
// therefore advisory, with a race window bounded by the store's
// replication latency.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no record with the given id exists.
var ErrNotFound = errors.New("record not found")

// Record is a plain document: a type name, an id unique within that type,
// and a flat field map. Field values are strings, numbers, bools,
// times, or string slices.
type Record struct {
	Type   string
	ID     string
	Fields map[string]interface{}
}

// FilterOp is a predicate operator supported by Query.
type FilterOp int

const (
	// OpEqual matches records whose field equals the value exactly.
	OpEqual FilterOp = iota
	// OpContains matches string fields containing the value,
	// case-insensitively.
	OpContains
	// OpHasPrefix matches string fields starting with the value,
	// case-insensitively.
	OpHasPrefix
	// OpIn matches records whose field equals any of Values.
	OpIn
)

// Filter is a single field predicate. Filters in a query are ANDed.
type Filter struct {
	Field  string
	Op     FilterOp
	Value  interface{}
	Values []string // used by OpIn
}

// Query describes a bounded, ordered scan over one record type.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Store is the record store adapter. Implementations must honor context
// cancellation and deadlines on every call.
type Store interface {
	// Save creates or replaces a single record atomically.
	Save(ctx context.Context, record Record) error

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, recordType, id string) error

	// Get fetches one record by id, or ErrNotFound.
	Get(ctx context.Context, recordType, id string) (Record, error)

	// Query returns records matching all filters, ordered by OrderBy and
	// capped at Limit (0 means no cap). Results reflect the store's
	// eventual consistency: a record written moments ago may be missing.
	Query(ctx context.Context, recordType string, q Query) ([]Record, error)
}

// Eq is shorthand for an equality filter.
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// Contains is shorthand for a case-insensitive substring filter.
func Contains(field, value string) Filter {
	return Filter{Field: field, Op: OpContains, Value: value}
}

// In is shorthand for a field-in-set filter.
func In(field string, values []string) Filter {
	return Filter{Field: field, Op: OpIn, Values: values}
}
