// Package memstore provides an in-process implementation of the record
// store adapter. It backs local development runs and the service test
// suites; unlike the remote store it is strongly consistent, so race
// windows the services tolerate in production simply never open here.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"lift-social/internal/store"
)

// Store is a mutex-guarded map of record type -> id -> record. Records
// are copied on the way in and out so callers can never alias internal
// state.
type Store struct {
	mu      sync.RWMutex
	records map[string]map[string]store.Record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		records: make(map[string]map[string]store.Record),
	}
}

// Save creates or replaces a single record.
func (s *Store) Save(ctx context.Context, record store.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.records[record.Type]
	if !ok {
		byID = make(map[string]store.Record)
		s.records[record.Type] = byID
	}
	byID[record.ID] = copyRecord(record)
	return nil
}

// Delete removes a record. Missing records are not an error.
func (s *Store) Delete(ctx context.Context, recordType, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if byID, ok := s.records[recordType]; ok {
		delete(byID, id)
	}
	return nil
}

// Get fetches one record by id.
func (s *Store) Get(ctx context.Context, recordType, id string) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return store.Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	byID, ok := s.records[recordType]
	if !ok {
		return store.Record{}, store.ErrNotFound
	}
	record, ok := byID[id]
	if !ok {
		return store.Record{}, store.ErrNotFound
	}
	return copyRecord(record), nil
}

// Query scans one record type, applying filters, sort, and limit.
func (s *Store) Query(ctx context.Context, recordType string, q store.Query) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var matched []store.Record
	for _, record := range s.records[recordType] {
		if matchesAll(record, q.Filters) {
			matched = append(matched, copyRecord(record))
		}
	}
	s.mu.RUnlock()

	if q.OrderBy != "" {
		sortRecords(matched, q.OrderBy, q.Descending)
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func matchesAll(record store.Record, filters []store.Filter) bool {
	for _, f := range filters {
		if !matches(record, f) {
			return false
		}
	}
	return true
}

func matches(record store.Record, f store.Filter) bool {
	value, ok := record.Fields[f.Field]
	if !ok {
		return false
	}

	switch f.Op {
	case store.OpEqual:
		return value == f.Value
	case store.OpContains:
		s, ok := value.(string)
		want, okWant := f.Value.(string)
		if !ok || !okWant {
			return false
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(want))
	case store.OpHasPrefix:
		s, ok := value.(string)
		want, okWant := f.Value.(string)
		if !ok || !okWant {
			return false
		}
		return strings.HasPrefix(strings.ToLower(s), strings.ToLower(want))
	case store.OpIn:
		s, ok := value.(string)
		if !ok {
			return false
		}
		for _, candidate := range f.Values {
			if s == candidate {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func sortRecords(records []store.Record, field string, descending bool) {
	sort.SliceStable(records, func(i, j int) bool {
		less := lessValue(records[i].Fields[field], records[j].Fields[field])
		if descending {
			return !less && !equalValue(records[i].Fields[field], records[j].Fields[field])
		}
		return less
	})
}

func lessValue(a, b interface{}) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Before(bv)
	case int:
		return lessNumeric(float64(av), b)
	case int64:
		return lessNumeric(float64(av), b)
	case float64:
		return lessNumeric(av, b)
	default:
		return false
	}
}

func lessNumeric(a float64, b interface{}) bool {
	switch bv := b.(type) {
	case int:
		return a < float64(bv)
	case int64:
		return a < float64(bv)
	case float64:
		return a < bv
	default:
		return false
	}
}

func equalValue(a, b interface{}) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}

func copyRecord(record store.Record) store.Record {
	fields := make(map[string]interface{}, len(record.Fields))
	for k, v := range record.Fields {
		if strs, ok := v.([]string); ok {
			v = append([]string(nil), strs...)
		}
		fields[k] = v
	}
	return store.Record{Type: record.Type, ID: record.ID, Fields: fields}
}
