// Package pgstore implements the record store adapter on PostgreSQL via
// gorm. Each record type maps to its own table; the generic field-map
// records are converted to typed rows on the way in and back out.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lift-social/internal/models"
	"lift-social/internal/store"
)

// Store is a gorm-backed record store.
type Store struct {
	db *gorm.DB
}

// New creates a store on an established gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the backing tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllTables()...)
}

// Save upserts a single record by id.
func (s *Store) Save(ctx context.Context, record store.Record) error {
	row, err := toRow(record)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "record_id"}},
			UpdateAll: true,
		}).
		Create(row).Error
}

// Delete removes a record. Missing records are not an error.
func (s *Store) Delete(ctx context.Context, recordType, id string) error {
	model, err := emptyRow(recordType)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("record_id = ?", id).Delete(model).Error
}

// Get fetches one record by id.
func (s *Store) Get(ctx context.Context, recordType, id string) (store.Record, error) {
	model, err := emptyRow(recordType)
	if err != nil {
		return store.Record{}, err
	}

	err = s.db.WithContext(ctx).Where("record_id = ?", id).First(model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, err
	}
	return recordOf(model), nil
}

// Query translates the generic predicate into a WHERE chain. Filter
// field names are trusted: they come from service code, never from
// request input.
func (s *Store) Query(ctx context.Context, recordType string, q store.Query) ([]store.Record, error) {
	tx := s.db.WithContext(ctx)
	for _, f := range q.Filters {
		switch f.Op {
		case store.OpEqual:
			tx = tx.Where(f.Field+" = ?", f.Value)
		case store.OpContains:
			tx = tx.Where(f.Field+" ILIKE ?", "%"+escapeLike(asString(f.Value))+"%")
		case store.OpHasPrefix:
			tx = tx.Where(f.Field+" ILIKE ?", escapeLike(asString(f.Value))+"%")
		case store.OpIn:
			tx = tx.Where(f.Field+" IN ?", f.Values)
		default:
			return nil, fmt.Errorf("pgstore: unsupported filter op %d", f.Op)
		}
	}

	if q.OrderBy != "" {
		direction := "ASC"
		if q.Descending {
			direction = "DESC"
		}
		tx = tx.Order(q.OrderBy + " " + direction)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	return findAll(tx, recordType)
}

func findAll(tx *gorm.DB, recordType string) ([]store.Record, error) {
	switch recordType {
	case models.RecordTypeProfile:
		var rows []profileRow
		if err := tx.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]store.Record, len(rows))
		for i := range rows {
			out[i] = rows[i].record()
		}
		return out, nil
	case models.RecordTypeRelationship:
		var rows []relationshipRow
		if err := tx.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]store.Record, len(rows))
		for i := range rows {
			out[i] = rows[i].record()
		}
		return out, nil
	case models.RecordTypeWorkout:
		var rows []workoutRow
		if err := tx.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]store.Record, len(rows))
		for i := range rows {
			out[i] = rows[i].record()
		}
		return out, nil
	case models.RecordTypeSettings:
		var rows []settingsRow
		if err := tx.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]store.Record, len(rows))
		for i := range rows {
			out[i] = rows[i].record()
		}
		return out, nil
	default:
		return nil, fmt.Errorf("pgstore: unknown record type %q", recordType)
	}
}

func toRow(record store.Record) (interface{}, error) {
	switch record.Type {
	case models.RecordTypeProfile:
		return profileToRow(record), nil
	case models.RecordTypeRelationship:
		return relationshipToRow(record), nil
	case models.RecordTypeWorkout:
		return workoutToRow(record), nil
	case models.RecordTypeSettings:
		return settingsToRow(record), nil
	default:
		return nil, fmt.Errorf("pgstore: unknown record type %q", record.Type)
	}
}

func emptyRow(recordType string) (interface{}, error) {
	switch recordType {
	case models.RecordTypeProfile:
		return &profileRow{}, nil
	case models.RecordTypeRelationship:
		return &relationshipRow{}, nil
	case models.RecordTypeWorkout:
		return &workoutRow{}, nil
	case models.RecordTypeSettings:
		return &settingsRow{}, nil
	default:
		return nil, fmt.Errorf("pgstore: unknown record type %q", recordType)
	}
}

func recordOf(model interface{}) store.Record {
	switch row := model.(type) {
	case *profileRow:
		return row.record()
	case *relationshipRow:
		return row.record()
	case *workoutRow:
		return row.record()
	case *settingsRow:
		return row.record()
	default:
		return store.Record{}
	}
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
