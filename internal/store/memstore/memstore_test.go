package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lift-social/internal/store"
)

func TestStore_SaveGetDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	record := store.Record{
		Type: "profiles",
		ID:   "p1",
		Fields: map[string]interface{}{
			"username": "vin",
			"tags":     []string{"a", "b"},
		},
	}
	assert.NoError(t, s.Save(ctx, record))

	got, err := s.Get(ctx, "profiles", "p1")
	assert.NoError(t, err)
	assert.Equal(t, "vin", got.Fields["username"])

	t.Run("records are copied, not aliased", func(t *testing.T) {
		got.Fields["username"] = "mutated"
		tags := got.Fields["tags"].([]string)
		tags[0] = "mutated"

		fresh, err := s.Get(ctx, "profiles", "p1")
		assert.NoError(t, err)
		assert.Equal(t, "vin", fresh.Fields["username"])
		assert.Equal(t, []string{"a", "b"}, fresh.Fields["tags"])
	})

	t.Run("missing record returns ErrNotFound", func(t *testing.T) {
		_, err := s.Get(ctx, "profiles", "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		assert.NoError(t, s.Delete(ctx, "profiles", "p1"))
		assert.NoError(t, s.Delete(ctx, "profiles", "p1"))

		_, err := s.Get(ctx, "profiles", "p1")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestStore_Query(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	workouts := []struct {
		id     string
		userID string
		name   string
		date   time.Time
	}{
		{"w1", "u1", "Push Day", base},
		{"w2", "u1", "Pull Day", base.Add(24 * time.Hour)},
		{"w3", "u2", "Leg Day", base.Add(48 * time.Hour)},
		{"w4", "u3", "Push Day", base.Add(72 * time.Hour)},
	}
	for _, w := range workouts {
		err := s.Save(ctx, store.Record{
			Type: "workouts",
			ID:   w.id,
			Fields: map[string]interface{}{
				"user_id":      w.userID,
				"workout_name": w.name,
				"date":         w.date,
			},
		})
		assert.NoError(t, err)
	}

	t.Run("equality filter", func(t *testing.T) {
		records, err := s.Query(ctx, "workouts", store.Query{
			Filters: []store.Filter{store.Eq("user_id", "u1")},
		})
		assert.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("substring match is case-insensitive", func(t *testing.T) {
		records, err := s.Query(ctx, "workouts", store.Query{
			Filters: []store.Filter{store.Contains("workout_name", "PUSH")},
		})
		assert.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("prefix match", func(t *testing.T) {
		records, err := s.Query(ctx, "workouts", store.Query{
			Filters: []store.Filter{{Field: "workout_name", Op: store.OpHasPrefix, Value: "leg"}},
		})
		assert.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, "w3", records[0].ID)
	})

	t.Run("field in set", func(t *testing.T) {
		records, err := s.Query(ctx, "workouts", store.Query{
			Filters: []store.Filter{store.In("user_id", []string{"u2", "u3"})},
		})
		assert.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("sort descending with limit", func(t *testing.T) {
		records, err := s.Query(ctx, "workouts", store.Query{
			OrderBy:    "date",
			Descending: true,
			Limit:      2,
		})
		assert.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Equal(t, "w4", records[0].ID)
		assert.Equal(t, "w3", records[1].ID)
	})

	t.Run("sort ascending", func(t *testing.T) {
		records, err := s.Query(ctx, "workouts", store.Query{OrderBy: "date"})
		assert.NoError(t, err)
		assert.Len(t, records, 4)
		assert.Equal(t, "w1", records[0].ID)
		assert.Equal(t, "w4", records[3].ID)
	})

	t.Run("filters are ANDed", func(t *testing.T) {
		records, err := s.Query(ctx, "workouts", store.Query{
			Filters: []store.Filter{
				store.Eq("user_id", "u1"),
				store.Contains("workout_name", "pull"),
			},
		})
		assert.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, "w2", records[0].ID)
	})
}

func TestStore_ContextCancellation(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Save(ctx, store.Record{Type: "profiles", ID: "p1", Fields: map[string]interface{}{}})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.Get(ctx, "profiles", "p1")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.Query(ctx, "profiles", store.Query{})
	assert.ErrorIs(t, err, context.Canceled)
}
