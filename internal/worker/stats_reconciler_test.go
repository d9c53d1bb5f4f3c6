package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lift-social/internal/models"
	"lift-social/internal/profiles"
	"lift-social/internal/store"
	"lift-social/internal/store/memstore"
)

func saveWorkout(t *testing.T, s store.Store, ownerID, name string, volume float64) {
	t.Helper()
	workout := &models.PublicWorkout{
		ID:          name,
		UserID:      ownerID,
		WorkoutName: name,
		Date:        time.Now().UTC(),
		TotalVolume: volume,
		CreatedAt:   time.Now().UTC(),
	}
	assert.NoError(t, s.Save(context.Background(), store.Record{
		Type:   models.RecordTypeWorkout,
		ID:     workout.ID,
		Fields: workout.Fields(),
	}))
}

func TestStatsReconciler_RepairsDriftedCounters(t *testing.T) {
	s := memstore.New()
	registry := profiles.NewRegistry(s)
	reconciler := NewStatsReconciler(s, registry)
	ctx := context.Background()

	profile, err := registry.CreateProfile(ctx, "subject-drift", "drifter", "Drifter", "")
	assert.NoError(t, err)

	saveWorkout(t, s, profile.ID, "w1", 3000)
	saveWorkout(t, s, profile.ID, "w2", 2000)

	// Simulate a client that crashed mid-bump: counters disagree with
	// the stored workouts.
	staleWorkouts := 1
	staleVolume := 3000.0
	_, err = registry.UpdateProfile(ctx, profile.ID, profiles.ProfileUpdate{
		TotalWorkouts: &staleWorkouts,
		TotalVolume:   &staleVolume,
	})
	assert.NoError(t, err)

	assert.NoError(t, reconciler.ReconcileAll(ctx, 100))

	repaired, err := registry.GetProfile(ctx, profile.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, repaired.TotalWorkouts)
	assert.Equal(t, 5000.0, repaired.TotalVolume)
}

func TestStatsReconciler_LeavesAccurateCountersAlone(t *testing.T) {
	s := memstore.New()
	registry := profiles.NewRegistry(s)
	reconciler := NewStatsReconciler(s, registry)
	ctx := context.Background()

	profile, err := registry.CreateProfile(ctx, "subject-ok", "accurate", "Accurate", "")
	assert.NoError(t, err)

	saveWorkout(t, s, profile.ID, "w1", 1500)
	accurateWorkouts := 1
	accurateVolume := 1500.0
	updated, err := registry.UpdateProfile(ctx, profile.ID, profiles.ProfileUpdate{
		TotalWorkouts: &accurateWorkouts,
		TotalVolume:   &accurateVolume,
	})
	assert.NoError(t, err)

	assert.NoError(t, reconciler.ReconcileAll(ctx, 100))

	after, err := registry.GetProfile(ctx, profile.ID)
	assert.NoError(t, err)
	assert.Equal(t, updated.UpdatedAt, after.UpdatedAt, "no write when nothing drifted")
}

func TestStatsReconciler_SkipsMalformedWorkouts(t *testing.T) {
	s := memstore.New()
	registry := profiles.NewRegistry(s)
	reconciler := NewStatsReconciler(s, registry)
	ctx := context.Background()

	profile, err := registry.CreateProfile(ctx, "subject-mixed", "mixed", "Mixed", "")
	assert.NoError(t, err)

	saveWorkout(t, s, profile.ID, "good", 4000)
	assert.NoError(t, s.Save(ctx, store.Record{
		Type:   models.RecordTypeWorkout,
		ID:     "broken",
		Fields: map[string]interface{}{"user_id": profile.ID},
	}))

	assert.NoError(t, reconciler.ReconcileAll(ctx, 100))

	repaired, err := registry.GetProfile(ctx, profile.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, repaired.TotalWorkouts)
	assert.Equal(t, 4000.0, repaired.TotalVolume)
}

func TestWorkerService_StartStop(t *testing.T) {
	s := memstore.New()
	registry := profiles.NewRegistry(s)
	ws := NewWorkerService(s, registry, time.Hour)

	assert.False(t, ws.IsRunning())

	ws.Start()
	assert.True(t, ws.IsRunning())

	// Second start is a no-op.
	ws.Start()
	assert.True(t, ws.IsRunning())

	ws.Stop()
	assert.False(t, ws.IsRunning())

	// Second stop is a no-op.
	ws.Stop()
	assert.False(t, ws.IsRunning())
}
