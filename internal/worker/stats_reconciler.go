package worker

import (
	"context"
	"fmt"
	"log"

	"lift-social/internal/models"
	"lift-social/internal/profiles"
	"lift-social/internal/store"
)

// StatsReconciler repairs the denormalized totalWorkouts/totalVolume
// counters on profiles. The counters are client-maintained and trusted
// on the hot path; this fold over the owned shared workouts is the
// slow-path correction for clients that drifted or crashed mid-bump.
type StatsReconciler struct {
	store    store.Store
	registry *profiles.Registry
}

// NewStatsReconciler creates a reconciler.
func NewStatsReconciler(s store.Store, registry *profiles.Registry) *StatsReconciler {
	return &StatsReconciler{store: s, registry: registry}
}

// ReconcileAll folds shared workouts for up to batchSize profiles and
// repairs any drifted counters. Failures on individual profiles are
// logged and skipped; reconciliation is best-effort by design.
func (r *StatsReconciler) ReconcileAll(ctx context.Context, batchSize int) error {
	records, err := r.store.Query(ctx, models.RecordTypeProfile, store.Query{
		OrderBy: "updated_at",
		Limit:   batchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	repaired := 0
	for _, record := range records {
		profile, err := models.ProfileFromFields(record.ID, record.Fields)
		if err != nil {
			log.Printf("worker: skipping malformed profile %s: %v", record.ID, err)
			continue
		}

		changed, err := r.reconcileProfile(ctx, profile)
		if err != nil {
			log.Printf("worker: failed to reconcile stats for %s: %v", profile.ID, err)
			continue
		}
		if changed {
			repaired++
		}
	}

	if repaired > 0 {
		log.Printf("worker: repaired stats for %d profiles", repaired)
	}
	return nil
}

// reconcileProfile recomputes one profile's counters from its shared
// workouts and writes them back only when they drifted.
func (r *StatsReconciler) reconcileProfile(ctx context.Context, profile *models.UserProfile) (bool, error) {
	records, err := r.store.Query(ctx, models.RecordTypeWorkout, store.Query{
		Filters: []store.Filter{store.Eq("user_id", profile.ID)},
	})
	if err != nil {
		return false, err
	}

	totalWorkouts := 0
	totalVolume := 0.0
	for _, record := range records {
		workout, err := models.WorkoutFromFields(record.ID, record.Fields)
		if err != nil {
			log.Printf("worker: skipping malformed workout %s: %v", record.ID, err)
			continue
		}
		totalWorkouts++
		totalVolume += workout.TotalVolume
	}

	if totalWorkouts == profile.TotalWorkouts && totalVolume == profile.TotalVolume {
		return false, nil
	}

	_, err = r.registry.UpdateProfile(ctx, profile.ID, profiles.ProfileUpdate{
		TotalWorkouts: &totalWorkouts,
		TotalVolume:   &totalVolume,
	})
	return err == nil, err
}
