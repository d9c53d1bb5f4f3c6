// Package feeds composes follow adjacency with shared workouts into a
// time-ordered, privacy-filtered activity feed. Composition happens at
// read time (fan-out-on-read): follower counts on a personal workout
// tracker are small, so joining per read is cheaper than maintaining
// per-follower feed copies on every share.
package feeds

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"lift-social/internal/apperr"
	"lift-social/internal/models"
	"lift-social/internal/privacy"
	"lift-social/internal/profiles"
	"lift-social/internal/social"
	"lift-social/internal/store"
)

// DefaultFeedLimit is used when the caller passes no limit.
const DefaultFeedLimit = 20

// MaxFeedLimit caps a single feed read.
const MaxFeedLimit = 50

// Service is the activity feed aggregator.
type Service struct {
	store    store.Store
	graph    *social.Graph
	registry *profiles.Registry
}

// NewService creates a feed service.
func NewService(s store.Store, graph *social.Graph, registry *profiles.Registry) *Service {
	return &Service{store: s, graph: graph, registry: registry}
}

// FeedEntry pairs a shared workout with its (already redacted) owner.
type FeedEntry struct {
	Profile *models.UserProfile   `json:"profile"`
	Workout *models.PublicWorkout `json:"workout"`
}

// ShareWorkout converts a caller-supplied workout snapshot into a stored
// PublicWorkout. Computed fields (volume, counts) are trusted from the
// owning client; only shape is validated.
func (s *Service) ShareWorkout(ctx context.Context, ownerID string, summary models.WorkoutSummary) (*models.PublicWorkout, error) {
	if summary.WorkoutName == "" {
		return nil, apperr.New(apperr.KindInvalidData, "workout name must not be empty")
	}
	if summary.TotalVolume < 0 || summary.ExerciseCount < 0 || summary.Duration < 0 {
		return nil, apperr.New(apperr.KindInvalidData, "workout counters must be non-negative")
	}

	owner, err := s.registry.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	settings, err := s.registry.SettingsFor(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !settings.AutoShareWorkouts {
		return nil, apperr.New(apperr.KindFollowNotPermitted, "workout sharing is disabled in privacy settings")
	}

	now := time.Now().UTC()
	date := summary.Date
	if date.IsZero() {
		date = now
	}

	workout := &models.PublicWorkout{
		ID:            uuid.New().String(),
		UserID:        ownerID,
		WorkoutName:   summary.WorkoutName,
		Date:          date,
		TotalVolume:   summary.TotalVolume,
		ExerciseCount: summary.ExerciseCount,
		Duration:      summary.Duration,
		ExerciseNames: summary.ExerciseNames,
		Notes:         summary.Notes,
		CreatedAt:     now,
	}
	if err := s.store.Save(ctx, store.Record{
		Type:   models.RecordTypeWorkout,
		ID:     workout.ID,
		Fields: workout.Fields(),
	}); err != nil {
		return nil, apperr.FromStore(err, "share workout")
	}

	// The profile counters are denormalized and best-effort: a failed
	// bump is logged and repaired later by the stats reconciler, never
	// surfaced as a failure of the share itself.
	totalWorkouts := owner.TotalWorkouts + 1
	totalVolume := owner.TotalVolume + summary.TotalVolume
	if _, err := s.registry.UpdateProfile(ctx, ownerID, profiles.ProfileUpdate{
		TotalWorkouts: &totalWorkouts,
		TotalVolume:   &totalVolume,
	}); err != nil {
		log.Printf("feeds: failed to bump stats for %s: %v", ownerID, err)
	}

	return workout, nil
}

// LoadFeed returns the viewer's activity feed, newest first.
//
// Privacy is evaluated at read time against each owner's *current*
// settings: a workout shared under looser settings that were later
// tightened is dropped here even though the record still exists.
func (s *Service) LoadFeed(ctx context.Context, viewerID string, limit int) ([]FeedEntry, error) {
	limit = clampLimit(limit)

	followingIDs, err := s.graph.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	// No follows means an empty feed; there is no public firehose.
	if len(followingIDs) == 0 {
		return nil, nil
	}

	following, err := s.graph.ResolveProfiles(ctx, followingIDs)
	if err != nil {
		return nil, err
	}
	profilesByID := make(map[string]*models.UserProfile, len(following))
	for _, profile := range following {
		profilesByID[profile.ID] = profile
	}

	records, err := s.store.Query(ctx, models.RecordTypeWorkout, store.Query{
		Filters:    []store.Filter{store.In("user_id", followingIDs)},
		OrderBy:    "date",
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		return nil, apperr.FromStore(err, "query feed")
	}

	settingsCache := make(map[string]models.SocialPrivacySettings)
	entries := make([]FeedEntry, 0, len(records))
	for _, record := range records {
		workout, err := models.WorkoutFromFields(record.ID, record.Fields)
		if err != nil {
			log.Printf("feeds: skipping malformed workout %s: %v", record.ID, err)
			continue
		}

		owner, ok := profilesByID[workout.UserID]
		if !ok {
			// Owner deleted between the adjacency query and now.
			continue
		}

		settings, ok := settingsCache[owner.ID]
		if !ok {
			settings, err = s.registry.SettingsFor(ctx, owner.ID)
			if err != nil {
				return nil, err
			}
			settingsCache[owner.ID] = settings
		}

		// Every feed owner is followed by the viewer by construction.
		visible := privacy.VisibleFields(viewerID, owner.ID, true, settings)
		if !visible.SharedWorkouts {
			continue
		}

		entries = append(entries, FeedEntry{
			Profile: profiles.ApplyVisibility(owner, visible),
			Workout: redactWorkout(workout, visible),
		})
	}

	// Entries are already in the query's date-descending order; privacy
	// filtering never reorders.
	return entries, nil
}

// LoadUserWorkouts returns one owner's shared workouts for a profile
// detail view, newest first, filtered against the viewer.
func (s *Service) LoadUserWorkouts(ctx context.Context, viewerID, ownerID string, limit int) ([]*models.PublicWorkout, error) {
	limit = clampLimit(limit)

	if _, err := s.registry.GetProfile(ctx, ownerID); err != nil {
		return nil, err
	}

	follows, err := s.graph.IsFollowing(ctx, viewerID, ownerID)
	if err != nil {
		return nil, err
	}
	settings, err := s.registry.SettingsFor(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	visible := privacy.VisibleFields(viewerID, ownerID, follows, settings)
	if !visible.SharedWorkouts {
		return nil, nil
	}

	records, err := s.store.Query(ctx, models.RecordTypeWorkout, store.Query{
		Filters:    []store.Filter{store.Eq("user_id", ownerID)},
		OrderBy:    "date",
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		return nil, apperr.FromStore(err, "query workouts")
	}

	workouts := make([]*models.PublicWorkout, 0, len(records))
	for _, record := range records {
		workout, err := models.WorkoutFromFields(record.ID, record.Fields)
		if err != nil {
			log.Printf("feeds: skipping malformed workout %s: %v", record.ID, err)
			continue
		}
		workouts = append(workouts, redactWorkout(workout, visible))
	}
	return workouts, nil
}

// redactWorkout clears the workout fields the viewer may not see.
func redactWorkout(workout *models.PublicWorkout, visible privacy.FieldSet) *models.PublicWorkout {
	redacted := *workout
	if !visible.ExerciseNames {
		redacted.ExerciseNames = nil
	}
	if !visible.WorkoutNotes {
		redacted.Notes = ""
	}
	if !visible.TotalVolume {
		redacted.TotalVolume = 0
	}
	return &redacted
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		return MaxFeedLimit
	}
	return limit
}
