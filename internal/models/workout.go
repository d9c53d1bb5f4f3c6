package models

import (
	"time"

	"lift-social/internal/apperr"
)

// RecordTypeWorkout is the record type for shared workouts.
const RecordTypeWorkout = "public_workouts"

// PublicWorkout is an immutable-once-created snapshot of a completed
// local workout, shared outward. Like and comment counts are plain
// counters; the subsystems behind them live elsewhere.
type PublicWorkout struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	WorkoutName   string    `json:"workout_name"`
	Date          time.Time `json:"date"`
	TotalVolume   float64   `json:"total_volume"`
	ExerciseCount int       `json:"exercise_count"`
	Duration      int       `json:"duration"` // seconds
	ExerciseNames []string  `json:"exercise_names,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	LikeCount     int       `json:"like_count"`
	CommentCount  int       `json:"comment_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// WorkoutSummary is the caller-supplied snapshot handed over by the
// local workout tracker when the owner shares a workout. Computed fields
// (volume, counts) are trusted from the client.
type WorkoutSummary struct {
	WorkoutName   string    `json:"workout_name"`
	Date          time.Time `json:"date"`
	TotalVolume   float64   `json:"total_volume"`
	ExerciseCount int       `json:"exercise_count"`
	Duration      int       `json:"duration"`
	ExerciseNames []string  `json:"exercise_names,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

// Fields flattens the workout into a store record field map.
func (w *PublicWorkout) Fields() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        w.UserID,
		"workout_name":   w.WorkoutName,
		"date":           w.Date,
		"total_volume":   w.TotalVolume,
		"exercise_count": w.ExerciseCount,
		"duration":       w.Duration,
		"exercise_names": w.ExerciseNames,
		"notes":          w.Notes,
		"like_count":     w.LikeCount,
		"comment_count":  w.CommentCount,
		"created_at":     w.CreatedAt,
	}
}

// WorkoutFromFields rebuilds a shared workout from a store record.
func WorkoutFromFields(id string, fields map[string]interface{}) (*PublicWorkout, error) {
	userID, ok := stringField(fields, "user_id")
	if !ok || userID == "" {
		return nil, apperr.Newf(apperr.KindInvalidData, "workout %s: missing user id", id)
	}
	name, ok := stringField(fields, "workout_name")
	if !ok || name == "" {
		return nil, apperr.Newf(apperr.KindInvalidData, "workout %s: missing name", id)
	}

	notes, _ := stringField(fields, "notes")

	return &PublicWorkout{
		ID:            id,
		UserID:        userID,
		WorkoutName:   name,
		Date:          timeField(fields, "date"),
		TotalVolume:   floatField(fields, "total_volume"),
		ExerciseCount: intField(fields, "exercise_count"),
		Duration:      intField(fields, "duration"),
		ExerciseNames: stringsField(fields, "exercise_names"),
		Notes:         notes,
		LikeCount:     intField(fields, "like_count"),
		CommentCount:  intField(fields, "comment_count"),
		CreatedAt:     timeField(fields, "created_at"),
	}, nil
}
