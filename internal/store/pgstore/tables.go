package pgstore

import (
	"time"

	"github.com/lib/pq"

	"lift-social/internal/models"
	"lift-social/internal/store"
)

// One gorm row type per record type. Column names follow gorm's
// snake_case convention and line up exactly with the field names the
// services use in store filters, so predicates translate 1:1 to WHERE
// clauses.

type profileRow struct {
	RecordID      string `gorm:"primaryKey"`
	SubjectID     string `gorm:"index"`
	Username      string `gorm:"index"`
	DisplayName   string
	Bio           string
	Visibility    string
	TotalWorkouts int
	TotalVolume   float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (profileRow) TableName() string { return models.RecordTypeProfile }

type relationshipRow struct {
	RecordID    string `gorm:"primaryKey"`
	FollowerID  string `gorm:"index"`
	FollowingID string `gorm:"index"`
	Status      string
	CreatedAt   time.Time
}

func (relationshipRow) TableName() string { return models.RecordTypeRelationship }

type workoutRow struct {
	RecordID      string `gorm:"primaryKey"`
	UserID        string `gorm:"index"`
	WorkoutName   string
	Date          time.Time `gorm:"index"`
	TotalVolume   float64
	ExerciseCount int
	Duration      int
	ExerciseNames pq.StringArray `gorm:"type:text[]"`
	Notes         string
	LikeCount     int
	CommentCount  int
	CreatedAt     time.Time
}

func (workoutRow) TableName() string { return models.RecordTypeWorkout }

type settingsRow struct {
	RecordID            string `gorm:"primaryKey"`
	ProfileVisibility   string
	WhoCanFollow        string
	ShowProfilePhoto    bool
	ShowBio             bool
	ShowWorkoutCount    bool
	ShowTotalVolume     bool
	ShowStreak          bool
	ShowPersonalRecords bool
	ShowExerciseNames   bool
	ShowSetDetails      bool
	ShowWorkoutNotes    bool
	AutoShareWorkouts   bool
	UpdatedAt           time.Time
}

func (settingsRow) TableName() string { return models.RecordTypeSettings }

// AllTables returns the row models for migration.
func AllTables() []interface{} {
	return []interface{}{
		&profileRow{},
		&relationshipRow{},
		&workoutRow{},
		&settingsRow{},
	}
}

func profileToRow(r store.Record) *profileRow {
	f := r.Fields
	return &profileRow{
		RecordID:      r.ID,
		SubjectID:     asString(f["subject_id"]),
		Username:      asString(f["username"]),
		DisplayName:   asString(f["display_name"]),
		Bio:           asString(f["bio"]),
		Visibility:    asString(f["visibility"]),
		TotalWorkouts: asInt(f["total_workouts"]),
		TotalVolume:   asFloat(f["total_volume"]),
		CreatedAt:     asTime(f["created_at"]),
		UpdatedAt:     asTime(f["updated_at"]),
	}
}

func (row *profileRow) record() store.Record {
	return store.Record{
		Type: models.RecordTypeProfile,
		ID:   row.RecordID,
		Fields: map[string]interface{}{
			"subject_id":     row.SubjectID,
			"username":       row.Username,
			"display_name":   row.DisplayName,
			"bio":            row.Bio,
			"visibility":     row.Visibility,
			"total_workouts": row.TotalWorkouts,
			"total_volume":   row.TotalVolume,
			"created_at":     row.CreatedAt,
			"updated_at":     row.UpdatedAt,
		},
	}
}

func relationshipToRow(r store.Record) *relationshipRow {
	f := r.Fields
	return &relationshipRow{
		RecordID:    r.ID,
		FollowerID:  asString(f["follower_id"]),
		FollowingID: asString(f["following_id"]),
		Status:      asString(f["status"]),
		CreatedAt:   asTime(f["created_at"]),
	}
}

func (row *relationshipRow) record() store.Record {
	return store.Record{
		Type: models.RecordTypeRelationship,
		ID:   row.RecordID,
		Fields: map[string]interface{}{
			"follower_id":  row.FollowerID,
			"following_id": row.FollowingID,
			"status":       row.Status,
			"created_at":   row.CreatedAt,
		},
	}
}

func workoutToRow(r store.Record) *workoutRow {
	f := r.Fields
	return &workoutRow{
		RecordID:      r.ID,
		UserID:        asString(f["user_id"]),
		WorkoutName:   asString(f["workout_name"]),
		Date:          asTime(f["date"]),
		TotalVolume:   asFloat(f["total_volume"]),
		ExerciseCount: asInt(f["exercise_count"]),
		Duration:      asInt(f["duration"]),
		ExerciseNames: pq.StringArray(asStrings(f["exercise_names"])),
		Notes:         asString(f["notes"]),
		LikeCount:     asInt(f["like_count"]),
		CommentCount:  asInt(f["comment_count"]),
		CreatedAt:     asTime(f["created_at"]),
	}
}

func (row *workoutRow) record() store.Record {
	return store.Record{
		Type: models.RecordTypeWorkout,
		ID:   row.RecordID,
		Fields: map[string]interface{}{
			"user_id":        row.UserID,
			"workout_name":   row.WorkoutName,
			"date":           row.Date,
			"total_volume":   row.TotalVolume,
			"exercise_count": row.ExerciseCount,
			"duration":       row.Duration,
			"exercise_names": []string(row.ExerciseNames),
			"notes":          row.Notes,
			"like_count":     row.LikeCount,
			"comment_count":  row.CommentCount,
			"created_at":     row.CreatedAt,
		},
	}
}

func settingsToRow(r store.Record) *settingsRow {
	f := r.Fields
	return &settingsRow{
		RecordID:            r.ID,
		ProfileVisibility:   asString(f["profile_visibility"]),
		WhoCanFollow:        asString(f["who_can_follow"]),
		ShowProfilePhoto:    asBool(f["show_profile_photo"]),
		ShowBio:             asBool(f["show_bio"]),
		ShowWorkoutCount:    asBool(f["show_workout_count"]),
		ShowTotalVolume:     asBool(f["show_total_volume"]),
		ShowStreak:          asBool(f["show_streak"]),
		ShowPersonalRecords: asBool(f["show_personal_records"]),
		ShowExerciseNames:   asBool(f["show_exercise_names"]),
		ShowSetDetails:      asBool(f["show_set_details"]),
		ShowWorkoutNotes:    asBool(f["show_workout_notes"]),
		AutoShareWorkouts:   asBool(f["auto_share_workouts"]),
		UpdatedAt:           asTime(f["updated_at"]),
	}
}

func (row *settingsRow) record() store.Record {
	return store.Record{
		Type: models.RecordTypeSettings,
		ID:   row.RecordID,
		Fields: map[string]interface{}{
			"profile_visibility":    row.ProfileVisibility,
			"who_can_follow":        row.WhoCanFollow,
			"show_profile_photo":    row.ShowProfilePhoto,
			"show_bio":              row.ShowBio,
			"show_workout_count":    row.ShowWorkoutCount,
			"show_total_volume":     row.ShowTotalVolume,
			"show_streak":           row.ShowStreak,
			"show_personal_records": row.ShowPersonalRecords,
			"show_exercise_names":   row.ShowExerciseNames,
			"show_set_details":      row.ShowSetDetails,
			"show_workout_notes":    row.ShowWorkoutNotes,
			"auto_share_workouts":   row.AutoShareWorkouts,
			"updated_at":            row.UpdatedAt,
		},
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func asTime(v interface{}) time.Time {
	t, _ := v.(time.Time)
	return t
}

func asStrings(v interface{}) []string {
	s, _ := v.([]string)
	return s
}
