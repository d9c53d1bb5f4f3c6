package models

import "time"

// RecordTypeSettings is the record type for mirrored privacy settings.
const RecordTypeSettings = "privacy_settings"

// FollowPolicy controls who may follow a profile.
type FollowPolicy string

const (
	FollowEveryone    FollowPolicy = "everyone"
	FollowFriendsOnly FollowPolicy = "friends_only"
	FollowApproval    FollowPolicy = "approval_required"
	FollowNobody      FollowPolicy = "nobody"
)

// SocialPrivacySettings is the per-user configuration consulted by the
// privacy policy engine. The record id is the owning profile's id. The
// settings live primarily on the owner's device and are mirrored here so
// read paths can enforce the owner's *current* choices.
type SocialPrivacySettings struct {
	ProfileVisibility Visibility   `json:"profile_visibility"`
	WhoCanFollow      FollowPolicy `json:"who_can_follow"`

	ShowProfilePhoto    bool `json:"show_profile_photo"`
	ShowBio             bool `json:"show_bio"`
	ShowWorkoutCount    bool `json:"show_workout_count"`
	ShowTotalVolume     bool `json:"show_total_volume"`
	ShowStreak          bool `json:"show_streak"`
	ShowPersonalRecords bool `json:"show_personal_records"`
	ShowExerciseNames   bool `json:"show_exercise_names"`
	ShowSetDetails      bool `json:"show_set_details"`
	ShowWorkoutNotes    bool `json:"show_workout_notes"`
	AutoShareWorkouts   bool `json:"auto_share_workouts"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultPrivacySettings returns the settings applied to a profile whose
// owner never touched the privacy screen: visible and sharing, with
// set-level detail held back.
func DefaultPrivacySettings() SocialPrivacySettings {
	return SocialPrivacySettings{
		ProfileVisibility:   VisibilityEveryone,
		WhoCanFollow:        FollowEveryone,
		ShowProfilePhoto:    true,
		ShowBio:             true,
		ShowWorkoutCount:    true,
		ShowTotalVolume:     true,
		ShowStreak:          true,
		ShowPersonalRecords: true,
		ShowExerciseNames:   true,
		ShowSetDetails:      false,
		ShowWorkoutNotes:    false,
		AutoShareWorkouts:   true,
	}
}

// Fields flattens the settings into a store record field map.
func (s *SocialPrivacySettings) Fields() map[string]interface{} {
	return map[string]interface{}{
		"profile_visibility":    string(s.ProfileVisibility),
		"who_can_follow":        string(s.WhoCanFollow),
		"show_profile_photo":    s.ShowProfilePhoto,
		"show_bio":              s.ShowBio,
		"show_workout_count":    s.ShowWorkoutCount,
		"show_total_volume":     s.ShowTotalVolume,
		"show_streak":           s.ShowStreak,
		"show_personal_records": s.ShowPersonalRecords,
		"show_exercise_names":   s.ShowExerciseNames,
		"show_set_details":      s.ShowSetDetails,
		"show_workout_notes":    s.ShowWorkoutNotes,
		"auto_share_workouts":   s.AutoShareWorkouts,
		"updated_at":            s.UpdatedAt,
	}
}

// SettingsFromFields rebuilds settings from a store record. Missing
// boolean gates fall back to the defaults rather than to zero values so
// a partially-written record does not silently hide everything.
func SettingsFromFields(fields map[string]interface{}) SocialPrivacySettings {
	defaults := DefaultPrivacySettings()

	visibility, _ := stringField(fields, "profile_visibility")
	if visibility == "" {
		visibility = string(defaults.ProfileVisibility)
	}
	whoCanFollow, _ := stringField(fields, "who_can_follow")
	if whoCanFollow == "" {
		whoCanFollow = string(defaults.WhoCanFollow)
	}

	return SocialPrivacySettings{
		ProfileVisibility:   Visibility(visibility),
		WhoCanFollow:        FollowPolicy(whoCanFollow),
		ShowProfilePhoto:    boolField(fields, "show_profile_photo", defaults.ShowProfilePhoto),
		ShowBio:             boolField(fields, "show_bio", defaults.ShowBio),
		ShowWorkoutCount:    boolField(fields, "show_workout_count", defaults.ShowWorkoutCount),
		ShowTotalVolume:     boolField(fields, "show_total_volume", defaults.ShowTotalVolume),
		ShowStreak:          boolField(fields, "show_streak", defaults.ShowStreak),
		ShowPersonalRecords: boolField(fields, "show_personal_records", defaults.ShowPersonalRecords),
		ShowExerciseNames:   boolField(fields, "show_exercise_names", defaults.ShowExerciseNames),
		ShowSetDetails:      boolField(fields, "show_set_details", defaults.ShowSetDetails),
		ShowWorkoutNotes:    boolField(fields, "show_workout_notes", defaults.ShowWorkoutNotes),
		AutoShareWorkouts:   boolField(fields, "auto_share_workouts", defaults.AutoShareWorkouts),
		UpdatedAt:           timeField(fields, "updated_at"),
	}
}
