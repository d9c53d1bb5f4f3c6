package models

import (
	"time"

	"lift-social/internal/apperr"
)

// RecordTypeProfile is the record type for user profiles.
const RecordTypeProfile = "profiles"

// Visibility controls who can discover and read a profile.
type Visibility string

const (
	VisibilityEveryone    Visibility = "everyone"
	VisibilityFriendsOnly Visibility = "friends_only"
	VisibilityNobody      Visibility = "nobody"
)

// UserProfile represents one person's public-facing identity. The id is
// derived 1:1 from the identity subject and never changes; the username
// is unique case-insensitively, best-effort (see store package docs).
type UserProfile struct {
	ID          string     `json:"id"`
	SubjectID   string     `json:"subject_id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Bio         string     `json:"bio,omitempty"`
	Visibility  Visibility `json:"visibility"`

	// Denormalized counters maintained by the owning client and repaired
	// periodically by the stats reconciler. Not recomputed on read.
	TotalWorkouts int     `json:"total_workouts"`
	TotalVolume   float64 `json:"total_volume"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Fields flattens the profile into a store record field map.
func (p *UserProfile) Fields() map[string]interface{} {
	return map[string]interface{}{
		"subject_id":     p.SubjectID,
		"username":       p.Username,
		"display_name":   p.DisplayName,
		"bio":            p.Bio,
		"visibility":     string(p.Visibility),
		"total_workouts": p.TotalWorkouts,
		"total_volume":   p.TotalVolume,
		"created_at":     p.CreatedAt,
		"updated_at":     p.UpdatedAt,
	}
}

// ProfileFromFields rebuilds a profile from a store record. A record
// missing a required field yields an InvalidData error so batch readers
// can skip it instead of failing the whole query.
func ProfileFromFields(id string, fields map[string]interface{}) (*UserProfile, error) {
	username, ok := stringField(fields, "username")
	if !ok || username == "" {
		return nil, apperr.Newf(apperr.KindInvalidData, "profile %s: missing username", id)
	}
	displayName, ok := stringField(fields, "display_name")
	if !ok || displayName == "" {
		return nil, apperr.Newf(apperr.KindInvalidData, "profile %s: missing display name", id)
	}

	subjectID, _ := stringField(fields, "subject_id")
	bio, _ := stringField(fields, "bio")
	visibility, _ := stringField(fields, "visibility")
	if visibility == "" {
		visibility = string(VisibilityEveryone)
	}

	return &UserProfile{
		ID:            id,
		SubjectID:     subjectID,
		Username:      username,
		DisplayName:   displayName,
		Bio:           bio,
		Visibility:    Visibility(visibility),
		TotalWorkouts: intField(fields, "total_workouts"),
		TotalVolume:   floatField(fields, "total_volume"),
		CreatedAt:     timeField(fields, "created_at"),
		UpdatedAt:     timeField(fields, "updated_at"),
	}, nil
}
