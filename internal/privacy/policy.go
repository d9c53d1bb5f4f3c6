// Package privacy decides which fields of a profile and its shared
// workouts are visible to a given viewer. Decisions are pure functions
// of (viewer, owner, owner's current settings); read paths consult them
// inline before data crosses the service boundary, so a workout shared
// under looser settings disappears from feeds as soon as the owner
// tightens them.
package privacy

import (
	"lift-social/internal/apperr"
	"lift-social/internal/models"
)

// FieldSet enumerates what a viewer may see of one owner. Username and
// DisplayName are always visible: even a fully private profile shows
// enough to say "this profile is private".
type FieldSet struct {
	Username    bool
	DisplayName bool

	ProfilePhoto    bool
	Bio             bool
	WorkoutCount    bool
	TotalVolume     bool
	Streak          bool
	PersonalRecords bool
	ExerciseNames   bool
	SetDetails      bool
	WorkoutNotes    bool

	// SharedWorkouts gates whether the owner's shared workouts appear in
	// this viewer's feeds at all.
	SharedWorkouts bool
}

// allVisible is the self-view: owners always see everything of their own.
func allVisible() FieldSet {
	return FieldSet{
		Username:        true,
		DisplayName:     true,
		ProfilePhoto:    true,
		Bio:             true,
		WorkoutCount:    true,
		TotalVolume:     true,
		Streak:          true,
		PersonalRecords: true,
		ExerciseNames:   true,
		SetDetails:      true,
		WorkoutNotes:    true,
		SharedWorkouts:  true,
	}
}

// nameOnly is the private view: identification fields only.
func nameOnly() FieldSet {
	return FieldSet{Username: true, DisplayName: true}
}

// VisibleFields applies the visibility rules in priority order:
// self-view bypass, then profile visibility (nobody / friends-only),
// then the per-field toggles. "Friend" here means the viewer follows
// the owner; the settings model does not say which direction counts, so
// this service standardizes on the follow direction the feed already
// uses.
func VisibleFields(viewerID, ownerID string, viewerFollowsOwner bool, s models.SocialPrivacySettings) FieldSet {
	if viewerID == ownerID {
		return allVisible()
	}

	switch s.ProfileVisibility {
	case models.VisibilityNobody:
		return nameOnly()
	case models.VisibilityFriendsOnly:
		if !viewerFollowsOwner {
			return nameOnly()
		}
	}

	return FieldSet{
		Username:        true,
		DisplayName:     true,
		ProfilePhoto:    s.ShowProfilePhoto,
		Bio:             s.ShowBio,
		WorkoutCount:    s.ShowWorkoutCount,
		TotalVolume:     s.ShowTotalVolume,
		Streak:          s.ShowStreak,
		PersonalRecords: s.ShowPersonalRecords,
		ExerciseNames:   s.ShowExerciseNames,
		SetDetails:      s.ShowSetDetails,
		WorkoutNotes:    s.ShowWorkoutNotes,
		// AutoShareWorkouts off means workouts should never have been
		// shared for that period; records that predate a settings change
		// are still hidden here, at read time.
		SharedWorkouts: s.AutoShareWorkouts,
	}
}

// CanFollow gates the follow operation against the target's policy.
// Approval-required and friends-only flows have no approval workflow
// wired yet, so both reject explicitly instead of silently allowing.
func CanFollow(s models.SocialPrivacySettings) error {
	switch s.WhoCanFollow {
	case models.FollowEveryone, "":
		return nil
	case models.FollowNobody:
		return apperr.New(apperr.KindFollowNotPermitted, "this user does not accept followers")
	case models.FollowApproval, models.FollowFriendsOnly:
		return apperr.New(apperr.KindFollowNotPermitted, "this user requires follow approval")
	default:
		return apperr.Newf(apperr.KindFollowNotPermitted, "unknown follow policy %q", s.WhoCanFollow)
	}
}
