package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lift-social/internal/apperr"
	"lift-social/internal/models"
)

func TestVisibleFields_SelfViewBypass(t *testing.T) {
	settings := models.DefaultPrivacySettings()
	settings.ProfileVisibility = models.VisibilityNobody
	settings.ShowBio = false
	settings.AutoShareWorkouts = false

	visible := VisibleFields("owner", "owner", false, settings)

	assert.True(t, visible.Bio)
	assert.True(t, visible.SetDetails)
	assert.True(t, visible.SharedWorkouts)
}

func TestVisibleFields_NobodyHidesEverythingButName(t *testing.T) {
	settings := models.DefaultPrivacySettings()
	settings.ProfileVisibility = models.VisibilityNobody

	visible := VisibleFields("viewer", "owner", true, settings)

	assert.True(t, visible.Username)
	assert.True(t, visible.DisplayName)
	assert.False(t, visible.Bio)
	assert.False(t, visible.WorkoutCount)
	assert.False(t, visible.TotalVolume)
	assert.False(t, visible.SharedWorkouts)
}

func TestVisibleFields_FriendsOnly(t *testing.T) {
	settings := models.DefaultPrivacySettings()
	settings.ProfileVisibility = models.VisibilityFriendsOnly

	t.Run("viewer follows owner", func(t *testing.T) {
		visible := VisibleFields("viewer", "owner", true, settings)
		assert.True(t, visible.Bio)
		assert.True(t, visible.SharedWorkouts)
	})

	t.Run("viewer does not follow owner", func(t *testing.T) {
		visible := VisibleFields("viewer", "owner", false, settings)
		assert.True(t, visible.Username)
		assert.False(t, visible.Bio)
		assert.False(t, visible.SharedWorkouts)
	})
}

func TestVisibleFields_PerFieldGates(t *testing.T) {
	settings := models.DefaultPrivacySettings()
	settings.ShowBio = false
	settings.ShowTotalVolume = false
	settings.ShowExerciseNames = false

	visible := VisibleFields("viewer", "owner", true, settings)

	assert.False(t, visible.Bio)
	assert.False(t, visible.TotalVolume)
	assert.False(t, visible.ExerciseNames)
	assert.True(t, visible.WorkoutCount)
	assert.True(t, visible.ProfilePhoto)
}

func TestVisibleFields_AutoShareOffHidesWorkoutsAtReadTime(t *testing.T) {
	settings := models.DefaultPrivacySettings()
	settings.AutoShareWorkouts = false

	// Records shared before the setting changed still exist; the engine
	// hides them on every read.
	visible := VisibleFields("viewer", "owner", true, settings)
	assert.False(t, visible.SharedWorkouts)
}

func TestCanFollow(t *testing.T) {
	tests := []struct {
		policy   models.FollowPolicy
		wantKind apperr.Kind
	}{
		{models.FollowEveryone, apperr.KindUnknown},
		{models.FollowNobody, apperr.KindFollowNotPermitted},
		{models.FollowApproval, apperr.KindFollowNotPermitted},
		{models.FollowFriendsOnly, apperr.KindFollowNotPermitted},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			settings := models.DefaultPrivacySettings()
			settings.WhoCanFollow = tt.policy

			err := CanFollow(settings)
			if tt.wantKind == apperr.KindUnknown {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperr.IsKind(err, tt.wantKind))
			}
		})
	}
}
