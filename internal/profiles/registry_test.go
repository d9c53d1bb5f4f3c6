package profiles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"lift-social/internal/apperr"
	"lift-social/internal/models"
	"lift-social/internal/store"
	"lift-social/internal/store/memstore"
)

// countingStore wraps a store and counts every remote call, so tests
// can assert that validation rejects bad input before any round trip.
type countingStore struct {
	store.Store
	calls int
}

func (c *countingStore) Save(ctx context.Context, record store.Record) error {
	c.calls++
	return c.Store.Save(ctx, record)
}

func (c *countingStore) Delete(ctx context.Context, recordType, id string) error {
	c.calls++
	return c.Store.Delete(ctx, recordType, id)
}

func (c *countingStore) Get(ctx context.Context, recordType, id string) (store.Record, error) {
	c.calls++
	return c.Store.Get(ctx, recordType, id)
}

func (c *countingStore) Query(ctx context.Context, recordType string, q store.Query) ([]store.Record, error) {
	c.calls++
	return c.Store.Query(ctx, recordType, q)
}

func TestRegistry_CreateProfile(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(memstore.New())

	profile, err := registry.CreateProfile(ctx, "subject-1", "Vin", "Vin Diesel", "lift heavy")
	assert.NoError(t, err)
	assert.Equal(t, "vin", profile.Username)
	assert.Equal(t, "Vin Diesel", profile.DisplayName)
	assert.Equal(t, ProfileID("subject-1"), profile.ID)
	assert.False(t, profile.CreatedAt.IsZero())

	t.Run("read your own write by username, case-insensitive", func(t *testing.T) {
		found, err := registry.GetProfileByUsername(ctx, "VIN")
		assert.NoError(t, err)
		assert.Equal(t, profile.ID, found.ID)
		assert.Equal(t, profile.DisplayName, found.DisplayName)
	})

	t.Run("second registration for same subject fails", func(t *testing.T) {
		_, err := registry.CreateProfile(ctx, "subject-1", "vin2", "Vin Again", "")
		assert.True(t, apperr.IsKind(err, apperr.KindAlreadyRegistered))
	})

	t.Run("username uniqueness is case-folded", func(t *testing.T) {
		_, err := registry.CreateProfile(ctx, "subject-2", "VIN", "Other Vin", "")
		assert.True(t, apperr.IsKind(err, apperr.KindUsernameTaken))
	})

	t.Run("default settings are mirrored", func(t *testing.T) {
		settings, err := registry.SettingsFor(ctx, profile.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.VisibilityEveryone, settings.ProfileVisibility)
		assert.True(t, settings.AutoShareWorkouts)
	})
}

func TestRegistry_CreateProfile_ValidationBeforeStoreCalls(t *testing.T) {
	ctx := context.Background()
	counting := &countingStore{Store: memstore.New()}
	registry := NewRegistry(counting)

	tests := []struct {
		name        string
		username    string
		displayName string
	}{
		{"short username", "ab", "Al"},
		{"bad charset", "not ok!", "Al"},
		{"empty display name", "goodname", "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := counting.calls
			_, err := registry.CreateProfile(ctx, "subject-x", tt.username, tt.displayName, "")
			assert.True(t, apperr.IsKind(err, apperr.KindInvalidData))
			assert.Equal(t, before, counting.calls, "validation must reject before any store call")
		})
	}
}

func TestRegistry_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(memstore.New())

	profile, err := registry.CreateProfile(ctx, "subject-1", "lifter_a", "Lifter A", "")
	assert.NoError(t, err)
	_, err = registry.CreateProfile(ctx, "subject-2", "lifter_b", "Lifter B", "")
	assert.NoError(t, err)

	t.Run("partial update touches only provided fields", func(t *testing.T) {
		bio := "new bio"
		updated, err := registry.UpdateProfile(ctx, profile.ID, ProfileUpdate{Bio: &bio})
		assert.NoError(t, err)
		assert.Equal(t, "new bio", updated.Bio)
		assert.Equal(t, "lifter_a", updated.Username)
		assert.Equal(t, "Lifter A", updated.DisplayName)
		assert.True(t, updated.UpdatedAt.After(profile.UpdatedAt) || updated.UpdatedAt.Equal(profile.UpdatedAt))
	})

	t.Run("username change re-checks uniqueness", func(t *testing.T) {
		taken := "lifter_b"
		_, err := registry.UpdateProfile(ctx, profile.ID, ProfileUpdate{Username: &taken})
		assert.True(t, apperr.IsKind(err, apperr.KindUsernameTaken))

		free := "lifter_a2"
		updated, err := registry.UpdateProfile(ctx, profile.ID, ProfileUpdate{Username: &free})
		assert.NoError(t, err)
		assert.Equal(t, "lifter_a2", updated.Username)
	})

	t.Run("visibility change writes through to settings", func(t *testing.T) {
		visibility := models.VisibilityNobody
		updated, err := registry.UpdateProfile(ctx, profile.ID, ProfileUpdate{Visibility: &visibility})
		assert.NoError(t, err)
		assert.Equal(t, models.VisibilityNobody, updated.Visibility)

		// The settings record is what read paths enforce, so the update
		// must land there too.
		settings, err := registry.SettingsFor(ctx, profile.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.VisibilityNobody, settings.ProfileVisibility)
	})

	t.Run("changing username to itself is allowed", func(t *testing.T) {
		same := "lifter_b"
		updated, err := registry.UpdateProfile(ctx, ProfileID("subject-2"), ProfileUpdate{Username: &same})
		assert.NoError(t, err)
		assert.Equal(t, "lifter_b", updated.Username)
	})

	t.Run("unknown profile", func(t *testing.T) {
		bio := "x"
		_, err := registry.UpdateProfile(ctx, "missing", ProfileUpdate{Bio: &bio})
		assert.True(t, apperr.IsKind(err, apperr.KindProfileNotFound))
	})
}

func TestRegistry_SearchProfiles(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(memstore.New())

	seed := []struct {
		subject     string
		username    string
		displayName string
	}{
		{"s1", "annika", "Annika Strong"},
		{"s2", "bruno", "Bruno Lifts"},
		{"s3", "anton", "Anton"},
		{"s4", "zed", "Anna Banana"},
	}
	for _, u := range seed {
		_, err := registry.CreateProfile(ctx, u.subject, u.username, u.displayName, "")
		assert.NoError(t, err)
	}

	t.Run("matches username and display name, username order", func(t *testing.T) {
		results, err := registry.SearchProfiles(ctx, "viewer", "an", 10)
		assert.NoError(t, err)

		usernames := make([]string, len(results))
		for i, p := range results {
			usernames[i] = p.Username
		}
		// "zed" matches via display name "Anna Banana".
		assert.Equal(t, []string{"annika", "anton", "zed"}, usernames)
	})

	t.Run("excludes the caller", func(t *testing.T) {
		results, err := registry.SearchProfiles(ctx, ProfileID("s1"), "an", 10)
		assert.NoError(t, err)
		for _, p := range results {
			assert.NotEqual(t, "annika", p.Username)
		}
	})

	t.Run("respects limit", func(t *testing.T) {
		results, err := registry.SearchProfiles(ctx, "viewer", "an", 2)
		assert.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("empty query returns nothing", func(t *testing.T) {
		results, err := registry.SearchProfiles(ctx, "viewer", "  ", 10)
		assert.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestRegistry_Settings(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	registry := NewRegistry(s)

	profile, err := registry.CreateProfile(ctx, "subject-1", "lifter", "Lifter", "")
	assert.NoError(t, err)

	t.Run("missing settings record falls back to defaults", func(t *testing.T) {
		assert.NoError(t, s.Delete(ctx, models.RecordTypeSettings, profile.ID))
		settings, err := registry.SettingsFor(ctx, profile.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.DefaultPrivacySettings().ProfileVisibility, settings.ProfileVisibility)
	})

	t.Run("update round-trips", func(t *testing.T) {
		settings := models.DefaultPrivacySettings()
		settings.ProfileVisibility = models.VisibilityFriendsOnly
		settings.ShowBio = false
		assert.NoError(t, registry.UpdateSettings(ctx, profile.ID, settings))

		loaded, err := registry.SettingsFor(ctx, profile.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.VisibilityFriendsOnly, loaded.ProfileVisibility)
		assert.False(t, loaded.ShowBio)
	})

	t.Run("settings for unknown profile fail", func(t *testing.T) {
		err := registry.UpdateSettings(ctx, "missing", models.DefaultPrivacySettings())
		assert.True(t, apperr.IsKind(err, apperr.KindProfileNotFound))
	})
}

func TestRegistry_SearchSkipsMalformedRecords(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	registry := NewRegistry(s)

	_, err := registry.CreateProfile(ctx, "s1", "goodname", "Good Name", "")
	assert.NoError(t, err)

	// A record missing its display name is malformed and must be
	// skipped, not fail the whole batch.
	assert.NoError(t, s.Save(ctx, store.Record{
		Type:   models.RecordTypeProfile,
		ID:     "broken",
		Fields: map[string]interface{}{"username": "goodish"},
	}))

	results, err := registry.SearchProfiles(ctx, "viewer", "good", 10)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "goodname", results[0].Username)
}
