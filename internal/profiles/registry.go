// Package profiles owns the UserProfile lifecycle: registration,
// updates, lookups, search, and the mirrored privacy settings record.
// No other component writes profile records.
package profiles

import (
	"context"
	"errors"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"lift-social/internal/apperr"
	"lift-social/internal/models"
	"lift-social/internal/privacy"
	"lift-social/internal/store"
)

// DefaultSearchLimit bounds search results when the caller passes no
// explicit limit.
const DefaultSearchLimit = 20

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,}$`)

// profileNamespace makes profile ids a deterministic function of the
// identity subject, so one subject can only ever map to one id.
var profileNamespace = uuid.MustParse("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d")

// Registry manages user profiles on top of the record store.
type Registry struct {
	store store.Store
}

// NewRegistry creates a profile registry.
func NewRegistry(s store.Store) *Registry {
	return &Registry{store: s}
}

// ProfileID derives the profile id for an identity subject.
func ProfileID(subjectID string) string {
	return uuid.NewSHA1(profileNamespace, []byte(subjectID)).String()
}

// CreateProfile registers a new profile for an identity subject.
//
// Username uniqueness is check-then-act against an eventually-consistent
// store: two registrations racing within the replication window can both
// pass the check. The window is accepted and documented; uniqueness is
// re-validated on every later username change, never on read.
func (r *Registry) CreateProfile(ctx context.Context, subjectID, username, displayName, bio string) (*models.UserProfile, error) {
	if subjectID == "" {
		return nil, apperr.New(apperr.KindNotAuthenticated, "no identity subject")
	}

	username = strings.ToLower(strings.TrimSpace(username))
	displayName = strings.TrimSpace(displayName)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if displayName == "" {
		return nil, apperr.New(apperr.KindInvalidData, "display name must not be empty")
	}

	id := ProfileID(subjectID)
	if _, err := r.store.Get(ctx, models.RecordTypeProfile, id); err == nil {
		return nil, apperr.New(apperr.KindAlreadyRegistered, "a profile already exists for this account")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.FromStore(err, "check registration")
	}

	taken, err := r.usernameTaken(ctx, username, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Newf(apperr.KindUsernameTaken, "username %q is taken", username)
	}

	now := time.Now().UTC()
	profile := &models.UserProfile{
		ID:          id,
		SubjectID:   subjectID,
		Username:    username,
		DisplayName: displayName,
		Bio:         bio,
		Visibility:  models.VisibilityEveryone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.store.Save(ctx, store.Record{
		Type:   models.RecordTypeProfile,
		ID:     profile.ID,
		Fields: profile.Fields(),
	}); err != nil {
		return nil, apperr.FromStore(err, "create profile")
	}

	// The settings mirror is secondary: readers fall back to defaults
	// when the record is missing, so a failure here must not fail the
	// registration.
	settings := models.DefaultPrivacySettings()
	settings.UpdatedAt = now
	if err := r.store.Save(ctx, store.Record{
		Type:   models.RecordTypeSettings,
		ID:     profile.ID,
		Fields: settings.Fields(),
	}); err != nil {
		log.Printf("profiles: failed to mirror default settings for %s: %v", profile.ID, err)
	}

	return profile, nil
}

// ProfileUpdate carries the fields of a partial profile update. Nil
// pointers leave the field untouched.
type ProfileUpdate struct {
	Username      *string
	DisplayName   *string
	Bio           *string
	Visibility    *models.Visibility
	TotalWorkouts *int
	TotalVolume   *float64
}

// UpdateProfile applies a partial update and bumps UpdatedAt. A username
// change re-runs the uniqueness check; a visibility change is written
// through to the privacy settings record.
func (r *Registry) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.UserProfile, error) {
	profile, err := r.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	previousVisibility := profile.Visibility

	if update.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*update.Username))
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		if username != profile.Username {
			taken, err := r.usernameTaken(ctx, username, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.Newf(apperr.KindUsernameTaken, "username %q is taken", username)
			}
			profile.Username = username
		}
	}
	if update.DisplayName != nil {
		displayName := strings.TrimSpace(*update.DisplayName)
		if displayName == "" {
			return nil, apperr.New(apperr.KindInvalidData, "display name must not be empty")
		}
		profile.DisplayName = displayName
	}
	if update.Bio != nil {
		profile.Bio = *update.Bio
	}
	if update.Visibility != nil {
		profile.Visibility = *update.Visibility
	}
	if update.TotalWorkouts != nil {
		profile.TotalWorkouts = *update.TotalWorkouts
	}
	if update.TotalVolume != nil {
		profile.TotalVolume = *update.TotalVolume
	}

	profile.UpdatedAt = time.Now().UTC()

	// The visibility field mirrors ProfileVisibility in the settings
	// record, and the settings record is what every read path enforces.
	// The mirror is written first and its failure fails the update: if
	// the profile save below then fails, the user ends up more private
	// than requested, never less.
	if update.Visibility != nil && *update.Visibility != previousVisibility {
		settings, err := r.SettingsFor(ctx, id)
		if err != nil {
			return nil, err
		}
		settings.ProfileVisibility = *update.Visibility
		settings.UpdatedAt = profile.UpdatedAt
		if err := r.store.Save(ctx, store.Record{
			Type:   models.RecordTypeSettings,
			ID:     id,
			Fields: settings.Fields(),
		}); err != nil {
			return nil, apperr.FromStore(err, "sync visibility")
		}
	}

	if err := r.store.Save(ctx, store.Record{
		Type:   models.RecordTypeProfile,
		ID:     profile.ID,
		Fields: profile.Fields(),
	}); err != nil {
		return nil, apperr.FromStore(err, "update profile")
	}
	return profile, nil
}

// GetProfile fetches a profile by id.
func (r *Registry) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	record, err := r.store.Get(ctx, models.RecordTypeProfile, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.KindProfileNotFound, "profile not found")
	}
	if err != nil {
		return nil, apperr.FromStore(err, "get profile")
	}
	return models.ProfileFromFields(record.ID, record.Fields)
}

// GetProfileBySubject fetches the profile owned by an identity subject.
func (r *Registry) GetProfileBySubject(ctx context.Context, subjectID string) (*models.UserProfile, error) {
	return r.GetProfile(ctx, ProfileID(subjectID))
}

// GetProfileByUsername fetches a profile by username, case-insensitively.
func (r *Registry) GetProfileByUsername(ctx context.Context, username string) (*models.UserProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	records, err := r.store.Query(ctx, models.RecordTypeProfile, store.Query{
		Filters: []store.Filter{store.Eq("username", username)},
		Limit:   1,
	})
	if err != nil {
		return nil, apperr.FromStore(err, "lookup username")
	}
	if len(records) == 0 {
		return nil, apperr.New(apperr.KindProfileNotFound, "profile not found")
	}
	return models.ProfileFromFields(records[0].ID, records[0].Fields)
}

// SearchProfiles matches the query string against usernames and display
// names, case-insensitively. The caller's own profile is excluded and
// results are ordered by username for determinism.
func (r *Registry) SearchProfiles(ctx context.Context, viewerID, query string, limit int) ([]*models.UserProfile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	seen := make(map[string]bool)
	var matched []*models.UserProfile

	for _, field := range []string{"username", "display_name"} {
		records, err := r.store.Query(ctx, models.RecordTypeProfile, store.Query{
			Filters: []store.Filter{store.Contains(field, query)},
			OrderBy: "username",
		})
		if err != nil {
			return nil, apperr.FromStore(err, "search profiles")
		}
		for _, record := range records {
			if record.ID == viewerID || seen[record.ID] {
				continue
			}
			profile, err := models.ProfileFromFields(record.ID, record.Fields)
			if err != nil {
				// A malformed record skips, never fails the batch.
				log.Printf("profiles: skipping malformed record %s: %v", record.ID, err)
				continue
			}
			seen[record.ID] = true
			matched = append(matched, profile)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Username < matched[j].Username
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// SettingsFor loads the owner's current privacy settings. A profile
// whose owner never saved settings gets the defaults.
func (r *Registry) SettingsFor(ctx context.Context, profileID string) (models.SocialPrivacySettings, error) {
	record, err := r.store.Get(ctx, models.RecordTypeSettings, profileID)
	if errors.Is(err, store.ErrNotFound) {
		return models.DefaultPrivacySettings(), nil
	}
	if err != nil {
		return models.SocialPrivacySettings{}, apperr.FromStore(err, "load settings")
	}
	return models.SettingsFromFields(record.Fields), nil
}

// UpdateSettings replaces the owner's privacy settings mirror.
func (r *Registry) UpdateSettings(ctx context.Context, profileID string, settings models.SocialPrivacySettings) error {
	if _, err := r.GetProfile(ctx, profileID); err != nil {
		return err
	}

	settings.UpdatedAt = time.Now().UTC()
	if err := r.store.Save(ctx, store.Record{
		Type:   models.RecordTypeSettings,
		ID:     profileID,
		Fields: settings.Fields(),
	}); err != nil {
		return apperr.FromStore(err, "update settings")
	}
	return nil
}

// ApplyVisibility returns a redacted copy of the profile with every
// field the viewer may not see zeroed out.
func ApplyVisibility(profile *models.UserProfile, visible privacy.FieldSet) *models.UserProfile {
	redacted := *profile
	if !visible.Bio {
		redacted.Bio = ""
	}
	if !visible.WorkoutCount {
		redacted.TotalWorkouts = 0
	}
	if !visible.TotalVolume {
		redacted.TotalVolume = 0
	}
	return &redacted
}

func (r *Registry) usernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	records, err := r.store.Query(ctx, models.RecordTypeProfile, store.Query{
		Filters: []store.Filter{store.Eq("username", username)},
	})
	if err != nil {
		return false, apperr.FromStore(err, "check username")
	}
	for _, record := range records {
		if record.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func validateUsername(username string) error {
	if len(username) < 3 {
		return apperr.New(apperr.KindInvalidData, "username must be at least 3 characters")
	}
	if !usernamePattern.MatchString(username) {
		return apperr.New(apperr.KindInvalidData, "username may only contain a-z, 0-9, and underscores")
	}
	return nil
}
