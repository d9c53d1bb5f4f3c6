package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lift-social/internal/identity"
	"lift-social/internal/models"
	"lift-social/internal/privacy"
	"lift-social/internal/profiles"
	"lift-social/internal/social"
)

// ProfileHandler handles HTTP requests for profiles and settings
type ProfileHandler struct {
	registry *profiles.Registry
	graph    *social.Graph
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(registry *profiles.Registry, graph *social.Graph) *ProfileHandler {
	return &ProfileHandler{registry: registry, graph: graph}
}

// createProfileRequest is the body of POST /api/profiles
type createProfileRequest struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Bio         string `json:"bio"`
}

// CreateProfile handles POST /api/profiles
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_data", "message": "invalid request body"})
		return
	}

	profile, err := h.registry.CreateProfile(c.Request.Context(), identity.SubjectID(c), req.Username, req.DisplayName, req.Bio)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// GetMyProfile handles GET /api/profiles/me
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	profile, err := h.registry.GetProfileBySubject(c.Request.Context(), identity.SubjectID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// updateProfileRequest is the body of PATCH /api/profiles/me. Absent
// fields stay untouched.
type updateProfileRequest struct {
	Username      *string  `json:"username"`
	DisplayName   *string  `json:"display_name"`
	Bio           *string  `json:"bio"`
	Visibility    *string  `json:"visibility"`
	TotalWorkouts *int     `json:"total_workouts"`
	TotalVolume   *float64 `json:"total_volume"`
}

// UpdateMyProfile handles PATCH /api/profiles/me
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_data", "message": "invalid request body"})
		return
	}

	update := profiles.ProfileUpdate{
		Username:      req.Username,
		DisplayName:   req.DisplayName,
		Bio:           req.Bio,
		TotalWorkouts: req.TotalWorkouts,
		TotalVolume:   req.TotalVolume,
	}
	if req.Visibility != nil {
		visibility := models.Visibility(*req.Visibility)
		update.Visibility = &visibility
	}

	profile, err := h.registry.UpdateProfile(c.Request.Context(), profiles.ProfileID(identity.SubjectID(c)), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetProfile handles GET /api/users/:id, redacted for the viewer
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	viewerID := profiles.ProfileID(identity.SubjectID(c))
	ownerID := c.Param("id")

	profile, err := h.registry.GetProfile(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	visible, err := h.visibleFields(c, viewerID, ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles.ApplyVisibility(profile, visible))
}

// GetProfileByUsername handles GET /api/profiles/username/:username
func (h *ProfileHandler) GetProfileByUsername(c *gin.Context) {
	viewerID := profiles.ProfileID(identity.SubjectID(c))

	profile, err := h.registry.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	visible, err := h.visibleFields(c, viewerID, profile.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles.ApplyVisibility(profile, visible))
}

// SearchProfiles handles GET /api/profiles/search?q=&limit=
func (h *ProfileHandler) SearchProfiles(c *gin.Context) {
	viewerID := profiles.ProfileID(identity.SubjectID(c))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	results, err := h.registry.SearchProfiles(c.Request.Context(), viewerID, c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	redacted := make([]*models.UserProfile, 0, len(results))
	for _, profile := range results {
		visible, err := h.visibleFields(c, viewerID, profile.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		redacted = append(redacted, profiles.ApplyVisibility(profile, visible))
	}

	c.JSON(http.StatusOK, gin.H{"profiles": redacted})
}

// GetMySettings handles GET /api/profiles/me/settings
func (h *ProfileHandler) GetMySettings(c *gin.Context) {
	settings, err := h.registry.SettingsFor(c.Request.Context(), profiles.ProfileID(identity.SubjectID(c)))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateMySettings handles PUT /api/profiles/me/settings
func (h *ProfileHandler) UpdateMySettings(c *gin.Context) {
	var settings models.SocialPrivacySettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_data", "message": "invalid request body"})
		return
	}

	if err := h.registry.UpdateSettings(c.Request.Context(), profiles.ProfileID(identity.SubjectID(c)), settings); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// visibleFields consults the privacy engine for one viewer/owner pair.
func (h *ProfileHandler) visibleFields(c *gin.Context, viewerID, ownerID string) (privacy.FieldSet, error) {
	ctx := c.Request.Context()

	settings, err := h.registry.SettingsFor(ctx, ownerID)
	if err != nil {
		return privacy.FieldSet{}, err
	}
	follows, err := h.graph.IsFollowing(ctx, viewerID, ownerID)
	if err != nil {
		return privacy.FieldSet{}, err
	}
	return privacy.VisibleFields(viewerID, ownerID, follows, settings), nil
}
