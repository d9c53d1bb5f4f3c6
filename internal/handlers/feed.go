package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lift-social/internal/feeds"
	"lift-social/internal/identity"
	"lift-social/internal/models"
	"lift-social/internal/profiles"
)

// FeedHandler handles HTTP requests for the activity feed
type FeedHandler struct {
	feedService *feeds.Service
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedService *feeds.Service) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// shareWorkoutRequest is the body of POST /api/workouts
type shareWorkoutRequest struct {
	WorkoutName   string    `json:"workout_name" binding:"required"`
	Date          time.Time `json:"date"`
	TotalVolume   float64   `json:"total_volume"`
	ExerciseCount int       `json:"exercise_count"`
	Duration      int       `json:"duration"`
	ExerciseNames []string  `json:"exercise_names"`
	Notes         string    `json:"notes"`
}

// ShareWorkout handles POST /api/workouts
func (h *FeedHandler) ShareWorkout(c *gin.Context) {
	var req shareWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_data", "message": "invalid request body"})
		return
	}

	ownerID := profiles.ProfileID(identity.SubjectID(c))
	workout, err := h.feedService.ShareWorkout(c.Request.Context(), ownerID, models.WorkoutSummary{
		WorkoutName:   req.WorkoutName,
		Date:          req.Date,
		TotalVolume:   req.TotalVolume,
		ExerciseCount: req.ExerciseCount,
		Duration:      req.Duration,
		ExerciseNames: req.ExerciseNames,
		Notes:         req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// GetFeed handles GET /api/feed
func (h *FeedHandler) GetFeed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	viewerID := profiles.ProfileID(identity.SubjectID(c))
	entries, err := h.feedService.LoadFeed(c.Request.Context(), viewerID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// GetUserWorkouts handles GET /api/users/:id/workouts
func (h *FeedHandler) GetUserWorkouts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	viewerID := profiles.ProfileID(identity.SubjectID(c))
	workouts, err := h.feedService.LoadUserWorkouts(c.Request.Context(), viewerID, c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workouts": workouts, "count": len(workouts)})
}

// HealthCheck handles GET /health
func (h *FeedHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "lift-social",
	})
}
