package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lift-social/internal/identity"
	"lift-social/internal/profiles"
	"lift-social/internal/social"
)

// SocialHandler handles HTTP requests for follow relationships
type SocialHandler struct {
	graph *social.Graph
}

// NewSocialHandler creates a new social handler
func NewSocialHandler(graph *social.Graph) *SocialHandler {
	return &SocialHandler{graph: graph}
}

// Follow handles POST /api/users/:id/follow
func (h *SocialHandler) Follow(c *gin.Context) {
	followerID := profiles.ProfileID(identity.SubjectID(c))

	edge, err := h.graph.Follow(c.Request.Context(), followerID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, edge)
}

// Unfollow handles DELETE /api/users/:id/follow
func (h *SocialHandler) Unfollow(c *gin.Context) {
	followerID := profiles.ProfileID(identity.SubjectID(c))

	if err := h.graph.Unfollow(c.Request.Context(), followerID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// IsFollowing handles GET /api/users/:id/follow
func (h *SocialHandler) IsFollowing(c *gin.Context) {
	followerID := profiles.ProfileID(identity.SubjectID(c))

	following, err := h.graph.IsFollowing(c.Request.Context(), followerID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}

// ListFollowing handles GET /api/users/:id/following
func (h *SocialHandler) ListFollowing(c *gin.Context) {
	following, err := h.graph.ListFollowing(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following, "count": len(following)})
}

// ListFollowers handles GET /api/users/:id/followers
func (h *SocialHandler) ListFollowers(c *gin.Context) {
	followers, err := h.graph.ListFollowers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": followers, "count": len(followers)})
}
