package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lift-social/internal/apperr"
)

// respondError maps the service error taxonomy onto HTTP statuses. The
// kind string is part of the API so clients can discriminate failures
// without parsing messages.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindNotAuthenticated:
		status = http.StatusUnauthorized
	case apperr.KindProfileNotFound, apperr.KindNotFollowing:
		status = http.StatusNotFound
	case apperr.KindUsernameTaken, apperr.KindAlreadyRegistered, apperr.KindAlreadyFollowing:
		status = http.StatusConflict
	case apperr.KindSelfFollow, apperr.KindInvalidData:
		status = http.StatusBadRequest
	case apperr.KindFollowNotPermitted:
		status = http.StatusForbidden
	case apperr.KindTimeout:
		status = http.StatusGatewayTimeout
	case apperr.KindStoreUnavailable:
		status = http.StatusBadGateway
	}

	message := "internal error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	c.JSON(status, gin.H{
		"error":   kind.String(),
		"message": message,
	})
}
