package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snacksync/snacksync-api/internal/middleware"
	"github.com/snacksync/snacksync-api/internal/models"
	"github.com/snacksync/snacksync-api/internal/youtube"
)

// ActivityController exposes the user's liked-video history
type ActivityController struct {
	activity *youtube.Service
}

// NewActivityController creates a new instance of ActivityController
func NewActivityController(activity *youtube.Service) *ActivityController {
	return &ActivityController{activity: activity}
}

// GetYouTubeActivity godoc
// @Summary Get liked YouTube videos
// @Description Fetches the authenticated user's most recently liked videos, refreshing the stored token if needed
// @Tags activity
// @Produce json
// @Success 200 {array} youtube.Video
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 429 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Router /api/youtube_activity [get]
func (ac *ActivityController) GetYouTubeActivity(c *gin.Context) {
	googleID, ok := middleware.GoogleID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
		return
	}

	videos, err := ac.activity.FetchLikedVideos(c.Request.Context(), googleID)
	if err != nil {
		status, apiErr := fetchErrorResponse(err)
		c.JSON(status, apiErr)
		return
	}
	c.JSON(http.StatusOK, videos)
}

// fetchErrorResponse maps each typed fetch outcome onto its own HTTP status
func fetchErrorResponse(err error) (int, models.APIError) {
	switch {
	case errors.Is(err, youtube.ErrNotFound):
		return http.StatusNotFound, models.NewAPIError(models.ErrCredentialsNotFound,
			"User or credentials not found. Please authenticate.")
	case errors.Is(err, youtube.ErrUnauthorized):
		return http.StatusUnauthorized, models.NewAPIError(models.ErrReauthRequired,
			"Authentication token is invalid or expired. Please re-authenticate.")
	case errors.Is(err, youtube.ErrRateLimited):
		return http.StatusTooManyRequests, models.NewAPIError(models.ErrQuotaExceeded,
			"YouTube API quota exceeded. Please try again later.")
	case errors.Is(err, youtube.ErrForbidden):
		return http.StatusForbidden, models.NewAPIError(models.ErrForbidden,
			"Access to YouTube API forbidden. Check API permissions or scopes.")
	case errors.Is(err, youtube.ErrUpstream):
		return http.StatusBadGateway, models.NewAPIError(models.ErrUpstreamFailure,
			"Error fetching YouTube activity.")
	default:
		return http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer,
			"An unexpected error occurred while fetching YouTube activity.")
	}
}
