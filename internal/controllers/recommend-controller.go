package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snacksync/snacksync-api/internal/middleware"
	"github.com/snacksync/snacksync-api/internal/models"
	"github.com/snacksync/snacksync-api/internal/recommend"
)

// maxImageBytes bounds the uploaded food image size (8 MiB).
const maxImageBytes = 8 << 20

// RecommendController handles video recommendations and food-tag detection
type RecommendController struct {
	recommender *recommend.Service
	oracle      *recommend.GeminiOracle
}

// NewRecommendController creates a new instance of RecommendController.
// The oracle may be nil when Gemini is not configured; the endpoints then
// report the degradation instead of panicking.
func NewRecommendController(recommender *recommend.Service, oracle *recommend.GeminiOracle) *RecommendController {
	return &RecommendController{recommender: recommender, oracle: oracle}
}

// RecommendVideo godoc
// @Summary Recommend videos for a meal
// @Description Combines the caller's food tags with the user's liked-video history and returns ranked suggestions
// @Tags recommend
// @Accept json
// @Produce json
// @Param request body object{food_tags=[]string} true "Food tags"
// @Success 200 {array} recommend.Recommendation
// @Failure 400 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Router /api/recommend_video [post]
func (rc *RecommendController) RecommendVideo(c *gin.Context) {
	googleID, ok := middleware.GoogleID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
		return
	}

	var req struct {
		FoodTags []string `json:"food_tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid request body"))
		return
	}

	recommendations, err := rc.recommender.Recommend(c.Request.Context(), googleID, req.FoodTags)
	switch {
	case errors.Is(err, recommend.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrNothingToRecommend,
			"Cannot generate recommendations without food tags if YouTube activity is also unavailable."))
		return
	case errors.Is(err, recommend.ErrOracle):
		c.JSON(http.StatusBadGateway, models.NewAPIError(models.ErrUpstreamFailure,
			"Failed to get recommendations."))
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer,
			"An unexpected error occurred."))
		return
	}

	c.JSON(http.StatusOK, recommendations)
}

// SuggestTags godoc
// @Summary Detect food tags in an image
// @Description Runs the uploaded image through the vision model and returns descriptive food tags
// @Tags recommend
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Food image"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Router /api/suggest_video [post]
func (rc *RecommendController) SuggestTags(c *gin.Context) {
	if rc.oracle == nil {
		c.JSON(http.StatusServiceUnavailable, models.NewAPIError(models.ErrUpstreamFailure,
			"Tag detection is not configured on the server."))
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Missing image file"))
		return
	}
	if header.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Image is too large"))
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid image file"))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid image file"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	tags, err := rc.oracle.DetectFoodTags(c.Request.Context(), contentType, image)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.NewAPIError(models.ErrUpstreamFailure,
			"Error processing image."))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename":      header.Filename,
		"content_type":  contentType,
		"detected_tags": tags,
	})
}
