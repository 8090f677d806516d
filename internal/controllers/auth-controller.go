package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snacksync/snacksync-api/internal/auth"
)

// AuthController handles Google login and logout
type AuthController struct {
	login    *auth.LoginService
	sessions *auth.SessionManager
}

// NewAuthController creates a new instance of AuthController
func NewAuthController(login *auth.LoginService, sessions *auth.SessionManager) *AuthController {
	return &AuthController{login: login, sessions: sessions}
}

// GoogleLogin godoc
// @Summary Log in with a Google authorization code
// @Description Exchanges the authorization code, stores the user's encrypted YouTube credentials, and sets the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{code=string} true "Authorization code"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /auth/google/login [post]
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	result, err := ac.login.LoginWithCode(c.Request.Context(), req.Code)
	switch {
	case errors.Is(err, auth.ErrLoginNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google login is not configured on the server"})
		return
	case errors.Is(err, auth.ErrExchangeFailed), errors.Is(err, auth.ErrInvalidIDToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store credentials"})
		return
	}

	sessionToken, err := ac.sessions.Issue(result.GoogleID, result.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, sessionToken, int(ac.sessions.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"message":   "User authenticated successfully",
		"email":     result.Email,
		"google_id": result.GoogleID,
	})
}

// Logout godoc
// @Summary Log out
// @Description Clears the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
