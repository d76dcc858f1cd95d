package auth

import (
	"net/http"
	"time"

	"inventory-service/internal/models"
	"inventory-service/internal/repository"
	"inventory-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	jwtManager *JWTManager
	activities repository.ActivityRepository
	logger     *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtManager *JWTManager, activities repository.ActivityRepository, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		jwtManager: jwtManager,
		activities: activities,
		logger:     logger,
	}
}

// LoginRequest represents the login request
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Type      string    `json:"type" example:"Bearer"`
	ExpiresIn int       `json:"expires_in" example:"600"`
	ExpiresAt time.Time `json:"expires_at" example:"2024-01-15T12:00:00Z"`
}

// Login handles POST /api/v1/auth/login
// @Summary      Login and get JWT token
// @Description  Authenticates a user and returns a JWT token valid for 10 minutes. Available users: admin/admin123, user/user123, operator/operator123
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Login credentials"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  errors.StandardError
// @Failure      401      {object}  errors.StandardError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid login request", zap.Error(err))
		c.Error(errors.NewValidationError("invalid request", "username or password"))
		c.Abort()
		return
	}

	if !h.validateCredentials(req.Username, req.Password) {
		h.logger.Warn("Invalid credentials",
			zap.String("username", req.Username),
		)
		c.JSON(http.StatusUnauthorized, errors.NewStandardError("Unauthorized", "invalid credentials", "username or password incorrect"))
		c.Abort()
		return
	}

	token, err := h.jwtManager.GenerateToken(req.Username)
	if err != nil {
		h.logger.Error("Failed to generate token", zap.Error(err))
		c.Error(errors.NewInternalError("failed to generate token", err))
		c.Abort()
		return
	}

	expiresAt := time.Now().Add(TokenLifetime)
	response := LoginResponse{
		Token:     token,
		Type:      "Bearer",
		ExpiresIn: int(TokenLifetime.Seconds()),
		ExpiresAt: expiresAt,
	}

	if err := h.activities.Record(c.Request.Context(), &models.ActivityLog{
		UserID:       req.Username,
		ActivityType: models.ActivityUserLogin,
		Description:  "user logged in",
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	}); err != nil {
		// Login still succeeds when the trail write fails
		h.logger.Warn("Failed to record login activity", zap.Error(err))
	}

	h.logger.Info("User logged in successfully",
		zap.String("username", req.Username),
		zap.Time("expires_at", expiresAt),
	)

	c.JSON(http.StatusOK, response)
}

// validateCredentials validates user credentials
// For prototype: simple hardcoded validation
// In production: validate against user database
func (h *AuthHandler) validateCredentials(username, password string) bool {
	validUsers := map[string]string{
		"admin":    "admin123",
		"user":     "user123",
		"operator": "operator123",
	}

	expectedPassword, exists := validUsers[username]
	if !exists {
		return false
	}

	return password == expectedPassword
}
