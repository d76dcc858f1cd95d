package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"inventory-service/internal/database"
	"inventory-service/internal/models"
	"inventory-service/internal/repository"
	"inventory-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupAuthTest(t *testing.T) (*gin.Engine, repository.ActivityRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	activities := repository.NewSQLiteActivityRepository(db)
	jwtManager := NewJWTManager(testSecret, logger)
	handler := NewAuthHandler(jwtManager, activities, logger)

	router := gin.New()
	// Error handler middleware (inline to avoid import cycle)
	router.Use(func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			if stdErr, ok := err.(*errors.StandardError); ok {
				c.JSON(stdErr.HTTPStatus(), stdErr)
				return
			}
			c.JSON(http.StatusInternalServerError, errors.NewInternalError("internal server error", err))
		}
	})
	router.POST("/api/v1/auth/login", handler.Login)
	return router, activities
}

func postLogin(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	router, activities := setupAuthTest(t)

	w := postLogin(t, router, LoginRequest{Username: "admin", Password: "admin123"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Bearer", resp.Type)
	assert.Equal(t, 600, resp.ExpiresIn)

	// A successful login lands in the activity trail
	entries, err := activities.ListByUser(context.Background(), "admin", 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActivityUserLogin, entries[0].ActivityType)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	router, _ := setupAuthTest(t)

	w := postLogin(t, router, LoginRequest{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postLogin(t, router, LoginRequest{Username: "nobody", Password: "whatever"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_MissingFields(t *testing.T) {
	router, _ := setupAuthTest(t)

	w := postLogin(t, router, map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
