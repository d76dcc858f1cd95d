package handlers

import (
	"net/http"

	"inventory-service/internal/repository"
	"inventory-service/pkg/errors"
	"inventory-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActivityHandler serves the activity feed
type ActivityHandler struct {
	logger     *zap.Logger
	activities repository.ActivityRepository
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(logger *zap.Logger, activities repository.ActivityRepository) *ActivityHandler {
	return &ActivityHandler{
		logger:     logger,
		activities: activities,
	}
}

// ListMyActivity handles GET /api/v1/activity/my
// @Summary      List the user's recent activity
// @Description  Returns the append-only action trail, newest first.
// @Tags         activity
// @Produce      json
// @Security     BearerAuth
// @Param        skip   query     int  false  "Number of records to skip"  default(0)
// @Param        limit  query     int  false  "Maximum records to return"  default(50)
// @Success      200    {object}  ListResponse
// @Failure      400    {object}  errors.StandardError
// @Failure      401    {object}  errors.StandardError
// @Router       /activity/my [get]
func (h *ActivityHandler) ListMyActivity(c *gin.Context) {
	userID := middleware.GetUserID(c)
	skip, limit, ok := parsePaging(c)
	if !ok {
		return
	}

	entries, err := h.activities.ListByUser(c.Request.Context(), userID, skip, limit)
	if err != nil {
		h.logger.Error("Failed to list activity", zap.Error(err))
		c.Error(errors.NewStoreFailure("list activity", err))
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: entries, Skip: skip, Limit: limit})
}
