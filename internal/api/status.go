package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/logger"
	"github.com/pantrychef/backend/internal/service"
)

// StatusHandler records and lists client liveness pings.
type StatusHandler struct {
	recipes *service.RecipeService
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(recipes *service.RecipeService) *StatusHandler {
	return &StatusHandler{recipes: recipes}
}

// RegisterRoutes mounts the status routes on the given group.
func (h *StatusHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/status", h.CreateStatusCheck)
	router.GET("/status", h.ListStatusChecks)
}

// CreateStatusCheck records a ping from a named client.
func (h *StatusHandler) CreateStatusCheck(c *gin.Context) {
	var req StatusCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	check, err := h.recipes.CreateStatusCheck(c.Request.Context(), req.ClientName)
	if err != nil {
		logger.L().Error("failed to store status check", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store status check"})
		return
	}

	c.JSON(http.StatusCreated, check)
}

// ListStatusChecks returns recent pings, newest first.
func (h *StatusHandler) ListStatusChecks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	checks, err := h.recipes.ListStatusChecks(c.Request.Context(), limit)
	if err != nil {
		logger.L().Error("failed to list status checks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch status checks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status_checks": checks})
}
