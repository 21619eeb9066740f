package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"evamed-backend/internal/db"
	"evamed-backend/internal/service"
	"evamed-backend/utilities"
)

const healthTimeout = 2 * time.Second

type SystemController struct {
	Questionnaires *service.Questionnaires
	DB             *gorm.DB
}

func NewSystemController(questionnaires *service.Questionnaires, gdb *gorm.DB) *SystemController {
	return &SystemController{Questionnaires: questionnaires, DB: gdb}
}

// ListProfiles handles GET /api/profiles
func (sc *SystemController) ListProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, sc.Questionnaires.Profiles())
}

// Health handles GET /healthz
func (sc *SystemController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := db.Ping(ctx, sc.DB); err != nil {
		utilities.L().Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}
