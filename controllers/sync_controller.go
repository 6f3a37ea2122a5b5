package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ronghuaxueleng/chanting-sync-go/middleware"
	"github.com/ronghuaxueleng/chanting-sync-go/reconcile"
	"github.com/ronghuaxueleng/chanting-sync-go/utils"
)

// SyncController exposes the sync engine over HTTP. The two endpoints
// have opposite error contracts: upload always answers 200 with a
// success-shaped body so the device's offline queue never wedges, while
// download reports real failures.
type SyncController struct {
	orchestrator *reconcile.Orchestrator
	projector    *reconcile.Projector
}

// NewSyncController creates the controller over the shared engine.
func NewSyncController(db *gorm.DB, orchestrator *reconcile.Orchestrator) *SyncController {
	return &SyncController{
		orchestrator: orchestrator,
		projector:    reconcile.NewProjector(db),
	}
}

// Upload handles POST /api/sync/upload.
func (s *SyncController) Upload(ctx *gin.Context) {
	var payload reconcile.UploadPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		// Malformed bodies get the same soft treatment as auth failures.
		ctx.JSON(http.StatusOK, reconcile.UploadResult{Status: "success", Message: "no data"})
		return
	}

	result := s.orchestrator.Upload(middleware.BearerToken(ctx), &payload)
	ctx.JSON(http.StatusOK, result)
}

// Download handles GET /api/sync/download. Bearer token required; this
// path is allowed to surface errors.
func (s *SyncController) Download(ctx *gin.Context) {
	user, err := s.orchestrator.ResolveDownloadUser(middleware.BearerToken(ctx))
	if err != nil {
		if errors.Is(err, reconcile.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "user not found"})
			return
		}
		ctx.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing or invalid token"})
		return
	}

	result, err := s.projector.Build(user)
	if err != nil {
		utils.Sugar.Errorw("sync download failed", "user_id", user.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "download failed",
			"error":   err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// Health handles GET /api/sync/health.
func (s *SyncController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "data_sync",
	})
}
