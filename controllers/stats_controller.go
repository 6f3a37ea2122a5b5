package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ronghuaxueleng/chanting-sync-go/models"
	"github.com/ronghuaxueleng/chanting-sync-go/utils"
)

const statsCacheKey = "dashboard:stats"

// StatsController serves dashboard aggregates. Counts are cache-aside
// in Redis; staleness of a few minutes is fine for an overview page.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new controller instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// DashboardStats contains the overview numbers for the admin landing
// page.
type DashboardStats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalChantings   int64 `json:"total_chantings"`
	TotalRecords     int64 `json:"total_records"`
	TotalDedications int64 `json:"total_dedications"`
	BuiltInChantings int64 `json:"built_in_chantings"`
	CustomChantings  int64 `json:"custom_chantings"`
}

// GetStats handles GET /api/admin/stats.
func (s *StatsController) GetStats(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(statsCacheKey); ok {
		var cached DashboardStats
		if err := json.Unmarshal(b, &cached); err == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	var stats DashboardStats
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, s.db.Model(&models.User{}).Where("is_deleted = ?", false)},
		{&stats.TotalChantings, s.db.Model(&models.Chanting{}).Where("is_deleted = ?", false)},
		{&stats.TotalRecords, s.db.Model(&models.ChantingRecord{})},
		{&stats.TotalDedications, s.db.Model(&models.Dedication{})},
		{&stats.BuiltInChantings, s.db.Model(&models.Chanting{}).Where("is_built_in = ? AND is_deleted = ?", true, false)},
		{&stats.CustomChantings, s.db.Model(&models.Chanting{}).Where("is_built_in = ? AND is_deleted = ?", false, false)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load stats")
			return
		}
	}

	utils.CacheSetJSON(statsCacheKey, stats, 5*time.Minute)
	utils.Success(ctx, stats)
}
