package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ronghuaxueleng/chanting-sync-go/models"
	"github.com/ronghuaxueleng/chanting-sync-go/utils"
)

const dedicationPageSize = 20

// DedicationController provides the dashboard's read-only browse views
// over dedications and templates. All writes to these tables go through
// the sync engine.
type DedicationController struct {
	db *gorm.DB
}

// NewDedicationController creates a new controller instance.
func NewDedicationController(db *gorm.DB) *DedicationController {
	return &DedicationController{db: db}
}

// ListDedications handles GET /api/admin/dedications with optional
// search over title and content, newest first.
func (d *DedicationController) ListDedications(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	search := strings.TrimSpace(ctx.Query("search"))

	query := d.db.Model(&models.Dedication{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count dedications")
		return
	}

	var dedications []models.Dedication
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * dedicationPageSize).
		Limit(dedicationPageSize).
		Find(&dedications).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list dedications")
		return
	}

	utils.Success(ctx, gin.H{
		"items":     dedications,
		"total":     total,
		"page":      page,
		"page_size": dedicationPageSize,
	})
}

// ListTemplates handles GET /api/admin/templates.
func (d *DedicationController) ListTemplates(ctx *gin.Context) {
	var templates []models.DedicationTemplate
	if err := d.db.Order("created_at DESC").Find(&templates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to list templates")
		return
	}
	utils.Success(ctx, templates)
}
