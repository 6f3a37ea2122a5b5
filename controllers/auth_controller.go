package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ronghuaxueleng/chanting-sync-go/config"
	"github.com/ronghuaxueleng/chanting-sync-go/middleware"
	"github.com/ronghuaxueleng/chanting-sync-go/models"
	"github.com/ronghuaxueleng/chanting-sync-go/utils"
)

// AuthController handles app-user and dashboard-admin login. The two
// account kinds use different hash schemes: app users carry the
// client's deterministic digest, admins carry salted bcrypt.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new controller instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func tokenTTL() time.Duration {
	return time.Duration(config.Get().TokenExpireHours) * time.Hour
}

// Login handles POST /api/auth/login for app users; the issued token is
// what the sync download endpoint requires.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "username and password are required")
		return
	}

	var user models.User
	err := a.db.Where("username = ? AND is_deleted = ?", req.Username, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !utils.VerifyUserPassword(req.Password, user.Password)) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to load user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, utils.RoleUser, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user": gin.H{
			"id":          user.ID,
			"username":    user.Username,
			"nickname":    user.Nickname,
			"avatar":      user.Avatar,
			"avatar_type": user.AvatarType,
		},
	})
}

// AdminLogin handles POST /api/admin/login.
func (a *AuthController) AdminLogin(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "username and password are required")
		return
	}

	var admin models.AdminUser
	err := a.db.Where("username = ?", req.Username).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !utils.CheckAdminPassword(admin.PasswordHash, req.Password)) {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid username or password")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to load admin")
		return
	}

	now := time.Now()
	admin.LastLogin = &now
	if err := a.db.Save(&admin).Error; err != nil {
		utils.Sugar.Warnf("failed to record admin last login: %v", err)
	}

	token, err := utils.GenerateToken(admin.ID, admin.Username, utils.RoleAdmin, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
		},
	})
}

// AdminLogout handles POST /api/admin/logout by revoking the presented
// token until its natural expiration.
func (a *AuthController) AdminLogout(ctx *gin.Context) {
	token := middleware.BearerToken(ctx)
	if claims, err := utils.ParseToken(token); err == nil {
		utils.BlacklistToken(token, claims.ExpiresAt.Time)
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// AdminMe handles GET /api/admin/me.
func (a *AuthController) AdminMe(ctx *gin.Context) {
	adminID, ok := middleware.GetUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var admin models.AdminUser
	if err := a.db.First(&admin, adminID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "admin not found")
		return
	}
	utils.Success(ctx, admin)
}
