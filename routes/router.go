package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ronghuaxueleng/chanting-sync-go/config"
	"github.com/ronghuaxueleng/chanting-sync-go/controllers"
	"github.com/ronghuaxueleng/chanting-sync-go/middleware"
	"github.com/ronghuaxueleng/chanting-sync-go/reconcile"
	"github.com/ronghuaxueleng/chanting-sync-go/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access logs go to their own rolling file so the application log
	// stays readable.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
		r.Use(ginzap.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	orchestrator := reconcile.NewOrchestrator(db, utils.Sugar, cfg.AdminUsernames)

	syncController := controllers.NewSyncController(db, orchestrator)
	authController := controllers.NewAuthController(db)
	statsController := controllers.NewStatsController(db)
	dedicationController := controllers.NewDedicationController(db)

	api := r.Group("/api")

	// Sync endpoints are never rate limited: the client replays its
	// offline queue in bursts and treats any non-200 as fatal.
	syncGroup := api.Group("/sync")
	syncGroup.POST("/upload", syncController.Upload)
	syncGroup.GET("/download", syncController.Download)
	syncGroup.GET("/health", syncController.Health)

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/login", authController.Login)

	adminGroup := api.Group("/admin")
	adminGroup.POST("/login", middleware.RateLimitMiddleware(), authController.AdminLogin)

	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminRequired())
	adminProtected.POST("/logout", authController.AdminLogout)
	adminProtected.GET("/me", authController.AdminMe)
	adminProtected.GET("/stats", statsController.GetStats)
	adminProtected.GET("/dedications", dedicationController.ListDedications)
	adminProtected.GET("/templates", dedicationController.ListTemplates)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
