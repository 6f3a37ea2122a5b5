package main

import (
	"github.com/ronghuaxueleng/chanting-sync-go/config"
	"github.com/ronghuaxueleng/chanting-sync-go/models"
	"github.com/ronghuaxueleng/chanting-sync-go/routes"
	"github.com/ronghuaxueleng/chanting-sync-go/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.AdminUser{},
		&models.Chanting{},
		&models.Dedication{},
		&models.ChantingRecord{},
		&models.DailyStat{},
		&models.DedicationTemplate{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting sync server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
