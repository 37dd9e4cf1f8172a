package main

import (
	"github.com/ShivamG1979/Blog-Post-Api/config"
	"github.com/ShivamG1979/Blog-Post-Api/models"
	"github.com/ShivamG1979/Blog-Post-Api/routes"
	"github.com/ShivamG1979/Blog-Post-Api/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
		&models.UploadedFile{},
	)

	uploader := utils.NewCloudinaryClient(cfg)

	r := routes.SetupRouter(db, uploader)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
