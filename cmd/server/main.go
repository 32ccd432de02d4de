package main

import (
	"fmt"
	"log"

	"tastebook/backend/internal/auth"
	"tastebook/backend/internal/database"
	"tastebook/backend/internal/filestorage"
	"tastebook/backend/internal/notifications"
	"tastebook/backend/internal/router"
	"tastebook/backend/pkg/config"
	tblog "tastebook/backend/pkg/log"

	"github.com/gin-gonic/gin"
)

func main() {
	defer tblog.Sync()

	if err := auth.InitializeJWT(); err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	cfg := config.Cfg
	if cfg.DBUser == "" || cfg.DBPassword == "" || cfg.DBName == "" {
		log.Fatal("Database credentials (DB_USER, DB_PASSWORD, DB_NAME) must be set in environment variables or .env file.")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	if err := database.ConnectDB(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.MigrateDB(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	if err := filestorage.InitFileStorage(); err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}
	notifications.InitEmailService()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.SetupRouter(tblog.L)

	addr := ":" + cfg.Port
	tblog.S.Infof("Server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
