package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/captionrelay/captionrelay/internal/app"
	"github.com/captionrelay/captionrelay/internal/config"
	"github.com/captionrelay/captionrelay/internal/database"
	"github.com/captionrelay/captionrelay/internal/server"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis"
	"gorm.io/gorm"
)

// This is the main entry point for the caption relay server.
// Loads in all system components
// Exposes functionalities
func main() {
	// fetch cfg
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// load global logger
	logger := Logger.New(cfg.Debug)
	logger.Info("Logger initialized")

	// storage is optional; without it the batch log is process-local
	var db *gorm.DB
	var rc *redis.Client
	if cfg.DB.Host != "" {
		db, err = database.InitDB(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		database.MigrateDB(db)
	}
	if cfg.Redis.Addr != "" {
		rc, err = database.NewRedis(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
	}

	application, err := app.NewApp(cfg, logger, db, rc)
	if err != nil {
		log.Fatalf("Failed to wire application: %v", err)
	}

	// idle sessions get swept for the lifetime of the process
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go application.RunJanitor(janitorCtx)

	// compose router
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	server.InitializeRoutes(router, application.ServerDeps)

	// listen with graceful exit
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router.Handler(),
	}
	go func() {
		logger.Infof("Listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server exiting %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// 5 secs then cancel
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Shutdown err %v", err)
	}
	logger.Info("Shutdown system")
}
