package server

import (
	"github.com/captionrelay/captionrelay/internal/config"
	"github.com/captionrelay/captionrelay/internal/domains/broadcast"
	"github.com/captionrelay/captionrelay/internal/domains/export"
	"github.com/captionrelay/captionrelay/internal/domains/ingest"
	"github.com/captionrelay/captionrelay/internal/domains/session"
	"github.com/captionrelay/captionrelay/internal/handlers"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/gin-gonic/gin"
)

// Dependencies is everything the route table needs.
type Dependencies struct {
	Sessions    session.SessionService
	Pipeline    *ingest.Service
	Broadcaster *broadcast.Broadcaster
	Exporter    *export.Service
	Logger      *Logger.Logger
	Configs     *config.Settings
}

func NewServerDependencies(
	sessions session.SessionService,
	pipeline *ingest.Service,
	broadcaster *broadcast.Broadcaster,
	exporter *export.Service,
	logger *Logger.Logger,
	cfg *config.Settings,
) Dependencies {
	return Dependencies{
		Sessions:    sessions,
		Pipeline:    pipeline,
		Broadcaster: broadcaster,
		Exporter:    exporter,
		Logger:      logger,
		Configs:     cfg,
	}
}

func InitializeRoutes(r *gin.Engine, dep Dependencies) {
	r.GET("/", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"message": "Live Caption Relay"}) })
	r.GET("/health", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"status": "ok"}) })

	sessionHandler := handlers.NewSessionHandler(dep.Sessions, dep.Pipeline, dep.Exporter, dep.Logger)
	chunkHandler := handlers.NewChunkHandler(dep.Pipeline, dep.Logger)
	eventsHandler := handlers.NewEventsHandler(dep.Sessions, dep.Broadcaster, dep.Logger)
	wsHandler := handlers.NewStreamWSHandler(dep.Sessions, dep.Pipeline, dep.Broadcaster, dep.Logger)

	sessions := r.Group("/sessions")
	{
		sessions.POST("", sessionHandler.Start)
		sessions.POST("/:id/pause", sessionHandler.Pause)
		sessions.POST("/:id/resume", sessionHandler.Resume)
		sessions.POST("/:id/complete", sessionHandler.Complete)
		sessions.POST("/:id/chunks", chunkHandler.Submit)
		sessions.GET("/:id/events", eventsHandler.Subscribe)
		sessions.GET("/:id/transcript", sessionHandler.Transcript)
		sessions.GET("/:id/export", sessionHandler.Export)
	}

	r.GET("/ws/stream", wsHandler.Handle)

	// Exported documents from the local converter.
	r.Static("/downloads", dep.Configs.Server.DownloadDir)
}
