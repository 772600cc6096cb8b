package app

import (
	"context"
	"fmt"
	"time"

	"github.com/captionrelay/captionrelay/internal/config"
	"github.com/captionrelay/captionrelay/internal/domains/broadcast"
	"github.com/captionrelay/captionrelay/internal/domains/export"
	"github.com/captionrelay/captionrelay/internal/domains/ingest"
	"github.com/captionrelay/captionrelay/internal/domains/session"
	sessionrepo "github.com/captionrelay/captionrelay/internal/repository/session"
	"github.com/captionrelay/captionrelay/internal/server"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/captionrelay/captionrelay/pkg/asr"
	"github.com/captionrelay/captionrelay/pkg/docconv"
	"github.com/captionrelay/captionrelay/pkg/transcode"
	"github.com/captionrelay/captionrelay/pkg/translate"
	"github.com/go-redis/redis"
	"gorm.io/gorm"
)

const janitorSweepInterval = time.Minute

// App holds the wired system.
type App struct {
	Config      *config.Settings
	Logger      *Logger.Logger
	DB          *gorm.DB
	RC          *redis.Client
	Sessions    session.SessionService
	Pipeline    *ingest.Service
	Broadcaster *broadcast.Broadcaster
	Exporter    *export.Service
	ServerDeps  server.Dependencies
}

// NewApp wires all dependencies. DB and redis may be nil; the batch
// log then stays purely in memory.
func NewApp(cfg *config.Settings, logger *Logger.Logger, db *gorm.DB, rc *redis.Client) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		RC:     rc,
	}
	if err := a.setupDependencies(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) setupDependencies() error {
	var repo session.BatchRepository
	if a.DB != nil {
		repo = sessionrepo.NewGormBatchRepo(a.DB, a.RC, a.Config.Pipeline.BatchTTL())
	} else {
		a.Logger.Warn("no database configured, batch log is in-memory only")
		repo = sessionrepo.NewMemoryBatchRepo()
	}

	a.Sessions = session.New(repo, a.Logger)
	a.Broadcaster = broadcast.New(a.Logger)

	recognizer, err := a.setupRecognizer()
	if err != nil {
		return err
	}
	translator, err := translate.FromSettings(context.Background(), a.Config.Engines, a.Logger)
	if err != nil {
		return err
	}

	a.Pipeline = ingest.New(
		a.Sessions,
		a.Broadcaster,
		recognizer,
		translator,
		transcode.NewFFmpeg(""),
		a.Config.Pipeline,
		a.Logger,
	)

	converter := docconv.NewLocalConverter(a.Config.Server.DownloadDir, a.Config.Server.BaseURL)
	a.Exporter = export.New(a.Sessions, converter, a.Logger)

	a.ServerDeps = server.NewServerDependencies(
		a.Sessions,
		a.Pipeline,
		a.Broadcaster,
		a.Exporter,
		a.Logger,
		a.Config,
	)
	return nil
}

// RunJanitor sweeps idle sessions on a fixed interval until ctx is
// cancelled. A reaped session releases its broadcast slot and its
// pipeline state along with the session entry itself.
func (a *App) RunJanitor(ctx context.Context) {
	ttl := a.Config.Pipeline.SessionTTL()
	ticker := time.NewTicker(janitorSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweep(ctx, ttl)
		}
	}
}

func (a *App) sweep(ctx context.Context, ttl time.Duration) {
	for _, id := range a.Sessions.ReapIdle(ctx, ttl) {
		a.Broadcaster.Drop(id)
		a.Pipeline.Forget(id)
	}
}

func (a *App) setupRecognizer() (asr.Recognizer, error) {
	eng := a.Config.Engines
	switch eng.ASRProvider {
	case "", "whisperd":
		if eng.WhisperURL == "" {
			return nil, fmt.Errorf("whisperd recognizer selected but whisper_url is empty")
		}
		return asr.NewWhisperdClient(eng.WhisperURL, a.Logger), nil
	case "openai":
		if eng.OpenAIApiKey == "" {
			return nil, fmt.Errorf("openai recognizer selected but no api key configured")
		}
		return asr.NewOpenAIRecognizer(eng.OpenAIApiKey, eng.WhisperModel), nil
	default:
		return nil, fmt.Errorf("unknown asr provider %q", eng.ASRProvider)
	}
}
