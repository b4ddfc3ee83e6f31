package app

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"go-linkedin-harvester/internal/browser"
	"go-linkedin-harvester/internal/config"
	"go-linkedin-harvester/internal/database"
	"go-linkedin-harvester/internal/dedup"
	"go-linkedin-harvester/internal/export"
	"go-linkedin-harvester/internal/logger"
	"go-linkedin-harvester/internal/mailer"
	"go-linkedin-harvester/internal/pipeline"
	"go-linkedin-harvester/internal/reporter"
	"go-linkedin-harvester/internal/scheduler"
	"go-linkedin-harvester/internal/scraper"
	"go-linkedin-harvester/internal/scraper/linkedin"
	"go-linkedin-harvester/internal/server"
	"go-linkedin-harvester/internal/telegram"
)

// ConfigPath is the YAML file the daemon loads.
type ConfigPath string

func ProvideConfig(path ConfigPath) (*config.Config, error) {
	return config.Load(string(path))
}

func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.Log.Level, cfg.Log.Development)
}

func ProvideFxLogger(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log}
}

func ProvideStore(cfg *config.Config, log *zap.Logger) *dedup.FileStore {
	return dedup.NewFileStore(cfg.StorePath, log)
}

// ProvideScraper wires the LinkedIn scraper to a real Chromium.
func ProvideScraper(cfg *config.Config, log *zap.Logger) scraper.Scraper {
	return linkedin.NewLinkedInScraper(
		linkedin.OptionsFromConfig(cfg),
		browser.NewPlaywrightLauncher(log),
		browser.NewPacer(cfg.Pacing.NavigationsPerMinute),
		log,
	)
}

func ProvideExporter(cfg *config.Config) export.Exporter {
	return export.New(cfg.Output.Format)
}

// ProvideNotifier returns the configured notifiers, or nil when none is set up.
func ProvideNotifier(cfg *config.Config, log *zap.Logger) reporter.Notifier {
	log = logger.Component(log, "app")
	var notifiers reporter.Multi
	if cfg.Email.Enabled() {
		notifiers = append(notifiers, mailer.New(cfg.Email, log))
	}
	if cfg.Telegram.Enabled() {
		bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Telegram.MaxJobs, log)
		if err != nil {
			log.Warn("⚠️ Telegram disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, bot)
		}
	}
	if len(notifiers) == 0 {
		return nil
	}
	return notifiers
}

// OpenArchive connects to Postgres when a database URL is configured. The
// archive is optional: a failed connection is logged and yields nil.
func OpenArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) (pipeline.Archive, func()) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}
	}
	log = logger.Component(log, "app")

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn("⚠️ Archive disabled", zap.Error(err))
		return nil, func() {}
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Warn("⚠️ Archive disabled", zap.Error(err))
		repo.Close()
		return nil, func() {}
	}
	log.Info("🐘 Connected to archive database")
	return repo, repo.Close
}

func ProvideArchive(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) pipeline.Archive {
	archive, closeFn := OpenArchive(context.Background(), cfg, log)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			closeFn()
			return nil
		},
	})
	return archive
}

func ProvideSession(cfg *config.Config, store *dedup.FileStore, s scraper.Scraper, exporter export.Exporter,
	notifier reporter.Notifier, archive pipeline.Archive, log *zap.Logger) (*pipeline.Session, error) {
	return pipeline.NewSession(cfg, store, s, exporter, notifier, archive, log)
}

func ProvideRunner(session *pipeline.Session, log *zap.Logger) *pipeline.Runner {
	return pipeline.NewRunner(session, log)
}

// ProvideScheduler triggers sessions through the runner, so a manual run in
// progress makes the scheduled one skip.
func ProvideScheduler(cfg *config.Config, runner *pipeline.Runner, log *zap.Logger) (scheduler.Scheduler, error) {
	task := func(ctx context.Context) error {
		_, err := runner.TryRun(ctx, pipeline.Override{Trigger: pipeline.TriggerSchedule})
		if errors.Is(err, pipeline.ErrBusy) {
			return nil
		}
		return err
	}
	return scheduler.New(cfg.Schedule, task, log)
}

func ProvideRouter(runner *pipeline.Runner, cfg *config.Config, store *dedup.FileStore, log *zap.Logger) *gin.Engine {
	router := server.NewRouter(log)
	server.NewHandler(runner, cfg, store, log).Register(router)
	return router
}

func ManageSchedulerLifecycle(lc fx.Lifecycle, s scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
}

// Module is the daemon: scheduler plus dashboard. It expects a *config.Config
// and a *zap.Logger to be supplied.
func Module() fx.Option {
	return fx.Options(
		fx.WithLogger(ProvideFxLogger),
		fx.Provide(
			ProvideStore,
			ProvideScraper,
			ProvideExporter,
			ProvideNotifier,
			ProvideArchive,
			ProvideSession,
			ProvideRunner,
			ProvideScheduler,
			ProvideRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(ManageSchedulerLifecycle),
		fx.Invoke(func(*server.HTTPServer) {}),
	)
}
