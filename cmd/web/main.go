package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/stridr/internal/envstruct"
	"github.com/myrjola/stridr/internal/errors"
	"github.com/myrjola/stridr/internal/logging"
	"github.com/myrjola/stridr/internal/plan"
	"github.com/myrjola/stridr/internal/pprofserver"
	"github.com/myrjola/stridr/internal/profile"
	"github.com/myrjola/stridr/internal/session"
	"github.com/myrjola/stridr/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	db             *sqlite.Database
	sessionManager *scs.SessionManager
	profileService *profile.Service
	planService    *plan.Service
	sessionService *session.Service
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"STRIDR_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"STRIDR_SQLITE_URL" envDefault:"./stridr.sqlite3"`
	// OpenAIAPIKey enables AI plan generation. Leave empty to use the deterministic fallback generator.
	OpenAIAPIKey string `env:"STRIDR_OPENAI_API_KEY" envDefault:""`
	// PlanSource forces a plan generation strategy: auto, fixture or fallback.
	PlanSource string `env:"STRIDR_PLAN_SOURCE" envDefault:"auto"`
	// PProfAddr is the optional address to listen on for the pprof server.
	PProfAddr string `env:"STRIDR_PPROF_ADDR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PProfAddr != "" {
		pprofserver.Launch(ctx, cfg.PProfAddr, logger)
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionManager := initializeSessionManager(db)

	profileService := profile.NewService(db, logger)
	planService := plan.NewService(db, profileService, plan.Options{
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		Source:       cfg.PlanSource,
	}, logger)
	sessionService := session.NewService(db, logger)

	app := application{
		logger:         logger,
		db:             db,
		sessionManager: sessionManager,
		profileService: profileService,
		planService:    planService,
		sessionService: sessionService,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 365 * 24 * time.Hour                                          //nolint:mnd // devices stay signed in for a year
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
