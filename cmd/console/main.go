package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/teamc/account-console/internal/api"
	"github.com/teamc/account-console/internal/api/handler"
	"github.com/teamc/account-console/internal/core/ports"
	"github.com/teamc/account-console/internal/core/service"
	"github.com/teamc/account-console/internal/infrastructure/backend"
	dbredis "github.com/teamc/account-console/internal/infrastructure/db/redis"
	"github.com/teamc/account-console/internal/infrastructure/sessionstore"
	"github.com/teamc/account-console/internal/pkg/config"
	"github.com/teamc/account-console/pkg/logger"
)

// persister is a session persister readiness can ping.
type persister interface {
	ports.SessionPersister
	handler.Pinger
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "account-console",
	})

	ctx := context.Background()

	store, closeStore := mustOpenPersister(ctx, cfg, log)
	defer closeStore()

	client := backend.NewClient(backend.Options{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	}, logger.Component("backend"))

	sessions := service.NewSessionStore(store, logger.Component("session"))
	if identity := sessions.Load(ctx); identity != nil {
		log.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("session restored")
	}
	session := service.NewSessionService(sessions, client, logger.Component("session"))
	guard := service.NewGuard(session, cfg.Guard.RoleAware)

	roster := service.NewRoster(client, session, logger.Component("roster"))
	stopRoster := roster.FollowSession(session)
	defer stopRoster()

	profile := service.NewProfileService(session, client, rate.Every(cfg.Backend.PingInterval), logger.Component("profile"))
	defer profile.Close()

	e := api.NewRouter(api.Deps{
		Session: session,
		Guard:   guard,
		Roster:  roster,
		Profile: profile,
		Ready:   map[string]handler.Pinger{"session_store": store},
		Log:     logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().
		Str("addr", srv.Addr).
		Str("backend", cfg.Backend.URL).
		Str("session_backend", cfg.Session.Backend).
		Bool("role_aware_guard", cfg.Guard.RoleAware).
		Msg("account console starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("account console failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("account console stopped")
}

// mustOpenPersister picks the session backend from configuration. The
// returned func releases any connection it opened.
func mustOpenPersister(ctx context.Context, cfg *config.Config, log zerolog.Logger) (persister, func()) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rdb, err := dbredis.Connect(ctx, dbredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect")
		}
		p := sessionstore.NewRedisPersister(rdb, cfg.Session.Key)
		log.Info().Str("key", p.Key()).Msg("session store: redis")
		return p, func() { _ = rdb.Close() }
	default:
		p := sessionstore.NewFilePersister(cfg.Session.File)
		log.Info().Str("path", p.Path()).Msg("session store: file")
		return p, func() {}
	}
}
