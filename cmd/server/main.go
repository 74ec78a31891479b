package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cafeStorefront/internal/apiclient"
	"cafeStorefront/internal/auth"
	"cafeStorefront/internal/config"
	"cafeStorefront/internal/db"
	grpcserver "cafeStorefront/internal/grpc"
	"cafeStorefront/internal/web"
	"cafeStorefront/repository"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		slog.Error("load_config_failed", "err", err)
		os.Exit(1)
	}
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("config_loaded", "config", cfg.String())

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("open_db_failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Error("close_db_failed", "err", err)
		}
	}()
	sessions := repository.NewSessionRepository(d)

	backend, err := apiclient.New(cfg.API.BaseURL, apiclient.WithTimeout(cfg.API.Timeout))
	if err != nil {
		logger.Error("api_client_failed", "err", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := web.NewRouter(web.Deps{
		Logger:   logger,
		Backend:  backend,
		Decoder:  auth.JWTDecoder{Secret: cfg.Auth.JWTSecret},
		Sessions: sessions,
		Flash:    web.NewFlashCodec([]byte(cfg.Session.FlashSecret), "flash", cfg.Session.CookieSecure),
		Cookie: web.CookieConfig{
			Name:   cfg.Session.CookieName,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.CookieSecure,
		},
		Ready: d.PingContext,
	})
	if err != nil {
		logger.Error("build_router_failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stopGRPC, err := grpcserver.StartGRPC(cfg)
	if err != nil {
		logger.Error("start_grpc_failed", "err", err)
		os.Exit(1)
	}
	logger.Info("grpc_listening", "addr", cfg.GRPC.Address)

	go purgeSessions(ctx, logger, sessions, cfg.Session.PurgeInterval)

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "err", err)
	}
	if err := stopGRPC(shutdownCtx); err != nil {
		logger.Error("grpc_shutdown_failed", "err", err)
	}
	logger.Info("stopped")
}

// purgeSessions deletes expired sessions until ctx is done.
func purgeSessions(ctx context.Context, logger *slog.Logger, sessions repository.SessionRepositoryI, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := sessions.DeleteExpired(ctx, now)
			if err != nil {
				logger.Error("session_purge_failed", "err", err)
				continue
			}
			if n > 0 {
				logger.Info("sessions_purged", "count", n)
			}
		}
	}
}
