package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cc-live/internal/config"
	"cc-live/internal/identity"
	"cc-live/internal/livepush"
	"cc-live/internal/logging"
	"cc-live/internal/reconnect"
	"cc-live/internal/session"
	"cc-live/internal/transport"
	httptransport "cc-live/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	defer func() { _ = logging.Close() }()

	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ids, closeIDs, err := identity.Open(ctx, cfg.Identity)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Identity.Backend).Msg("identity store init failed")
	}
	defer closeIDs()

	sess, err := newSession(cfg.Viewer, ids)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.Viewer.LiveServerURL).Msg("session init failed")
	}
	defer sess.Close()

	if cfg.Push.Enabled {
		pushCfg, err := livepush.ConfigFromEnv(cfg.Push)
		if err != nil {
			log.Fatal().Err(err).Msg("live push config failed")
		}
		pusher := livepush.NewManager(pushCfg)
		if err := pusher.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("live push start failed")
		}
		defer sess.Subscribe(pusher.Observe)()
	}

	if cfg.Viewer.AutoConnect {
		if err := sess.Connect(""); err != nil {
			log.Warn().Err(err).Msg("auto connect failed")
		}
	}

	r := httptransport.NewRouter(sess, cfg.Viewer)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Viewer.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Viewer.HTTPAddr).Str("live_server", cfg.Viewer.LiveServerURL).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	sess.Disconnect()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown failed")
	}
}

func newSession(cfg config.ViewerConfig, ids identity.Store) (*session.Session, error) {
	return session.New(session.Config{
		URL:               cfg.LiveServerURL,
		HeartbeatInterval: cfg.HeartbeatInterval,
		Reconnect: reconnect.Config{
			Base:        cfg.ReconnectBase,
			Cap:         cfg.ReconnectCap,
			MaxAttempts: cfg.ReconnectMaxAttempts,
		},
		RecentEventsCapacity: cfg.RecentEventsCapacity,
		ViewerID:             cfg.ViewerID,
	}, transport.NewWebSocketDialer(cfg.WriteTimeout), session.WithIdentityStore(ids))
}
