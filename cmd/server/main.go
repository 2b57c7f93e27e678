package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/oggyb/muzz-matching/internal/app"
	"github.com/oggyb/muzz-matching/internal/auth"
	"github.com/oggyb/muzz-matching/internal/cache"
	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/logger"
	"github.com/oggyb/muzz-matching/internal/notify"
	"github.com/oggyb/muzz-matching/internal/server"
	"github.com/oggyb/muzz-matching/internal/service/swipe"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB; the schema is applied by `matchctl migrate up`
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}
	sqlDB, err := database.DB()
	if err != nil {
		log.Error("failed to get sql db", "err", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	// NATS is optional
	var natsConn *nats.Conn
	if cfg.NATS.URL != "" {
		natsCfg := notify.DefaultNATSConfig()
		natsCfg.URL = cfg.NATS.URL
		natsCfg.Name = cfg.NATS.Name
		natsConn, err = notify.Connect(natsCfg, log)
		if err != nil {
			log.Error("failed to connect to nats", "err", err)
			os.Exit(1)
		}
	}

	appCtx := app.New(cfg, database, redisCache, natsConn, log)

	var verifier *auth.Verifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewVerifier(cfg.Auth.JWTSecret)
	} else {
		log.Warn("JWT_SECRET not set, requests are not authenticated")
	}

	grpcServer := server.NewGRPCServer(log, verifier, swipe.NewRegistrar(appCtx))
	opsServer := server.NewOpsServer(cfg, log,
		server.Probe{Name: "db", Check: sqlDB.PingContext},
		server.Probe{Name: "redis", Check: redisCache.Ping},
	)

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port)
		errCh <- server.ServeGRPC(cfg, grpcServer)
	}()
	go func() {
		log.Info("starting ops server", "addr", opsServer.Addr)
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		log.Error("server failed", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	if err := opsServer.Shutdown(ctx); err != nil {
		log.Warn("ops server shutdown", "err", err)
	}

	// let in-flight notifications and auto-messages finish
	appCtx.Dispatcher.Wait()

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			log.Warn("nats drain", "err", err)
		}
	}
	log.Info("shutdown complete")
}
