package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/propexpo/stall-booking-api/internal/api"
	"github.com/propexpo/stall-booking-api/internal/broker"
	"github.com/propexpo/stall-booking-api/internal/cache"
	"github.com/propexpo/stall-booking-api/internal/config"
	"github.com/propexpo/stall-booking-api/internal/db"
	"github.com/propexpo/stall-booking-api/internal/logger"
	"github.com/propexpo/stall-booking-api/internal/service"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	if err = logger.SetLevel(conf.API.LogLevel); err != nil {
		zap.L().Warn("ignoring log level", zap.String("log_level", conf.API.LogLevel), zap.Error(err))
	}

	config.Watch(func(updated *config.AppConfig) {
		if updated.API == nil {
			return
		}
		if err := logger.SetLevel(updated.API.LogLevel); err != nil {
			zap.L().Warn("ignoring reloaded log level", zap.String("log_level", updated.API.LogLevel), zap.Error(err))
			return
		}
		zap.L().Info("log level reloaded", zap.String("log_level", logger.Level().String()))
	})

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var capacityCache service.CapacityCache
	if conf.Redis.Addr != "" {
		client := cache.NewClient(conf.Redis)
		if err = client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to initialize redis -> %w", err)
		}
		defer client.Close()

		capacityCache = cache.NewCapacityCache(client, conf.Redis.CapacityTTL)
		zap.L().Info("capacity cache enabled", zap.String("addr", conf.Redis.Addr))
	}

	var publisher service.Notifier
	if conf.RabbitMQ.URL != "" {
		client, err := broker.NewClient(conf.RabbitMQ.URL, conf.RabbitMQ.Exchange)
		if err != nil {
			return fmt.Errorf("failed to initialize rabbitmq -> %w", err)
		}
		defer client.Close()

		publisher = client
	}

	s := api.NewServer(conf, postgresDB, capacityCache, publisher)
	go s.Live.Run(ctx)

	addr := ":" + s.Config.API.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("failed to shut down the server", zap.Error(err))
		}
	}()

	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	zap.L().Info("server stopped")

	return nil
}
