package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"item_catalog/internal/activity"
	"item_catalog/internal/auth"
	"item_catalog/internal/cache"
	"item_catalog/internal/config"
	"item_catalog/internal/handler"
	"item_catalog/internal/logging"
	"item_catalog/internal/observability"
	"item_catalog/internal/queue"
	"item_catalog/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logging.Setup(&cfg.Log)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close store")
		}
	}()

	tokens, err := auth.NewTokenService(cfg.JWT.Secret, auth.DefaultTokenTTL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create token service")
	}

	// Initialize Prometheus metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)
	logrus.Info("Metrics initialized")

	var itemCache cache.Cache = cache.NopCache{}
	if cfg.Redis.Enabled {
		rdb, err := cache.SetupRedis(ctx, &cfg.Redis)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close redis connection")
			}
		}()
		itemCache = cache.NewItemCache(rdb, cfg.Redis.TTL)
	} else {
		logrus.Info("Redis disabled, item cache off")
	}

	var events activity.Publisher = activity.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		conn, err := queue.SetupRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
		defer func() {
			if err := conn.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close RabbitMQ connection")
			}
		}()

		if err := queue.EnsureQueue(conn, cfg.RabbitMQ.Queue); err != nil {
			logrus.WithError(err).Fatal("Failed to declare RabbitMQ queue")
		}
		events = queue.NewPublisher(conn, cfg.RabbitMQ.Queue, metrics)
	} else {
		logrus.Info("RABBITMQ_URL not set, activity events are discarded")
	}

	r := handler.SetupHandler(handler.Dependencies{
		Store:    st,
		Tokens:   tokens,
		Cache:    itemCache,
		Events:   events,
		Metrics:  metrics,
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on :%s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}
	logrus.Info("Server exited")
}
