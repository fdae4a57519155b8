package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/solargrowth/config"
	"github.com/oksasatya/solargrowth/internal/application"
	"github.com/oksasatya/solargrowth/internal/container"
	pginfra "github.com/oksasatya/solargrowth/internal/infrastructure/postgres"
	"github.com/oksasatya/solargrowth/internal/interface/middleware"
	"github.com/oksasatya/solargrowth/internal/router"
	"github.com/oksasatya/solargrowth/pkg/helpers"
	"github.com/oksasatya/solargrowth/pkg/metrics"
	"github.com/oksasatya/solargrowth/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetMetrics(metrics.New())
	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL))

	switch cfg.StoreDriver {
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		container.SetPGPool(pool)
	case "memory":
		logger.Warn("STORE_DRIVER=memory; ledger state is lost on restart")
	default:
		log.Fatalf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	connectOptional(ctx, cfg, logger)
	defer closeOptional()

	svc := router.BuildService()
	if cfg.StoreDriver == "memory" {
		if _, err := svc.Seed(ctx, cfg.AdminPhone, cfg.AdminPassword); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	scheduler := application.NewAccrualScheduler(svc, cfg.AccrualInterval)
	scheduler.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP(), middleware.Metrics(container.GetMetrics()))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(middleware.AccessLog(logger))
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, svc)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")
	scheduler.Stop()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// connectOptional dials Redis, Elasticsearch, GCS and RabbitMQ. Each one that
// is unreachable or unconfigured is left out and the matching feature
// degrades: memory sessions, store-scan search, no image upload, no events.
func connectOptional(ctx context.Context, cfg *config.Config, logger *logrus.Logger) {
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable; using in-process sessions without rate limits")
		_ = rdb.Close()
	} else {
		container.SetRedis(rdb)
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch client init failed")
		} else {
			esCtx, esCancel := context.WithTimeout(ctx, 5*time.Second)
			if err := helpers.EnsureUsersIndex(esCtx, es, cfg.ESUsersIndex); err != nil {
				logger.WithError(err).Warn("users index not ready; search falls back to the store")
			}
			esCancel()
			container.SetES(es)
		}
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs client init failed; image upload disabled")
		} else {
			container.SetGCS(gcs)
		}
	}

	if cfg.EventsEnabled && cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; ledger events disabled")
		} else {
			container.SetRabbitPub(pub)
		}
	}
}

func closeOptional() {
	if rdb := container.GetRedis(); rdb != nil {
		_ = rdb.Close()
	}
	if gcs := container.GetGCS(); gcs != nil {
		_ = gcs.Close()
	}
	container.GetRabbitPub().Close()
}
