package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/solargrowth/config"
	"github.com/oksasatya/solargrowth/internal/container"
	pginfra "github.com/oksasatya/solargrowth/internal/infrastructure/postgres"
	"github.com/oksasatya/solargrowth/internal/router"
	"github.com/oksasatya/solargrowth/pkg/helpers"
)

// seed loads the default catalog and the admin account into Postgres.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL))

	svc := router.BuildService()
	res, err := svc.Seed(ctx, cfg.AdminPhone, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	fmt.Printf("products created: %d\n", res.ProductsCreated)
	switch {
	case res.AdminCreated:
		fmt.Printf("admin created: phone=%s password=%s\n", cfg.AdminPhone, cfg.AdminPassword)
	case res.AdminPromoted:
		fmt.Printf("existing user %s promoted to admin\n", cfg.AdminPhone)
	default:
		fmt.Printf("admin %s already present\n", cfg.AdminPhone)
	}
}
