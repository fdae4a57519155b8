package router

import (
	"time"

	"github.com/oksasatya/solargrowth/internal/application"
	"github.com/oksasatya/solargrowth/internal/container"
	repo "github.com/oksasatya/solargrowth/internal/domain/repository"
	"github.com/oksasatya/solargrowth/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/solargrowth/internal/infrastructure/postgres"
	redisinfra "github.com/oksasatya/solargrowth/internal/infrastructure/redis"
	handlers "github.com/oksasatya/solargrowth/internal/interface/http"
	"github.com/oksasatya/solargrowth/internal/router/modules"
)

const catalogCacheTTL = 5 * time.Minute

type stores struct {
	users    repo.UserRepository
	products repo.ProductRepository
	requests repo.RequestRepository
	sessions repo.SessionStore
	tx       repo.Transactor
}

// buildStores picks Postgres when a pool is registered and the in-memory
// store otherwise. Sessions live in Redis whenever it is available.
func buildStores() stores {
	var st stores
	if pool := container.GetPGPool(); pool != nil {
		st.users = pginfra.NewUserRepository(pool)
		st.products = pginfra.NewProductRepository(pool)
		st.requests = pginfra.NewRequestRepository(pool)
		st.tx = pginfra.NewTransactor(pool)
	} else {
		users, requests := memory.NewUserRepository(), memory.NewRequestRepository()
		st.users = users
		st.products = memory.NewProductRepository()
		st.requests = requests
		st.tx = memory.NewTransactor(users, requests)
	}

	if rdb := container.GetRedis(); rdb != nil {
		st.sessions = redisinfra.NewSessionStore(rdb)
		st.products = redisinfra.NewCachedProductRepository(st.products, rdb, catalogCacheTTL, container.GetLogger())
	} else {
		st.sessions = memory.NewSessionStore()
	}
	return st
}

// BuildService wires the ledger service from the container's singletons.
func BuildService() *application.Service {
	cfg := container.GetConfig()
	st := buildStores()

	rules := application.DefaultRules()
	rules.ReferralBonus = cfg.ReferralBonus
	rules.CheckInBonus = cfg.CheckInBonus
	rules.LiveEconomics = cfg.LiveEconomics()
	rules.Location = cfg.Location()
	rules.InviteBaseURL = cfg.InviteBaseURL
	rules.Withdrawal.OpenHour = cfg.WithdrawOpenHour
	rules.Withdrawal.CloseHour = cfg.WithdrawCloseHour
	rules.Withdrawal.Minimum = cfg.WithdrawMinAmount
	rules.Withdrawal.Location = cfg.Location()

	svc := application.NewService(st.users, st.products, st.requests, st.sessions, st.tx, container.GetJWT(), container.GetLogger(), rules)
	svc.Metrics = container.GetMetrics()
	if es := container.GetES(); es != nil {
		svc.ES = es
		svc.ESUsersIndex = cfg.ESUsersIndex
	}
	if gcs := container.GetGCS(); gcs != nil {
		svc.GCS = gcs
		svc.GCSBucket = cfg.GCSBucket
	}
	if pub := container.GetRabbitPub(); pub != nil {
		svc.Events = pub
	}
	return svc
}

// InitModules registers every feature module with the router registry.
// Call once during startup.
func InitModules(r *Registry, svc *application.Service) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc, logger, cfg.CookieDomain, cfg.CookieSecure), svc))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc, logger), svc))
	r.Add(modules.NewAdminModule(handlers.NewAdminHandler(svc, logger), svc))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(r.Engine, container.GetMetrics()))
	}
}
