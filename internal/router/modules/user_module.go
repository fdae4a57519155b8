package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/solargrowth/internal/container"
	handlers "github.com/oksasatya/solargrowth/internal/interface/http"
	"github.com/oksasatya/solargrowth/internal/interface/middleware"
)

// UserModule serves the catalog publicly and the wallet to logged-in users.
type UserModule struct {
	Handler *handlers.UserHandler
	Authz   middleware.Authorizer
}

func NewUserModule(h *handlers.UserHandler, authz middleware.Authorizer) *UserModule {
	return &UserModule{Handler: h, Authz: authz}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	rg.GET("/products", middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), nil), m.Handler.Products)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Authz))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUser(), middleware.AllowAdmin()))
	{
		auth.GET("/me", m.Handler.GetProfile)
		auth.PUT("/me", m.Handler.UpdateProfile)

		auth.POST("/orders", m.Handler.Buy)
		auth.GET("/orders", m.Handler.Orders)
		auth.POST("/income/collect", m.Handler.CollectIncome)
		auth.POST("/checkin", m.Handler.CheckIn)

		auth.POST("/recharges", m.Handler.SubmitRecharge)
		auth.GET("/recharges", m.Handler.Recharges)
		auth.POST("/withdrawals", m.Handler.SubmitWithdrawal)
		auth.GET("/withdrawals", m.Handler.Withdrawals)

		auth.GET("/transactions", m.Handler.Transactions)
		auth.GET("/notifications", m.Handler.Notifications)
		auth.GET("/team", m.Handler.Team)
	}
}
