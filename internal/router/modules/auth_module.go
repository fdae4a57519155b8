package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/solargrowth/internal/container"
	handlers "github.com/oksasatya/solargrowth/internal/interface/http"
	"github.com/oksasatya/solargrowth/internal/interface/middleware"
)

// AuthModule: POST /register, /login, /refresh (public) and /logout.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Authz   middleware.Authorizer
}

func NewAuthModule(h *handlers.AuthHandler, authz middleware.Authorizer) *AuthModule {
	return &AuthModule{Handler: h, Authz: authz}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIP(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	rg.POST("/logout", middleware.Auth(m.Authz), m.Handler.Logout)
}
