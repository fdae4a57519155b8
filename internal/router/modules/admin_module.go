package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/solargrowth/internal/interface/http"
	"github.com/oksasatya/solargrowth/internal/interface/middleware"
)

// AdminModule groups the back-office routes under /admin.
type AdminModule struct {
	Handler *handlers.AdminHandler
	Authz   middleware.Authorizer
}

func NewAdminModule(h *handlers.AdminHandler, authz middleware.Authorizer) *AdminModule {
	return &AdminModule{Handler: h, Authz: authz}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(m.Authz), middleware.RequireAdmin())
	{
		admin.GET("/dashboard", m.Handler.Dashboard)

		admin.GET("/recharges", m.Handler.ListRecharges)
		admin.POST("/recharges/:id/resolve", m.Handler.ResolveRecharge)
		admin.GET("/withdrawals", m.Handler.ListWithdrawals)
		admin.POST("/withdrawals/:id/resolve", m.Handler.ResolveWithdrawal)

		admin.POST("/products", m.Handler.CreateProduct)
		admin.PUT("/products/:id", m.Handler.UpdateProduct)
		admin.DELETE("/products/:id", m.Handler.DeleteProduct)
		admin.POST("/products/:id/image", m.Handler.UploadImage)

		admin.GET("/users/search", m.Handler.SearchUsers)
		admin.PATCH("/users/:phone", m.Handler.AdjustUser)
	}
}
