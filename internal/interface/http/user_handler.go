package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/solargrowth/internal/application"
	"github.com/oksasatya/solargrowth/internal/interface/middleware"
	"github.com/oksasatya/solargrowth/pkg/response"
)

// UserHandler serves the authenticated user's own wallet, orders and team.
type UserHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

func phoneOf(c *gin.Context) string { return c.GetString(middleware.CtxUserIDKey) }

func (h *UserHandler) Products(c *gin.Context) {
	list, err := h.Svc.Catalog(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "products", map[string]any{"count": len(list)})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.Profile(c.Request.Context(), phoneOf(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var in application.UpdateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), phoneOf(c), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "profile updated", nil)
}

func (h *UserHandler) Buy(c *gin.Context) {
	var in application.BuyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	order, err := h.Svc.Buy(c.Request.Context(), phoneOf(c), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, order, "purchase successful", nil)
}

func (h *UserHandler) Orders(c *gin.Context) {
	list, err := h.Svc.Orders(c.Request.Context(), phoneOf(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "orders", map[string]any{"count": len(list)})
}

func (h *UserHandler) CollectIncome(c *gin.Context) {
	amount, err := h.Svc.CollectIncome(c.Request.Context(), phoneOf(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"amount": amount}, "income collected", nil)
}

func (h *UserHandler) CheckIn(c *gin.Context) {
	bonus, err := h.Svc.DailyCheckIn(c.Request.Context(), phoneOf(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bonus": bonus}, "checked in", nil)
}

func (h *UserHandler) SubmitRecharge(c *gin.Context) {
	var in application.RechargeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	rec, err := h.Svc.SubmitRecharge(c.Request.Context(), phoneOf(c), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusAccepted, rec, "recharge submitted", nil)
}

func (h *UserHandler) Recharges(c *gin.Context) {
	list, err := h.Svc.Recharges(c.Request.Context(), phoneOf(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "recharges", map[string]any{"count": len(list)})
}

func (h *UserHandler) SubmitWithdrawal(c *gin.Context) {
	var in application.WithdrawalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	rec, err := h.Svc.SubmitWithdrawal(c.Request.Context(), phoneOf(c), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusAccepted, rec, "withdrawal submitted", nil)
}

func (h *UserHandler) Withdrawals(c *gin.Context) {
	list, err := h.Svc.Withdrawals(c.Request.Context(), phoneOf(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "withdrawals", map[string]any{"count": len(list)})
}

func (h *UserHandler) Transactions(c *gin.Context) {
	list, err := h.Svc.Transactions(c.Request.Context(), phoneOf(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "transactions", map[string]any{"count": len(list)})
}

// Notifications returns the list as it was and marks every entry read.
func (h *UserHandler) Notifications(c *gin.Context) {
	list, unread, err := h.Svc.Notifications(c.Request.Context(), phoneOf(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "notifications", map[string]any{"count": len(list), "unread": unread})
}

func (h *UserHandler) Team(c *gin.Context) {
	team, err := h.Svc.Team(c.Request.Context(), phoneOf(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, team, "team", nil)
}
