package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/solargrowth/internal/application"
	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/pkg/response"
)

const maxImageBytes = 5 << 20

var imageTypes = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

type AdminHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewAdminHandler(svc *application.Service, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid product id", nil)
		return 0, false
	}
	return id, true
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	st, err := h.Svc.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, st, "dashboard", nil)
}

// ListRecharges GET /api/admin/recharges?status=Pending
func (h *AdminHandler) ListRecharges(c *gin.Context) {
	list, err := h.Svc.ListRecharges(c.Request.Context(), entity.RequestStatus(c.Query("status")))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "recharges", map[string]any{"count": len(list)})
}

func (h *AdminHandler) ResolveRecharge(c *gin.Context) {
	var in application.DecisionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	rec, err := h.Svc.ResolveRecharge(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, rec, "recharge resolved", nil)
}

func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	list, err := h.Svc.ListWithdrawals(c.Request.Context(), entity.RequestStatus(c.Query("status")))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "withdrawals", map[string]any{"count": len(list)})
}

func (h *AdminHandler) ResolveWithdrawal(c *gin.Context) {
	var in application.DecisionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	rec, err := h.Svc.ResolveWithdrawal(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, rec, "withdrawal resolved", nil)
}

func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var in application.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	p, err := h.Svc.CreateProduct(c.Request.Context(), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "product created", nil)
}

func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var in application.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	p, err := h.Svc.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "product updated", nil)
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteProduct(c.Request.Context(), id); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "product deleted", nil)
}

// UploadImage POST /api/admin/products/:id/image (multipart field "image")
func (h *AdminHandler) UploadImage(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "image file is required", nil)
		return
	}
	if fh.Size > maxImageBytes {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "image exceeds 5MB", nil)
		return
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageTypes[ext] {
		response.Error[any](c, http.StatusBadRequest, "image must be png, jpg or webp", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	defer f.Close()

	p, err := h.Svc.UploadProductImage(c.Request.Context(), id, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "image uploaded", nil)
}

// SearchUsers GET /api/admin/users/search?q=017&size=20
func (h *AdminHandler) SearchUsers(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	list, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "users", map[string]any{"count": len(list)})
}

func (h *AdminHandler) AdjustUser(c *gin.Context) {
	var in application.AdjustUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Svc.AdjustUser(c.Request.Context(), c.Param("phone"), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "user updated", nil)
}
