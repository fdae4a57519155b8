package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/solargrowth/internal/application"
	"github.com/oksasatya/solargrowth/internal/domain/entity"
	repo "github.com/oksasatya/solargrowth/internal/domain/repository"
	"github.com/oksasatya/solargrowth/internal/infrastructure/memory"
	"github.com/oksasatya/solargrowth/internal/interface/middleware"
	"github.com/oksasatya/solargrowth/pkg/helpers"
)

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   map[string]any  `json:"error"`
}

type api struct {
	t      *testing.T
	engine *gin.Engine
	svc    *application.Service
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users, requests := memory.NewUserRepository(), memory.NewRequestRepository()
	svc := application.NewService(
		users,
		memory.NewProductRepository(),
		requests,
		memory.NewSessionStore(),
		memory.NewTransactor(users, requests),
		helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour),
		logger,
		application.DefaultRules(),
	)
	_, err := svc.Seed(context.Background(), "01900000000", "admin-pass")
	require.NoError(t, err)

	authH := NewAuthHandler(svc, logger, "", false)
	userH := NewUserHandler(svc, logger)
	adminH := NewAdminHandler(svc, logger)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	g := r.Group("/api")
	g.POST("/register", authH.Register)
	g.POST("/login", authH.Login)
	g.POST("/refresh", authH.Refresh)
	g.GET("/products", userH.Products)

	auth := g.Group("/", middleware.Auth(svc))
	auth.POST("/logout", authH.Logout)
	auth.GET("/me", userH.GetProfile)
	auth.POST("/orders", userH.Buy)
	auth.POST("/recharges", userH.SubmitRecharge)

	admin := g.Group("/admin", middleware.Auth(svc), middleware.RequireAdmin())
	admin.GET("/dashboard", adminH.Dashboard)
	admin.GET("/recharges", adminH.ListRecharges)
	admin.POST("/recharges/:id/resolve", adminH.ResolveRecharge)
	admin.GET("/users/search", adminH.SearchUsers)

	return &api{t: t, engine: r, svc: svc}
}

func (a *api) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (a *api) login(phone, password string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/login", "", map[string]string{"phone": phone, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	token, _ := env.Meta["access_token"].(string)
	require.NotEmpty(a.t, token)
	return token
}

func TestRegisterLoginProfile(t *testing.T) {
	a := newAPI(t)

	w, env := a.do(http.MethodPost, "/api/register", "", map[string]string{"phone": "01711111111", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.NotContains(t, string(env.Data), "password")

	w, _ = a.do(http.MethodPost, "/api/register", "", map[string]string{"phone": "01711111111", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = a.do(http.MethodPost, "/api/login", "", map[string]string{"phone": "01711111111", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	lw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(`{"phone":"01711111111","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	a.engine.ServeHTTP(lw, req)
	require.Equal(t, http.StatusOK, lw.Code)
	var names []string
	for _, ck := range lw.Result().Cookies() {
		names = append(names, ck.Name)
	}
	assert.Contains(t, names, helpers.AccessCookie)
	assert.Contains(t, names, helpers.RefreshCookie)

	token := a.login("01711111111", "secret1")
	w, env = a.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "01711111111", me["phone"])
	assert.Equal(t, false, me["hasPin"])

	w, _ = a.do(http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = a.do(http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPayloadErrors(t *testing.T) {
	a := newAPI(t)

	w, env := a.do(http.MethodPost, "/api/register", "", "{broken")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid json", env.Error["payload"])

	w, env = a.do(http.MethodPost, "/api/register", "", map[string]string{"phone": "12", "password": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error, "phone")
	assert.Contains(t, env.Error, "password")
}

func TestRechargeApprovedByAdmin(t *testing.T) {
	a := newAPI(t)
	_, _ = a.do(http.MethodPost, "/api/register", "", map[string]string{"phone": "01722222222", "password": "secret1"})
	user := a.login("01722222222", "secret1")

	w, _ := a.do(http.MethodGet, "/api/admin/dashboard", user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := a.do(http.MethodPost, "/api/recharges", user, map[string]any{"amount": 2000, "trxId": "TRX998877"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var rec struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "Pending", rec.Status)

	admin := a.login("01900000000", "admin-pass")
	w, env = a.do(http.MethodGet, "/api/admin/recharges?status=Pending", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Meta["count"])

	w, _ = a.do(http.MethodPost, "/api/admin/recharges/"+rec.ID+"/resolve", admin, map[string]string{"status": "Success"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = a.do(http.MethodPost, "/api/admin/recharges/"+rec.ID+"/resolve", admin, map[string]string{"status": "Failed"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = a.do(http.MethodPost, "/api/admin/recharges/nope/resolve", admin, map[string]string{"status": "Success"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, env = a.do(http.MethodGet, "/api/me", user, nil)
	var me struct {
		Balance float64 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, 2000.0, me.Balance)

	w, env = a.do(http.MethodGet, "/api/admin/users/search?q=0172", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "01722222222")
}

func TestBuyErrors(t *testing.T) {
	a := newAPI(t)
	_, _ = a.do(http.MethodPost, "/api/register", "", map[string]string{"phone": "01733333333", "password": "secret1"})
	user := a.login("01733333333", "secret1")

	w, _ := a.do(http.MethodPost, "/api/orders", user, map[string]any{"productId": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = a.do(http.MethodPost, "/api/orders", user, map[string]any{"productId": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type downUsers struct {
	repo.UserRepository
}

func (downUsers) Get(context.Context, string) (*entity.User, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestLoginDuringStoreOutageIs500(t *testing.T) {
	a := newAPI(t)
	a.svc.Users = downUsers{UserRepository: a.svc.Users}

	w, env := a.do(http.MethodPost, "/api/login", "", map[string]string{"phone": "01900000000", "password": "admin-pass"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", env.Message)
}
