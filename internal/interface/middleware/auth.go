package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	repo "github.com/oksasatya/solargrowth/internal/domain/repository"
	"github.com/oksasatya/solargrowth/pkg/helpers"
	"github.com/oksasatya/solargrowth/pkg/response"
)

const (
	CtxUserIDKey  = "userID"
	CtxIsAdminKey = "isAdmin"
)

// Authorizer resolves an access token to the user's live session.
type Authorizer interface {
	Authorize(ctx context.Context, accessToken string) (*repo.Session, error)
}

// Auth accepts the access_token cookie or a Bearer header and requires the
// token to match the user's current session. It sets userID (the phone) and
// isAdmin on the Gin context.
func Auth(authz Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerOrCookie(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		sess, err := authz.Authorize(c.Request.Context(), token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "session expired or invalid", nil)
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, sess.Phone)
		c.Set(CtxIsAdminKey, sess.IsAdmin)
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxIsAdminKey) {
			response.Error[any](c, http.StatusForbidden, "admin only", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerOrCookie(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
	}
	token, err := c.Cookie(helpers.AccessCookie)
	if err != nil {
		return ""
	}
	return token
}
