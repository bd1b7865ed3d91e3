package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/greenhaven/internal/logging"
	"github.com/Skotchmaster/greenhaven/internal/models"
	"github.com/Skotchmaster/greenhaven/internal/tokens"
)

const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

type Middleware struct {
	JWTSecret []byte
}

func New(secret []byte) *Middleware {
	return &Middleware{JWTSecret: secret}
}

// RequireAuth accepts the accessToken cookie or an Authorization bearer
// token and stores the caller's identity on the echo context.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("mw", "auth.require_auth")

		raw := tokenFromRequest(c)
		if raw == "" {
			l.Warn("auth_error", "status", 401, "reason", "missing token")
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			l.Warn("auth_error", "status", 401, "reason", "invalid token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxRole, claims.Role)
		return next(c)
	}
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireAuth(func(c echo.Context) error {
		if role, _ := c.Get(CtxRole).(string); role != models.RoleAdmin {
			logging.FromContext(c.Request().Context()).Warn("auth_error", "status", 403, "reason", "not admin")
			return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
		}
		return next(c)
	})
}

// BearerRequest reports whether the request authenticates with a header
// rather than a cookie.
func BearerRequest(c echo.Context) bool {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	return strings.HasPrefix(h, "Bearer ")
}

func tokenFromRequest(c echo.Context) string {
	if BearerRequest(c) {
		return strings.TrimSpace(strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer "))
	}
	if ck, err := c.Cookie(tokens.CookieName); err == nil {
		return ck.Value
	}
	return ""
}
