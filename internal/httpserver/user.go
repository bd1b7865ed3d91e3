package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/greenhaven/internal/logging"
	"github.com/Skotchmaster/greenhaven/internal/service"
	"github.com/Skotchmaster/greenhaven/internal/tokens"
	"github.com/Skotchmaster/greenhaven/internal/transport"
)

type UserHTTP struct {
	Svc          *service.UserService
	SecureCookie bool
}

func (h *UserHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid body", "error", err)
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	if _, err := h.Svc.Signup(ctx, req); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return fail(c, http.StatusBadRequest, validationMessage(err))
		case errors.Is(err, service.ErrConflict):
			l.Warn("signup_error", "status", 409, "reason", "email already registered")
			return fail(c, http.StatusConflict, "Email already registered")
		default:
			l.Error("signup_error", "status", 500, "error", err)
			return fail(c, http.StatusInternalServerError, "internal error")
		}
	}
	return ok(c, http.StatusCreated, nil)
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return fail(c, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			return fail(c, http.StatusUnauthorized, "Invalid email or password")
		default:
			l.Error("login_error", "status", 500, "error", err)
			return fail(c, http.StatusInternalServerError, "internal error")
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     tokens.CookieName,
		Value:    res.AccessToken,
		Path:     "/",
		Expires:  res.AccessExp,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return ok(c, http.StatusOK, echo.Map{"email": res.Email})
}
