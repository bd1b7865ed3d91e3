package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/greenhaven/internal/db"
	"github.com/Skotchmaster/greenhaven/internal/logging"
	"github.com/Skotchmaster/greenhaven/internal/metrics"
	"github.com/Skotchmaster/greenhaven/internal/middleware/auth"
	"github.com/Skotchmaster/greenhaven/internal/middleware/csrf"
)

type Deps struct {
	Order    *OrderHTTP
	OTP      *OTPHTTP
	User     *UserHTTP
	Cart     *CartHTTP
	Wishlist *WishlistHTTP

	Auth    *auth.Middleware
	CSRF    csrf.Config
	DB      *gorm.DB
	Metrics *metrics.Metrics
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB == nil {
			return c.NoContent(http.StatusOK)
		}
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Warn("ready_error", "status", 503, "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	csrfCfg := d.CSRF
	if csrfCfg.Skip == nil {
		csrfCfg.Skip = auth.BearerRequest
	}
	admin := []echo.MiddlewareFunc{d.Auth.RequireAdmin, csrf.Middleware(csrfCfg)}

	// cookie-authenticated admins fetch their token here before mutating
	e.GET("/api/csrf", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, admin...)

	e.POST("/orders", d.Order.PlaceOrder)
	e.GET("/orders", d.Order.ListOrders)
	e.GET("/orders/search", d.Order.SearchOrders, admin...)
	e.DELETE("/orders", d.Order.DeleteAllOrders, admin...)
	e.DELETE("/orders/:id", d.Order.DeleteOrder, admin...)
	e.PATCH("/orders/:id/status", d.Order.UpdateStatus, admin...)

	e.POST("/send-email-otp", d.OTP.SendEmailOTP)
	e.POST("/verify-email-otp", d.OTP.VerifyEmailOTP)
	e.POST("/send-mobile-otp", d.OTP.SendMobileOTP)
	e.POST("/verify-mobile-otp", d.OTP.VerifyMobileOTP)

	e.POST("/api/signup", d.User.Signup)
	e.POST("/api/login", d.User.Login)

	e.POST("/cart", d.Cart.AddToCart)
	e.GET("/cart", d.Cart.ListCart)
	e.PATCH("/cart/:id", d.Cart.UpdateQuantity)
	e.DELETE("/cart/:id", d.Cart.DeleteItem)
	e.DELETE("/cart", d.Cart.Clear)

	e.POST("/wishlist", d.Wishlist.Add)
	e.GET("/wishlist", d.Wishlist.List)
	e.DELETE("/wishlist/:id", d.Wishlist.Remove)
}
