package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/greenhaven/internal/logging"
	"github.com/Skotchmaster/greenhaven/internal/otp"
	"github.com/Skotchmaster/greenhaven/internal/service"
	"github.com/Skotchmaster/greenhaven/internal/transport"
)

type OTPHTTP struct {
	Svc *service.OTPService
}

func verifyFailure(c echo.Context, res otp.Result) error {
	if res == otp.NotFound {
		return fail(c, http.StatusNotFound, "No OTP found")
	}
	return fail(c, http.StatusBadRequest, "Invalid or expired OTP")
}

func (h *OTPHTTP) SendEmailOTP(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "otp.send_email")

	var req transport.EmailOTPRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.SendEmailOTP(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrValidation) {
			return fail(c, http.StatusBadRequest, "Email is required")
		}
		l.Error("send_email_otp_error", "status", 500, "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to send OTP")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "OTP sent to email"})
}

func (h *OTPHTTP) VerifyEmailOTP(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "otp.verify_email")

	var req transport.EmailOTPRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.VerifyEmailOTP(ctx, req.Email, req.OTP)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Email and OTP are required")
	}
	if res != otp.Verified {
		l.Warn("verify_email_otp_failed", "result", res.String())
		return verifyFailure(c, res)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Email verified!"})
}

func (h *OTPHTTP) SendMobileOTP(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "otp.send_mobile")

	var req transport.MobileOTPRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.SendMobileOTP(ctx, req.Mobile); err != nil {
		if errors.Is(err, service.ErrValidation) {
			return fail(c, http.StatusBadRequest, "Mobile number is required")
		}
		l.Error("send_mobile_otp_error", "status", 500, "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to send OTP")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "OTP sent to mobile"})
}

func (h *OTPHTTP) VerifyMobileOTP(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "otp.verify_mobile")

	var req transport.MobileOTPRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.VerifyMobileOTP(ctx, req.Mobile, req.OTP)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Mobile and OTP are required")
	}
	if res != otp.Verified {
		l.Warn("verify_mobile_otp_failed", "result", res.String())
		return verifyFailure(c, res)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Mobile number verified!"})
}
