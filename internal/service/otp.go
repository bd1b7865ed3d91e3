package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Skotchmaster/greenhaven/internal/logging"
	"github.com/Skotchmaster/greenhaven/internal/metrics"
	"github.com/Skotchmaster/greenhaven/internal/notify"
	"github.com/Skotchmaster/greenhaven/internal/otp"
	"github.com/Skotchmaster/greenhaven/internal/repo"
)

const (
	ChannelEmail  = "email"
	ChannelMobile = "mobile"
)

// OTPService issues and checks codes on two independent channels.
type OTPService struct {
	Email    *otp.Store
	Mobile   *otp.Store
	Notifier Notifier
	SMS      SMSSender
	Repo     *repo.GormRepo
	TTL      time.Duration
	Metrics  *metrics.Metrics
}

func (s *OTPService) SendEmailOTP(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "otp.send_email")

	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}

	code := s.Email.Issue(email)
	s.Metrics.OTPIssued(ChannelEmail)

	if s.Notifier == nil {
		return fmt.Errorf("%w: no notifier configured", ErrDelivery)
	}
	res := s.Notifier.Send(ctx, notify.Message{
		To:       email,
		Subject:  "GreenHaven Email OTP",
		Template: notify.TemplateEmailOTP,
		Data:     notify.OTPData{Code: code, TTLMinutes: ttlMinutes(s.TTL)},
	})
	s.Metrics.Notification(notify.TemplateEmailOTP, res.Sent)
	if !res.Sent {
		l.Error("send_email_otp_error", "status", 500, "email", email, "error", res.Error)
		return fmt.Errorf("%w: %s", ErrDelivery, res.Error)
	}
	return nil
}

// VerifyEmailOTP marks the owning user verified on success. A missing user
// does not fail the verification.
func (s *OTPService) VerifyEmailOTP(ctx context.Context, email, code string) (otp.Result, error) {
	l := logging.FromContext(ctx).With("svc", "otp.verify_email")

	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return otp.NotFound, fmt.Errorf("%w: email and otp are required", ErrValidation)
	}

	res := s.Email.Verify(email, code)
	s.Metrics.OTPVerified(ChannelEmail, res.String())
	if res != otp.Verified || s.Repo == nil {
		return res, nil
	}

	found, err := s.Repo.MarkEmailVerified(ctx, email)
	switch {
	case err != nil:
		l.Error("mark_email_verified_error", "email", email, "error", err)
	case !found:
		l.Info("email_verified_without_account", "email", email)
	}
	return res, nil
}

func (s *OTPService) SendMobileOTP(ctx context.Context, mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return fmt.Errorf("%w: mobile number is required", ErrValidation)
	}

	code := s.Mobile.Issue(mobile)
	s.Metrics.OTPIssued(ChannelMobile)

	if s.SMS == nil {
		return fmt.Errorf("%w: no sms sender configured", ErrDelivery)
	}
	if err := s.SMS.SendCode(ctx, mobile, code); err != nil {
		logging.FromContext(ctx).Error("send_mobile_otp_error", "status", 500, "error", err)
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return nil
}

func (s *OTPService) VerifyMobileOTP(ctx context.Context, mobile, code string) (otp.Result, error) {
	mobile = strings.TrimSpace(mobile)
	code = strings.TrimSpace(code)
	if mobile == "" || code == "" {
		return otp.NotFound, fmt.Errorf("%w: mobile and otp are required", ErrValidation)
	}

	res := s.Mobile.Verify(mobile, code)
	s.Metrics.OTPVerified(ChannelMobile, res.String())
	return res, nil
}

// ttlMinutes rounds up so a short lifetime never reads as zero minutes.
func ttlMinutes(d time.Duration) int {
	if m := int(math.Ceil(d.Minutes())); m > 1 {
		return m
	}
	return 1
}
