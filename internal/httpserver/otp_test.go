package httpserver

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/greenhaven/internal/models"
	"github.com/Skotchmaster/greenhaven/internal/transport"
)

func TestEmailOTPFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.repo.CreateUserIfNotExists(ctx, &models.User{FirstName: "A", Email: "a@x.com", PasswordHash: "h", Role: models.RoleUser}))

	rec := env.do(t, http.MethodPost, "/send-email-otp", transport.EmailOTPRequest{Email: "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "OTP sent to email", decode[map[string]any](t, rec)["message"])

	sent := env.mail.envelopes()
	require.Len(t, sent, 1)
	code := codeIn(t, sent[0])

	// issued codes never start with 0
	wrong := "000000"

	steps := []struct {
		name string
		req  transport.EmailOTPRequest
		code int
		msg  string
	}{
		{"missing otp", transport.EmailOTPRequest{Email: "a@x.com"}, http.StatusBadRequest, "Email and OTP are required"},
		{"wrong code", transport.EmailOTPRequest{Email: "a@x.com", OTP: wrong}, http.StatusBadRequest, "Invalid or expired OTP"},
		{"right code", transport.EmailOTPRequest{Email: "a@x.com", OTP: code}, http.StatusOK, "Email verified!"},
		{"replayed code", transport.EmailOTPRequest{Email: "a@x.com", OTP: code}, http.StatusNotFound, "No OTP found"},
	}
	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/verify-email-otp", s.req)
			require.Equal(t, s.code, rec.Code, rec.Body.String())
			assert.Equal(t, s.msg, decode[map[string]any](t, rec)["message"])
		})
	}

	u, err := env.repo.UserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, u.IsEmailVerified)
}

func TestSendEmailOTP_Failures(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/send-email-otp", transport.EmailOTPRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env.mail.setDown(true)
	rec = env.do(t, http.MethodPost, "/send-email-otp", transport.EmailOTPRequest{Email: "a@x.com"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to send OTP", decode[map[string]any](t, rec)["message"])
}

func TestMobileOTPFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/send-mobile-otp", transport.MobileOTPRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/verify-mobile-otp", transport.MobileOTPRequest{Mobile: "+15550100", OTP: "123456"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/send-mobile-otp", transport.MobileOTPRequest{Mobile: "+15550100"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OTP sent to mobile", decode[map[string]any](t, rec)["message"])

	env.sms.mu.Lock()
	code := env.sms.codes["+15550100"]
	env.sms.mu.Unlock()
	require.Len(t, code, 6)

	rec = env.do(t, http.MethodPost, "/verify-mobile-otp", transport.MobileOTPRequest{Mobile: "+15550100", OTP: code})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mobile number verified!", decode[map[string]any](t, rec)["message"])
}
