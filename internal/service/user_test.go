package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/greenhaven/internal/db/dbtest"
	"github.com/Skotchmaster/greenhaven/internal/models"
	"github.com/Skotchmaster/greenhaven/internal/mykafka"
	"github.com/Skotchmaster/greenhaven/internal/repo"
	"github.com/Skotchmaster/greenhaven/internal/tokens"
	"github.com/Skotchmaster/greenhaven/internal/transport"
)

func newUserService(t *testing.T) (*UserService, *fakePublisher) {
	pub := &fakePublisher{}
	return &UserService{
		Repo:       repo.New(dbtest.New(t)),
		JWTSecret:  []byte("test-jwt-secret"),
		AdminEmail: "Admin@greenhaven.local",
		Events:     pub,
	}, pub
}

func TestSignupAndLogin(t *testing.T) {
	svc, pub := newUserService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, transport.SignupRequest{FirstName: "Ada", LastName: "L", Email: "Ada@x.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.Equal(t, []string{mykafka.TopicUserEvents}, pub.topics)

	_, err = svc.Signup(ctx, transport.SignupRequest{Email: "ada@x.com", Password: "other"})
	assert.ErrorIs(t, err, ErrConflict)

	res, err := svc.Login(ctx, "ada@x.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", res.Email)
	assert.False(t, res.IsAdmin)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, models.RoleUser, claims.Role)

	_, err = svc.Login(ctx, "ada@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@x.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignup_AdminEmailGetsAdminRole(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, transport.SignupRequest{Email: "admin@greenhaven.local", Password: "root"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	res, err := svc.Login(ctx, "admin@greenhaven.local", "root")
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)
}

func TestLogin_PromotesLateAdmin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	svc.AdminEmail = ""
	_, err := svc.Signup(ctx, transport.SignupRequest{Email: "boss@x.com", Password: "pw"})
	require.NoError(t, err)

	svc.AdminEmail = "boss@x.com"
	res, err := svc.Login(ctx, "boss@x.com", "pw")
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)
}

func TestSignup_Validation(t *testing.T) {
	svc, _ := newUserService(t)

	tests := []struct {
		name string
		req  transport.SignupRequest
	}{
		{name: "empty email", req: transport.SignupRequest{Password: "pw"}},
		{name: "empty password", req: transport.SignupRequest{Email: "a@x.com"}},
		{name: "bad email", req: transport.SignupRequest{Email: "not-an-email", Password: "pw"}},
		{name: "long password", req: transport.SignupRequest{Email: "a@x.com", Password: strings.Repeat("x", 73)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrValidation)
}
