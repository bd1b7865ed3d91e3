package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/greenhaven/internal/tokens"
	"github.com/Skotchmaster/greenhaven/internal/transport"
)

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)

	signup := transport.SignupRequest{FirstName: "Ada", LastName: "L", Email: "ada@x.com", Password: "s3cret"}

	rec := env.do(t, http.MethodPost, "/api/signup", signup)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode[map[string]any](t, rec)["success"])

	rec = env.do(t, http.MethodPost, "/api/signup", signup)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already registered", decode[map[string]any](t, rec)["message"])

	rec = env.do(t, http.MethodPost, "/api/login", transport.LoginRequest{Email: "ADA@x.com", Password: "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ada@x.com", decode[map[string]any](t, rec)["email"])

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == tokens.CookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	claims, err := tokens.AccessClaimsFromToken(session.Value, []byte(testJWTSecret))
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", claims.Email)
}

func TestSignupLogin_Failures(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/signup",
		transport.SignupRequest{FirstName: "Ada", Email: "ada@x.com", Password: "s3cret"}).Code)

	cases := []struct {
		name string
		path string
		body any
		code int
		msg  string
	}{
		{"signup without password", "/api/signup", transport.SignupRequest{Email: "b@x.com"}, http.StatusBadRequest, "email and password are required"},
		{"signup bad email", "/api/signup", transport.SignupRequest{Email: "not-an-email", Password: "p"}, http.StatusBadRequest, "invalid email"},
		{"login wrong password", "/api/login", transport.LoginRequest{Email: "ada@x.com", Password: "nope"}, http.StatusUnauthorized, "Invalid email or password"},
		{"login unknown user", "/api/login", transport.LoginRequest{Email: "who@x.com", Password: "nope"}, http.StatusUnauthorized, "Invalid email or password"},
		{"login empty", "/api/login", transport.LoginRequest{}, http.StatusBadRequest, "Email and password are required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, tc.path, tc.body)
			require.Equal(t, tc.code, rec.Code, rec.Body.String())
			body := decode[map[string]any](t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.msg, body["message"])
		})
	}
}

func TestLogin_AdminTokenOpensAdminRoutes(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/signup",
		transport.SignupRequest{FirstName: "Root", Email: testAdminEmail, Password: "s3cret"}).Code)

	rec := env.do(t, http.MethodPost, "/api/login", transport.LoginRequest{Email: testAdminEmail, Password: "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)

	var tok string
	for _, c := range rec.Result().Cookies() {
		if c.Name == tokens.CookieName {
			tok = c.Value
		}
	}
	require.NotEmpty(t, tok)

	rec = env.do(t, http.MethodDelete, "/orders", nil, withBearer(tok))
	assert.Equal(t, http.StatusOK, rec.Code)
}
