package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/greenhaven/internal/hash"
	"github.com/Skotchmaster/greenhaven/internal/logging"
	"github.com/Skotchmaster/greenhaven/internal/models"
	"github.com/Skotchmaster/greenhaven/internal/mykafka"
	"github.com/Skotchmaster/greenhaven/internal/repo"
	"github.com/Skotchmaster/greenhaven/internal/tokens"
	"github.com/Skotchmaster/greenhaven/internal/transport"
)

// bcrypt only looks at the first 72 bytes
const maxPasswordBytes = 72

type UserService struct {
	Repo       *repo.GormRepo
	JWTSecret  []byte
	AdminEmail string
	Events     EventPublisher
}

func (s *UserService) roleFor(email string) string {
	if s.AdminEmail != "" && email == normalizeEmail(s.AdminEmail) {
		return models.RoleAdmin
	}
	return models.RoleUser
}

func (s *UserService) Signup(ctx context.Context, req transport.SignupRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.signup")

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}

	if len(req.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password too long", ErrValidation)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("signup_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: pwHash,
		Role:         s.roleFor(email),
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		l.Error("signup_error", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: create user: %w", ErrPersistence, err)
	}

	if s.Events != nil {
		ev := mykafka.NewEvent("user_registered", map[string]any{"userId": user.ID, "email": user.Email})
		if err := s.Events.PublishEvent(ctx, mykafka.TopicUserEvents, user.ID, ev); err != nil {
			l.Warn("kafka_publish_error", "topic", mykafka.TopicUserEvents, "error", err)
		}
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*transport.LoginResult, error) {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "user.login", "email", email)

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.Repo.UserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Warn("login failed", "status", 401, "reason", "unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %w", ErrPersistence, err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "status", 401, "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	// ADMIN_EMAIL may be configured after the account was created
	if role := s.roleFor(email); role != user.Role && role == models.RoleAdmin {
		if err := s.Repo.SetRole(ctx, user.ID, role); err != nil {
			l.Warn("set_role_error", "error", err)
		} else {
			user.Role = role
		}
	}

	exp := time.Now().Add(tokens.AccessTTL)
	tok, err := tokens.SignAccess(s.JWTSecret, user.ID, user.Email, user.Role, exp)
	if err != nil {
		l.Error("login failed", "status", 500, "error", err)
		return nil, err
	}
	return &transport.LoginResult{
		AccessToken: tok,
		AccessExp:   exp,
		Email:       user.Email,
		IsAdmin:     user.Role == models.RoleAdmin,
	}, nil
}
