// Package accounts implements login, admin bootstrap, privileged user
// creation and user listing on top of the credential store and the auth gate.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hongminglow/userdesk/internal/auth"
	"github.com/hongminglow/userdesk/internal/models"
	"github.com/hongminglow/userdesk/internal/policy"
	"github.com/hongminglow/userdesk/internal/storage"
)

const tracerName = "github.com/hongminglow/userdesk/internal/accounts"

var (
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials is returned for unknown usernames and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username taken")
	ErrBootstrapClosed    = errors.New("admin bootstrap is closed")
	ErrPasswordTooLong    = auth.ErrPasswordTooLong
)

// Credentials is a username/password pair as submitted by a client.
type Credentials struct {
	Username string
	Password string
}

// NewUser describes a non-admin account created by an admin.
type NewUser struct {
	Credentials
	Role *string
}

// LoginResult carries the authenticated user and the cookie token of the new session.
type LoginResult struct {
	User  models.User
	Token string
}

// Service wires the credential store, password hasher and session store together.
type Service struct {
	store    storage.UserStore
	hasher   *auth.PasswordHasher
	sessions *auth.SessionStore
	gate     *auth.Gate
	policies policy.Policies
	logger   *slog.Logger
	tracer   trace.Tracer

	decoyOnce sync.Once
	decoyHash string
}

// NewService constructs the service. A nil logger discards output.
func NewService(store storage.UserStore, hasher *auth.PasswordHasher, sessions *auth.SessionStore, policies policy.Policies, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:    store,
		hasher:   hasher,
		sessions: sessions,
		gate:     auth.NewGate(sessions, store),
		policies: policies,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// Gate exposes the authorization gate used by the service.
func (s *Service) Gate() *auth.Gate {
	return s.gate
}

// Authorize runs the admin gate for sessionToken without performing an operation.
func (s *Service) Authorize(ctx context.Context, sessionToken string) (models.User, error) {
	return s.gate.Authorize(ctx, sessionToken)
}

// Login verifies credentials and issues a session.
func (s *Service) Login(ctx context.Context, in Credentials) (_ LoginResult, err error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Login")
	defer func() { endSpan(span, err) }()

	if missing(in.Username) || missing(in.Password) {
		return LoginResult{}, ErrMissingCredentials
	}

	user, err := s.store.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Spend the same bcrypt work as a real comparison.
			s.hasher.Verify(in.Password, s.decoy())
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("find user: %w", err)
	}
	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue session: %w", err)
	}
	return LoginResult{User: user, Token: token}, nil
}

// BootstrapAdmin creates an admin account, subject to the bootstrap policy.
func (s *Service) BootstrapAdmin(ctx context.Context, in Credentials) (_ models.User, err error) {
	ctx, span := s.tracer.Start(ctx, "accounts.BootstrapAdmin")
	defer func() { endSpan(span, err) }()

	if err := s.checkBootstrapPolicy(ctx); err != nil {
		return models.User{}, err
	}
	if missing(in.Username) || missing(in.Password) {
		return models.User{}, ErrMissingCredentials
	}

	user, err := s.create(ctx, models.User{Username: in.Username, Admin: true}, in.Password)
	if err != nil {
		return models.User{}, err
	}
	s.logger.InfoContext(ctx, "admin bootstrapped", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// CreateUser creates a non-admin account on behalf of the admin owning sessionToken.
func (s *Service) CreateUser(ctx context.Context, sessionToken string, in NewUser) (_ models.User, err error) {
	ctx, span := s.tracer.Start(ctx, "accounts.CreateUser")
	defer func() { endSpan(span, err) }()

	caller, err := s.gate.Authorize(ctx, sessionToken)
	if err != nil {
		return models.User{}, err
	}
	if missing(in.Username) || missing(in.Password) {
		return models.User{}, ErrMissingCredentials
	}

	user, err := s.create(ctx, models.User{Username: in.Username, Role: in.Role, Admin: false}, in.Password)
	if err != nil {
		return models.User{}, err
	}
	s.logger.InfoContext(ctx, "user created", "user_id", user.ID, "username", user.Username, "by", caller.ID)
	return user, nil
}

// ListUsers returns every user, subject to the list policy.
func (s *Service) ListUsers(ctx context.Context, sessionToken string) (_ []models.User, err error) {
	ctx, span := s.tracer.Start(ctx, "accounts.ListUsers")
	defer func() { endSpan(span, err) }()

	switch s.policies.ListUsers {
	case policy.ListAuthenticated:
		if _, err := s.gate.Authenticate(ctx, sessionToken); err != nil {
			return nil, err
		}
	case policy.ListAdmin:
		if _, err := s.gate.Authorize(ctx, sessionToken); err != nil {
			return nil, err
		}
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) checkBootstrapPolicy(ctx context.Context) error {
	switch s.policies.Bootstrap {
	case policy.BootstrapDisabled:
		return ErrBootstrapClosed
	case policy.BootstrapFirstRun:
		n, err := s.store.CountUsers(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrBootstrapClosed
		}
	}
	return nil
}

// create runs the uniqueness pre-check, hashes the password and inserts the row.
// The store's UNIQUE constraint still decides races the pre-check cannot see.
func (s *Service) create(ctx context.Context, user models.User, password string) (models.User, error) {
	_, err := s.store.FindByUsername(ctx, user.Username)
	switch {
	case err == nil:
		return models.User{}, ErrUsernameTaken
	case !errors.Is(err, storage.ErrNotFound):
		return models.User{}, fmt.Errorf("check username: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return models.User{}, ErrPasswordTooLong
		}
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash

	created, err := s.store.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, err
	}
	return created, nil
}

func (s *Service) decoy() string {
	s.decoyOnce.Do(func() {
		s.decoyHash, _ = s.hasher.Hash("decoy-password-for-unknown-users")
	})
	return s.decoyHash
}

// missing reports an absent value. Whitespace is a legitimate username or password.
func missing(v string) bool {
	return v == ""
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
