package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hongminglow/userdesk/internal/accounts"
	"github.com/hongminglow/userdesk/internal/auth"
	"github.com/hongminglow/userdesk/internal/http/respond"
	"github.com/hongminglow/userdesk/internal/models"
)

// Accounts is the service surface the HTTP handlers depend on.
type Accounts interface {
	Login(ctx context.Context, in accounts.Credentials) (accounts.LoginResult, error)
	BootstrapAdmin(ctx context.Context, in accounts.Credentials) (models.User, error)
	CreateUser(ctx context.Context, sessionToken string, in accounts.NewUser) (models.User, error)
	ListUsers(ctx context.Context, sessionToken string) ([]models.User, error)
	Authorize(ctx context.Context, sessionToken string) (models.User, error)
}

// SessionCookie describes the cookie carrying the session token.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func (c SessionCookie) read(r *http.Request) string {
	ck, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return ck.Value
}

func (c SessionCookie) set(w http.ResponseWriter, token string) {
	ck := &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.TTL > 0 {
		ck.MaxAge = int(c.TTL / time.Second)
	}
	http.SetCookie(w, ck)
}

const (
	msgEnterCredentials    = "Enter username and password"
	msgCredentialsRequired = "username and password required"
	msgInvalidCredentials  = "Invalid credentials"
	msgUsernameTaken       = "username taken"
	msgAuthRequired        = "Authentication required"
	msgAdminRequired       = "Admin privileges required"
	msgBootstrapClosed     = "admin bootstrap is closed"
	msgInvalidJSON         = "invalid JSON payload"
	msgInternal            = "internal error"
)

// writeServiceError maps service errors onto status codes. missingMsg is the
// endpoint's wording for absent credentials.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, missingMsg string) {
	switch {
	case errors.Is(err, accounts.ErrMissingCredentials):
		respond.Error(w, http.StatusBadRequest, missingMsg)
	case errors.Is(err, accounts.ErrPasswordTooLong):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, accounts.ErrInvalidCredentials):
		respond.Error(w, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, auth.ErrAuthenticationRequired):
		respond.Error(w, http.StatusUnauthorized, msgAuthRequired)
	case errors.Is(err, auth.ErrInsufficientPrivilege):
		respond.Error(w, http.StatusForbidden, msgAdminRequired)
	case errors.Is(err, accounts.ErrBootstrapClosed):
		respond.Error(w, http.StatusForbidden, msgBootstrapClosed)
	case errors.Is(err, accounts.ErrUsernameTaken):
		respond.Error(w, http.StatusConflict, msgUsernameTaken)
	default:
		logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		respond.Error(w, http.StatusInternalServerError, msgInternal)
	}
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// decodeBody decodes into dst; an absent body leaves dst zero-valued so the
// service reports missing fields instead.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := respond.Decode(w, r, dst); err != nil && !errors.Is(err, respond.ErrEmptyBody) {
		return err
	}
	return nil
}
