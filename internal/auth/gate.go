package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/userdesk/internal/models"
	"github.com/hongminglow/userdesk/internal/storage"
)

var (
	// ErrAuthenticationRequired means the request carries no session that maps to a stored user.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrInsufficientPrivilege means the session user is not an admin.
	ErrInsufficientPrivilege = errors.New("admin privileges required")
)

// UserFinder is the slice of storage the gate needs.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (models.User, error)
}

// Gate resolves a session token to a user and checks the admin flag.
type Gate struct {
	sessions *SessionStore
	users    UserFinder
}

// NewGate builds a gate over the session store and the user lookup.
func NewGate(sessions *SessionStore, users UserFinder) *Gate {
	return &Gate{sessions: sessions, users: users}
}

// Authenticate returns the user behind token or ErrAuthenticationRequired.
func (g *Gate) Authenticate(ctx context.Context, token string) (models.User, error) {
	userID, ok := g.sessions.Resolve(token)
	if !ok {
		return models.User{}, ErrAuthenticationRequired
	}
	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrAuthenticationRequired
		}
		return models.User{}, fmt.Errorf("resolve session user: %w", err)
	}
	return user, nil
}

// Authorize authenticates token and additionally requires the admin flag.
func (g *Gate) Authorize(ctx context.Context, token string) (models.User, error) {
	user, err := g.Authenticate(ctx, token)
	if err != nil {
		return models.User{}, err
	}
	if !user.Admin {
		return models.User{}, ErrInsufficientPrivilege
	}
	return user, nil
}
