package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/userdesk/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrEmptyPasswordHash rejects user rows that would be created without credentials.
var ErrEmptyPasswordHash = errors.New("password hash is required")

// UserStore captures persistence operations needed by the accounts service.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}
