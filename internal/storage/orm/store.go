// Package orm implements storage.UserStore on top of gorm for the sqlite and
// postgres dialects.
package orm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hongminglow/userdesk/internal/models"
	"github.com/hongminglow/userdesk/internal/storage"
	"github.com/hongminglow/userdesk/internal/storage/postgres"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// sqlitePragmas mirror the settings used for single-writer sqlite deployments.
const sqlitePragmas = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_synchronous=NORMAL"

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

// Store provides gorm-backed persistence for users.
type Store struct {
	db     *gorm.DB
	driver string
	pool   *postgres.Pool
}

// Open connects to the configured database. Schema creation is left to Migrate.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	}

	switch driver {
	case DriverSQLite:
		db, err := gorm.Open(gormsqlite.Open(sqliteDSN(dsn)), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		// sqlite allows a single writer; in-memory databases also live per connection.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("ping sqlite: %w", err)
		}
		return &Store{db: db, driver: driver}, nil

	case DriverPostgres:
		pool, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: pool.DB()}), cfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &Store{db: db, driver: driver, pool: pool}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?" + sqlitePragmas
}

// Driver reports the dialect the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

// Close releases database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.pool != nil {
		s.pool.Close()
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreateUser inserts a new user row. A username conflict maps to storage.ErrAlreadyExists,
// whether it was caught by a pre-check elsewhere or only by the UNIQUE constraint.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if user.PasswordHash == "" {
		return models.User{}, storage.ErrEmptyPasswordHash
	}
	user.ID = 0
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// FindByUsername fetches a user by exact, case-sensitive username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	return user, translateLookup(err)
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	return user, translateLookup(err)
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of stored users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func translateLookup(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	default:
		return fmt.Errorf("find user: %w", err)
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || postgres.IsUniqueViolation(err) {
		return true
	}
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
