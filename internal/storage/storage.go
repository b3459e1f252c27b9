package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vastaff/gatekeeper/internal/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrProfileNotFound = errors.New("profile not found")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Storage interface {
	UserRepository
	ProfileRepository
}

type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash string, role models.Role) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type ProfileRepository interface {
	GetVAProfile(ctx context.Context, userID int64) (*models.VAProfile, error)
	UpsertVAProfile(ctx context.Context, profile models.VAProfile) error
	GetEmployerProfile(ctx context.Context, userID int64) (*models.EmployerProfile, error)
	UpsertEmployerProfile(ctx context.Context, profile models.EmployerProfile) error
}

// RateLimitStore решает, пропускать ли запрос, одной атомарной операцией:
// read-modify-write окна не должен терять апдейты при конкурентных запросах
// от одного клиента.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, policy models.RatePolicy, now time.Time) (*models.RateDecision, error)
}

// CSRFStore holds at most one live token per session identifier.
// Put overwrites any previous token, implicitly invalidating it.
type CSRFStore interface {
	Put(ctx context.Context, sessionID, token string, ttl time.Duration) error
	// Get returns "" when no live token exists for the identifier.
	Get(ctx context.Context, sessionID string) (string, error)
}

// RevocationList - черный список JTI сессий, принудительно разлогиненных
// до истечения их токена.
type RevocationList interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
