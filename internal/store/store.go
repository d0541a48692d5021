package store

import (
	"context"

	"github.com/Nandeesh-nh/lan-chat/internal/models"
)

// UserStore defines the interface for persistent storage of accounts.
// Both PostgresStore and SQLiteStore implement this interface.
//
// GetUser returns (nil, nil) for unknown usernames so callers can
// distinguish absence from a storage failure.
type UserStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Account operations
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUser(ctx context.Context, username string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}
