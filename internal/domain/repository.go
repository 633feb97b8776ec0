// Package domain defines the core interfaces and types for Kestrel.
package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
type Repository interface {
	// Assessment audit trail
	SaveAssessment(ctx context.Context, a *Assessment) error
	GetAssessment(ctx context.Context, id string) (*Assessment, error)
	ListAssessments(ctx context.Context, limit int) ([]*Assessment, error)

	// Flagged-transaction review list
	SaveFlaggedTransaction(ctx context.Context, tx *FlaggedTransaction) error
	ListFlaggedTransactions(ctx context.Context) ([]*FlaggedTransaction, error)

	// User review list
	SaveUser(ctx context.Context, u *UserRecord) error
	ListUsers(ctx context.Context) ([]*UserRecord, error)

	// Operator session snapshot (single row)
	SaveSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context) (*Session, error)
	ClearSession(ctx context.Context) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
