// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// The session table holds at most one row, keyed by this fixed id.
const sessionRowID = 1

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return r.seedUsers()
}

// seedUsers installs the demo roster on an empty users table so the
// user review page has content before any real ingestion. Existing
// rows are never touched.
func (r *SQLRepository) seedUsers() error {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, u := range demoUsers() {
		if err := r.SaveUser(context.Background(), u); err != nil {
			return fmt.Errorf("seeding user %s: %w", u.ID, err)
		}
	}
	return nil
}

// demoUsers is the review roster shipped with a fresh installation.
func demoUsers() []*domain.UserRecord {
	joined := func(day int) time.Time {
		return time.Date(2025, 10, day, 0, 0, 0, 0, time.UTC)
	}

	return []*domain.UserRecord{
		{ID: "1", Name: "Arjun Sharma", Email: "arjun.sharma@example.com", Role: "customer", Status: "active", RiskScore: "low", JoinedAt: joined(12)},
		{ID: "2", Name: "Priya Patel", Email: "priya.patel@example.com", Role: "customer", Status: "active", RiskScore: "medium", JoinedAt: joined(11)},
		{ID: "3", Name: "Rahul Kumar", Email: "rahul.kumar@example.com", Role: "customer", Status: "suspended", RiskScore: "high", JoinedAt: joined(10)},
		{ID: "4", Name: "Anita Singh", Email: "anita.singh@example.com", Role: "admin", Status: "active", RiskScore: "low", JoinedAt: joined(9)},
		{ID: "5", Name: "Vikram Gupta", Email: "vikram.gupta@example.com", Role: "customer", Status: "inactive", RiskScore: "medium", JoinedAt: joined(8)},
	}
}

// SaveAssessment stores one completed assessment. The input, request,
// and response are kept as JSON documents; the flag and risk level are
// lifted into columns for querying.
func (r *SQLRepository) SaveAssessment(ctx context.Context, a *domain.Assessment) error {
	if a.ID == "" {
		return fmt.Errorf("%w: assessment id is required", ErrInvalidInput)
	}

	input, err := json.Marshal(a.Input)
	if err != nil {
		return fmt.Errorf("encoding input: %w", err)
	}
	request, _ := json.Marshal(a.Request)
	response, _ := json.Marshal(a.Response)

	isFraud := 0
	if a.Response.IsFraud {
		isFraud = 1
	}

	query := `
		INSERT INTO assessments (
			id, transaction_id, analyst, input, request, response,
			is_fraud, risk_level, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, r.rebind(query),
		a.ID, a.Response.TransactionID, a.Analyst,
		string(input), string(request), string(response),
		isFraud, a.Response.RiskLevel, a.CreatedAt,
	)
	return err
}

// GetAssessment retrieves an assessment by ID.
func (r *SQLRepository) GetAssessment(ctx context.Context, id string) (*domain.Assessment, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: assessment id is required", ErrInvalidInput)
	}

	query := `
		SELECT id, analyst, input, request, response, created_at
		FROM assessments
		WHERE id = ?
	`

	return r.scanAssessment(r.db.QueryRowContext(ctx, r.rebind(query), id))
}

// ListAssessments retrieves the most recent assessments, newest first.
func (r *SQLRepository) ListAssessments(ctx context.Context, limit int) ([]*domain.Assessment, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, analyst, input, request, response, created_at
		FROM assessments
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assessments []*domain.Assessment
	for rows.Next() {
		a, err := r.scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}

	return assessments, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (r *SQLRepository) scanAssessment(row scanner) (*domain.Assessment, error) {
	var a domain.Assessment
	var input, request, response string

	err := row.Scan(&a.ID, &a.Analyst, &input, &request, &response, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(input), &a.Input); err != nil {
		return nil, fmt.Errorf("failed to parse assessment input: %w", err)
	}
	json.Unmarshal([]byte(request), &a.Request)
	if err := json.Unmarshal([]byte(response), &a.Response); err != nil {
		return nil, fmt.Errorf("failed to parse assessment response: %w", err)
	}

	return &a, nil
}

// SaveFlaggedTransaction upserts one review-list row.
func (r *SQLRepository) SaveFlaggedTransaction(ctx context.Context, tx *domain.FlaggedTransaction) error {
	if tx.ID == "" {
		return fmt.Errorf("%w: flagged transaction id is required", ErrInvalidInput)
	}

	factors, _ := json.Marshal(tx.RiskFactors)

	var reviewedAt any
	if !tx.ReviewedAt.IsZero() {
		reviewedAt = tx.ReviewedAt
	}

	query := `
		INSERT INTO flagged_transactions (
			id, transaction_id, amount, payment_method, category,
			user_email, fraud_probability, risk_level, status,
			flagged_at, reviewed_by, reviewed_at, risk_factors
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			reviewed_by = excluded.reviewed_by,
			reviewed_at = excluded.reviewed_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		tx.ID, tx.TransactionID, tx.Amount, tx.PaymentMethod, tx.Category,
		tx.UserEmail, tx.FraudProbability, tx.RiskLevel, tx.Status,
		tx.FlaggedAt, tx.ReviewedBy, reviewedAt, string(factors),
	)
	return err
}

// ListFlaggedTransactions retrieves the review list, newest first.
func (r *SQLRepository) ListFlaggedTransactions(ctx context.Context) ([]*domain.FlaggedTransaction, error) {
	query := `
		SELECT id, transaction_id, amount, payment_method, category,
			   user_email, fraud_probability, risk_level, status,
			   flagged_at, reviewed_by, reviewed_at, risk_factors
		FROM flagged_transactions
		ORDER BY flagged_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flagged []*domain.FlaggedTransaction
	for rows.Next() {
		var tx domain.FlaggedTransaction
		var reviewedBy sql.NullString
		var reviewedAt sql.NullTime
		var factors string

		if err := rows.Scan(
			&tx.ID, &tx.TransactionID, &tx.Amount, &tx.PaymentMethod, &tx.Category,
			&tx.UserEmail, &tx.FraudProbability, &tx.RiskLevel, &tx.Status,
			&tx.FlaggedAt, &reviewedBy, &reviewedAt, &factors,
		); err != nil {
			return nil, err
		}

		tx.ReviewedBy = reviewedBy.String
		if reviewedAt.Valid {
			tx.ReviewedAt = reviewedAt.Time
		}
		json.Unmarshal([]byte(factors), &tx.RiskFactors)

		flagged = append(flagged, &tx)
	}

	return flagged, rows.Err()
}

// SaveUser upserts one user-review row.
func (r *SQLRepository) SaveUser(ctx context.Context, u *domain.UserRecord) error {
	if u.ID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO users (
			id, name, email, role, status, risk_score, joined_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			status = excluded.status,
			risk_score = excluded.risk_score
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		u.ID, u.Name, u.Email, u.Role, u.Status, u.RiskScore, u.JoinedAt,
	)
	return err
}

// ListUsers retrieves the user review list ordered by join date.
func (r *SQLRepository) ListUsers(ctx context.Context) ([]*domain.UserRecord, error) {
	query := `
		SELECT id, name, email, role, status, risk_score, joined_at
		FROM users
		ORDER BY joined_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.UserRecord
	for rows.Next() {
		var u domain.UserRecord
		var riskScore sql.NullString

		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &riskScore, &u.JoinedAt,
		); err != nil {
			return nil, err
		}

		u.RiskScore = riskScore.String
		users = append(users, &u)
	}

	return users, rows.Err()
}

// SaveSession replaces the single operator-session row.
func (r *SQLRepository) SaveSession(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO session_state (
			id, user_id, name, email, role, signed_in_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			signed_in_at = excluded.signed_in_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		sessionRowID, s.UserID, s.Name, s.Email, s.Role, s.SignedInAt,
	)
	return err
}

// GetSession retrieves the operator session. Returns nil, nil when no
// operator is signed in.
func (r *SQLRepository) GetSession(ctx context.Context) (*domain.Session, error) {
	query := `
		SELECT user_id, name, email, role, signed_in_at
		FROM session_state
		WHERE id = ?
	`

	var s domain.Session
	err := r.db.QueryRowContext(ctx, r.rebind(query), sessionRowID).Scan(
		&s.UserID, &s.Name, &s.Email, &s.Role, &s.SignedInAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// ClearSession removes the operator session row.
func (r *SQLRepository) ClearSession(ctx context.Context) error {
	query := `DELETE FROM session_state WHERE id = ?`
	_, err := r.db.ExecContext(ctx, r.rebind(query), sessionRowID)
	return err
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
