package database

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("already exists")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store defines the interface for database operations. Methods accept
// context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// CreateAccount registers a new account. Returns ErrDuplicate when the
	// username is taken.
	CreateAccount(ctx context.Context, username, password string) error

	// Authenticate verifies a username/password pair. Returns
	// ErrInvalidCredentials on any mismatch, including unknown usernames.
	Authenticate(ctx context.Context, username, password string) error

	// SaveFeedback inserts a new feedback record and sets its ID.
	SaveFeedback(ctx context.Context, fb *Feedback) error

	// ListFeedback retrieves all feedback, newest first.
	ListFeedback(ctx context.Context) ([]Feedback, error)

	// RunMaintenance performs periodic database maintenance (VACUUM).
	RunMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx. It requires
// a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// HashPassword returns the SHA-256 hex digest of a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *sqlxStore) CreateAccount(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username must not be empty")
	}
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	acc := Account{
		Username:     username,
		PasswordHash: HashPassword(password),
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO accounts (username, password_hash, created_at)
		 VALUES (:username, :password_hash, :created_at)`, &acc)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %q: %w", username, ErrDuplicate)
		}
		s.logger.ErrorContext(ctx, "failed to create account", "username", username, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.InfoContext(ctx, "account created", "username", username)
	return nil
}

func (s *sqlxStore) Authenticate(ctx context.Context, username, password string) error {
	var acc Account
	err := s.db.GetContext(ctx, &acc,
		"SELECT * FROM accounts WHERE username = ?", username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "failed to load account", "username", username, "error", err)
		return fmt.Errorf("failed to load account: %w", err)
	}

	entered := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(acc.PasswordHash), []byte(entered)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *sqlxStore) SaveFeedback(ctx context.Context, fb *Feedback) error {
	if fb == nil {
		return fmt.Errorf("cannot save nil feedback")
	}
	if fb.Name == "" || fb.Email == "" || fb.Comment == "" {
		return fmt.Errorf("feedback requires name, email, and comment")
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return fmt.Errorf("feedback rating must be between 1 and 5, got %d", fb.Rating)
	}

	fb.CreatedAt = time.Now().UTC()
	res, err := s.db.NamedExecContext(ctx,
		`INSERT INTO feedback (name, email, rating, comment, created_at)
		 VALUES (:name, :email, :rating, :comment, :created_at)`, fb)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save feedback", "error", err)
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		fb.ID = id
	}

	s.logger.InfoContext(ctx, "feedback saved", "rating", fb.Rating)
	return nil
}

func (s *sqlxStore) ListFeedback(ctx context.Context) ([]Feedback, error) {
	var out []Feedback
	err := s.db.SelectContext(ctx, &out,
		"SELECT * FROM feedback ORDER BY created_at DESC, id DESC")
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list feedback", "error", err)
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return out, nil
}

func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	start := time.Now()
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		s.logger.ErrorContext(ctx, "database maintenance failed", "error", err)
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	s.logger.InfoContext(ctx, "database maintenance complete",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// isUniqueViolation detects SQLite unique constraint errors without tying
// the store to a specific driver error type.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
