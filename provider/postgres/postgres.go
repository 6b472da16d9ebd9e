// Package postgres is a [goSession.UserProvider] backed by PostgreSQL through
// database/sql and github.com/lib/pq.
//
// Expected schema:
//
//	CREATE TABLE users (
//	    id               TEXT PRIMARY KEY,
//	    email            TEXT NOT NULL UNIQUE,
//	    password_hash    TEXT NOT NULL,
//	    revocation_count BIGINT NOT NULL DEFAULT 0
//	);
//
// The revocation counter is bumped with a single UPDATE ... RETURNING statement
// so concurrent revocations never lose an increment.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	goSession "github.com/MrEthical07/goSession"
)

const uniqueViolation = "23505"

// Provider implements goSession.UserProvider over an existing *sql.DB. The
// provider does not own the pool; closing it is the caller's job.
type Provider struct {
	db *sql.DB
}

// New wraps db. The pool should already be pinged and configured.
func New(db *sql.DB) (*Provider, error) {
	if db == nil {
		return nil, errors.New("db required")
	}
	return &Provider{db: db}, nil
}

// GetUserByEmail fetches a user by exact email match.
func (p *Provider) GetUserByEmail(ctx context.Context, email string) (goSession.User, error) {
	return p.getUser(ctx,
		`SELECT id, email, password_hash, revocation_count FROM users WHERE email = $1`, email)
}

// GetUserByID fetches a user by id.
func (p *Provider) GetUserByID(ctx context.Context, userID string) (goSession.User, error) {
	return p.getUser(ctx,
		`SELECT id, email, password_hash, revocation_count FROM users WHERE id = $1`, userID)
}

func (p *Provider) getUser(ctx context.Context, query, arg string) (goSession.User, error) {
	var user goSession.User
	err := p.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.RevocationCount)
	if errors.Is(err, sql.ErrNoRows) {
		return goSession.User{}, goSession.ErrUserNotFound
	}
	if err != nil {
		return goSession.User{}, fmt.Errorf("%w: %v", goSession.ErrProviderUnavailable, err)
	}
	return user, nil
}

// CreateUser inserts a new user row. A unique violation on the email column
// maps to goSession.ErrProviderDuplicateEmail.
func (p *Provider) CreateUser(ctx context.Context, input goSession.CreateUserInput) (goSession.User, error) {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, revocation_count) VALUES ($1, $2, $3, 0)`,
		input.UserID, input.Email, input.PasswordHash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return goSession.User{}, goSession.ErrProviderDuplicateEmail
		}
		return goSession.User{}, fmt.Errorf("%w: %v", goSession.ErrProviderUnavailable, err)
	}

	return goSession.User{
		ID:           input.UserID,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
	}, nil
}

// UpdatePasswordHash replaces the stored hash for userID.
func (p *Provider) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, userID, newHash)
	if err != nil {
		return fmt.Errorf("%w: %v", goSession.ErrProviderUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", goSession.ErrProviderUnavailable, err)
	}
	if n == 0 {
		return goSession.ErrUserNotFound
	}
	return nil
}

// IncrementRevocation bumps the user's revocation counter atomically in the
// database and returns the new value.
func (p *Provider) IncrementRevocation(ctx context.Context, userID string) (uint64, error) {
	var count uint64
	err := p.db.QueryRowContext(ctx,
		`UPDATE users SET revocation_count = revocation_count + 1 WHERE id = $1 RETURNING revocation_count`,
		userID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, goSession.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", goSession.ErrProviderUnavailable, err)
	}
	return count, nil
}
