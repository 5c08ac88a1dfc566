package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/datavault/internal/apperror"
	"github.com/sakif/datavault/internal/model"
	"github.com/sakif/datavault/internal/repository"
)

// Compile-time check that *DB implements repository.UserRepository.
var _ repository.UserRepository = (*DB)(nil)

const (
	msgUsernameExists = "The provided username is already taken. Please choose a different username."
	msgEmailExists    = "The provided email is already registered. Please use a different email address."
)

// CreateUser inserts a new user after checking username and email
// uniqueness.
//
// The check-then-insert runs inside one transaction so a concurrent
// registration cannot slip between the lookup and the insert. Even so, the
// UNIQUE constraints remain the final arbiter: if a race does reach the
// insert, the constraint failure is translated to the same USERNAME_EXISTS /
// EMAIL_EXISTS validation error the pre-check would have produced, never
// surfaced as an internal error.
//
// The deferred Rollback is a no-op after Commit — it exists so the
// transaction (and its connection) is released on every exit path,
// including validation failures and query errors.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning registration tx: %w", err)
	}
	defer tx.Rollback()

	// Username first, then email: the first failure wins, so a request
	// with both taken reports the username conflict.
	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, user.Username,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("sqlite: checking username %q: %w", user.Username, err)
	}
	if count > 0 {
		return apperror.Validation(apperror.CodeUsernameExists, msgUsernameExists)
	}

	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, user.Email,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("sqlite: checking email: %w", err)
	}
	if count > 0 {
		return apperror.Validation(apperror.CodeEmailExists, msgEmailExists)
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, full_name, age, gender, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Age,
		user.Gender,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users.username"):
			return apperror.Validation(apperror.CodeUsernameExists, msgUsernameExists)
		case isUniqueViolation(err, "users.email"):
			return apperror.Validation(apperror.CodeEmailExists, msgEmailExists)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing registration: %w", err)
	}

	return nil
}

// UsernameTaken reports whether a user with this username exists. It backs
// the registration flow's ordered pre-check; CreateUser re-checks inside
// its transaction, so a stale answer here costs nothing but ordering
// fidelity.
func (db *DB) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking username %q: %w", username, err)
	}
	return count > 0, nil
}

// EmailTaken reports whether a user with this email exists.
func (db *DB) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking email: %w", err)
	}
	return count > 0, nil
}

// GetUserByUsername retrieves a user by username.
//
// A missing user is reported with the ErrNotFound sentinel. The auth
// service translates it to INVALID_CREDENTIALS — the 404-vs-401 decision
// belongs to the caller, not the store.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, full_name, age, gender, created_at, updated_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Age,
		&u.Gender,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sqlite: user %q: %w", username, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}

	return &u, nil
}
