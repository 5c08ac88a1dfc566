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

// Compile-time check that *DB implements repository.RecordRepository.
var _ repository.RecordRepository = (*DB)(nil)

const (
	msgKeyExists   = "The provided key already exists in the database. To update an existing key, use the update API."
	msgKeyNotFound = "The provided key does not exist in the database."
)

// Create inserts a new key-value record (store-if-absent).
//
// Unlike user registration there is no pre-check query: the UNIQUE
// constraint on records.key does the check and the insert in one atomic
// statement, and a violation is translated to KEY_EXISTS. A losing racer
// therefore fails cleanly and the stored value is untouched.
func (db *DB) Create(ctx context.Context, record *model.Record) error {
	now := time.Now()
	record.ID = xid.New().String()
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO records (id, key, value, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		record.ID,
		record.Key,
		record.Value,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "records.key") {
			return apperror.Validation(apperror.CodeKeyExists, msgKeyExists)
		}
		return fmt.Errorf("sqlite: inserting record %q: %w", record.Key, err)
	}

	return nil
}

// GetByKey retrieves the record stored under key.
// Returns a KEY_NOT_FOUND failure if the key is absent.
func (db *DB) GetByKey(ctx context.Context, key string) (*model.Record, error) {
	var rec model.Record

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, key, value, created_at, updated_at FROM records WHERE key = ?`,
		key,
	).Scan(
		&rec.ID,
		&rec.Key,
		&rec.Value,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound(apperror.CodeKeyNotFound, msgKeyNotFound)
		}
		return nil, fmt.Errorf("sqlite: getting record %q: %w", key, err)
	}

	return &rec, nil
}

// UpdateValue replaces the value stored under key (update-if-present).
// The key itself is never altered. RowsAffected tells us whether the key
// existed — a blind UPDATE on an absent key affects zero rows and must not
// create it.
func (db *DB) UpdateValue(ctx context.Context, key, value string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE records SET value = ?, updated_at = ? WHERE key = ?`,
		value, time.Now(), key,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating record %q: %w", key, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected for %q: %w", key, err)
	}
	if affected == 0 {
		return apperror.NotFound(apperror.CodeKeyNotFound, msgKeyNotFound)
	}

	return nil
}

// Delete removes the record stored under key (delete-if-present).
// Deleting an absent key fails with KEY_NOT_FOUND; a repeated delete is an
// idempotent failure, not a crash.
func (db *DB) Delete(ctx context.Context, key string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM records WHERE key = ?`, key,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting record %q: %w", key, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected for %q: %w", key, err)
	}
	if affected == 0 {
		return apperror.NotFound(apperror.CodeKeyNotFound, msgKeyNotFound)
	}

	return nil
}
