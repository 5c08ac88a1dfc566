// Package repository declares the storage interfaces consumed by the
// service layer. Services depend on these interfaces, never on the concrete
// SQLite types — tests inject in-memory mocks, and the backing store can be
// swapped without touching business logic.
package repository

import (
	"context"

	"github.com/sakif/datavault/internal/model"
)

// UserRepository persists user accounts.
//
// CreateUser must treat the uniqueness check and the insert as one atomic
// unit: two concurrent registrations with the same username (or email) must
// yield exactly one success, with the loser receiving a USERNAME_EXISTS or
// EMAIL_EXISTS validation error rather than a raw constraint failure.
// UsernameTaken/EmailTaken back the registration flow's ordered pre-checks;
// they are advisory only — CreateUser repeats them transactionally.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

// RecordRepository persists key-value records. At most one record exists
// per key at any time; the key is immutable once created.
type RecordRepository interface {
	Create(ctx context.Context, record *model.Record) error
	GetByKey(ctx context.Context, key string) (*model.Record, error)
	UpdateValue(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
