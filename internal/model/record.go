package model

import "time"

// Record is a stored key-value pair.
//
// The key is the public identifier clients use on the wire
// (/api/data/{key}); it is UNIQUE and immutable once created. The internal
// xid ID exists so the row has a stable primary key independent of the
// user-chosen key, matching how User rows are identified.
//
// Lifecycle per key: absent → present (create) → present (update, value
// only) → absent (delete). At most one record per key exists at any time.
type Record struct {
	ID        string    `json:"-"     db:"id"`
	Key       string    `json:"key"   db:"key"`
	Value     string    `json:"value" db:"value"`
	CreatedAt time.Time `json:"-"     db:"created_at"`
	UpdatedAt time.Time `json:"-"     db:"updated_at"`
}
