// Package state persists the one-time bootstrap record of each plugin
// identity. The mere existence of a record is the signal that bootstrap has
// already run; absence triggers it.
//
// Stores expose a single-record optimistic transaction, Update, inside
// which the registry performs its check-then-bootstrap-then-create
// sequence. The record is written only after bootstrap succeeds, so a
// crash or failure mid-sequence never leaves a record for a plugin that
// did not complete bootstrap. When two processes race, the loser's commit
// conflicts, the transaction retries, and the retry observes the record
// and skips bootstrap.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/vectorhive/core/manifest"
)

// Record is the durable row keyed by plugin identity.
type Record struct {
	// ID is the deterministic plugin identity derived from the alias.
	ID string `json:"id"`

	// Alias is the declaration alias the identity was derived from.
	Alias string `json:"alias"`

	// Manifest is a snapshot of the manifest at bootstrap time.
	Manifest manifest.Manifest `json:"manifest"`

	// CreatedAt is when bootstrap completed.
	CreatedAt time.Time `json:"createdAt"`
}

// Txn is the view of a single record inside one Update transaction.
// All operations apply to the record identity the transaction was opened
// for.
type Txn interface {
	// Get returns the current record, or nil if absent.
	Get(ctx context.Context) (*Record, error)

	// Put stages a write of the record. The write lands when the
	// transaction commits.
	Put(ctx context.Context, rec Record) error

	// Delete stages removal of the record.
	Delete(ctx context.Context) error
}

// ErrConflict is reported internally by stores when a commit loses an
// optimistic race; Update retries the transaction on it.
var ErrConflict = errors.New("state: transaction conflict")

// ErrTooManyConflicts is returned when a transaction keeps losing races
// past the retry budget.
var ErrTooManyConflicts = errors.New("state: too many transaction conflicts")

// Store persists plugin bootstrap records.
//
// Update runs fn inside an optimistic transaction scoped to one record
// identity and retries fn on commit conflicts. Because side effects inside
// fn (the bootstrap task) cannot be rolled back by the store, fn must stage
// its record write only after those side effects succeed.
type Store interface {
	Update(ctx context.Context, id string, fn func(ctx context.Context, tx Txn) error) error

	// Get reads a record outside any transaction. Returns nil if absent.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns all records.
	List(ctx context.Context) ([]Record, error)

	Close() error
}

// maxAttempts bounds optimistic retry loops in the store implementations.
const maxAttempts = 16
