// Package storage defines where serialized save data lives. Backends range
// from an in-memory store for embedded and test use to PostgreSQL for
// persistent installs; the save layer only ever sees this interface.
package storage

import (
	"context"
	"errors"
)

// ErrNoSave is returned by Read when the profile has no save data yet.
// First launch hits this; it is an expected condition, not a failure.
var ErrNoSave = errors.New("storage: no save data")

// SaveStore holds the single save blob of one profile. Write replaces the
// blob atomically: a reader never observes a half-written save, and a
// failed write leaves the previous blob intact.
type SaveStore interface {
	// WaitReady blocks until the backend can serve requests or ctx ends.
	// Backends with external dependencies may take a while on cold start;
	// call this once before the first Read.
	WaitReady(ctx context.Context) error

	// Exists reports whether a save blob is present.
	Exists(ctx context.Context) (bool, error)

	// Read returns the save blob, or ErrNoSave when none was ever written.
	Read(ctx context.Context) ([]byte, error)

	// Write atomically replaces the save blob.
	Write(ctx context.Context, blob []byte) error
}
