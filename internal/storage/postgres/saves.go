package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gunbench/gunbench/internal/storage"
)

// SaveRepository stores one profile's save blob in the saves table. The
// blob is opaque here; encoding belongs to the save layer. Writes go
// through a single upsert, so a save is either fully replaced or not
// touched at all.
//
// SaveRepository implements storage.SaveStore.
type SaveRepository struct {
	pool      *Pool
	profileID int64
}

// NewSaveRepository creates a SaveRepository for the given profile.
//
// Precondition: pool must be open; profileID must reference an existing profile.
func NewSaveRepository(pool *Pool, profileID int64) *SaveRepository {
	return &SaveRepository{pool: pool, profileID: profileID}
}

// WaitReady waits for the underlying database.
func (r *SaveRepository) WaitReady(ctx context.Context) error {
	return r.pool.WaitReady(ctx)
}

// Exists reports whether the profile has a save blob.
func (r *SaveRepository) Exists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.DB().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM saves WHERE profile_id = $1)`,
		r.profileID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking for save: %w", err)
	}
	return exists, nil
}

// Read returns the profile's save blob, or storage.ErrNoSave.
func (r *SaveRepository) Read(ctx context.Context) ([]byte, error) {
	var blob []byte
	err := r.pool.DB().QueryRow(ctx,
		`SELECT blob FROM saves WHERE profile_id = $1`,
		r.profileID,
	).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNoSave
		}
		return nil, fmt.Errorf("reading save: %w", err)
	}
	return blob, nil
}

// Write upserts the profile's save blob in one statement.
//
// Postcondition: on success the stored blob equals blob; on error the
// previous blob is unchanged.
func (r *SaveRepository) Write(ctx context.Context, blob []byte) error {
	_, err := r.pool.DB().Exec(ctx,
		`INSERT INTO saves (profile_id, blob, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (profile_id)
		 DO UPDATE SET blob = EXCLUDED.blob, updated_at = NOW()`,
		r.profileID, blob,
	)
	if err != nil {
		return fmt.Errorf("writing save: %w", err)
	}
	return nil
}
