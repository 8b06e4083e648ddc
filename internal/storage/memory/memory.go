// Package memory provides an in-process SaveStore. Saves survive for the
// lifetime of the process only; the engine-embedded runtime uses it when no
// database is configured, and tests use it everywhere.
package memory

import (
	"context"
	"sync"

	"github.com/gunbench/gunbench/internal/storage"
)

// Store is an in-memory SaveStore. The zero value is not usable; call New.
type Store struct {
	mu   sync.RWMutex
	blob []byte
}

// New returns an empty Store.
//
// Postcondition: Exists reports false until the first Write.
func New() *Store {
	return &Store{}
}

// WaitReady returns immediately; memory is always ready.
func (s *Store) WaitReady(ctx context.Context) error {
	return ctx.Err()
}

// Exists reports whether a blob has been written.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blob != nil, nil
}

// Read returns a copy of the stored blob, or storage.ErrNoSave.
func (s *Store) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.blob == nil {
		return nil, storage.ErrNoSave
	}
	out := make([]byte, len(s.blob))
	copy(out, s.blob)
	return out, nil
}

// Write replaces the stored blob with a copy of blob. The swap is atomic
// under the store's lock.
func (s *Store) Write(ctx context.Context, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]byte, len(blob))
	copy(stored, blob)
	s.mu.Lock()
	s.blob = stored
	s.mu.Unlock()
	return nil
}
