package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunbench/gunbench/internal/storage"
	"github.com/gunbench/gunbench/internal/storage/memory"
)

// TestStore_EmptyUntilFirstWrite verifies the first-launch shape: no save
// exists and Read reports storage.ErrNoSave.
func TestStore_EmptyUntilFirstWrite(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.WaitReady(ctx))
	exists, err := s.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = s.Read(ctx)
	require.ErrorIs(t, err, storage.ErrNoSave)
}

// TestStore_WriteThenRead verifies a round trip and that Write replaces the
// previous blob wholesale.
func TestStore_WriteThenRead(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.Write(ctx, []byte("first")))
	exists, err := s.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)

	require.NoError(t, s.Write(ctx, []byte("second")))
	got, err = s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

// TestStore_ReadReturnsCopy verifies that mutating a returned blob does not
// corrupt the stored save.
func TestStore_ReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Write(ctx, []byte("data")))

	got, err := s.Read(ctx)
	require.NoError(t, err)
	got[0] = 'X'

	again, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), again)
}

// TestStore_HonoursContext verifies cancelled contexts short-circuit.
func TestStore_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := memory.New()

	assert.Error(t, s.WaitReady(ctx))
	_, err := s.Exists(ctx)
	assert.Error(t, err)
	_, err = s.Read(ctx)
	assert.Error(t, err)
	assert.Error(t, s.Write(ctx, []byte("x")))
}
