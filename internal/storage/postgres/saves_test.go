package postgres_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gunbench/gunbench/internal/storage"
	pgstore "github.com/gunbench/gunbench/internal/storage/postgres"
)

// testPool connects to the database named by TEST_DSN and makes sure the
// schema exists. Tests using it are skipped when TEST_DSN is unset.
func testPool(t *testing.T) *pgstore.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DSN")
	if dsn == "" {
		t.Skip("TEST_DSN not set; skipping integration test")
	}
	pool, err := pgstore.NewPoolFromDSN(dsn)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}
	t.Cleanup(pool.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pool.WaitReady(ctx); err != nil {
		t.Fatalf("test DB not ready: %v", err)
	}
	ensureSchema(t, pool)
	return pool
}

func ensureSchema(t *testing.T, pool *pgstore.Pool) {
	t.Helper()
	_, err := pool.DB().Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS profiles (
			id            BIGSERIAL    PRIMARY KEY,
			name          VARCHAR(64)  NOT NULL UNIQUE,
			password_hash TEXT         NOT NULL,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS saves (
			profile_id BIGINT      PRIMARY KEY REFERENCES profiles (id) ON DELETE CASCADE,
			blob       BYTEA       NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		t.Fatalf("ensuring schema: %v", err)
	}
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func TestProfileRepository_CreateAndGet(t *testing.T) {
	pool := testPool(t)
	repo := pgstore.NewProfileRepository(pool.DB())
	ctx := context.Background()

	name := uniqueName("player")
	created, err := repo.Create(ctx, name, "hunter2")
	if err != nil {
		t.Fatalf("creating profile: %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("expected positive ID, got %d", created.ID)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}

	fetched, err := repo.GetByName(ctx, name)
	if err != nil {
		t.Fatalf("fetching profile: %v", err)
	}
	if fetched.ID != created.ID {
		t.Fatalf("expected ID %d, got %d", created.ID, fetched.ID)
	}
}

func TestProfileRepository_DuplicateName(t *testing.T) {
	pool := testPool(t)
	repo := pgstore.NewProfileRepository(pool.DB())
	ctx := context.Background()

	name := uniqueName("player")
	if _, err := repo.Create(ctx, name, "pw"); err != nil {
		t.Fatalf("creating profile: %v", err)
	}
	_, err := repo.Create(ctx, name, "pw")
	if !errors.Is(err, pgstore.ErrProfileExists) {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}
}

func TestProfileRepository_GetByName_NotFound(t *testing.T) {
	pool := testPool(t)
	repo := pgstore.NewProfileRepository(pool.DB())

	_, err := repo.GetByName(context.Background(), uniqueName("missing"))
	if !errors.Is(err, pgstore.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileRepository_GetOrCreate_Idempotent(t *testing.T) {
	pool := testPool(t)
	repo := pgstore.NewProfileRepository(pool.DB())
	ctx := context.Background()

	name := uniqueName("player")
	first, err := repo.GetOrCreate(ctx, name, "")
	if err != nil {
		t.Fatalf("first GetOrCreate: %v", err)
	}
	second, err := repo.GetOrCreate(ctx, name, "ignored on existing")
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same profile, got IDs %d and %d", first.ID, second.ID)
	}
}

func TestProfileRepository_Authenticate(t *testing.T) {
	pool := testPool(t)
	repo := pgstore.NewProfileRepository(pool.DB())
	ctx := context.Background()

	name := uniqueName("player")
	if _, err := repo.Create(ctx, name, "correct horse"); err != nil {
		t.Fatalf("creating profile: %v", err)
	}

	if _, err := repo.Authenticate(ctx, name, "correct horse"); err != nil {
		t.Fatalf("authenticating with valid credentials: %v", err)
	}
	_, err := repo.Authenticate(ctx, name, "battery staple")
	if !errors.Is(err, pgstore.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func saveRepoForNewProfile(t *testing.T, pool *pgstore.Pool) *pgstore.SaveRepository {
	t.Helper()
	profiles := pgstore.NewProfileRepository(pool.DB())
	p, err := profiles.Create(context.Background(), uniqueName("saver"), "")
	if err != nil {
		t.Fatalf("creating profile: %v", err)
	}
	return pgstore.NewSaveRepository(pool, p.ID)
}

func TestSaveRepository_EmptyUntilFirstWrite(t *testing.T) {
	pool := testPool(t)
	repo := saveRepoForNewProfile(t, pool)
	ctx := context.Background()

	exists, err := repo.Exists(ctx)
	if err != nil {
		t.Fatalf("checking existence: %v", err)
	}
	if exists {
		t.Fatal("expected no save for a fresh profile")
	}
	_, err = repo.Read(ctx)
	if !errors.Is(err, storage.ErrNoSave) {
		t.Fatalf("expected ErrNoSave, got %v", err)
	}
}

func TestSaveRepository_WriteReadRoundTrip(t *testing.T) {
	pool := testPool(t)
	repo := saveRepoForNewProfile(t, pool)
	ctx := context.Background()

	blob := []byte(`{"version":1,"currency":120}`)
	if err := repo.Write(ctx, blob); err != nil {
		t.Fatalf("writing save: %v", err)
	}

	exists, err := repo.Exists(ctx)
	if err != nil {
		t.Fatalf("checking existence: %v", err)
	}
	if !exists {
		t.Fatal("expected save to exist after write")
	}

	got, err := repo.Read(ctx)
	if err != nil {
		t.Fatalf("reading save: %v", err)
	}
	if !bytes.Equal(blob, got) {
		t.Fatalf("expected %q, got %q", blob, got)
	}
}

func TestSaveRepository_WriteReplacesBlob(t *testing.T) {
	pool := testPool(t)
	repo := saveRepoForNewProfile(t, pool)
	ctx := context.Background()

	if err := repo.Write(ctx, []byte(`{"currency":1}`)); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := repo.Write(ctx, []byte(`{"currency":2}`)); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := repo.Read(ctx)
	if err != nil {
		t.Fatalf("reading save: %v", err)
	}
	if !bytes.Equal([]byte(`{"currency":2}`), got) {
		t.Fatalf("expected the second blob, got %q", got)
	}
}

func TestSaveRepository_ProfilesIsolated(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	repoA := saveRepoForNewProfile(t, pool)
	repoB := saveRepoForNewProfile(t, pool)

	if err := repoA.Write(ctx, []byte(`{"owner":"a"}`)); err != nil {
		t.Fatalf("writing save A: %v", err)
	}

	exists, err := repoB.Exists(ctx)
	if err != nil {
		t.Fatalf("checking existence for B: %v", err)
	}
	if exists {
		t.Fatal("profile B must not see profile A's save")
	}
}
