package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// Profile represents a player profile in the database. Each profile owns at
// most one save blob.
type Profile struct {
	ID           int64
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// ErrProfileNotFound is returned when a profile lookup yields no results.
var ErrProfileNotFound = errors.New("profile not found")

// ErrProfileExists is returned when attempting to create a duplicate profile name.
var ErrProfileExists = errors.New("profile already exists")

// ErrInvalidCredentials is returned when authentication fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ProfileRepository provides profile persistence operations.
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a ProfileRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile with a bcrypt-hashed password. Local
// single-player profiles may use an empty password.
//
// Precondition: name must be non-empty.
// Postcondition: returns the created Profile with ID and CreatedAt set,
// or ErrProfileExists if the name is taken.
func (r *ProfileRepository) Create(ctx context.Context, name, password string) (Profile, error) {
	if name == "" {
		return Profile{}, errors.New("profile name must not be empty")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return Profile{}, fmt.Errorf("hashing password: %w", err)
	}

	var p Profile
	err = r.db.QueryRow(ctx,
		`INSERT INTO profiles (name, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, name, password_hash, created_at`,
		name, hash,
	).Scan(&p.ID, &p.Name, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return Profile{}, ErrProfileExists
		}
		return Profile{}, fmt.Errorf("inserting profile: %w", err)
	}
	return p, nil
}

// GetByName retrieves a profile by name.
//
// Precondition: name must be non-empty.
// Postcondition: returns the Profile or ErrProfileNotFound.
func (r *ProfileRepository) GetByName(ctx context.Context, name string) (Profile, error) {
	var p Profile
	err := r.db.QueryRow(ctx,
		`SELECT id, name, password_hash, created_at
		 FROM profiles WHERE name = $1`,
		name,
	).Scan(&p.ID, &p.Name, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// GetOrCreate retrieves the profile by name, creating it with the given
// password when it does not exist. Concurrent creators of the same name
// converge on one row.
//
// Precondition: name must be non-empty.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, name, password string) (Profile, error) {
	p, err := r.GetByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return Profile{}, err
	}
	p, err = r.Create(ctx, name, password)
	if errors.Is(err, ErrProfileExists) {
		return r.GetByName(ctx, name)
	}
	return p, err
}

// Authenticate verifies credentials and returns the matching profile.
//
// Precondition: name must be non-empty.
// Postcondition: returns the Profile if credentials are valid,
// ErrProfileNotFound if the name doesn't exist,
// or ErrInvalidCredentials if the password is wrong.
func (r *ProfileRepository) Authenticate(ctx context.Context, name, password string) (Profile, error) {
	p, err := r.GetByName(ctx, name)
	if err != nil {
		return Profile{}, err
	}
	if !CheckPassword(password, p.PasswordHash) {
		return Profile{}, ErrInvalidCredentials
	}
	return p, nil
}

// HashPassword creates a bcrypt hash of the given password.
//
// Postcondition: returns a bcrypt hash string.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
//
// Postcondition: returns true if password matches the hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
