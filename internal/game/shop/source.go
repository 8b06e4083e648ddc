// Package shop generates purchasable gun-part offerings and sells them.
// Offerings are rolled from per-kind tier tables: a rarity pick selects a
// tier, a price is sampled inside the tier's band, and the part's stats are
// derived from where that price falls on the band.
package shop

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
	"sync"
)

// Source produces the random draws behind offering generation. A fixed
// Source makes shop stock reproducible in tests.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand. This is the
// production source; shop stock must not be predictable across runs.
//
// Postcondition: every value returned by Intn is uniform in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "shop: Intn called with n <= 0" if n <= 0.
// Panics with "shop: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("shop: Intn called with n <= 0")
	}
	val, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("shop: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// seededSource implements Source using a locked math/rand generator.
type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a deterministic Source for the given seed. Two
// sources with the same seed produce the same draw sequence, which tests
// rely on to pin down generated stock.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a pseudo-random int in [0, n) from the seeded stream.
//
// Precondition: n > 0 (panics otherwise, via math/rand).
func (s *seededSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
