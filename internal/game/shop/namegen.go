package shop

import "fmt"

// deriveName assembles a display name from the kind's word pools plus a
// two-digit serial. Names are flavor only; nothing keys off them, so
// collisions between offerings are harmless.
//
// Precondition: pool has passed validation (both lists non-empty).
func deriveName(pool NamePool, src Source) string {
	adj := pool.Adjectives[src.Intn(len(pool.Adjectives))]
	noun := pool.Nouns[src.Intn(len(pool.Nouns))]
	return fmt.Sprintf("%s %s %02d", adj, noun, src.Intn(99)+1)
}
