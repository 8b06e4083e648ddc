package shop

import (
	"fmt"
	"sync"

	"github.com/gunbench/gunbench/internal/game/gunsmith"
)

// Offering is one purchasable entry in the shop's stock. Its stat block is
// derived lazily: browsing a long shop list never pays for derivations the
// player skips past, and inspecting the same offering twice returns the
// cached block.
type Offering struct {
	// ID is the unique offering identifier.
	ID string
	// Kind is the part kind this offering produces when bought.
	Kind gunsmith.PartKind
	// Rarity is the tier the offering was rolled from.
	Rarity int
	// Price is the purchase price in credits, fixed at generation.
	Price int
	// Name is the generated display name.
	Name string
	// MeshRef names the 3D asset of the part.
	MeshRef string
	// IconRef names the 2D asset shown in the shop list.
	IconRef string
	// Starter marks the guaranteed baseline offering of the kind.
	Starter bool

	// tier captures the pricing context for lazy stat derivation.
	tier Tier

	mu    sync.Mutex
	stats *gunsmith.Modifiers
}

// Stats returns the offering's stat modifiers, deriving them from the price
// curve on first call and caching the result.
//
// Postcondition: repeated calls return equal values until InvalidateStats.
func (o *Offering) Stats() (gunsmith.Modifiers, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stats != nil {
		return *o.stats, nil
	}
	m, err := PriceStats(o.tier, o.Price)
	if err != nil {
		return gunsmith.Modifiers{}, fmt.Errorf("shop: Offering.Stats: %w", err)
	}
	o.stats = &m
	return m, nil
}

// InvalidateStats drops the cached stat block so the next Stats call derives
// it again. Starter offerings carry fixed stats and ignore the call.
func (o *Offering) InvalidateStats() {
	if o.Starter {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stats = nil
}

// String returns a short human-readable description for log output.
func (o *Offering) String() string {
	return fmt.Sprintf("%s %q (rarity %d, %d credits)", o.Kind, o.Name, o.Rarity, o.Price)
}
