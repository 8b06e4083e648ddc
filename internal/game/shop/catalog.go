package shop

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gunbench/gunbench/internal/game/gunsmith"
)

// DefaultOfferingsPerKind is the stock size rolled per part kind when the
// catalog is constructed without an explicit size.
const DefaultOfferingsPerKind = 6

// retryAttemptsPerSlot bounds how many generation attempts a refresh may
// spend per stock slot. Attempts miss when the rarity draw has no tier
// configured; the budget keeps a sparse tier table from spinning forever.
const retryAttemptsPerSlot = 4

// Catalog holds the shop's current stock, one offering list per part kind.
// Lists are rolled on first access and re-rolled on demand; a kind whose
// configuration is missing simply has empty stock.
//
// A Catalog is safe for concurrent use.
type Catalog struct {
	mu      sync.Mutex
	src     Source
	logger  *zap.Logger
	configs map[gunsmith.PartKind]*PartConfig
	offers  map[gunsmith.PartKind][]*Offering
	perKind int
}

// NewCatalog returns a catalog generating perKind offerings per part kind
// from the given configs. perKind <= 0 selects DefaultOfferingsPerKind.
//
// Precondition: src and logger must be non-nil.
func NewCatalog(configs []*PartConfig, src Source, perKind int, logger *zap.Logger) *Catalog {
	if perKind <= 0 {
		perKind = DefaultOfferingsPerKind
	}
	byKind := make(map[gunsmith.PartKind]*PartConfig, len(configs))
	for _, cfg := range configs {
		byKind[cfg.Kind] = cfg
	}
	return &Catalog{
		src:     src,
		logger:  logger,
		configs: byKind,
		offers:  make(map[gunsmith.PartKind][]*Offering),
		perKind: perKind,
	}
}

// Refresh discards the stock for kind and rolls a fresh list: the kind's
// starter offering first when one is configured, then up to perKind
// generated offerings. Generation misses (rarity draws without a configured
// tier) are retried within a bounded budget; running out of budget leaves
// the list short rather than blocking.
//
// Postcondition: the returned slice is a snapshot; later catalog mutations
// do not affect it.
func (c *Catalog) Refresh(kind gunsmith.PartKind) []*Offering {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked(kind)
	return c.snapshotLocked(kind)
}

// Offerings returns the current stock for kind, rolling it first if the
// kind has never been refreshed.
func (c *Catalog) Offerings(kind gunsmith.PartKind) []*Offering {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLocked(kind)
	return c.snapshotLocked(kind)
}

// Get returns the offering at index within kind's stock, or nil when the
// index is out of range. An out-of-range index is an expected miss (stale
// menu selection), not an error.
func (c *Catalog) Get(kind gunsmith.PartKind, index int) *Offering {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLocked(kind)
	list := c.offers[kind]
	if index < 0 || index >= len(list) {
		return nil
	}
	return list[index]
}

// Remove takes o out of kind's stock, matching by identity. It reports
// whether the offering was present; a false return means another buyer got
// there first.
func (c *Catalog) Remove(kind gunsmith.PartKind, o *Offering) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.offers[kind]
	for i, have := range list {
		if have == o {
			c.offers[kind] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// ensureLocked rolls stock for kind if it has never been rolled.
func (c *Catalog) ensureLocked(kind gunsmith.PartKind) {
	if _, ok := c.offers[kind]; !ok {
		c.refreshLocked(kind)
	}
}

func (c *Catalog) refreshLocked(kind gunsmith.PartKind) {
	cfg, ok := c.configs[kind]
	if !ok {
		c.logger.Warn("no part configuration for kind, stock stays empty",
			zap.String("kind", string(kind)))
		c.offers[kind] = []*Offering{}
		return
	}

	offers := make([]*Offering, 0, c.perKind+1)
	if cfg.Starter != nil {
		offers = append(offers, c.starterOffering(cfg))
	}

	budget := c.perKind * retryAttemptsPerSlot
	generated := 0
	for attempt := 0; generated < c.perKind && attempt < budget; attempt++ {
		o, ok := c.generate(cfg)
		if !ok {
			continue
		}
		offers = append(offers, o)
		generated++
	}
	if generated < c.perKind {
		c.logger.Warn("offering stock under target",
			zap.String("kind", string(kind)),
			zap.Int("generated", generated),
			zap.Int("target", c.perKind))
	}
	c.offers[kind] = offers
}

// generate rolls a single offering: rarity pick, price inside the tier's
// band, mesh variant, and name. It reports false when the rarity draw has
// no configured tier.
func (c *Catalog) generate(cfg *PartConfig) (*Offering, bool) {
	rarity := c.src.Intn(MaxRarity) + 1
	tier, ok := cfg.Tier(rarity)
	if !ok {
		c.logger.Debug("rarity draw has no tier, retrying",
			zap.String("kind", string(cfg.Kind)),
			zap.Int("rarity", rarity))
		return nil, false
	}

	price := tier.MinPrice
	if spread := tier.MaxPrice - tier.MinPrice; spread > 0 {
		price += c.src.Intn(spread + 1)
	}
	variant := tier.Meshes[c.src.Intn(len(tier.Meshes))]

	o := &Offering{
		ID:      uuid.New().String(),
		Kind:    cfg.Kind,
		Rarity:  rarity,
		Price:   price,
		Name:    deriveName(cfg.Names, c.src),
		MeshRef: variant.Mesh,
		IconRef: variant.Icon,
		tier:    tier,
	}
	c.logger.Debug("offering rolled",
		zap.String("kind", string(cfg.Kind)),
		zap.Int("rarity", rarity),
		zap.Int("price", price),
		zap.String("name", o.Name),
		zap.String("mesh", o.MeshRef))
	return o, true
}

// starterOffering builds the kind's guaranteed baseline offering with its
// fixed stat block pre-cached.
func (c *Catalog) starterOffering(cfg *PartConfig) *Offering {
	mods, err := ModsFromMap(cfg.Starter.Mods)
	if err != nil {
		// Validate rejects unknown keys at load, so this only fires on a
		// hand-built config.
		c.logger.Error("invalid starter mods, using zero stats",
			zap.String("kind", string(cfg.Kind)), zap.Error(err))
		mods = gunsmith.Modifiers{}
	}
	return &Offering{
		ID:      uuid.New().String(),
		Kind:    cfg.Kind,
		Rarity:  1,
		Price:   cfg.Starter.Price,
		Name:    cfg.Starter.Name,
		MeshRef: cfg.Starter.Mesh,
		IconRef: cfg.Starter.Icon,
		Starter: true,
		stats:   &mods,
	}
}

func (c *Catalog) snapshotLocked(kind gunsmith.PartKind) []*Offering {
	list := c.offers[kind]
	out := make([]*Offering, len(list))
	copy(out, list)
	return out
}
