package shop

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/gunbench/gunbench/internal/game/bank"
	"github.com/gunbench/gunbench/internal/game/gunsmith"
)

// ErrNoOffering is returned when a purchase names an offering that is not
// in stock, usually because the menu selection went stale.
var ErrNoOffering = errors.New("shop: no such offering")

// ErrInsufficientFunds is returned when the wallet cannot cover a purchase.
var ErrInsufficientFunds = errors.New("shop: insufficient funds")

// ErrPartMounted is returned when selling a part that is still installed on
// a gun.
var ErrPartMounted = errors.New("shop: part is mounted")

// DefaultSellRatio is the fraction of original cost refunded on a sale.
const DefaultSellRatio = 0.5

// Spawner receives the physical part produced by a purchase. The shop hands
// the part over exactly once and keeps no reference; whatever the spawner
// does with it (drop it on the bench, eject it from a vending chute) is out
// of the shop's hands.
type Spawner interface {
	// SpawnPart materialises p in the world.
	SpawnPart(p *gunsmith.Part) error
}

// LogSpawner is a Spawner that only records the spawn. It stands in when no
// presentation layer is attached, such as headless runs and tests.
type LogSpawner struct {
	logger *zap.Logger
}

// NewLogSpawner returns a LogSpawner writing to logger.
//
// Precondition: logger must be non-nil.
func NewLogSpawner(logger *zap.Logger) *LogSpawner {
	return &LogSpawner{logger: logger}
}

// SpawnPart logs the part at info level and succeeds.
func (s *LogSpawner) SpawnPart(p *gunsmith.Part) error {
	s.logger.Info("part spawned",
		zap.String("kind", string(p.Kind)),
		zap.String("name", p.Name),
		zap.String("id", p.ID))
	return nil
}

// Shop sells catalog offerings for wallet credits and buys parts back at a
// fixed ratio of their original cost.
type Shop struct {
	catalog   *Catalog
	wallet    *bank.Wallet
	spawner   Spawner
	sellRatio float64
	logger    *zap.Logger
}

// NewShop wires a shop over the given catalog, wallet, and spawner.
//
// Precondition:  0 < sellRatio <= 1 (panics otherwise); all references non-nil.
func NewShop(catalog *Catalog, wallet *bank.Wallet, spawner Spawner, sellRatio float64, logger *zap.Logger) *Shop {
	if sellRatio <= 0 || sellRatio > 1 {
		panic(fmt.Sprintf("shop: NewShop: sellRatio must be in (0, 1], got %v", sellRatio))
	}
	return &Shop{
		catalog:   catalog,
		wallet:    wallet,
		spawner:   spawner,
		sellRatio: sellRatio,
		logger:    logger,
	}
}

// Catalog returns the stock catalog the shop sells from.
func (s *Shop) Catalog() *Catalog {
	return s.catalog
}

// Buy purchases the offering at index within kind's stock. On success the
// offering leaves the stock, the wallet is debited its price, and a freshly
// minted part is handed to the spawner and returned.
//
// Postcondition: on any error the wallet balance is unchanged. Returns
// ErrNoOffering for a stale selection and ErrInsufficientFunds when the
// balance cannot cover the price.
func (s *Shop) Buy(kind gunsmith.PartKind, index int) (*gunsmith.Part, error) {
	o := s.catalog.Get(kind, index)
	if o == nil {
		return nil, fmt.Errorf("shop: Shop.Buy: %s index %d: %w", kind, index, ErrNoOffering)
	}
	mods, err := o.Stats()
	if err != nil {
		return nil, fmt.Errorf("shop: Shop.Buy: %w", err)
	}
	part, err := gunsmith.NewPart(gunsmith.PartSpec{
		Kind:    o.Kind,
		Name:    o.Name,
		Cost:    o.Price,
		Mods:    mods,
		MeshRef: o.MeshRef,
		IconRef: o.IconRef,
	})
	if err != nil {
		return nil, fmt.Errorf("shop: Shop.Buy: %w", err)
	}

	if !s.wallet.TrySpend(o.Price) {
		return nil, fmt.Errorf("shop: Shop.Buy: price %d: %w", o.Price, ErrInsufficientFunds)
	}
	if !s.catalog.Remove(kind, o) {
		// Another buyer claimed the offering between Get and Remove.
		s.wallet.Deposit(o.Price)
		return nil, fmt.Errorf("shop: Shop.Buy: %s index %d: %w", kind, index, ErrNoOffering)
	}

	if err := s.spawner.SpawnPart(part); err != nil {
		// The sale stands; the presentation layer missed the drop.
		s.logger.Warn("spawner rejected purchased part",
			zap.String("part", part.String()), zap.Error(err))
	}
	s.logger.Info("part purchased",
		zap.String("kind", string(o.Kind)),
		zap.String("name", o.Name),
		zap.Int("price", o.Price),
		zap.Int("balance", s.wallet.Balance()))
	return part, nil
}

// Appraise returns the full combined cost of every part installed on g.
// This is the gun's book value before the sell ratio is applied.
func (s *Shop) Appraise(g *gunsmith.Gun) int {
	total := 0
	for _, p := range g.Parts() {
		total += p.Cost
	}
	return total
}

// SellGun credits the wallet with the gun's appraised value scaled by the
// sell ratio, rounded down, and returns the credit. The caller is expected
// to have removed the gun from play; the shop does not dismantle it.
func (s *Shop) SellGun(g *gunsmith.Gun) int {
	credit := int(math.Floor(s.sellRatio * float64(s.Appraise(g))))
	balance := s.wallet.Deposit(credit)
	s.logger.Info("gun sold",
		zap.String("name", g.Name()),
		zap.Int("credit", credit),
		zap.Int("balance", balance))
	return credit
}

// SellPart credits the wallet for a single loose part at the sell ratio.
//
// Postcondition: returns ErrPartMounted and leaves the balance unchanged
// when p is still installed on a gun.
func (s *Shop) SellPart(p *gunsmith.Part) (int, error) {
	if p.IsMounted() {
		return 0, fmt.Errorf("shop: Shop.SellPart: %s: %w", p, ErrPartMounted)
	}
	credit := int(math.Floor(s.sellRatio * float64(p.Cost)))
	balance := s.wallet.Deposit(credit)
	s.logger.Info("part sold",
		zap.String("part", p.String()),
		zap.Int("credit", credit),
		zap.Int("balance", balance))
	return credit, nil
}
