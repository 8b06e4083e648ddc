package shop

import (
	"fmt"
	"math"

	"github.com/gunbench/gunbench/internal/game/gunsmith"
)

// PriceStats derives a part's stat modifiers from where price falls inside
// the tier's price band. Each bounded stat interpolates linearly: the band
// minimum at the tier's minimum price, the band maximum at its maximum
// price, rounded up to the next integer. Recoil is negated before rounding
// so a higher price always means less kick. A degenerate band whose minimum
// price equals its maximum yields the bound maxima exactly (negated for
// recoil), with no rounding.
//
// The derivation is pure: equal inputs always produce equal Modifiers.
//
// Precondition:  t has passed Validate().
// Postcondition: returns an error when price lies outside
// [t.MinPrice, t.MaxPrice]; otherwise every field is derived from its bound
// and unbounded stats stay zero.
func PriceStats(t Tier, price int) (gunsmith.Modifiers, error) {
	if price < t.MinPrice || price > t.MaxPrice {
		return gunsmith.Modifiers{}, fmt.Errorf(
			"shop: PriceStats: price %d outside tier %d band [%d, %d]",
			price, t.Rarity, t.MinPrice, t.MaxPrice)
	}

	var m gunsmith.Modifiers
	for key, band := range t.Bounds {
		v := t.resolve(band, price, key == StatRecoil)
		switch key {
		case StatPower:
			m.Power = v
		case StatAccuracy:
			m.Accuracy = v
		case StatRapidity:
			m.Rapidity = v
		case StatRecoil:
			m.Recoil = v
		case StatReloadSpeed:
			m.ReloadSpeed = v
		case StatScope:
			m.Scope = v
		default:
			return gunsmith.Modifiers{}, fmt.Errorf("shop: PriceStats: unknown stat %q in tier %d", key, t.Rarity)
		}
	}
	if t.Ammo != nil {
		band := Band{Min: float64(t.Ammo.Min), Max: float64(t.Ammo.Max)}
		m.Ammo = int(t.resolve(band, price, false))
	}
	return m, nil
}

// resolve interpolates one band at the given price. With negate set the
// interpolated value is negated before rounding, which is not the same as
// negating afterwards: Ceil(-x) == -Floor(x).
func (t Tier) resolve(band Band, price int, negate bool) float64 {
	if t.MinPrice == t.MaxPrice {
		if negate {
			return -band.Max
		}
		return band.Max
	}
	frac := float64(price-t.MinPrice) / float64(t.MaxPrice-t.MinPrice)
	v := band.Min + (band.Max-band.Min)*frac
	if negate {
		v = -v
	}
	return math.Ceil(v)
}
