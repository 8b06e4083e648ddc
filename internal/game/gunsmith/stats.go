// Package gunsmith models modular firearms assembled from interchangeable
// parts. A gun owns one slot per part kind; its effective stats are recomputed
// from a base stat template plus the modifiers of every installed part.
package gunsmith

// Stats holds the effective attribute values of an assembled gun.
// Stats is a plain value type: assignment produces an independent copy, so a
// caller can never mutate a gun's internals through a returned Stats.
type Stats struct {
	// Power is the damage dealt per shot.
	Power float64
	// Accuracy tightens the shot spread.
	Accuracy float64
	// Rapidity raises the rate of fire.
	Rapidity float64
	// Recoil is the kick applied per shot. Higher is worse, so part
	// modifiers drive this value down.
	Recoil float64
	// ReloadSpeed shortens the reload animation.
	ReloadSpeed float64
	// Scope is the zoom factor granted by optics.
	Scope float64
	// Ammo is the magazine capacity in rounds.
	Ammo int
}

// Apply returns a copy of s with every field of m added on.
//
// Postcondition: s is unchanged; the result is s shifted field-wise by m.
func (s Stats) Apply(m Modifiers) Stats {
	s.Power += m.Power
	s.Accuracy += m.Accuracy
	s.Rapidity += m.Rapidity
	s.Recoil += m.Recoil
	s.ReloadSpeed += m.ReloadSpeed
	s.Scope += m.Scope
	s.Ammo += m.Ammo
	return s
}

// Modifiers holds the additive stat contribution of a single part.
// A zero Modifiers contributes nothing. Recoil modifiers are stored
// negative: installing the part subtracts kick instead of adding it.
type Modifiers struct {
	Power       float64
	Accuracy    float64
	Rapidity    float64
	Recoil      float64
	ReloadSpeed float64
	Scope       float64
	Ammo        int
}

// IsZero reports whether m contributes nothing to any stat.
func (m Modifiers) IsZero() bool {
	return m == Modifiers{}
}
