package gunsmith

import (
	"fmt"
	"sync"
)

// Gun is one assembled firearm. It owns at most one part per kind and keeps
// a composed stat block that is recomputed on every mutation, so readers
// always observe stats consistent with the installed parts.
//
// A Gun is safe for concurrent use. The same instance may be referenced from
// several places at once (a storage slot and the workbench); its live state
// is the single source of truth for all of them.
type Gun struct {
	mu       sync.Mutex
	name     string
	base     Stats
	parts    map[PartKind]*Part
	composed Stats
}

// NewGun returns a gun with no parts installed whose composed stats equal
// the base template.
//
// Postcondition: Stats() == base and every slot is empty.
func NewGun(name string, base Stats) *Gun {
	return &Gun{
		name:     name,
		base:     base,
		parts:    make(map[PartKind]*Part),
		composed: base,
	}
}

// Name returns the gun's display name. Unnamed work-in-progress guns return
// the empty string.
func (g *Gun) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.name
}

// SetName renames the gun. Naming happens once assembly is finished, but a
// rename is accepted at any time.
func (g *Gun) SetName(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.name = name
}

// BaseStats returns the part-independent stat template the gun was created with.
func (g *Gun) BaseStats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.base
}

// Stats returns the composed stat block. The value reflects the parts
// installed at call time; it is a copy and safe to retain.
func (g *Gun) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.composed
}

// InstallPart mounts p in its kind's slot and returns the part it displaced,
// or nil when the slot was empty. The displaced part is unmounted and can be
// installed elsewhere or sold.
//
// Precondition:  p is non-nil, has a valid kind, and is not mounted on any gun.
// Postcondition: Part(p.Kind) == p and the composed stats include p.Mods.
func (g *Gun) InstallPart(p *Part) (*Part, error) {
	if p == nil {
		return nil, fmt.Errorf("gunsmith: Gun.InstallPart: part must not be nil")
	}
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("gunsmith: Gun.InstallPart: invalid part kind %q", p.Kind)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if p.mounted {
		return nil, fmt.Errorf("gunsmith: Gun.InstallPart: part %s is already mounted", p)
	}
	displaced := g.parts[p.Kind]
	if displaced != nil {
		displaced.mounted = false
	}
	p.mounted = true
	g.parts[p.Kind] = p
	g.recomposeLocked()
	return displaced, nil
}

// RemovePart empties the slot for kind and returns the part that occupied
// it, or nil when the slot was already empty.
//
// Postcondition: Part(kind) == nil and the returned part, if any, is unmounted.
func (g *Gun) RemovePart(kind PartKind) *Part {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.parts[kind]
	if p == nil {
		return nil
	}
	p.mounted = false
	delete(g.parts, kind)
	g.recomposeLocked()
	return p
}

// Part returns the part installed in the given slot, or nil when empty.
func (g *Gun) Part(kind PartKind) *Part {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.parts[kind]
}

// Parts returns the installed parts in composition order. The slice is a
// fresh copy; the parts themselves are the live instances.
func (g *Gun) Parts() []*Part {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*Part
	for _, kind := range Kinds() {
		if p := g.parts[kind]; p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Recompose recomputes the composed stat block from the base template and
// the installed parts, and returns the result. Mutating operations already
// recompose internally; callers only need this after editing a mounted
// part's Mods in place.
//
// Postcondition: repeated calls without intervening mutation return
// identical values.
func (g *Gun) Recompose() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recomposeLocked()
	return g.composed
}

func (g *Gun) recomposeLocked() {
	s := g.base
	for _, kind := range Kinds() {
		if p := g.parts[kind]; p != nil {
			s = s.Apply(p.Mods)
		}
	}
	g.composed = s
}

// PreviewInstall computes the stats the gun would have if candidate were
// installed, without mutating the gun or the candidate. A part already in
// the candidate's slot is treated as displaced for the calculation.
//
// Precondition:  candidate is non-nil with a valid kind.
// Postcondition: the gun's parts and composed stats are unchanged.
func (g *Gun) PreviewInstall(candidate *Part) (Stats, error) {
	if candidate == nil {
		return Stats{}, fmt.Errorf("gunsmith: Gun.PreviewInstall: part must not be nil")
	}
	if !candidate.Kind.Valid() {
		return Stats{}, fmt.Errorf("gunsmith: Gun.PreviewInstall: invalid part kind %q", candidate.Kind)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.base
	for _, kind := range Kinds() {
		if kind == candidate.Kind {
			s = s.Apply(candidate.Mods)
			continue
		}
		if p := g.parts[kind]; p != nil {
			s = s.Apply(p.Mods)
		}
	}
	return s, nil
}

// CanShoot reports whether the gun can fire, which requires a barrel. The
// firing subsystem consults this before allowing a shot.
func (g *Gun) CanShoot() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.parts[KindBarrel] != nil
}

// CanReload reports whether the gun can be reloaded, which requires a magazine.
func (g *Gun) CanReload() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.parts[KindMagazine] != nil
}
