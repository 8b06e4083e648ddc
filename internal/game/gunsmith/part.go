package gunsmith

import (
	"fmt"

	"github.com/google/uuid"
)

// PartKind identifies the slot a part occupies on a gun.
type PartKind string

const (
	// KindBarrel is the barrel slot. Barrels are the only parts that carry
	// a weld state.
	KindBarrel PartKind = "barrel"
	// KindMagazine is the magazine slot. A gun without a magazine cannot
	// be reloaded.
	KindMagazine PartKind = "magazine"
	// KindStock is the stock slot.
	KindStock PartKind = "stock"
	// KindScope is the optics slot.
	KindScope PartKind = "scope"
)

// Kinds lists every part kind in composition order. Modifiers are additive,
// so the order never changes the result; a fixed order keeps snapshots and
// log output stable.
func Kinds() []PartKind {
	return []PartKind{KindBarrel, KindMagazine, KindStock, KindScope}
}

// Valid reports whether k is one of the defined part kinds.
func (k PartKind) Valid() bool {
	switch k {
	case KindBarrel, KindMagazine, KindStock, KindScope:
		return true
	}
	return false
}

// WeldComplete is the weld progress at which a barrel counts as attached.
const WeldComplete = 100.0

// WeldState tracks how far along a barrel weld is. Progress accumulates
// from repeated welding strokes; once it reaches WeldComplete the barrel
// is permanently attached and further strokes are no-ops.
// Invariant: 0 <= Progress <= WeldComplete, and Complete implies
// Progress == WeldComplete.
type WeldState struct {
	// Progress is the accumulated weld work in the range [0, WeldComplete].
	Progress float64
	// Complete latches true once Progress reaches WeldComplete.
	Complete bool
}

// Advance adds delta progress to the weld, clamping into range and latching
// Complete. Calling Advance on a completed weld changes nothing.
//
// Precondition:  delta >= 0 (panics otherwise).
// Postcondition: Progress is clamped to [0, WeldComplete]; Complete is set
// iff Progress == WeldComplete.
func (w *WeldState) Advance(delta float64) {
	if delta < 0 {
		panic(fmt.Sprintf("gunsmith: WeldState.Advance: delta must be >= 0, got %v", delta))
	}
	if w.Complete {
		return
	}
	w.Progress += delta
	if w.Progress >= WeldComplete {
		w.Progress = WeldComplete
		w.Complete = true
	}
}

// PartSpec carries everything needed to construct a Part. Specs come from two
// sources: the shop, when the player buys an offering, and the save layer,
// when a persisted part is rebuilt.
type PartSpec struct {
	// ID is the instance identifier. Leave empty to have NewPart assign a
	// fresh UUID.
	ID string
	// Kind is the slot the part fits.
	Kind PartKind
	// Name is the display name. A part without a name is not a real part.
	Name string
	// Cost is the purchase price in credits, used for appraisal.
	Cost int
	// Mods is the part's additive stat contribution.
	Mods Modifiers
	// WeldProgress seeds the barrel weld state. Ignored for other kinds.
	WeldProgress float64
	// Welded marks the barrel weld as already finished. Ignored for other kinds.
	Welded bool
	// MeshRef names the 3D asset rendered for this part.
	MeshRef string
	// IconRef names the 2D asset shown in menu lists.
	IconRef string
}

// Part is one physical component instance. Two parts never share an ID even
// when they were generated from the same shop tier.
type Part struct {
	// ID is the unique instance identifier.
	ID string
	// Kind is the slot this part occupies.
	Kind PartKind
	// Name is the display name shown to the player.
	Name string
	// Cost is the original purchase price in credits.
	Cost int
	// Mods is the additive stat contribution.
	Mods Modifiers
	// Weld is the barrel weld state; nil for every other kind.
	Weld *WeldState
	// MeshRef names the 3D asset rendered for this part.
	MeshRef string
	// IconRef names the 2D asset shown in menu lists.
	IconRef string

	mounted bool
}

// NewPart constructs a Part from spec, assigning a fresh UUID when spec.ID
// is empty. Barrels always get a WeldState, clamped into range.
//
// Precondition:  spec.Kind is valid and spec.Name is non-empty.
// Postcondition: the part is unmounted and its ID is non-empty.
func NewPart(spec PartSpec) (*Part, error) {
	if !spec.Kind.Valid() {
		return nil, fmt.Errorf("gunsmith: NewPart: invalid part kind %q", spec.Kind)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("gunsmith: NewPart: part name must not be empty")
	}
	id := spec.ID
	if id == "" {
		id = uuid.New().String()
	}
	p := &Part{
		ID:      id,
		Kind:    spec.Kind,
		Name:    spec.Name,
		Cost:    spec.Cost,
		Mods:    spec.Mods,
		MeshRef: spec.MeshRef,
		IconRef: spec.IconRef,
	}
	if spec.Kind == KindBarrel {
		w := &WeldState{Progress: spec.WeldProgress, Complete: spec.Welded}
		if w.Progress < 0 {
			w.Progress = 0
		}
		if w.Progress >= WeldComplete || w.Complete {
			w.Progress = WeldComplete
			w.Complete = true
		}
		p.Weld = w
	}
	return p, nil
}

// IsMounted reports whether the part is currently installed on a gun.
func (p *Part) IsMounted() bool {
	return p.mounted
}

// IsWelded reports whether the part is a barrel whose weld has finished.
// Non-barrel parts are never welded.
func (p *Part) IsWelded() bool {
	return p.Weld != nil && p.Weld.Complete
}

// String returns a short human-readable description for log output.
func (p *Part) String() string {
	return fmt.Sprintf("%s %q (%s)", p.Kind, p.Name, p.ID)
}
