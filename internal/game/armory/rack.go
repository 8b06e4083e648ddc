// Package armory manages where finished guns live: a fixed bank of storage
// slots and the single workbench a gun is edited on. A gun on the workbench
// stays in its storage slot; both hold the same instance.
package armory

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gunbench/gunbench/internal/game/gunsmith"
)

// SlotState describes how one storage slot presents to the player.
type SlotState string

const (
	// SlotOccupied holds a stored gun.
	SlotOccupied SlotState = "occupied"
	// SlotAvailable is the single empty slot guns can be stored into.
	SlotAvailable SlotState = "available"
	// SlotHidden is an empty slot beyond the available one; it is not
	// shown until the slots before it fill up.
	SlotHidden SlotState = "hidden"
)

// Entry is one occupied storage slot: the stored gun plus a display
// snapshot of its name and stats. The snapshot serves menu rendering; the
// gun itself remains the source of truth.
type Entry struct {
	Name  string
	Gun   *gunsmith.Gun
	Stats gunsmith.Stats
}

// Rack is the fixed-capacity bank of gun storage slots.
// Invariant: occupied slots form a gapless prefix; clearing a middle slot
// shifts everything after it left.
//
// A Rack is safe for concurrent use.
type Rack struct {
	mu       sync.RWMutex
	capacity int
	entries  []Entry
	onChange func()
	logger   *zap.Logger
}

// NewRack returns an empty rack with the given number of slots.
//
// Precondition:  capacity > 0 (panics otherwise); logger must be non-nil.
// Postcondition: Len() == 0 and State(0) == SlotAvailable.
func NewRack(capacity int, logger *zap.Logger) *Rack {
	if capacity <= 0 {
		panic(fmt.Sprintf("armory: NewRack: capacity must be > 0, got %d", capacity))
	}
	return &Rack{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
		logger:   logger,
	}
}

// SetOnChange registers a callback fired after every successful content
// change. The callback runs outside the rack's lock, so it may call back
// into the rack.
func (r *Rack) SetOnChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Capacity returns the total slot count, occupied or not.
func (r *Rack) Capacity() int {
	return r.capacity
}

// Len returns the number of occupied slots.
func (r *Rack) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// TryAssign stores g in the first free slot and reports whether a slot was
// free. The entry's display snapshot is taken at assign time.
//
// Precondition:  g must be non-nil (panics otherwise).
// Postcondition: on true, IndexOf(g) is the slot index and Len() grew by one.
func (r *Rack) TryAssign(g *gunsmith.Gun) bool {
	if g == nil {
		panic("armory: Rack.TryAssign: gun must not be nil")
	}
	r.mu.Lock()
	if len(r.entries) >= r.capacity {
		r.mu.Unlock()
		r.logger.Debug("rack full, assignment refused",
			zap.String("gun", g.Name()), zap.Int("capacity", r.capacity))
		return false
	}
	if r.indexOfLocked(g) >= 0 {
		r.mu.Unlock()
		r.logger.Debug("gun already racked, assignment refused", zap.String("gun", g.Name()))
		return false
	}
	r.entries = append(r.entries, Entry{Name: g.Name(), Gun: g, Stats: g.Stats()})
	index := len(r.entries) - 1
	fn := r.onChange
	r.mu.Unlock()

	r.logger.Debug("gun racked", zap.String("gun", g.Name()), zap.Int("slot", index))
	if fn != nil {
		fn()
	}
	return true
}

// Clear empties slot index and returns the gun that was stored there, or
// nil when the slot was empty or out of range. Later slots shift left so
// the occupied prefix stays gapless.
func (r *Rack) Clear(index int) *gunsmith.Gun {
	r.mu.Lock()
	if index < 0 || index >= len(r.entries) {
		r.mu.Unlock()
		return nil
	}
	g := r.entries[index].Gun
	r.entries = append(r.entries[:index], r.entries[index+1:]...)
	fn := r.onChange
	r.mu.Unlock()

	r.logger.Debug("rack slot cleared", zap.Int("slot", index), zap.String("gun", g.Name()))
	if fn != nil {
		fn()
	}
	return g
}

// IndexOf returns the slot index holding g, matching by identity, or -1.
func (r *Rack) IndexOf(g *gunsmith.Gun) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOfLocked(g)
}

func (r *Rack) indexOfLocked(g *gunsmith.Gun) int {
	for i := range r.entries {
		if r.entries[i].Gun == g {
			return i
		}
	}
	return -1
}

// FindByName returns the first stored gun whose snapshot name equals name,
// or nil. The empty name never matches.
func (r *Rack) FindByName(name string) *gunsmith.Gun {
	if name == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.entries {
		if r.entries[i].Name == name {
			return r.entries[i].Gun
		}
	}
	return nil
}

// State reports how slot index presents: occupied inside the stored prefix,
// available for the first empty slot, hidden for everything past it.
// Out-of-range indexes are hidden.
func (r *Rack) State(index int) SlotState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch {
	case index < 0 || index >= r.capacity:
		return SlotHidden
	case index < len(r.entries):
		return SlotOccupied
	case index == len(r.entries):
		return SlotAvailable
	default:
		return SlotHidden
	}
}

// Get returns the entry at slot index.
func (r *Rack) Get(index int) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.entries) {
		return Entry{}, false
	}
	return r.entries[index], true
}

// Entries returns a snapshot of the occupied slots in order.
func (r *Rack) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// RefreshEntry re-takes the display snapshot for the entry holding g and
// reports whether g was found. Call it after editing a stored gun on the
// workbench so menus show current name and stats.
func (r *Rack) RefreshEntry(g *gunsmith.Gun) bool {
	r.mu.Lock()
	i := r.indexOfLocked(g)
	if i < 0 {
		r.mu.Unlock()
		return false
	}
	r.entries[i].Name = g.Name()
	r.entries[i].Stats = g.Stats()
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn()
	}
	return true
}
