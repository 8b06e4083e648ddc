package armory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/gunbench/gunbench/internal/game/armory"
	"github.com/gunbench/gunbench/internal/game/gunsmith"
)

func newGun(name string) *gunsmith.Gun {
	return gunsmith.NewGun(name, gunsmith.Stats{Power: 2, Ammo: 6})
}

// TestRack_TryAssign_FillsLeftToRight verifies guns land in consecutive
// slots from the front.
func TestRack_TryAssign_FillsLeftToRight(t *testing.T) {
	r := armory.NewRack(3, zap.NewNop())
	a, b := newGun("Alpha"), newGun("Bravo")

	require.True(t, r.TryAssign(a))
	require.True(t, r.TryAssign(b))
	assert.Equal(t, 0, r.IndexOf(a))
	assert.Equal(t, 1, r.IndexOf(b))
	assert.Equal(t, 2, r.Len())
}

// TestRack_TryAssign_RefusesWhenFull verifies a full rack reports false
// without displacing anything.
func TestRack_TryAssign_RefusesWhenFull(t *testing.T) {
	r := armory.NewRack(2, zap.NewNop())
	require.True(t, r.TryAssign(newGun("Alpha")))
	require.True(t, r.TryAssign(newGun("Bravo")))

	late := newGun("Charlie")
	assert.False(t, r.TryAssign(late))
	assert.Equal(t, -1, r.IndexOf(late))
	assert.Equal(t, 2, r.Len())
}

// TestRack_TryAssign_RefusesDuplicate verifies the same instance cannot
// occupy two slots.
func TestRack_TryAssign_RefusesDuplicate(t *testing.T) {
	r := armory.NewRack(3, zap.NewNop())
	g := newGun("Alpha")
	require.True(t, r.TryAssign(g))
	assert.False(t, r.TryAssign(g))
	assert.Equal(t, 1, r.Len())
}

// TestRack_Clear_CompactsLeft verifies clearing a middle slot shifts later
// entries down, keeping the occupied prefix gapless.
func TestRack_Clear_CompactsLeft(t *testing.T) {
	r := armory.NewRack(4, zap.NewNop())
	a, b, c := newGun("Alpha"), newGun("Bravo"), newGun("Charlie")
	require.True(t, r.TryAssign(a))
	require.True(t, r.TryAssign(b))
	require.True(t, r.TryAssign(c))

	removed := r.Clear(1)
	require.Same(t, b, removed)
	assert.Equal(t, 0, r.IndexOf(a))
	assert.Equal(t, 1, r.IndexOf(c))
	assert.Equal(t, 2, r.Len())

	assert.Nil(t, r.Clear(5), "out-of-range clear should be a no-op")
	assert.Nil(t, r.Clear(2), "empty slot clear should be a no-op")
}

// TestRack_State_Progression verifies the occupied/available/hidden split
// around the first empty slot.
func TestRack_State_Progression(t *testing.T) {
	r := armory.NewRack(3, zap.NewNop())
	assert.Equal(t, armory.SlotAvailable, r.State(0))
	assert.Equal(t, armory.SlotHidden, r.State(1))
	assert.Equal(t, armory.SlotHidden, r.State(2))

	require.True(t, r.TryAssign(newGun("Alpha")))
	assert.Equal(t, armory.SlotOccupied, r.State(0))
	assert.Equal(t, armory.SlotAvailable, r.State(1))
	assert.Equal(t, armory.SlotHidden, r.State(2))

	require.True(t, r.TryAssign(newGun("Bravo")))
	require.True(t, r.TryAssign(newGun("Charlie")))
	assert.Equal(t, armory.SlotOccupied, r.State(2))
	assert.Equal(t, armory.SlotHidden, r.State(3), "past capacity is hidden")
	assert.Equal(t, armory.SlotHidden, r.State(-1))
}

// TestRack_FindByName verifies name lookup over snapshots, including the
// empty-name guard.
func TestRack_FindByName(t *testing.T) {
	r := armory.NewRack(3, zap.NewNop())
	named := newGun("Alpha")
	unnamed := newGun("")
	require.True(t, r.TryAssign(named))
	require.True(t, r.TryAssign(unnamed))

	assert.Same(t, named, r.FindByName("Alpha"))
	assert.Nil(t, r.FindByName("Delta"))
	assert.Nil(t, r.FindByName(""), "empty name must never match")
}

// TestRack_RefreshEntry_UpdatesSnapshot verifies that renaming a stored gun
// is invisible until the entry snapshot is refreshed.
func TestRack_RefreshEntry_UpdatesSnapshot(t *testing.T) {
	r := armory.NewRack(2, zap.NewNop())
	g := newGun("Draft")
	require.True(t, r.TryAssign(g))

	g.SetName("Final")
	entry, ok := r.Get(0)
	require.True(t, ok)
	assert.Equal(t, "Draft", entry.Name, "snapshot should lag until refresh")

	require.True(t, r.RefreshEntry(g))
	entry, ok = r.Get(0)
	require.True(t, ok)
	assert.Equal(t, "Final", entry.Name)
	assert.False(t, r.RefreshEntry(newGun("Ghost")))
}

// TestRack_OnChange_FiresPerMutation verifies the change callback counts
// assigns, clears, and refreshes but not refused operations.
func TestRack_OnChange_FiresPerMutation(t *testing.T) {
	r := armory.NewRack(1, zap.NewNop())
	fired := 0
	r.SetOnChange(func() { fired++ })

	g := newGun("Alpha")
	require.True(t, r.TryAssign(g))
	assert.False(t, r.TryAssign(newGun("Bravo")))
	require.True(t, r.RefreshEntry(g))
	require.Same(t, g, r.Clear(0))
	assert.Nil(t, r.Clear(0))

	assert.Equal(t, 3, fired)
}

// TestProperty_Rack_OccupiedPrefixGapless asserts that after any sequence
// of assigns and clears, occupied slots form a gapless prefix and every
// stored gun is found at the index it reports.
func TestProperty_Rack_OccupiedPrefixGapless(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(1, 8).Draw(rt, "capacity")
		r := armory.NewRack(capacity, zap.NewNop())
		ops := rapid.IntRange(0, 30).Draw(rt, "ops")
		serial := 0
		for i := 0; i < ops; i++ {
			if rapid.Bool().Draw(rt, "assign") {
				serial++
				r.TryAssign(newGun(string(rune('A' + serial%26))))
			} else {
				r.Clear(rapid.IntRange(0, capacity).Draw(rt, "slot"))
			}

			entries := r.Entries()
			if len(entries) != r.Len() {
				rt.Fatalf("entries/len mismatch: %d vs %d", len(entries), r.Len())
			}
			for slot := 0; slot < capacity; slot++ {
				state := r.State(slot)
				switch {
				case slot < len(entries) && state != armory.SlotOccupied:
					rt.Fatalf("slot %d should be occupied, got %s", slot, state)
				case slot == len(entries) && state != armory.SlotAvailable:
					rt.Fatalf("slot %d should be available, got %s", slot, state)
				case slot > len(entries) && state != armory.SlotHidden:
					rt.Fatalf("slot %d should be hidden, got %s", slot, state)
				}
			}
			for idx, e := range entries {
				if r.IndexOf(e.Gun) != idx {
					rt.Fatalf("gun at slot %d reports index %d", idx, r.IndexOf(e.Gun))
				}
			}
		}
	})
}
