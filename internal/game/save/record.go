// Package save serializes the armory to a single versioned blob and
// restores it in staged passes: currency immediately, racked guns after the
// rack delay, the workbench gun after the rack finishes. The blob format is
// JSON; its records capture guns structurally (name plus part list) so a
// restore rebuilds each gun through the normal constructors and composition
// rules instead of trusting persisted aggregates.
package save

import (
	"github.com/gunbench/gunbench/internal/game/gunsmith"
)

// Version is the current save blob format version.
const Version = 1

// Data is the root save record: one blob per profile.
type Data struct {
	Version   int         `json:"version"`
	Currency  int         `json:"currency"`
	Racks     []GunRecord `json:"racks,omitempty"`
	Workbench GunRecord   `json:"workbench"`
}

// GunRecord captures one gun: its name and the parts installed on it.
// Composed stats are not stored; they are recomputed on restore.
type GunRecord struct {
	Name  string       `json:"name,omitempty"`
	Parts []PartRecord `json:"parts,omitempty"`
}

// Valid reports whether the record describes a real gun: it must carry a
// name or at least one named part. Records failing this are leftovers from
// abandoned drafts and are discarded on restore.
func (r GunRecord) Valid() bool {
	if r.Name != "" {
		return true
	}
	for _, p := range r.Parts {
		if p.Name != "" {
			return true
		}
	}
	return false
}

// PartRecord captures one installed part.
type PartRecord struct {
	Kind         gunsmith.PartKind `json:"kind"`
	Name         string            `json:"name"`
	Cost         int               `json:"cost,omitempty"`
	Mods         StatRecord        `json:"mods"`
	WeldProgress float64           `json:"weld_progress,omitempty"`
	Welded       bool              `json:"welded,omitempty"`
	MeshRef      string            `json:"mesh,omitempty"`
	IconRef      string            `json:"icon,omitempty"`
}

// StatRecord is the wire form of a part's stat modifiers.
type StatRecord struct {
	Power       float64 `json:"power,omitempty"`
	Accuracy    float64 `json:"accuracy,omitempty"`
	Rapidity    float64 `json:"rapidity,omitempty"`
	Recoil      float64 `json:"recoil,omitempty"`
	ReloadSpeed float64 `json:"reload_speed,omitempty"`
	Scope       float64 `json:"scope,omitempty"`
	Ammo        int     `json:"ammo,omitempty"`
}

func statRecord(m gunsmith.Modifiers) StatRecord {
	return StatRecord{
		Power:       m.Power,
		Accuracy:    m.Accuracy,
		Rapidity:    m.Rapidity,
		Recoil:      m.Recoil,
		ReloadSpeed: m.ReloadSpeed,
		Scope:       m.Scope,
		Ammo:        m.Ammo,
	}
}

func (s StatRecord) modifiers() gunsmith.Modifiers {
	return gunsmith.Modifiers{
		Power:       s.Power,
		Accuracy:    s.Accuracy,
		Rapidity:    s.Rapidity,
		Recoil:      s.Recoil,
		ReloadSpeed: s.ReloadSpeed,
		Scope:       s.Scope,
		Ammo:        s.Ammo,
	}
}

// SnapshotGun captures g's live state as a GunRecord. The same instance
// always snapshots to the same record, so a gun referenced from both a
// storage slot and the workbench produces byte-identical records in both
// places.
func SnapshotGun(g *gunsmith.Gun) GunRecord {
	rec := GunRecord{Name: g.Name()}
	for _, p := range g.Parts() {
		pr := PartRecord{
			Kind:    p.Kind,
			Name:    p.Name,
			Cost:    p.Cost,
			Mods:    statRecord(p.Mods),
			MeshRef: p.MeshRef,
			IconRef: p.IconRef,
		}
		if p.Weld != nil {
			pr.WeldProgress = p.Weld.Progress
			pr.Welded = p.Weld.Complete
		}
		rec.Parts = append(rec.Parts, pr)
	}
	return rec
}

// Build reconstructs a gun from the record over the given base template,
// installing every buildable part and recomposing stats along the way. Part
// records that cannot be built (nameless or unknown kind) are skipped;
// skipped reports how many.
//
// Postcondition: the returned gun is never nil; its composed stats follow
// from base and the installed parts alone.
func (r GunRecord) Build(base gunsmith.Stats) (g *gunsmith.Gun, skipped int) {
	g = gunsmith.NewGun(r.Name, base)
	for _, pr := range r.Parts {
		p, err := gunsmith.NewPart(gunsmith.PartSpec{
			Kind:         pr.Kind,
			Name:         pr.Name,
			Cost:         pr.Cost,
			Mods:         pr.Mods.modifiers(),
			WeldProgress: pr.WeldProgress,
			Welded:       pr.Welded,
			MeshRef:      pr.MeshRef,
			IconRef:      pr.IconRef,
		})
		if err != nil {
			skipped++
			continue
		}
		if _, err := g.InstallPart(p); err != nil {
			skipped++
		}
	}
	return g, skipped
}
