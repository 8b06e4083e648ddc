package shop

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gunbench/gunbench/internal/game/gunsmith"
)

// MaxRarity is the highest rarity a tier may declare. Rarity draws are
// uniform over [1, MaxRarity].
const MaxRarity = 5

// Stat keys accepted in tier bounds and starter modifier maps.
const (
	StatPower       = "power"
	StatAccuracy    = "accuracy"
	StatRapidity    = "rapidity"
	StatRecoil      = "recoil"
	StatReloadSpeed = "reload_speed"
	StatScope       = "scope"
)

// statKeys lists every accepted stat key, for validation messages.
var statKeys = []string{StatPower, StatAccuracy, StatRapidity, StatRecoil, StatReloadSpeed, StatScope}

// validStatKey reports whether key names a stat that bounds may constrain.
func validStatKey(key string) bool {
	switch key {
	case StatPower, StatAccuracy, StatRapidity, StatRecoil, StatReloadSpeed, StatScope:
		return true
	}
	return false
}

// Band is an inclusive floating-point stat range. For the recoil stat the
// band holds magnitudes; derivation negates them.
type Band struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// IntBand is an inclusive integer range, used for magazine capacity.
type IntBand struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// MeshVariant pairs the 3D asset of a generated part with its menu icon.
type MeshVariant struct {
	Mesh string `yaml:"mesh"`
	Icon string `yaml:"icon"`
}

// Tier defines one rarity bracket of a part kind: its price band, the stat
// bounds that prices interpolate across, and the visual variants a generated
// part may use.
type Tier struct {
	Rarity   int             `yaml:"rarity"`
	MinPrice int             `yaml:"min_price"`
	MaxPrice int             `yaml:"max_price"`
	Bounds   map[string]Band `yaml:"bounds"`
	Ammo     *IntBand        `yaml:"ammo"`
	Meshes   []MeshVariant   `yaml:"meshes"`
}

// Validate checks that the tier satisfies its invariants.
//
// Postcondition: returns nil iff rarity, prices, bounds, ammo, and meshes
// are all well-formed.
func (t *Tier) Validate() error {
	var errs []error
	if t.Rarity < 1 || t.Rarity > MaxRarity {
		errs = append(errs, fmt.Errorf("rarity must be in [1, %d], got %d", MaxRarity, t.Rarity))
	}
	if t.MinPrice < 0 {
		errs = append(errs, fmt.Errorf("min_price must be >= 0, got %d", t.MinPrice))
	}
	if t.MinPrice > t.MaxPrice {
		errs = append(errs, fmt.Errorf("min_price (%d) must be <= max_price (%d)", t.MinPrice, t.MaxPrice))
	}
	for key, band := range t.Bounds {
		if !validStatKey(key) {
			errs = append(errs, fmt.Errorf("unknown stat %q in bounds, expected one of %v", key, statKeys))
			continue
		}
		if band.Min > band.Max {
			errs = append(errs, fmt.Errorf("stat %q: min (%v) must be <= max (%v)", key, band.Min, band.Max))
		}
	}
	if t.Ammo != nil {
		if t.Ammo.Min < 0 {
			errs = append(errs, fmt.Errorf("ammo min must be >= 0, got %d", t.Ammo.Min))
		}
		if t.Ammo.Min > t.Ammo.Max {
			errs = append(errs, fmt.Errorf("ammo min (%d) must be <= max (%d)", t.Ammo.Min, t.Ammo.Max))
		}
	}
	if len(t.Meshes) == 0 {
		errs = append(errs, errors.New("meshes must not be empty"))
	}
	for i, m := range t.Meshes {
		if m.Mesh == "" {
			errs = append(errs, fmt.Errorf("meshes[%d] mesh must not be empty", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("tier %d validation failed: %v", t.Rarity, errs)
	}
	return nil
}

// NamePool holds the word lists offering names are assembled from.
type NamePool struct {
	Adjectives []string `yaml:"adjectives"`
	Nouns      []string `yaml:"nouns"`
}

// StarterDef defines the guaranteed baseline offering of a part kind. The
// starter is always in stock and its stats are fixed rather than derived
// from a price curve.
type StarterDef struct {
	Name  string             `yaml:"name"`
	Price int                `yaml:"price"`
	Mods  map[string]float64 `yaml:"mods"`
	Mesh  string             `yaml:"mesh"`
	Icon  string             `yaml:"icon"`
}

// PartConfig is the full generation table for one part kind, loaded from YAML.
type PartConfig struct {
	Kind    gunsmith.PartKind `yaml:"kind"`
	Starter *StarterDef       `yaml:"starter"`
	Names   NamePool          `yaml:"names"`
	Tiers   []Tier            `yaml:"tiers"`
}

// Tier returns the tier declared for the given rarity.
//
// Postcondition: ok is false when no tier covers rarity; generation treats
// that draw as a miss.
func (c *PartConfig) Tier(rarity int) (Tier, bool) {
	for _, t := range c.Tiers {
		if t.Rarity == rarity {
			return t, true
		}
	}
	return Tier{}, false
}

// Validate checks that the PartConfig satisfies its invariants.
//
// Precondition: c is non-nil.
// Postcondition: returns nil iff the kind, name pools, starter, and every
// tier are valid and no rarity is declared twice.
func (c *PartConfig) Validate() error {
	var errs []error
	if !c.Kind.Valid() {
		errs = append(errs, fmt.Errorf("invalid part kind %q", c.Kind))
	}
	if len(c.Names.Adjectives) == 0 {
		errs = append(errs, errors.New("names.adjectives must not be empty"))
	}
	if len(c.Names.Nouns) == 0 {
		errs = append(errs, errors.New("names.nouns must not be empty"))
	}
	if c.Starter != nil {
		if c.Starter.Name == "" {
			errs = append(errs, errors.New("starter name must not be empty"))
		}
		if c.Starter.Price < 0 {
			errs = append(errs, fmt.Errorf("starter price must be >= 0, got %d", c.Starter.Price))
		}
		for key := range c.Starter.Mods {
			if !validStatKey(key) && key != "ammo" {
				errs = append(errs, fmt.Errorf("unknown stat %q in starter mods", key))
			}
		}
	}
	if len(c.Tiers) == 0 {
		errs = append(errs, errors.New("tiers must not be empty"))
	}
	seen := make(map[int]bool, len(c.Tiers))
	for i := range c.Tiers {
		t := &c.Tiers[i]
		if seen[t.Rarity] {
			errs = append(errs, fmt.Errorf("duplicate tier for rarity %d", t.Rarity))
		}
		seen[t.Rarity] = true
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("part config %q validation failed: %v", c.Kind, errs)
	}
	return nil
}

// ModsFromMap converts a stat-keyed value map into Modifiers. The map form
// appears in starter definitions, where stats are authored directly instead
// of derived from a price. The "ammo" key is accepted alongside the bound
// stat keys and truncated to an int.
//
// Postcondition: returns an error naming the first unknown key, leaving no
// partial result.
func ModsFromMap(values map[string]float64) (gunsmith.Modifiers, error) {
	var m gunsmith.Modifiers
	for key, v := range values {
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
		case "ammo":
			m.Ammo = int(v)
		default:
			return gunsmith.Modifiers{}, fmt.Errorf("shop: ModsFromMap: unknown stat %q", key)
		}
	}
	return m, nil
}

// LoadPartConfigs reads all *.yaml files from dir, parses each as a
// PartConfig, validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns one valid config per part kind or the first
// encountered error; duplicate kinds across files are rejected.
func LoadPartConfigs(dir string) ([]*PartConfig, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadPartConfigs: cannot read directory %q: %w", dir, err)
	}

	var configs []*PartConfig
	seen := make(map[gunsmith.PartKind]string)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadPartConfigs: cannot read file %q: %w", path, err)
		}
		var c PartConfig
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("LoadPartConfigs: cannot parse file %q: %w", path, err)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("LoadPartConfigs: invalid part config in %q: %w", path, err)
		}
		if prev, dup := seen[c.Kind]; dup {
			return nil, fmt.Errorf("LoadPartConfigs: part kind %q defined in both %q and %q", c.Kind, prev, path)
		}
		seen[c.Kind] = path
		configs = append(configs, &c)
	}
	return configs, nil
}
