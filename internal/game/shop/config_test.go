package shop_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunbench/gunbench/internal/game/gunsmith"
	"github.com/gunbench/gunbench/internal/game/shop"
)

const barrelYAML = `kind: barrel
starter:
  name: Shop-Worn Barrel
  price: 0
  mods:
    power: 1
    recoil: -1
  mesh: barrel_starter
  icon: icon_barrel_starter
names:
  adjectives: [Rusted, Polished]
  nouns: [Vulture, Bore]
tiers:
  - rarity: 1
    min_price: 40
    max_price: 120
    bounds:
      power: {min: 1, max: 4}
      recoil: {min: 0, max: 2}
    meshes:
      - {mesh: barrel_t1_a, icon: icon_barrel_t1_a}
  - rarity: 2
    min_price: 120
    max_price: 300
    bounds:
      power: {min: 3, max: 8}
      accuracy: {min: 1, max: 3}
    meshes:
      - {mesh: barrel_t2_a, icon: icon_barrel_t2_a}
`

const magazineYAML = `kind: magazine
names:
  adjectives: [Standard]
  nouns: [Feed]
tiers:
  - rarity: 1
    min_price: 30
    max_price: 90
    ammo: {min: 6, max: 14}
    bounds:
      reload_speed: {min: 0, max: 2}
    meshes:
      - {mesh: mag_t1_a, icon: icon_mag_t1_a}
`

func writeContent(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

// TestLoadPartConfigs_ParsesAndValidates verifies a well-formed content
// directory loads with tier tables intact.
func TestLoadPartConfigs_ParsesAndValidates(t *testing.T) {
	dir := writeContent(t, map[string]string{
		"barrel.yaml":   barrelYAML,
		"magazine.yaml": magazineYAML,
		"notes.txt":     "ignored",
	})
	configs, err := shop.LoadPartConfigs(dir)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	byKind := make(map[gunsmith.PartKind]*shop.PartConfig)
	for _, c := range configs {
		byKind[c.Kind] = c
	}
	barrel := byKind[gunsmith.KindBarrel]
	require.NotNil(t, barrel)
	require.NotNil(t, barrel.Starter)
	assert.Equal(t, "Shop-Worn Barrel", barrel.Starter.Name)
	tier, ok := barrel.Tier(2)
	require.True(t, ok)
	assert.Equal(t, 120, tier.MinPrice)
	assert.Equal(t, 300, tier.MaxPrice)
	assert.Equal(t, shop.Band{Min: 3, Max: 8}, tier.Bounds[shop.StatPower])

	mag := byKind[gunsmith.KindMagazine]
	require.NotNil(t, mag)
	tier, ok = mag.Tier(1)
	require.True(t, ok)
	require.NotNil(t, tier.Ammo)
	assert.Equal(t, shop.IntBand{Min: 6, Max: 14}, *tier.Ammo)
}

// TestLoadPartConfigs_RejectsDuplicateKind verifies that two files declaring
// the same kind fail the load.
func TestLoadPartConfigs_RejectsDuplicateKind(t *testing.T) {
	dir := writeContent(t, map[string]string{
		"barrel.yaml":  barrelYAML,
		"barrel2.yaml": barrelYAML,
	})
	_, err := shop.LoadPartConfigs(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defined in both")
}

// TestLoadPartConfigs_RejectsInvalidTier verifies validation failures
// surface with the offending file in the message.
func TestLoadPartConfigs_RejectsInvalidTier(t *testing.T) {
	bad := `kind: barrel
names:
  adjectives: [Rusted]
  nouns: [Bore]
tiers:
  - rarity: 9
    min_price: 100
    max_price: 50
    meshes:
      - {mesh: m, icon: i}
`
	dir := writeContent(t, map[string]string{"barrel.yaml": bad})
	_, err := shop.LoadPartConfigs(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "barrel.yaml")
}

// TestPartConfig_Validate_Rejections spot-checks the individual guards.
func TestPartConfig_Validate_Rejections(t *testing.T) {
	base := func() *shop.PartConfig {
		return &shop.PartConfig{
			Kind:  gunsmith.KindScope,
			Names: shop.NamePool{Adjectives: []string{"A"}, Nouns: []string{"B"}},
			Tiers: []shop.Tier{{
				Rarity: 1, MinPrice: 10, MaxPrice: 20,
				Bounds: map[string]shop.Band{shop.StatScope: {Min: 1, Max: 2}},
				Meshes: []shop.MeshVariant{{Mesh: "m", Icon: "i"}},
			}},
		}
	}

	ok := base()
	assert.NoError(t, ok.Validate())

	badKind := base()
	badKind.Kind = "grip"
	assert.ErrorContains(t, badKind.Validate(), "invalid part kind")

	badStat := base()
	badStat.Tiers[0].Bounds["zoom"] = shop.Band{Min: 1, Max: 2}
	assert.ErrorContains(t, badStat.Validate(), "unknown stat")

	badBand := base()
	badBand.Tiers[0].Bounds[shop.StatScope] = shop.Band{Min: 3, Max: 2}
	assert.ErrorContains(t, badBand.Validate(), "min")

	dupRarity := base()
	dupRarity.Tiers = append(dupRarity.Tiers, dupRarity.Tiers[0])
	assert.ErrorContains(t, dupRarity.Validate(), "duplicate tier")

	noMesh := base()
	noMesh.Tiers[0].Meshes = nil
	assert.ErrorContains(t, noMesh.Validate(), "meshes")

	badStarter := base()
	badStarter.Starter = &shop.StarterDef{Name: "", Price: -1}
	assert.ErrorContains(t, badStarter.Validate(), "starter")
}

// TestModsFromMap_MapsAllKeys verifies the stat-key switch, including the
// integer ammo key and unknown-key rejection.
func TestModsFromMap_MapsAllKeys(t *testing.T) {
	m, err := shop.ModsFromMap(map[string]float64{
		shop.StatPower:       3,
		shop.StatAccuracy:    2,
		shop.StatRapidity:    1,
		shop.StatRecoil:      -2,
		shop.StatReloadSpeed: 1.5,
		shop.StatScope:       4,
		"ammo":               12,
	})
	require.NoError(t, err)
	assert.Equal(t, gunsmith.Modifiers{
		Power: 3, Accuracy: 2, Rapidity: 1, Recoil: -2, ReloadSpeed: 1.5, Scope: 4, Ammo: 12,
	}, m)

	_, err = shop.ModsFromMap(map[string]float64{"heft": 1})
	require.Error(t, err)
}
