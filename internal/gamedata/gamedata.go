// Package gamedata loads the read-only game content consumed by the
// engine: the element effectiveness table, enemy archetype names, stat
// scaling curves, and explorable locations. Content is loaded once at
// startup and never mutated.
package gamedata

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/toseph-here/kope-quest/internal/game/combat"
	"github.com/toseph-here/kope-quest/internal/game/element"
	"github.com/toseph-here/kope-quest/internal/game/npc"
	"github.com/toseph-here/kope-quest/internal/game/rng"
)

// Location is one explorable region players can fight in.
type Location struct {
	Name        string          `yaml:"name"`
	Element     element.Element `yaml:"element"`
	MinLevel    int             `yaml:"min_level"`
	MaxLevel    int             `yaml:"max_level"`
	Description string          `yaml:"description"`
	// XPMultiplier and CoinMultiplier are declared per location but not
	// currently applied to rewards.
	XPMultiplier   float64 `yaml:"xp_multiplier"`
	CoinMultiplier float64 `yaml:"coin_multiplier"`
}

// Data is the loaded, validated content set.
type Data struct {
	table     *element.Table
	locations []Location
	byName    map[string]Location
	names     map[element.Element][]string
	scaling   npc.StatScaling
}

type elementsFile struct {
	Elements map[element.Element]matchupsDoc `yaml:"elements"`
}

type matchupsDoc struct {
	Strong map[element.Element]float64 `yaml:"strong"`
	Weak   map[element.Element]float64 `yaml:"weak"`
}

type enemiesFile struct {
	Scaling npc.StatScaling              `yaml:"scaling"`
	Names   map[element.Element][]string `yaml:"names"`
}

type locationsFile struct {
	Locations []Location `yaml:"locations"`
}

// Load reads and validates the content set from dir, which must contain
// elements.yaml, enemies.yaml, and locations.yaml.
//
// Postcondition: Returns a fully-validated Data or a non-nil error; a
// partially-loaded Data is never returned.
func Load(dir string) (*Data, error) {
	var elements elementsFile
	if err := readYAML(filepath.Join(dir, "elements.yaml"), &elements); err != nil {
		return nil, err
	}
	var enemies enemiesFile
	if err := readYAML(filepath.Join(dir, "enemies.yaml"), &enemies); err != nil {
		return nil, err
	}
	var locations locationsFile
	if err := readYAML(filepath.Join(dir, "locations.yaml"), &locations); err != nil {
		return nil, err
	}

	matchups := make(map[element.Element]element.Matchups, len(elements.Elements))
	for elem, doc := range elements.Elements {
		matchups[elem] = element.Matchups{Strong: doc.Strong, Weak: doc.Weak}
	}
	table, err := element.NewTable(matchups)
	if err != nil {
		return nil, fmt.Errorf("elements.yaml: %w", err)
	}

	for elem, names := range enemies.Names {
		if !elem.Valid() {
			return nil, fmt.Errorf("enemies.yaml: invalid element %q", elem)
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("enemies.yaml: element %q has no enemy names", elem)
		}
	}

	byName := make(map[string]Location, len(locations.Locations))
	for _, loc := range locations.Locations {
		if loc.Name == "" {
			return nil, fmt.Errorf("locations.yaml: location with empty name")
		}
		if !loc.Element.Valid() {
			return nil, fmt.Errorf("locations.yaml: location %q has invalid element %q", loc.Name, loc.Element)
		}
		if loc.MinLevel < 1 || loc.MaxLevel < loc.MinLevel {
			return nil, fmt.Errorf("locations.yaml: location %q has invalid level range %d-%d", loc.Name, loc.MinLevel, loc.MaxLevel)
		}
		if len(enemies.Names[loc.Element]) == 0 {
			return nil, fmt.Errorf("locations.yaml: location %q element %q has no enemy names", loc.Name, loc.Element)
		}
		if _, dup := byName[loc.Name]; dup {
			return nil, fmt.Errorf("locations.yaml: duplicate location %q", loc.Name)
		}
		byName[loc.Name] = loc
	}
	if len(locations.Locations) == 0 {
		return nil, fmt.Errorf("locations.yaml: no locations declared")
	}

	return &Data{
		table:     table,
		locations: locations.Locations,
		byName:    byName,
		names:     enemies.Names,
		scaling:   enemies.Scaling,
	}, nil
}

func readYAML(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Table returns the element effectiveness table.
func (d *Data) Table() *element.Table { return d.table }

// Locations returns the locations in declaration order.
func (d *Data) Locations() []Location {
	out := make([]Location, len(d.locations))
	copy(out, d.locations)
	return out
}

// Location returns the named location.
func (d *Data) Location(name string) (Location, bool) {
	loc, ok := d.byName[name]
	return loc, ok
}

// EnemyNames returns the archetype names for an element.
func (d *Data) EnemyNames(elem element.Element) []string {
	names := d.names[elem]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Scaling returns the enemy stat growth curves.
func (d *Data) Scaling() npc.StatScaling { return d.scaling }

// RollEncounter generates an enemy for the named location: a random
// archetype of the location's element at a level drawn from the
// location's range.
func (d *Data) RollEncounter(locationName string, src rng.Source) (*combat.NpcCombatant, error) {
	loc, ok := d.byName[locationName]
	if !ok {
		return nil, fmt.Errorf("unknown location %q", locationName)
	}
	name := rng.Pick(src, d.names[loc.Element])
	level := rng.IntBetween(src, loc.MinLevel, loc.MaxLevel)
	return npc.Generate(name, level, loc.Element, d.scaling, src), nil
}
