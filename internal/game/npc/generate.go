// Package npc generates computer-controlled combatants and decides their
// actions. Generation scales archetype stat curves by level with a shared
// variance factor; the policy is a pure function of the visible battle
// state and an injected randomness source.
package npc

import (
	"math"

	"github.com/google/uuid"

	"github.com/toseph-here/kope-quest/internal/game/combat"
	"github.com/toseph-here/kope-quest/internal/game/element"
	"github.com/toseph-here/kope-quest/internal/game/rng"
)

// Variance bounds for generated stats. One factor is drawn per combatant
// and applied to every stat, so a generated enemy is uniformly strong or
// weak rather than a mix.
const (
	VarianceLow  = 0.85
	VarianceHigh = 1.15
)

// StatCurve describes how one stat grows with level.
type StatCurve struct {
	Base     int `yaml:"base"`
	PerLevel int `yaml:"per_level"`
}

// At returns the unvaried stat value at the given level.
func (c StatCurve) At(level int) int {
	return c.Base + c.PerLevel*level
}

// StatScaling holds the growth curves for every generated stat.
type StatScaling struct {
	HP           StatCurve `yaml:"hp"`
	Stamina      StatCurve `yaml:"stamina"`
	Attack       StatCurve `yaml:"attack"`
	Defense      StatCurve `yaml:"defense"`
	Agility      StatCurve `yaml:"agility"`
	ElementPower StatCurve `yaml:"element_power"`
}

// DefaultScaling returns the standard enemy growth curves.
func DefaultScaling() StatScaling {
	return StatScaling{
		HP:           StatCurve{Base: 80, PerLevel: 8},
		Stamina:      StatCurve{Base: 40, PerLevel: 4},
		Attack:       StatCurve{Base: 20, PerLevel: 3},
		Defense:      StatCurve{Base: 15, PerLevel: 2},
		Agility:      StatCurve{Base: 10, PerLevel: 2},
		ElementPower: StatCurve{Base: 25, PerLevel: 3},
	}
}

// Generate builds a combat-ready enemy of the given archetype name, level,
// and element. A single variance factor in [VarianceLow, VarianceHigh)
// scales every curve value, each floored at 1.
//
// Precondition: level >= 1; elem must be valid; src must be non-nil.
// Postcondition: The returned combatant's stat block satisfies Validate,
// with HP and stamina full.
func Generate(name string, level int, elem element.Element, scale StatScaling, src rng.Source) *combat.NpcCombatant {
	variance := rng.Uniform(src, VarianceLow, VarianceHigh)

	vary := func(c StatCurve) int {
		v := int(math.Round(float64(c.At(level)) * variance))
		if v < 1 {
			return 1
		}
		return v
	}

	hp := vary(scale.HP)
	stamina := vary(scale.Stamina)
	return &combat.NpcCombatant{
		UID:  uuid.NewString(),
		Name: name,
		Block: combat.Stats{
			Element:      elem,
			Level:        level,
			HP:           hp,
			MaxHP:        hp,
			Stamina:      stamina,
			MaxStamina:   stamina,
			Attack:       vary(scale.Attack),
			Defense:      vary(scale.Defense),
			Agility:      vary(scale.Agility),
			ElementPower: vary(scale.ElementPower),
		},
	}
}
