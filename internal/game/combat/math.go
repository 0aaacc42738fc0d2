package combat

import (
	"fmt"
	"math"

	"github.com/toseph-here/kope-quest/internal/game/element"
	"github.com/toseph-here/kope-quest/internal/game/rng"
)

// Balance constants for combat resolution and progression.
const (
	// ElementSkillStaminaCost is the stamina consumed by an element skill.
	ElementSkillStaminaCost = 15
	// HealStaminaCost is the stamina consumed by a heal.
	HealStaminaCost = 10
	// DefendStaminaRestore is the stamina restored by a defensive stance.
	DefendStaminaRestore = 5
	// HealBase and HealPerLevel define the heal amount: level*HealPerLevel + HealBase.
	HealBase     = 15
	HealPerLevel = 8

	// DefenseFactor scales the defender's defense when reducing base damage.
	DefenseFactor = 0.5
	// CritMultiplier scales damage on a critical hit.
	CritMultiplier = 1.5
	// VarianceLow and VarianceHigh bound the uniform damage variance.
	VarianceLow  = 0.8
	VarianceHigh = 1.2

	// BaseCritChance is the critical-hit floor; CritPerAgility adds to it;
	// MaxCritChance caps the total.
	BaseCritChance = 0.10
	CritPerAgility = 0.001
	MaxCritChance  = 0.30

	// MaxLevel caps player progression.
	MaxLevel = 100
)

// CriticalChance returns the critical-hit probability for the given agility.
//
// Postcondition: Returns a value in [BaseCritChance, MaxCritChance] for
// agility >= 0.
func CriticalChance(agility int) float64 {
	return math.Min(MaxCritChance, BaseCritChance+float64(agility)*CritPerAgility)
}

// RollCritical draws a critical-hit check for the attacker.
//
// Precondition: attacker and src must be non-nil.
func RollCritical(attacker *Stats, src rng.Source) bool {
	return rng.Chance(src, CriticalChance(attacker.Agility))
}

// Damage computes the damage one offensive action deals.
//
// Pipeline: base (attack stat or element power) minus defense*DefenseFactor,
// floored at 1; element skills then scale by table effectiveness; a uniform
// variance in [VarianceLow, VarianceHigh) applies; criticals scale by
// CritMultiplier; the result rounds and floors at 1.
//
// Precondition: attacker, defender, table, and src must be non-nil; action
// must be offensive.
// Postcondition: Returns >= 1, or an error for non-offensive actions.
func Damage(attacker, defender *Stats, action ActionType, critical bool, table *element.Table, src rng.Source) (int, error) {
	var base float64
	switch action {
	case ActionAttack:
		base = float64(attacker.Attack)
	case ActionElementSkill:
		base = float64(attacker.ElementPower)
	default:
		return 0, fmt.Errorf("action %q deals no damage", action)
	}

	damage := math.Max(1, base-float64(defender.Defense)*DefenseFactor)

	if action == ActionElementSkill {
		damage *= table.Effectiveness(attacker.Element, defender.Element)
	}

	damage *= rng.Uniform(src, VarianceLow, VarianceHigh)

	if critical {
		damage *= CritMultiplier
	}

	result := int(math.Round(damage))
	if result < 1 {
		result = 1
	}
	return result, nil
}

// XPReward returns the experience awarded for defeating an enemy.
//
// Base is enemyLevel*20. Enemies above the player's level grant +15% per
// level of difference; enemies more than 5 levels below grant -10% per
// level, floored at 10% of base. Always >= 1.
func XPReward(playerLevel, enemyLevel int) int {
	return scaledReward(enemyLevel*20, enemyLevel-playerLevel, 0.15, 0.10, 0.1)
}

// CoinReward returns the coins awarded for defeating an enemy.
//
// Base is enemyLevel*10 with gentler scaling than XPReward: +10% per level
// above, -5% per level when more than 5 below, floored at 20% of base.
// Always >= 1.
func CoinReward(playerLevel, enemyLevel int) int {
	return scaledReward(enemyLevel*10, enemyLevel-playerLevel, 0.10, 0.05, 0.2)
}

// scaledReward applies the shared level-difference multiplier curve.
func scaledReward(base, diff int, bonusRate, penaltyRate, floor float64) int {
	multiplier := 1.0
	switch {
	case diff > 0:
		multiplier = 1 + float64(diff)*bonusRate
	case diff < -5:
		multiplier = math.Max(floor, 1+float64(diff)*penaltyRate)
	}
	reward := int(float64(base) * multiplier)
	if reward < 1 {
		return 1
	}
	return reward
}

// PvPXPReward returns the winner's experience bonus for defeating another
// player of the given level.
func PvPXPReward(loserLevel int) int { return loserLevel * 30 }

// PvPCoinReward returns the winner's coin bonus for defeating another
// player of the given level.
func PvPCoinReward(loserLevel int) int { return loserLevel * 15 }

// LevelUpThreshold returns the cumulative experience required to advance
// past the given level: level^2 * 100.
//
// Precondition: level >= 1.
func LevelUpThreshold(level int) int {
	return level * level * 100
}

// LevelAfter returns the level a combatant holds once xp has been credited,
// advancing through as many thresholds as the total crosses. A single large
// reward can produce consecutive level-ups.
//
// Precondition: level >= 1; xp >= 0.
// Postcondition: level <= result <= MaxLevel.
func LevelAfter(level, xp int) int {
	for level < MaxLevel && xp >= LevelUpThreshold(level) {
		level++
	}
	return level
}

// StatsForLevel returns the absolute player stat block for a level: every
// stat starts at its level-1 base and gains 5 per level, with HP and stamina
// fully restored.
//
// Precondition: level >= 1; elem must be valid.
func StatsForLevel(level int, elem element.Element) Stats {
	gain := (level - 1) * 5
	return Stats{
		Element:      elem,
		Level:        level,
		HP:           100 + gain,
		MaxHP:        100 + gain,
		Stamina:      50 + gain,
		MaxStamina:   50 + gain,
		Attack:       25 + gain,
		Defense:      20 + gain,
		Agility:      15 + gain,
		ElementPower: 30 + gain,
	}
}

// PowerRating returns a single-number strength estimate used for
// matchmaking: level*50 plus the sum of the four offensive/defensive stats.
func PowerRating(s *Stats) int {
	return s.Level*50 + s.Attack + s.Defense + s.Agility + s.ElementPower
}

// Daily reward accounting: base amounts plus 10% per consecutive-day streak,
// capped at +200%.
const (
	DailyBaseCoins      = 50
	DailyBaseXP         = 25
	DailyStreakRate     = 0.1
	DailyMaxStreakBonus = 2.0
)

// DailyReward returns the coin and experience amounts for a daily claim at
// the given streak length.
//
// Precondition: streak >= 0.
// Postcondition: coins >= DailyBaseCoins; xp >= DailyBaseXP.
func DailyReward(streak int) (coins, xp int) {
	bonus := math.Min(float64(streak)*DailyStreakRate, DailyMaxStreakBonus)
	return int(DailyBaseCoins * (1 + bonus)), int(DailyBaseXP * (1 + bonus))
}
