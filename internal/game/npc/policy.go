package npc

import (
	"github.com/toseph-here/kope-quest/internal/game/combat"
	"github.com/toseph-here/kope-quest/internal/game/element"
	"github.com/toseph-here/kope-quest/internal/game/rng"
)

// Policy thresholds. Pressed below the HP threshold an enemy heals; above
// the stamina threshold it spends freely; below the stamina floor it
// conserves.
const (
	lowHPThreshold      = 0.30
	highStaminaFraction = 0.60
	lowStaminaFraction  = 0.30
)

// ChooseAction picks the enemy's next action from the visible battle
// state. In priority order: heal when badly hurt and able; use an element
// skill when stamina is plentiful and the matchup is not unfavorable;
// defend when stamina is low; otherwise attack, with an occasional defend
// mixed in (3:1 weighting).
//
// Precondition: self, table, and src must be non-nil; self must satisfy
// Validate.
// Postcondition: Returns an action self can legally take this turn.
func ChooseAction(self *combat.Stats, targetElement element.Element, table *element.Table, src rng.Source) combat.ActionType {
	if self.HPPercent() < lowHPThreshold && self.CanHeal() {
		return combat.ActionHeal
	}
	if self.StaminaPercent() > highStaminaFraction && self.CanUseElementSkill() &&
		table.Effectiveness(self.Element, targetElement) >= 1.0 {
		return combat.ActionElementSkill
	}
	if self.StaminaPercent() < lowStaminaFraction {
		return combat.ActionDefend
	}
	if src.Intn(4) == 3 {
		return combat.ActionDefend
	}
	return combat.ActionAttack
}
