package combat

import "fmt"

// ActionType identifies what a combatant does on their turn.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown ActionType = iota // zero value; intentionally invalid
	ActionAttack
	ActionDefend
	ActionHeal
	ActionElementSkill
)

// String returns the canonical wire name of the ActionType.
//
// Postcondition: Returns "attack", "defend", "heal", "element", or "unknown".
func (a ActionType) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionDefend:
		return "defend"
	case ActionHeal:
		return "heal"
	case ActionElementSkill:
		return "element"
	default:
		return "unknown"
	}
}

// StaminaCost returns the stamina an action consumes when its requirement
// is met. Attack and defend are free.
func (a ActionType) StaminaCost() int {
	switch a {
	case ActionHeal:
		return HealStaminaCost
	case ActionElementSkill:
		return ElementSkillStaminaCost
	default:
		return 0
	}
}

// Offensive reports whether the action targets the opponent.
func (a ActionType) Offensive() bool {
	return a == ActionAttack || a == ActionElementSkill
}

// ParseAction converts a wire name into an ActionType.
//
// Postcondition: Returns a valid ActionType or an error for unknown names;
// ActionUnknown is never returned with a nil error.
func ParseAction(name string) (ActionType, error) {
	switch name {
	case "attack":
		return ActionAttack, nil
	case "defend":
		return ActionDefend, nil
	case "heal":
		return ActionHeal, nil
	case "element":
		return ActionElementSkill, nil
	default:
		return ActionUnknown, fmt.Errorf("unknown action %q", name)
	}
}
