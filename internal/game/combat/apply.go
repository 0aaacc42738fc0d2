package combat

import (
	"fmt"

	"github.com/toseph-here/kope-quest/internal/game/element"
	"github.com/toseph-here/kope-quest/internal/game/rng"
)

// Result reports one resolved action.
type Result struct {
	// Log is the human-readable entry for the session's action log.
	Log string
	// Damage is the HP removed from the target; zero for non-offensive or
	// refused actions.
	Damage int
	// Critical is true when an offensive action rolled a critical hit.
	Critical bool
	// Effectiveness is the element multiplier applied; 1.0 when none was.
	Effectiveness float64
	// Refused is true when a resource requirement was not met and the
	// action resolved as a turn-consuming no-op.
	Refused bool
	// TargetDefeated is true when the target's HP reached zero.
	TargetDefeated bool
}

// Apply resolves a single action from actor against target, mutating their
// stat blocks. A heal or element skill whose stamina requirement is not
// met resolves as a no-op that still produces a log entry; the caller
// decides whether the turn is consumed (it is, per session rules).
//
// Precondition: actor, target, table, and src must be non-nil; both stat
// blocks must satisfy Validate.
// Postcondition: On success both stat blocks still satisfy their
// invariants; Result.Log is non-empty. Returns an error only for an
// invalid action or malformed actor state, with no mutation performed.
func Apply(actor, target Combatant, action ActionType, table *element.Table, src rng.Source) (Result, error) {
	as, ts := actor.Stats(), target.Stats()
	if err := as.Validate(); err != nil {
		return Result{}, fmt.Errorf("actor %s: %w", actor.ID(), err)
	}
	if err := ts.Validate(); err != nil {
		return Result{}, fmt.Errorf("target %s: %w", target.ID(), err)
	}

	res := Result{Effectiveness: 1.0}
	name := actor.DisplayName()

	switch action {
	case ActionAttack:
		critical := RollCritical(as, src)
		damage, err := Damage(as, ts, ActionAttack, critical, table, src)
		if err != nil {
			return Result{}, err
		}
		ts.ApplyDamage(damage)
		res.Damage = damage
		res.Critical = critical
		res.Log = fmt.Sprintf("%s attacks for %d damage!%s", name, damage, critText(critical))

	case ActionDefend:
		restored := as.RestoreStamina(DefendStaminaRestore)
		res.Log = fmt.Sprintf("%s takes a defensive stance and recovers %d stamina!", name, restored)

	case ActionHeal:
		if !as.CanHeal() {
			res.Refused = true
			res.Log = fmt.Sprintf("%s cannot heal right now!", name)
			break
		}
		amount := as.HealAmount()
		as.Heal(amount)
		as.SpendStamina(HealStaminaCost)
		res.Log = fmt.Sprintf("%s heals for %d HP!", name, amount)

	case ActionElementSkill:
		if !as.CanUseElementSkill() {
			res.Refused = true
			res.Log = fmt.Sprintf("%s doesn't have enough stamina for an element skill!", name)
			break
		}
		critical := RollCritical(as, src)
		damage, err := Damage(as, ts, ActionElementSkill, critical, table, src)
		if err != nil {
			return Result{}, err
		}
		ts.ApplyDamage(damage)
		as.SpendStamina(ElementSkillStaminaCost)
		effectiveness := table.Effectiveness(as.Element, ts.Element)
		res.Damage = damage
		res.Critical = critical
		res.Effectiveness = effectiveness
		res.Log = fmt.Sprintf("%s unleashes a %s skill for %d damage!%s%s",
			name, as.Element, damage, effectivenessText(effectiveness), critText(critical))

	default:
		return Result{}, fmt.Errorf("cannot apply action %q", action)
	}

	res.TargetDefeated = !ts.IsAlive()
	return res, nil
}

func critText(critical bool) string {
	if critical {
		return " Critical hit!"
	}
	return ""
}

func effectivenessText(mult float64) string {
	switch {
	case mult > 1.0:
		return " It's super effective!"
	case mult < 1.0:
		return " It's not very effective..."
	default:
		return ""
	}
}
