package battle

import (
	"fmt"

	"github.com/toseph-here/kope-quest/internal/game/combat"
	"github.com/toseph-here/kope-quest/internal/game/element"
	"github.com/toseph-here/kope-quest/internal/game/npc"
	"github.com/toseph-here/kope-quest/internal/game/rng"
)

// SimulationTurnLimit caps auto-battles so two defensive combatants
// cannot loop forever.
const SimulationTurnLimit = 20

// SimulationResult reports a completed auto-battle.
type SimulationResult struct {
	// WinnerID is empty on a draw.
	WinnerID string
	Turns    int
	Log      []string
	Draw     bool
}

// Simulate plays both sides with the enemy policy until one falls or the
// turn limit is reached, and returns the full action log. It runs
// synchronously and touches no shared state; callers own both combatants.
//
// Precondition: first, second, table, and src must be non-nil; both stat
// blocks must satisfy Validate.
// Postcondition: At the turn limit the side with the higher HP fraction
// wins; an exact tie is a draw.
func Simulate(first, second combat.Combatant, table *element.Table, src rng.Source) (SimulationResult, error) {
	result := SimulationResult{}
	actor, target := first, second

	for result.Turns < SimulationTurnLimit {
		action := npc.ChooseAction(actor.Stats(), target.Stats().Element, table, src)
		res, err := combat.Apply(actor, target, action, table, src)
		if err != nil {
			return SimulationResult{}, fmt.Errorf("simulating turn %d: %w", result.Turns+1, err)
		}
		result.Log = append(result.Log, res.Log)

		if res.TargetDefeated {
			result.WinnerID = actor.ID()
			result.Log = append(result.Log, fmt.Sprintf("%s is victorious!", actor.DisplayName()))
			return result, nil
		}

		if actor == second {
			result.Turns++
		}
		actor, target = target, actor
	}

	firstPct := first.Stats().HPPercent()
	secondPct := second.Stats().HPPercent()
	switch {
	case firstPct > secondPct:
		result.WinnerID = first.ID()
	case secondPct > firstPct:
		result.WinnerID = second.ID()
	default:
		result.Draw = true
	}
	result.Log = append(result.Log, fmt.Sprintf("The battle ends after %d turns.", result.Turns))
	return result, nil
}
