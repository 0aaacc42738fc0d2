package engine

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/toseph-here/kope-quest/internal/game/battle"
	"github.com/toseph-here/kope-quest/internal/game/combat"
)

// finishTurn runs everything that must happen after the session's
// critical section: per-action stat persistence, settlement application,
// and participant notification. Persistence failures are logged, never
// propagated; the session state is already authoritative.
func (e *Engine) finishTurn(ctx context.Context, turn *battle.Turn) {
	for _, player := range turn.Players {
		delta := StatDelta{
			HP:      intPtr(player.Block.HP),
			Stamina: intPtr(player.Block.Stamina),
		}
		e.applySettlementFor(player, turn.Settlement, &delta)

		if err := e.store.ApplyDelta(ctx, player.AccountID, delta); err != nil {
			e.logger.Error("persisting battle delta",
				zap.Int64("account_id", player.AccountID),
				zap.Error(err),
			)
		}
	}

	for _, player := range turn.Players {
		for _, outcome := range turn.Outcomes {
			e.notifier.NotifyOutcome(ctx, player.AccountID, outcome)
		}
	}
	if turn.Settlement != nil && turn.Settlement.WinnerID != "" {
		if winnerAccount, err := strconv.ParseInt(turn.Settlement.WinnerID, 10, 64); err == nil {
			e.notifier.NotifyReward(ctx, winnerAccount, turn.Settlement.WinnerReward)
		}
	}
}

// applySettlementFor folds the settlement consequences for one player
// into their pending delta: the winner gains rewards, a win counter, and
// any triggered level-up; the loser's HP is halved with a floor of 1 and
// their loss counter increments.
func (e *Engine) applySettlementFor(player *combat.PlayerCombatant, settlement *battle.Settlement, delta *StatDelta) {
	if settlement == nil {
		return
	}
	id := player.ID()

	switch id {
	case settlement.WinnerID:
		delta.XP = settlement.WinnerReward.XP
		delta.Coins = settlement.WinnerReward.Coins
		delta.BattlesWon = 1
		applyLevelUp(player, settlement.WinnerReward.XP, delta)
	case settlement.LoserID:
		half := player.Block.HP / 2
		if half < 1 {
			half = 1
		}
		player.Block.HP = half
		delta.HP = intPtr(half)
		delta.BattlesLost = 1
	}
}

// applyLevelUp rewrites the delta's stat block if gaining xp pushes the
// player past one or more thresholds. The rebuilt block carries full HP
// and stamina.
func applyLevelUp(player *combat.PlayerCombatant, xpGain int, delta *StatDelta) {
	level := player.Block.Level
	after := combat.LevelAfter(level, player.Experience+xpGain)
	if after <= level {
		return
	}
	stats := combat.StatsForLevel(after, player.Block.Element)
	delta.Stats = &stats
	delta.HP = nil
	delta.Stamina = nil
}

func intPtr(v int) *int { return &v }
