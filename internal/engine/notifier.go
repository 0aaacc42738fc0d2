package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/toseph-here/kope-quest/internal/game/battle"
)

// LogNotifier reports battle events through the structured log. A chat
// front end replaces it with a real delivery channel.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that writes every event to logger.
//
// Precondition: logger must be non-nil.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyOutcome logs one battle event for a player.
func (n *LogNotifier) NotifyOutcome(_ context.Context, accountID int64, outcome battle.Outcome) {
	n.logger.Info("battle outcome",
		zap.Int64("account_id", accountID),
		zap.String("session_id", outcome.SessionID),
		zap.String("log", outcome.Log),
		zap.Bool("terminal", outcome.Terminal),
		zap.Bool("expired", outcome.Expired),
	)
}

// NotifyReward logs a termination reward summary for a player.
func (n *LogNotifier) NotifyReward(_ context.Context, accountID int64, reward battle.Reward) {
	n.logger.Info("battle reward",
		zap.Int64("account_id", accountID),
		zap.Int("xp", reward.XP),
		zap.Int("coins", reward.Coins),
	)
}
