package battle

import "context"

// Outcome is one structured battle event, emitted per resolved action and
// on session termination. The engine hands outcomes to the Notifier; how
// they are presented to players is not this package's concern.
type Outcome struct {
	SessionID string
	// ActorID identifies the combatant whose action produced this event.
	ActorID string
	// Log is the human-readable entry appended to the session's action log.
	Log string
	// TargetHPAfter is the target's HP once the action resolved.
	TargetHPAfter int
	// Terminal is true when the session ended with this event.
	Terminal bool
	// WinnerID identifies the winning combatant on a terminal event;
	// empty for a draw or expiry.
	WinnerID string
	// Expired is true when the event reports a wall-clock expiry.
	Expired bool
}

// Reward is the experience and coins granted to a battle winner.
type Reward struct {
	XP    int
	Coins int
}

// EndReason explains why a session terminated.
type EndReason int

const (
	ReasonVictory EndReason = iota
	ReasonForfeit
	ReasonTurnLimit
	ReasonExpiry
)

// String returns a human-readable reason label.
func (r EndReason) String() string {
	switch r {
	case ReasonVictory:
		return "victory"
	case ReasonForfeit:
		return "forfeit"
	case ReasonTurnLimit:
		return "turn_limit"
	case ReasonExpiry:
		return "expiry"
	default:
		return "unknown"
	}
}

// Settlement is the one-time resolution record of a terminated session.
// It is produced exactly once per session; the registry evicts the session
// in the same step, so duplicate submissions cannot settle twice.
type Settlement struct {
	SessionID string
	Kind      Kind
	Reason    EndReason
	// WinnerID and LoserID are empty for a draw or expiry.
	WinnerID string
	LoserID  string
	// Turns is the number of completed turns when the session ended.
	Turns int
	// WinnerReward is zero when the winner is computer-controlled or
	// there is no winner.
	WinnerReward Reward
}

// Notifier receives battle outcomes for delivery to participants. The
// engine calls it outside any session lock; implementations may block on
// transport I/O.
type Notifier interface {
	// NotifyOutcome delivers one battle event to a player.
	NotifyOutcome(ctx context.Context, accountID int64, outcome Outcome)
	// NotifyReward delivers a termination reward summary to a player.
	NotifyReward(ctx context.Context, accountID int64, reward Reward)
}
