package engine

import (
	"context"
	"errors"
	"time"

	"github.com/toseph-here/kope-quest/internal/game/combat"
	"github.com/toseph-here/kope-quest/internal/game/element"
)

// Store-level sentinel errors.
var (
	// ErrPlayerNotFound reports an unknown account.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrPlayerExists reports a duplicate registration.
	ErrPlayerExists = errors.New("player already registered")
	// ErrDailyAlreadyClaimed reports a repeat daily claim on the same day.
	ErrDailyAlreadyClaimed = errors.New("daily reward already claimed")
)

// StatDelta is one persistence update for a player. Pointer fields are
// absolute overwrites applied when non-nil; the int fields are increments.
// Stats, when non-nil, replaces the whole stat block (level-ups write the
// rebuilt block with full HP and stamina).
type StatDelta struct {
	HP          *int
	Stamina     *int
	XP          int
	Coins       int
	BattlesWon  int
	BattlesLost int
	Stats       *combat.Stats
}

// RankedPlayer is one row of the power-rating leaderboard.
type RankedPlayer struct {
	AccountID   int64
	Username    string
	Level       int
	BattlesWon  int
	BattlesLost int
	PowerRating int
}

// PlayerStore is the engine's persistence boundary. The engine reads a
// fresh snapshot before resolving an action and writes deltas after; it
// never owns persistence itself.
type PlayerStore interface {
	// Create registers a new player with level-1 starting stats.
	Create(ctx context.Context, accountID int64, username string, elem element.Element) (*combat.PlayerCombatant, error)
	// Load returns the player's current snapshot.
	Load(ctx context.Context, accountID int64) (*combat.PlayerCombatant, error)
	// ApplyDelta applies one stat update.
	ApplyDelta(ctx context.Context, accountID int64, delta StatDelta) error
	// ClaimDaily records a daily claim at the given time and returns the
	// resulting streak length, or ErrDailyAlreadyClaimed.
	ClaimDaily(ctx context.Context, accountID int64, now time.Time) (int, error)
	// TopPlayers returns the leaderboard ordered by power rating.
	TopPlayers(ctx context.Context, limit int) ([]RankedPlayer, error)
}
