// Package engine is the in-process combat engine surface consumed by
// front-ends: registration, encounters, PvP challenges, action
// submission, daily rewards, and rankings. It owns no transport and no
// persistence; it composes the battle registry, the game content, and
// the player store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/toseph-here/kope-quest/internal/game/battle"
	"github.com/toseph-here/kope-quest/internal/game/combat"
	"github.com/toseph-here/kope-quest/internal/game/element"
	"github.com/toseph-here/kope-quest/internal/game/rng"
	"github.com/toseph-here/kope-quest/internal/gamedata"
)

// Engine-level sentinel errors.
var (
	// ErrLocationLocked reports a location above the player's level.
	ErrLocationLocked = errors.New("location requires a higher level")
	// ErrUnknownLocation reports a location name not in the content set.
	ErrUnknownLocation = errors.New("unknown location")
	// ErrPlayerDefeated reports a player at zero HP attempting to battle.
	ErrPlayerDefeated = errors.New("player must heal before battling")
)

// Engine coordinates all combat operations. Safe for concurrent use.
type Engine struct {
	store    PlayerStore
	data     *gamedata.Data
	registry *battle.Registry
	notifier battle.Notifier
	src      rng.Source
	logger   *zap.Logger
	now      func() time.Time
}

// New creates an engine.
//
// Precondition: all arguments must be non-nil.
func New(store PlayerStore, data *gamedata.Data, registry *battle.Registry, notifier battle.Notifier, src rng.Source, logger *zap.Logger) *Engine {
	return &Engine{
		store:    store,
		data:     data,
		registry: registry,
		notifier: notifier,
		src:      src,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a new player with level-1 starting stats in the chosen
// element.
func (e *Engine) Register(ctx context.Context, accountID int64, username, elementName string) (*combat.PlayerCombatant, error) {
	elem, err := element.Parse(elementName)
	if err != nil {
		return nil, err
	}
	player, err := e.store.Create(ctx, accountID, username, elem)
	if err != nil {
		return nil, fmt.Errorf("registering account %d: %w", accountID, err)
	}
	e.logger.Info("player registered",
		zap.Int64("account_id", accountID),
		zap.String("username", username),
		zap.String("element", string(elem)),
	)
	return player, nil
}

// Profile returns the player's current snapshot and power rating.
func (e *Engine) Profile(ctx context.Context, accountID int64) (*combat.PlayerCombatant, int, error) {
	player, err := e.store.Load(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}
	return player, combat.PowerRating(&player.Block), nil
}

// Locations returns the explorable locations in declaration order.
func (e *Engine) Locations() []gamedata.Location {
	return e.data.Locations()
}

// StartEncounter rolls an enemy for the named location and opens a
// session with the player acting first.
//
// Postcondition: Returns ErrUnknownLocation, ErrLocationLocked,
// ErrPlayerDefeated, or battle.ErrPlayerBusy without opening a session.
func (e *Engine) StartEncounter(ctx context.Context, accountID int64, locationName string) (*battle.Session, *combat.NpcCombatant, error) {
	player, err := e.store.Load(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if !player.Block.IsAlive() {
		return nil, nil, ErrPlayerDefeated
	}

	location, ok := e.data.Location(locationName)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownLocation, locationName)
	}
	if player.Block.Level < location.MinLevel {
		return nil, nil, fmt.Errorf("%w: %s needs level %d", ErrLocationLocked, location.Name, location.MinLevel)
	}

	enemy, err := e.data.RollEncounter(locationName, e.src)
	if err != nil {
		return nil, nil, err
	}
	session, err := e.registry.CreateEncounter(player, enemy)
	if err != nil {
		return nil, nil, err
	}
	return session, enemy, nil
}

// CreateChallenge opens a PvP invitation for the player.
func (e *Engine) CreateChallenge(ctx context.Context, accountID int64) (*battle.Challenge, error) {
	player, err := e.store.Load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !player.Block.IsAlive() {
		return nil, ErrPlayerDefeated
	}
	return e.registry.CreateChallenge(accountID)
}

// JoinChallenge consumes a challenge code and opens the PvP session, with
// the challenger acting first.
func (e *Engine) JoinChallenge(ctx context.Context, accountID int64, code string) (*battle.Session, error) {
	accepter, err := e.store.Load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !accepter.Block.IsAlive() {
		return nil, ErrPlayerDefeated
	}

	challenge, err := e.registry.TakeChallenge(code, accountID)
	if err != nil {
		return nil, err
	}

	challenger, err := e.store.Load(ctx, challenge.ChallengerID)
	if err != nil {
		return nil, fmt.Errorf("loading challenger %d: %w", challenge.ChallengerID, err)
	}
	if !challenger.Block.IsAlive() {
		return nil, fmt.Errorf("challenger: %w", ErrPlayerDefeated)
	}
	return e.registry.CreatePvP(challenger, accepter)
}

// SubmitAction applies one named action to the player's live session,
// persists the resulting stat deltas, and notifies every participant.
// Persistence and notification happen after the session's critical
// section; a store read failure degrades to resolving without a fresh
// snapshot rather than failing the turn.
func (e *Engine) SubmitAction(ctx context.Context, accountID int64, actionName string) (*battle.Turn, error) {
	session, err := e.registry.SessionForPlayer(accountID)
	if err != nil {
		return nil, err
	}
	action, err := combat.ParseAction(actionName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", battle.ErrInvalidAction, actionName)
	}

	var fresh []*combat.PlayerCombatant
	snapshot, err := e.store.Load(ctx, accountID)
	if err != nil {
		e.logger.Warn("loading snapshot before action",
			zap.Int64("account_id", accountID),
			zap.Error(err),
		)
	} else {
		fresh = append(fresh, snapshot)
	}

	actorID := strconv.FormatInt(accountID, 10)
	turn, submitErr := e.registry.Submit(session.ID(), actorID, action, fresh)
	if turn != nil {
		e.finishTurn(ctx, turn)
	}
	return turn, submitErr
}

// Forfeit abandons the player's live session; the opponent wins.
func (e *Engine) Forfeit(ctx context.Context, accountID int64) (*battle.Turn, error) {
	session, err := e.registry.SessionForPlayer(accountID)
	if err != nil {
		return nil, err
	}
	turn, forfeitErr := e.registry.Forfeit(session.ID(), strconv.FormatInt(accountID, 10))
	if turn != nil {
		e.finishTurn(ctx, turn)
	}
	return turn, forfeitErr
}

// ClaimDaily claims the daily reward, applying streak bonuses and any
// level-up the experience triggers.
func (e *Engine) ClaimDaily(ctx context.Context, accountID int64) (battle.Reward, int, error) {
	player, err := e.store.Load(ctx, accountID)
	if err != nil {
		return battle.Reward{}, 0, err
	}
	streak, err := e.store.ClaimDaily(ctx, accountID, e.now())
	if err != nil {
		return battle.Reward{}, 0, err
	}

	coins, xp := combat.DailyReward(streak)
	delta := StatDelta{XP: xp, Coins: coins}
	applyLevelUp(player, xp, &delta)
	if err := e.store.ApplyDelta(ctx, accountID, delta); err != nil {
		return battle.Reward{}, 0, fmt.Errorf("applying daily reward: %w", err)
	}

	e.logger.Info("daily reward claimed",
		zap.Int64("account_id", accountID),
		zap.Int("streak", streak),
		zap.Int("coins", coins),
		zap.Int("xp", xp),
	)
	return battle.Reward{XP: xp, Coins: coins}, streak, nil
}

// Rankings returns the power-rating leaderboard.
func (e *Engine) Rankings(ctx context.Context, limit int) ([]RankedPlayer, error) {
	return e.store.TopPlayers(ctx, limit)
}
