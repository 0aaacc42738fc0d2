// Package battle holds the battle session state machine and the
// concurrency-safe registry that owns every live session and challenge.
// Sessions serialize all mutation behind a per-session mutex; callers
// persist and notify outside of it.
package battle

import (
	"fmt"
	"sync"
	"time"

	"github.com/toseph-here/kope-quest/internal/game/combat"
	"github.com/toseph-here/kope-quest/internal/game/element"
	"github.com/toseph-here/kope-quest/internal/game/npc"
	"github.com/toseph-here/kope-quest/internal/game/rng"
)

// Kind distinguishes the two session shapes.
type Kind int

const (
	// KindEncounter is a player fighting a generated enemy; the enemy's
	// half-turn resolves synchronously after each player action.
	KindEncounter Kind = iota
	// KindPvP is two players alternating turns.
	KindPvP
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindEncounter:
		return "encounter"
	case KindPvP:
		return "pvp"
	default:
		return "unknown"
	}
}

// Session is one in-progress battle. All mutation happens under mu; the
// registry is the only constructor.
//
// Invariant: once settlement is non-nil no further state transition occurs.
type Session struct {
	id       string
	kind     Kind
	table    *element.Table
	src      rng.Source
	maxTurns int
	deadline time.Time

	mu         sync.Mutex
	first      combat.Combatant
	second     combat.Combatant
	turnHolder string
	turn       int
	log        []string
	settlement *Settlement
}

// Turn is the result of one submitted action: the events it produced, the
// settlement when the session terminated on it, and post-action player
// snapshots for persistence.
type Turn struct {
	Outcomes   []Outcome
	Settlement *Settlement
	// Players holds the player participants as they stand after the
	// action resolved. Callers persist stat deltas from these.
	Players []*combat.PlayerCombatant
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Kind returns the session kind.
func (s *Session) Kind() Kind { return s.kind }

// Deadline returns the wall-clock expiry ceiling.
func (s *Session) Deadline() time.Time { return s.deadline }

// TurnHolder returns the id of the combatant whose action is awaited.
func (s *Session) TurnHolder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnHolder
}

// TurnCount returns the number of completed turns.
func (s *Session) TurnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// ActionLog returns a copy of the session's action log.
func (s *Session) ActionLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.log))
	copy(out, s.log)
	return out
}

// Participants returns both combatants in turn order.
func (s *Session) Participants() (combat.Combatant, combat.Combatant) {
	return s.first, s.second
}

// AccountIDs returns the account ids of the player participants.
func (s *Session) AccountIDs() []int64 {
	var ids []int64
	for _, c := range []combat.Combatant{s.first, s.second} {
		if p, ok := c.(*combat.PlayerCombatant); ok {
			ids = append(ids, p.AccountID)
		}
	}
	return ids
}

func newSession(id string, kind Kind, first, second combat.Combatant, table *element.Table, src rng.Source, maxTurns int, deadline time.Time) *Session {
	return &Session{
		id:         id,
		kind:       kind,
		first:      first,
		second:     second,
		table:      table,
		src:        src,
		maxTurns:   maxTurns,
		deadline:   deadline,
		turnHolder: first.ID(),
	}
}

// submit applies one action from actorID, running the enemy's half-turn
// for encounters, and returns the resulting events. Insufficient stamina
// resolves as a turn-consuming no-op; an internal resolution fault
// degrades to a generic log entry without advancing the turn, leaving the
// session resumable. fresh player snapshots, when given, replace the
// matching participants' external state before resolution.
//
// Postcondition: Returns ErrNotYourTurn, ErrNotParticipant,
// ErrInvalidAction, or ErrSessionExpired without mutating combat state;
// on ErrSessionExpired the session is settled and the expiry outcome
// returned alongside the error.
func (s *Session) submit(actorID string, action combat.ActionType, fresh []*combat.PlayerCombatant, now time.Time) (*Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settlement != nil {
		return nil, ErrSessionNotFound
	}
	if now.After(s.deadline) {
		return s.expireLocked(), ErrSessionExpired
	}

	actor := s.combatantLocked(actorID)
	if actor == nil {
		return nil, ErrNotParticipant
	}
	if actorID != s.turnHolder {
		return nil, ErrNotYourTurn
	}
	switch action {
	case combat.ActionAttack, combat.ActionDefend, combat.ActionHeal, combat.ActionElementSkill:
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, action)
	}

	s.applyFreshLocked(fresh)
	target := s.opponentLocked(actorID)

	turn := &Turn{}
	res, err := combat.Apply(actor, target, action, s.table, s.src)
	if err != nil {
		line := "Something went wrong resolving the action."
		s.log = append(s.log, line)
		turn.Outcomes = append(turn.Outcomes, Outcome{
			SessionID:     s.id,
			ActorID:       actorID,
			Log:           line,
			TargetHPAfter: target.Stats().HP,
		})
		turn.Players = s.playersLocked()
		return turn, nil
	}

	s.log = append(s.log, res.Log)
	turn.Outcomes = append(turn.Outcomes, Outcome{
		SessionID:     s.id,
		ActorID:       actorID,
		Log:           res.Log,
		TargetHPAfter: target.Stats().HP,
	})

	if res.TargetDefeated {
		turn.Settlement = s.settleLocked(actor, target, ReasonVictory)
		s.markTerminal(&turn.Outcomes[len(turn.Outcomes)-1], actor.ID())
		turn.Players = s.playersLocked()
		return turn, nil
	}

	if s.kind == KindEncounter {
		s.enemyHalfTurnLocked(actor, target, turn)
		if turn.Settlement != nil {
			turn.Players = s.playersLocked()
			return turn, nil
		}
		s.turn++
	} else {
		s.turnHolder = target.ID()
		s.turn++
	}

	if s.turn >= s.maxTurns {
		turn.Settlement = s.settleTurnLimitLocked()
		last := &turn.Outcomes[len(turn.Outcomes)-1]
		last.Terminal = true
		last.WinnerID = turn.Settlement.WinnerID
	}
	turn.Players = s.playersLocked()
	return turn, nil
}

// enemyHalfTurnLocked runs the generated enemy's policy and action,
// appending its events to turn and settling on a knockout.
func (s *Session) enemyHalfTurnLocked(player, enemy combat.Combatant, turn *Turn) {
	action := npc.ChooseAction(enemy.Stats(), player.Stats().Element, s.table, s.src)
	res, err := combat.Apply(enemy, player, action, s.table, s.src)
	if err != nil {
		line := "Something went wrong resolving the action."
		s.log = append(s.log, line)
		turn.Outcomes = append(turn.Outcomes, Outcome{
			SessionID:     s.id,
			ActorID:       enemy.ID(),
			Log:           line,
			TargetHPAfter: player.Stats().HP,
		})
		return
	}

	s.log = append(s.log, res.Log)
	turn.Outcomes = append(turn.Outcomes, Outcome{
		SessionID:     s.id,
		ActorID:       enemy.ID(),
		Log:           res.Log,
		TargetHPAfter: player.Stats().HP,
	})

	if res.TargetDefeated {
		turn.Settlement = s.settleLocked(enemy, player, ReasonVictory)
		s.markTerminal(&turn.Outcomes[len(turn.Outcomes)-1], enemy.ID())
	}
}

// forfeit ends the session with actorID's opponent as the winner.
func (s *Session) forfeit(actorID string, now time.Time) (*Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settlement != nil {
		return nil, ErrSessionNotFound
	}
	if now.After(s.deadline) {
		return s.expireLocked(), ErrSessionExpired
	}
	actor := s.combatantLocked(actorID)
	if actor == nil {
		return nil, ErrNotParticipant
	}

	opponent := s.opponentLocked(actorID)
	line := fmt.Sprintf("%s flees the battle!", actor.DisplayName())
	s.log = append(s.log, line)

	turn := &Turn{
		Settlement: s.settleLocked(opponent, actor, ReasonForfeit),
		Players:    s.playersLocked(),
	}
	turn.Outcomes = append(turn.Outcomes, Outcome{
		SessionID:     s.id,
		ActorID:       actorID,
		Log:           line,
		TargetHPAfter: opponent.Stats().HP,
		Terminal:      true,
		WinnerID:      opponent.ID(),
	})
	return turn, nil
}

// expire settles the session as a wall-clock expiry with no winner.
func (s *Session) expire(now time.Time) *Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settlement != nil {
		return nil
	}
	return s.expireLocked()
}

func (s *Session) expireLocked() *Turn {
	line := "The battle expired."
	s.log = append(s.log, line)
	s.settlement = &Settlement{
		SessionID: s.id,
		Kind:      s.kind,
		Reason:    ReasonExpiry,
		Turns:     s.turn,
	}
	return &Turn{
		Settlement: s.settlement,
		Players:    s.playersLocked(),
		Outcomes: []Outcome{{
			SessionID: s.id,
			Log:       line,
			Terminal:  true,
			Expired:   true,
		}},
	}
}

// settleLocked records the one-time resolution with an explicit winner,
// computing the winner's reward from the loser's level.
func (s *Session) settleLocked(winner, loser combat.Combatant, reason EndReason) *Settlement {
	s.log = append(s.log, fmt.Sprintf("%s is victorious!", winner.DisplayName()))
	s.settlement = &Settlement{
		SessionID:    s.id,
		Kind:         s.kind,
		Reason:       reason,
		WinnerID:     winner.ID(),
		LoserID:      loser.ID(),
		Turns:        s.turn,
		WinnerReward: s.rewardLocked(winner, loser),
	}
	return s.settlement
}

// settleTurnLimitLocked ends the session at the turn ceiling; the side
// with the higher HP fraction wins, an exact tie is a draw.
func (s *Session) settleTurnLimitLocked() *Settlement {
	s.log = append(s.log, fmt.Sprintf("The battle ends after %d turns.", s.turn))

	firstPct := s.first.Stats().HPPercent()
	secondPct := s.second.Stats().HPPercent()
	switch {
	case firstPct > secondPct:
		return s.settleLocked(s.first, s.second, ReasonTurnLimit)
	case secondPct > firstPct:
		return s.settleLocked(s.second, s.first, ReasonTurnLimit)
	default:
		s.settlement = &Settlement{
			SessionID: s.id,
			Kind:      s.kind,
			Reason:    ReasonTurnLimit,
			Turns:     s.turn,
		}
		return s.settlement
	}
}

func (s *Session) rewardLocked(winner, loser combat.Combatant) Reward {
	if winner.Kind() != combat.KindPlayer {
		return Reward{}
	}
	if s.kind == KindPvP {
		return Reward{
			XP:    combat.PvPXPReward(loser.Stats().Level),
			Coins: combat.PvPCoinReward(loser.Stats().Level),
		}
	}
	return Reward{
		XP:    combat.XPReward(winner.Stats().Level, loser.Stats().Level),
		Coins: combat.CoinReward(winner.Stats().Level, loser.Stats().Level),
	}
}

func (s *Session) combatantLocked(id string) combat.Combatant {
	switch id {
	case s.first.ID():
		return s.first
	case s.second.ID():
		return s.second
	default:
		return nil
	}
}

func (s *Session) opponentLocked(id string) combat.Combatant {
	if id == s.first.ID() {
		return s.second
	}
	return s.first
}

func (s *Session) playersLocked() []*combat.PlayerCombatant {
	var players []*combat.PlayerCombatant
	for _, c := range []combat.Combatant{s.first, s.second} {
		if p, ok := c.(*combat.PlayerCombatant); ok {
			players = append(players, p)
		}
	}
	return players
}

// applyFreshLocked replaces participants' externally-owned state with
// store snapshots. In-battle HP and stamina come from the snapshot too;
// deltas are persisted after every action, so the store view is current.
func (s *Session) applyFreshLocked(fresh []*combat.PlayerCombatant) {
	for _, snapshot := range fresh {
		if snapshot == nil {
			continue
		}
		for _, p := range s.playersLocked() {
			if p.AccountID == snapshot.AccountID {
				p.Username = snapshot.Username
				p.Experience = snapshot.Experience
				p.Coins = snapshot.Coins
				p.BattlesWon = snapshot.BattlesWon
				p.BattlesLost = snapshot.BattlesLost
				p.Block = snapshot.Block
			}
		}
	}
}

func (s *Session) markTerminal(o *Outcome, winnerID string) {
	o.Terminal = true
	o.WinnerID = winnerID
}
