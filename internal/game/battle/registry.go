package battle

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toseph-here/kope-quest/internal/game/combat"
	"github.com/toseph-here/kope-quest/internal/game/element"
	"github.com/toseph-here/kope-quest/internal/game/rng"
)

// Options bounds session and challenge lifetimes.
type Options struct {
	// MaxTurns is the per-session turn ceiling.
	MaxTurns int
	// EncounterTTL and PvPTTL are the wall-clock session ceilings.
	EncounterTTL time.Duration
	PvPTTL       time.Duration
	// ChallengeTTL is the wall-clock challenge ceiling.
	ChallengeTTL time.Duration
	// Clock overrides time.Now for tests; nil uses time.Now.
	Clock func() time.Time
}

// DefaultOptions returns the standard lifetime bounds.
func DefaultOptions() Options {
	return Options{
		MaxTurns:     50,
		EncounterTTL: 10 * time.Minute,
		PvPTTL:       30 * time.Minute,
		ChallengeTTL: 5 * time.Minute,
	}
}

// Registry owns every live session and open challenge. It is the only
// shared mutable state in the engine core; all access is serialized here
// and in the per-session mutex.
//
// Invariant: a player account appears in at most one live session.
type Registry struct {
	table  *element.Table
	src    rng.Source
	logger *zap.Logger
	opts   Options
	now    func() time.Time

	mu         sync.RWMutex
	sessions   map[string]*Session
	byPlayer   map[int64]string
	challenges map[string]*Challenge
}

// NewRegistry creates an empty registry.
//
// Precondition: table, src, and logger must be non-nil; opts.MaxTurns and
// the TTLs must be positive.
func NewRegistry(table *element.Table, src rng.Source, logger *zap.Logger, opts Options) *Registry {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Registry{
		table:      table,
		src:        src,
		logger:     logger,
		opts:       opts,
		now:        now,
		sessions:   make(map[string]*Session),
		byPlayer:   make(map[int64]string),
		challenges: make(map[string]*Challenge),
	}
}

// CreateEncounter opens a session between a player and a generated enemy.
//
// Postcondition: Returns ErrPlayerBusy without side effects if the player
// is already in a session.
func (r *Registry) CreateEncounter(player *combat.PlayerCombatant, enemy *combat.NpcCombatant) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sid, ok := r.byPlayer[player.AccountID]; ok {
		return nil, fmt.Errorf("%w: session %s", ErrPlayerBusy, sid)
	}

	session := newSession(uuid.NewString(), KindEncounter, player, enemy,
		r.table, r.src, r.opts.MaxTurns, r.now().Add(r.opts.EncounterTTL))
	r.sessions[session.ID()] = session
	r.byPlayer[player.AccountID] = session.ID()

	r.logger.Info("encounter session created",
		zap.String("session_id", session.ID()),
		zap.Int64("account_id", player.AccountID),
		zap.String("enemy", enemy.Name),
		zap.Int("enemy_level", enemy.Block.Level),
	)
	return session, nil
}

// CreatePvP opens a session between two players; the challenger acts first.
//
// Postcondition: Returns ErrPlayerBusy without side effects if either
// player is already in a session.
func (r *Registry) CreatePvP(challenger, opponent *combat.PlayerCombatant) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range []*combat.PlayerCombatant{challenger, opponent} {
		if sid, ok := r.byPlayer[p.AccountID]; ok {
			return nil, fmt.Errorf("%w: account %d in session %s", ErrPlayerBusy, p.AccountID, sid)
		}
	}

	session := newSession(uuid.NewString(), KindPvP, challenger, opponent,
		r.table, r.src, r.opts.MaxTurns, r.now().Add(r.opts.PvPTTL))
	r.sessions[session.ID()] = session
	r.byPlayer[challenger.AccountID] = session.ID()
	r.byPlayer[opponent.AccountID] = session.ID()

	r.logger.Info("pvp session created",
		zap.String("session_id", session.ID()),
		zap.Int64("challenger_id", challenger.AccountID),
		zap.Int64("opponent_id", opponent.AccountID),
	)
	return session, nil
}

// Get returns the live session for id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// SessionForPlayer returns the live session the account participates in.
func (r *Registry) SessionForPlayer(accountID int64) (*Session, error) {
	r.mu.RLock()
	sid, ok := r.byPlayer[accountID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return r.Get(sid)
}

// Submit applies one action to the identified session. Actions on the
// same session are serialized by its mutex and applied in arrival order;
// actions on different sessions proceed independently. fresh snapshots,
// when given, refresh the matching player participants before resolution.
// A settling submission evicts the session, so a duplicate delivery
// observes ErrSessionNotFound rather than settling twice.
func (r *Registry) Submit(sessionID, actorID string, action combat.ActionType, fresh []*combat.PlayerCombatant) (*Turn, error) {
	session, err := r.Get(sessionID)
	if err != nil {
		return nil, err
	}

	start := r.now()
	turn, err := session.submit(actorID, action, fresh, start)
	if turn != nil && turn.Settlement != nil {
		r.evict(session)
		r.logger.Info("session settled",
			zap.String("session_id", sessionID),
			zap.String("reason", turn.Settlement.Reason.String()),
			zap.String("winner_id", turn.Settlement.WinnerID),
			zap.Int("turns", turn.Settlement.Turns),
			zap.Duration("elapsed", r.now().Sub(start)),
		)
	}
	return turn, err
}

// Forfeit ends the identified session with the actor's opponent winning.
func (r *Registry) Forfeit(sessionID, actorID string) (*Turn, error) {
	session, err := r.Get(sessionID)
	if err != nil {
		return nil, err
	}

	turn, err := session.forfeit(actorID, r.now())
	if turn != nil && turn.Settlement != nil {
		r.evict(session)
		r.logger.Info("session settled",
			zap.String("session_id", sessionID),
			zap.String("reason", turn.Settlement.Reason.String()),
			zap.String("winner_id", turn.Settlement.WinnerID),
		)
	}
	return turn, err
}

// Evict removes a session without settling it.
func (r *Registry) Evict(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	r.evictLocked(session)
}

func (r *Registry) evict(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked(session)
}

func (r *Registry) evictLocked(session *Session) {
	delete(r.sessions, session.ID())
	for _, id := range session.AccountIDs() {
		if r.byPlayer[id] == session.ID() {
			delete(r.byPlayer, id)
		}
	}
}

// CreateChallenge opens a PvP invitation and returns it. Codes are drawn
// until one not currently open is found.
func (r *Registry) CreateChallenge(challengerID int64) (*Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sid, ok := r.byPlayer[challengerID]; ok {
		return nil, fmt.Errorf("%w: session %s", ErrPlayerBusy, sid)
	}

	code := newChallengeCode(r.src)
	for {
		if _, taken := r.challenges[code]; !taken {
			break
		}
		code = newChallengeCode(r.src)
	}

	now := r.now()
	challenge := &Challenge{
		Code:         code,
		ChallengerID: challengerID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(r.opts.ChallengeTTL),
	}
	r.challenges[code] = challenge

	r.logger.Info("challenge created",
		zap.String("code", code),
		zap.Int64("challenger_id", challengerID),
	)
	return challenge, nil
}

// TakeChallenge consumes the challenge for code on behalf of accepterID.
//
// Postcondition: Returns ErrChallengeNotFound, ErrChallengeExpired, or
// ErrSelfChallenge without consuming the challenge on failure, except
// that an expired challenge is removed.
func (r *Registry) TakeChallenge(code string, accepterID int64) (*Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	challenge, ok := r.challenges[code]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if r.now().After(challenge.ExpiresAt) {
		delete(r.challenges, code)
		return nil, ErrChallengeExpired
	}
	if challenge.ChallengerID == accepterID {
		return nil, ErrSelfChallenge
	}

	delete(r.challenges, code)
	return challenge, nil
}

// Sweep settles sessions past their deadline and drops expired
// challenges, returning the expiry turns for notification.
func (r *Registry) Sweep() []*Turn {
	now := r.now()

	r.mu.Lock()
	var expired []*Session
	for _, session := range r.sessions {
		if now.After(session.Deadline()) {
			expired = append(expired, session)
		}
	}
	for code, challenge := range r.challenges {
		if now.After(challenge.ExpiresAt) {
			delete(r.challenges, code)
			r.logger.Info("challenge expired", zap.String("code", code))
		}
	}
	for _, session := range expired {
		r.evictLocked(session)
	}
	r.mu.Unlock()

	var turns []*Turn
	for _, session := range expired {
		if turn := session.expire(now); turn != nil {
			turns = append(turns, turn)
			r.logger.Info("session expired",
				zap.String("session_id", session.ID()),
				zap.String("kind", session.Kind().String()),
			)
		}
	}
	return turns
}

// Stats reports the current live counts.
func (r *Registry) Stats() (sessions, challenges int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), len(r.challenges)
}
