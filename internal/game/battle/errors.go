package battle

import "errors"

// Sentinel errors surfaced to callers. Insufficient stamina for a heal or
// element skill is deliberately not among them; it resolves as a valid
// no-op turn.
var (
	// ErrInvalidAction reports an action the session cannot apply.
	ErrInvalidAction = errors.New("invalid action")
	// ErrNotYourTurn reports an action submitted by the wrong participant.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrNotParticipant reports an actor that is not in the session.
	ErrNotParticipant = errors.New("not a session participant")
	// ErrSessionNotFound reports an unknown or already-evicted session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired reports a session past its wall-clock ceiling.
	ErrSessionExpired = errors.New("session expired")
	// ErrChallengeNotFound reports an unknown or consumed challenge code.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrChallengeExpired reports a challenge past its ceiling.
	ErrChallengeExpired = errors.New("challenge expired")
	// ErrSelfChallenge reports a player accepting their own challenge.
	ErrSelfChallenge = errors.New("cannot accept own challenge")
	// ErrPlayerBusy reports a player already bound to an active session.
	ErrPlayerBusy = errors.New("player already in battle")
)
