package battle

import (
	"time"

	"github.com/toseph-here/kope-quest/internal/game/rng"
)

// Challenge is an open PvP invitation identified by a short code. It is
// immutable once created; the registry owns expiry and consumption.
type Challenge struct {
	Code         string
	ChallengerID int64
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

const (
	challengeCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	challengeCodeLength   = 6
)

// newChallengeCode draws a 6-character code from the injected source.
func newChallengeCode(src rng.Source) string {
	code := make([]byte, challengeCodeLength)
	for i := range code {
		code[i] = challengeCodeAlphabet[src.Intn(len(challengeCodeAlphabet))]
	}
	return string(code)
}
