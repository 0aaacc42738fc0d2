// Package combat implements the stateless battle mathematics and the actor
// model for the Kope Quest engine: damage, effectiveness, critical hits,
// rewards, and the shared capability set of player- and computer-controlled
// combatants.
package combat

import (
	"fmt"
	"strconv"

	"github.com/toseph-here/kope-quest/internal/game/element"
)

// Kind distinguishes player combatants from computer-controlled combatants.
type Kind int

const (
	KindPlayer Kind = iota
	KindNPC
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindNPC:
		return "npc"
	default:
		return "unknown"
	}
}

// Stats is the mutable stat block shared by every combatant.
//
// Invariant: 0 <= HP <= MaxHP and 0 <= Stamina <= MaxStamina whenever the
// block is reachable outside a resolution step.
type Stats struct {
	Element      element.Element
	Level        int
	HP           int
	MaxHP        int
	Stamina      int
	MaxStamina   int
	Attack       int
	Defense      int
	Agility      int
	ElementPower int
}

// IsAlive reports whether the combatant can still act.
//
// Postcondition: Returns true iff HP > 0.
func (s *Stats) IsAlive() bool { return s.HP > 0 }

// CanUseElementSkill reports whether stamina covers an element skill.
func (s *Stats) CanUseElementSkill() bool { return s.Stamina >= ElementSkillStaminaCost }

// CanHeal reports whether stamina covers a heal and HP is not already full.
func (s *Stats) CanHeal() bool { return s.Stamina >= HealStaminaCost && s.HP < s.MaxHP }

// HPPercent returns current HP as a fraction of MaxHP.
//
// Precondition: MaxHP > 0.
func (s *Stats) HPPercent() float64 { return float64(s.HP) / float64(s.MaxHP) }

// StaminaPercent returns current stamina as a fraction of MaxStamina.
//
// Precondition: MaxStamina > 0.
func (s *Stats) StaminaPercent() float64 { return float64(s.Stamina) / float64(s.MaxStamina) }

// ApplyDamage reduces HP by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: HP >= 0.
func (s *Stats) ApplyDamage(amount int) {
	s.HP -= amount
	if s.HP < 0 {
		s.HP = 0
	}
}

// Heal raises HP by amount, capped at MaxHP, and returns the HP actually
// restored.
//
// Precondition: amount >= 0.
// Postcondition: HP <= MaxHP; return value >= 0.
func (s *Stats) Heal(amount int) int {
	restored := min(amount, s.MaxHP-s.HP)
	if restored < 0 {
		restored = 0
	}
	s.HP += restored
	return restored
}

// RestoreStamina raises stamina by amount, capped at MaxStamina, and returns
// the stamina actually restored.
//
// Precondition: amount >= 0.
// Postcondition: Stamina <= MaxStamina; return value >= 0.
func (s *Stats) RestoreStamina(amount int) int {
	restored := min(amount, s.MaxStamina-s.Stamina)
	if restored < 0 {
		restored = 0
	}
	s.Stamina += restored
	return restored
}

// SpendStamina reduces stamina by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: Stamina >= 0.
func (s *Stats) SpendStamina(amount int) {
	s.Stamina -= amount
	if s.Stamina < 0 {
		s.Stamina = 0
	}
}

// HealAmount returns the HP a heal action would restore at the current
// level and HP: min(level*8+15, MaxHP-HP).
//
// Postcondition: Returns >= 0.
func (s *Stats) HealAmount() int {
	amount := min(s.Level*HealPerLevel+HealBase, s.MaxHP-s.HP)
	if amount < 0 {
		return 0
	}
	return amount
}

// Validate checks the stat block invariants.
//
// Postcondition: Returns nil iff the element is valid, level >= 1, maxima
// are >= 1, and HP/stamina are within [0, max].
func (s *Stats) Validate() error {
	if !s.Element.Valid() {
		return fmt.Errorf("stats: invalid element %q", s.Element)
	}
	if s.Level < 1 {
		return fmt.Errorf("stats: level must be >= 1, got %d", s.Level)
	}
	if s.MaxHP < 1 || s.MaxStamina < 1 {
		return fmt.Errorf("stats: max hp and max stamina must be >= 1, got %d/%d", s.MaxHP, s.MaxStamina)
	}
	if s.HP < 0 || s.HP > s.MaxHP {
		return fmt.Errorf("stats: hp %d outside [0, %d]", s.HP, s.MaxHP)
	}
	if s.Stamina < 0 || s.Stamina > s.MaxStamina {
		return fmt.Errorf("stats: stamina %d outside [0, %d]", s.Stamina, s.MaxStamina)
	}
	return nil
}

// Combatant is one participant in a battle session, player- or
// computer-controlled. The capability set lives on Stats; identity and
// display fields differ per kind.
type Combatant interface {
	// ID uniquely identifies the combatant within its session.
	ID() string
	// DisplayName is the name used in action log entries.
	DisplayName() string
	// Kind reports whether the combatant is player- or computer-controlled.
	Kind() Kind
	// Stats returns the mutable stat block. Mutation is only legal inside
	// a battle session's resolution step.
	Stats() *Stats
}

// PlayerCombatant is a player-controlled combatant hydrated from the
// player store for the duration of a battle.
type PlayerCombatant struct {
	AccountID   int64
	Username    string
	Experience  int
	Coins       int
	BattlesWon  int
	BattlesLost int
	Block       Stats
}

// ID returns the account id rendered as a string.
func (p *PlayerCombatant) ID() string { return strconv.FormatInt(p.AccountID, 10) }

// DisplayName returns the player's username.
func (p *PlayerCombatant) DisplayName() string { return p.Username }

// Kind returns KindPlayer.
func (p *PlayerCombatant) Kind() Kind { return KindPlayer }

// Stats returns the player's stat block.
func (p *PlayerCombatant) Stats() *Stats { return &p.Block }

// NpcCombatant is a computer-controlled combatant generated for a single
// encounter and discarded when the session ends.
type NpcCombatant struct {
	// UID uniquely identifies this generated instance.
	UID string
	// Name is the archetype display name, e.g. "Flame Sprite".
	Name  string
	Block Stats
}

// ID returns the generated instance id.
func (n *NpcCombatant) ID() string { return n.UID }

// DisplayName returns the archetype name.
func (n *NpcCombatant) DisplayName() string { return n.Name }

// Kind returns KindNPC.
func (n *NpcCombatant) Kind() Kind { return KindNPC }

// Stats returns the NPC's stat block.
func (n *NpcCombatant) Stats() *Stats { return &n.Block }
