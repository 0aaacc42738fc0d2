package battle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/toseph-here/kope-quest/internal/game/battle"
	"github.com/toseph-here/kope-quest/internal/game/combat"
	"github.com/toseph-here/kope-quest/internal/game/element"
)

// fixedSrc returns preset values for deterministic battles.
type fixedSrc struct {
	n int
	f float64
}

func (s fixedSrc) Intn(n int) int {
	if s.n >= n {
		return n - 1
	}
	return s.n
}

func (s fixedSrc) Float64() float64 { return s.f }

// neutralSrc pins variance to 1.0 and never rolls a critical; Intn(4)
// returns 0, so the enemy policy's weighted fallback always attacks.
var neutralSrc = fixedSrc{f: 0.5}

func testTable(t *testing.T) *element.Table {
	t.Helper()
	table, err := element.NewTable(map[element.Element]element.Matchups{
		element.Fire: {
			Strong: map[element.Element]float64{element.Ice: 1.5},
			Weak:   map[element.Element]float64{element.Water: 0.8},
		},
	})
	require.NoError(t, err)
	return table
}

func testPlayer(accountID int64, username string, elem element.Element) *combat.PlayerCombatant {
	return &combat.PlayerCombatant{
		AccountID: accountID,
		Username:  username,
		Block: combat.Stats{
			Element:      elem,
			Level:        5,
			HP:           100,
			MaxHP:        100,
			Stamina:      50,
			MaxStamina:   50,
			Attack:       25,
			Defense:      20,
			Agility:      15,
			ElementPower: 30,
		},
	}
}

func testEnemy(elem element.Element) *combat.NpcCombatant {
	return &combat.NpcCombatant{
		UID:  "enemy-1",
		Name: "Frost Wraith",
		Block: combat.Stats{
			Element:      elem,
			Level:        3,
			HP:           80,
			MaxHP:        80,
			Stamina:      40,
			MaxStamina:   40,
			Attack:       20,
			Defense:      16,
			Agility:      12,
			ElementPower: 25,
		},
	}
}

type registryFixture struct {
	registry *battle.Registry
	clock    *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFixture(t *testing.T, src fixedSrc) *registryFixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	opts := battle.DefaultOptions()
	opts.Clock = clock.Now
	return &registryFixture{
		registry: battle.NewRegistry(testTable(t), src, zaptest.NewLogger(t), opts),
		clock:    clock,
	}
}

func TestEncounter_PlayerActionAndEnemyCounter(t *testing.T) {
	fx := newFixture(t, neutralSrc)
	player := testPlayer(1, "kope", element.Fire)
	enemy := testEnemy(element.Water)

	session, err := fx.registry.CreateEncounter(player, enemy)
	require.NoError(t, err)
	assert.Equal(t, battle.KindEncounter, session.Kind())
	assert.Equal(t, player.ID(), session.TurnHolder())

	turn, err := fx.registry.Submit(session.ID(), player.ID(), combat.ActionAttack, nil)
	require.NoError(t, err)
	require.Len(t, turn.Outcomes, 2, "player action plus enemy counter")

	// Player: attack 25 - 16*0.5 = 17.
	assert.Equal(t, player.ID(), turn.Outcomes[0].ActorID)
	assert.Equal(t, 63, turn.Outcomes[0].TargetHPAfter)
	assert.False(t, turn.Outcomes[0].Terminal)

	// Enemy policy at full stamina into a neutral matchup: element skill.
	// 25 - 20*0.5 = 15.
	assert.Equal(t, enemy.ID(), turn.Outcomes[1].ActorID)
	assert.Equal(t, 85, turn.Outcomes[1].TargetHPAfter)

	assert.Nil(t, turn.Settlement)
	assert.Equal(t, 1, session.TurnCount())
	require.Len(t, turn.Players, 1)
	assert.Equal(t, 85, turn.Players[0].Block.HP)
}

func TestEncounter_PlayerVictorySettles(t *testing.T) {
	fx := newFixture(t, neutralSrc)
	player := testPlayer(1, "kope", element.Fire)
	enemy := testEnemy(element.Water)
	enemy.Block.HP = 10

	session, err := fx.registry.CreateEncounter(player, enemy)
	require.NoError(t, err)

	turn, err := fx.registry.Submit(session.ID(), player.ID(), combat.ActionAttack, nil)
	require.NoError(t, err)
	require.Len(t, turn.Outcomes, 1, "no enemy counter after a knockout")
	assert.True(t, turn.Outcomes[0].Terminal)
	assert.Equal(t, player.ID(), turn.Outcomes[0].WinnerID)

	require.NotNil(t, turn.Settlement)
	assert.Equal(t, battle.ReasonVictory, turn.Settlement.Reason)
	assert.Equal(t, player.ID(), turn.Settlement.WinnerID)
	assert.Equal(t, enemy.ID(), turn.Settlement.LoserID)
	// Enemy level 3 vs player level 5: base rewards, no modifier.
	assert.Equal(t, 60, turn.Settlement.WinnerReward.XP)
	assert.Equal(t, 30, turn.Settlement.WinnerReward.Coins)

	_, err = fx.registry.Submit(session.ID(), player.ID(), combat.ActionAttack, nil)
	assert.ErrorIs(t, err, battle.ErrSessionNotFound, "settled session is evicted")
}

func TestEncounter_EnemyVictorySettlesWithoutReward(t *testing.T) {
	fx := newFixture(t, neutralSrc)
	player := testPlayer(1, "kope", element.Fire)
	player.Block.HP = 10
	enemy := testEnemy(element.Water)

	session, err := fx.registry.CreateEncounter(player, enemy)
	require.NoError(t, err)

	turn, err := fx.registry.Submit(session.ID(), player.ID(), combat.ActionDefend, nil)
	require.NoError(t, err)
	require.NotNil(t, turn.Settlement)
	assert.Equal(t, enemy.ID(), turn.Settlement.WinnerID)
	assert.Equal(t, battle.Reward{}, turn.Settlement.WinnerReward)
	assert.Equal(t, 0, player.Block.HP)
}

func TestEncounter_InsufficientStaminaConsumesTurn(t *testing.T) {
	fx := newFixture(t, neutralSrc)
	player := testPlayer(1, "kope", element.Fire)
	player.Block.HP = 50
	player.Block.Stamina = 5
	enemy := testEnemy(element.Water)
	enemy.Block.Stamina = 20 // 50%: policy falls through to weighted attack

	session, err := fx.registry.CreateEncounter(player, enemy)
	require.NoError(t, err)

	turn, err := fx.registry.Submit(session.ID(), player.ID(), combat.ActionHeal, nil)
	require.NoError(t, err)
	require.Len(t, turn.Outcomes, 2, "refused heal still consumes the turn")
	assert.Contains(t, turn.Outcomes[0].Log, "cannot heal")
	assert.Equal(t, 5, player.Block.Stamina)
	assert.Equal(t, 1, session.TurnCount())
	assert.Less(t, player.Block.HP, 50, "enemy still counterattacks")
}

func TestPvP_TurnAlternation(t *testing.T) {
	fx := newFixture(t, neutralSrc)
	p1 := testPlayer(1, "kope", element.Fire)
	p2 := testPlayer(2, "rival", element.Water)

	session, err := fx.registry.CreatePvP(p1, p2)
	require.NoError(t, err)
	assert.Equal(t, p1.ID(), session.TurnHolder())

	_, err = fx.registry.Submit(session.ID(), p2.ID(), combat.ActionAttack, nil)
	assert.ErrorIs(t, err, battle.ErrNotYourTurn)
	assert.Equal(t, 100, p1.Block.HP, "rejected action must not mutate state")
	assert.Equal(t, 100, p2.Block.HP)

	turn, err := fx.registry.Submit(session.ID(), p1.ID(), combat.ActionAttack, nil)
	require.NoError(t, err)
	require.Len(t, turn.Outcomes, 1)
	assert.Equal(t, p2.ID(), session.TurnHolder())
	assert.Equal(t, 1, session.TurnCount())

	_, err = fx.registry.Submit(session.ID(), p1.ID(), combat.ActionAttack, nil)
	assert.ErrorIs(t, err, battle.ErrNotYourTurn)

	_, err = fx.registry.Submit(session.ID(), p2.ID(), combat.ActionAttack, nil)
	require.NoError(t, err)
	assert.Equal(t, p1.ID(), session.TurnHolder())
}

func TestPvP_VictoryRewardAndEviction(t *testing.T) {
	fx := newFixture(t, neutralSrc)
	p1 := testPlayer(1, "kope", element.Fire)
	p2 := testPlayer(2, "rival", element.Water)
	p2.Block.HP = 10

	session, err := fx.registry.CreatePvP(p1, p2)
	require.NoError(t, err)

	turn, err := fx.registry.Submit(session.ID(), p1.ID(), combat.ActionAttack, nil)
	require.NoError(t, err)
	require.NotNil(t, turn.Settlement)
	assert.Equal(t, battle.KindPvP, turn.Settlement.Kind)
	assert.Equal(t, p1.ID(), turn.Settlement.WinnerID)
	assert.Equal(t, 150, turn.Settlement.WinnerReward.XP)   // 5 * 30
	assert.Equal(t, 75, turn.Settlement.WinnerReward.Coins) // 5 * 15

	_, err = fx.registry.Submit(session.ID(), p2.ID(), combat.ActionAttack, nil)
	assert.ErrorIs(t, err, battle.ErrSessionNotFound)

	// Both players are free for new sessions after eviction.
	_, err = fx.registry.CreatePvP(p1, p2)
	require.NoError(t, err)
}

func TestSubmit_RejectsInvalidActionAndStranger(t *testing.T) {
	fx := newFixture(t, neutralSrc)
	player := testPlayer(1, "kope", element.Fire)
	session, err := fx.registry.CreateEncounter(player, testEnemy(element.Water))
	require.NoError(t, err)

	_, err = fx.registry.Submit(session.ID(), player.ID(), combat.ActionUnknown, nil)
	assert.ErrorIs(t, err, battle.ErrInvalidAction)

	_, err = fx.registry.Submit(session.ID(), "999", combat.ActionAttack, nil)
	assert.ErrorIs(t, err, battle.ErrNotParticipant)

	_, err = fx.registry.Submit("nope", player.ID(), combat.ActionAttack, nil)
	assert.ErrorIs(t, err, battle.ErrSessionNotFound)
}

func TestSubmit_FreshSnapshotApplied(t *testing.T) {
	fx := newFixture(t, neutralSrc)
	player := testPlayer(1, "kope", element.Fire)
	session, err := fx.registry.CreateEncounter(player, testEnemy(element.Water))
	require.NoError(t, err)

	snapshot := testPlayer(1, "kope", element.Fire)
	snapshot.Coins = 500
	snapshot.Experience = 1234

	turn, err := fx.registry.Submit(session.ID(), player.ID(), combat.ActionAttack, []*combat.PlayerCombatant{snapshot})
	require.NoError(t, err)
	require.Len(t, turn.Players, 1)
	assert.Equal(t, 500, turn.Players[0].Coins)
	assert.Equal(t, 1234, turn.Players[0].Experience)
}

func TestSubmit_Expiry(t *testing.T) {
	fx := newFixture(t, neutralSrc)
	player := testPlayer(1, "kope", element.Fire)
	session, err := fx.registry.CreateEncounter(player, testEnemy(element.Water))
	require.NoError(t, err)

	fx.clock.Advance(11 * time.Minute)

	turn, err := fx.registry.Submit(session.ID(), player.ID(), combat.ActionAttack, nil)
	assert.ErrorIs(t, err, battle.ErrSessionExpired)
	require.NotNil(t, turn)
	require.NotNil(t, turn.Settlement)
	assert.Equal(t, battle.ReasonExpiry, turn.Settlement.Reason)
	assert.Empty(t, turn.Settlement.WinnerID)
	require.Len(t, turn.Outcomes, 1)
	assert.True(t, turn.Outcomes[0].Expired)
	assert.True(t, turn.Outcomes[0].Terminal)

	_, err = fx.registry.Submit(session.ID(), player.ID(), combat.ActionAttack, nil)
	assert.ErrorIs(t, err, battle.ErrSessionNotFound)
}

func TestForfeit(t *testing.T) {
	fx := newFixture(t, neutralSrc)
	p1 := testPlayer(1, "kope", element.Fire)
	p2 := testPlayer(2, "rival", element.Water)
	session, err := fx.registry.CreatePvP(p1, p2)
	require.NoError(t, err)

	turn, err := fx.registry.Forfeit(session.ID(), p1.ID())
	require.NoError(t, err)
	require.NotNil(t, turn.Settlement)
	assert.Equal(t, battle.ReasonForfeit, turn.Settlement.Reason)
	assert.Equal(t, p2.ID(), turn.Settlement.WinnerID)
	assert.Contains(t, turn.Outcomes[0].Log, "flees")

	_, err = fx.registry.Forfeit(session.ID(), p1.ID())
	assert.ErrorIs(t, err, battle.ErrSessionNotFound)
}

func TestTurnLimit_SettlesByHPFraction(t *testing.T) {
	fx := newFixture(t, neutralSrc)
	fxOpts := battle.DefaultOptions()
	fxOpts.MaxTurns = 2
	fxOpts.Clock = fx.clock.Now
	registry := battle.NewRegistry(testTable(t), neutralSrc, zaptest.NewLogger(t), fxOpts)

	p1 := testPlayer(1, "kope", element.Fire)
	p2 := testPlayer(2, "rival", element.Water)
	session, err := registry.CreatePvP(p1, p2)
	require.NoError(t, err)

	_, err = registry.Submit(session.ID(), p1.ID(), combat.ActionAttack, nil)
	require.NoError(t, err)
	turn, err := registry.Submit(session.ID(), p2.ID(), combat.ActionDefend, nil)
	require.NoError(t, err)

	require.NotNil(t, turn.Settlement)
	assert.Equal(t, battle.ReasonTurnLimit, turn.Settlement.Reason)
	// p1 took no damage, p2 took one attack; p1 wins on HP fraction.
	assert.Equal(t, p1.ID(), turn.Settlement.WinnerID)
	assert.Equal(t, 2, turn.Settlement.Turns)
}

func TestSessionLog_GrowsPerAction(t *testing.T) {
	fx := newFixture(t, neutralSrc)
	player := testPlayer(1, "kope", element.Fire)
	session, err := fx.registry.CreateEncounter(player, testEnemy(element.Water))
	require.NoError(t, err)

	_, err = fx.registry.Submit(session.ID(), player.ID(), combat.ActionAttack, nil)
	require.NoError(t, err)

	log := session.ActionLog()
	require.Len(t, log, 2)
	assert.Contains(t, log[0], "kope attacks")
}
