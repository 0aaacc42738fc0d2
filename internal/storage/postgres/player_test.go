package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toseph-here/kope-quest/internal/engine"
	"github.com/toseph-here/kope-quest/internal/game/combat"
	"github.com/toseph-here/kope-quest/internal/game/element"
	"github.com/toseph-here/kope-quest/internal/storage/postgres"
	"github.com/toseph-here/kope-quest/internal/testutil"
)

func setupPlayerRepo(t *testing.T) *postgres.PlayerRepository {
	t.Helper()
	pool := testutil.NewPool(t)
	return postgres.NewPlayerRepository(pool)
}

func intPtr(v int) *int { return &v }

func TestPlayerRepository_Create(t *testing.T) {
	repo := setupPlayerRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, 1, "kope", element.Fire)
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.AccountID)
	assert.Equal(t, "kope", created.Username)
	assert.Equal(t, postgres.StartingCoins, created.Coins)
	assert.Equal(t, 0, created.Experience)
	assert.Equal(t, combat.StatsForLevel(1, element.Fire), created.Block)
}

func TestPlayerRepository_CreateDuplicate(t *testing.T) {
	repo := setupPlayerRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "kope", element.Fire)
	require.NoError(t, err)

	_, err = repo.Create(ctx, 1, "other", element.Water)
	assert.ErrorIs(t, err, engine.ErrPlayerExists)

	// Usernames are unique too.
	_, err = repo.Create(ctx, 2, "kope", element.Water)
	assert.ErrorIs(t, err, engine.ErrPlayerExists)
}

func TestPlayerRepository_Load(t *testing.T) {
	repo := setupPlayerRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, 7, "kope", element.Shadow)
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, created, loaded)
}

func TestPlayerRepository_LoadNotFound(t *testing.T) {
	repo := setupPlayerRepo(t)

	_, err := repo.Load(context.Background(), 99)
	assert.ErrorIs(t, err, engine.ErrPlayerNotFound)
}

func TestPlayerRepository_ApplyDelta(t *testing.T) {
	repo := setupPlayerRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "kope", element.Fire)
	require.NoError(t, err)

	err = repo.ApplyDelta(ctx, 1, engine.StatDelta{
		HP:         intPtr(42),
		Stamina:    intPtr(10),
		XP:         120,
		Coins:      55,
		BattlesWon: 1,
	})
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Block.HP)
	assert.Equal(t, 10, loaded.Block.Stamina)
	assert.Equal(t, 120, loaded.Experience)
	assert.Equal(t, postgres.StartingCoins+55, loaded.Coins)
	assert.Equal(t, 1, loaded.BattlesWon)
	assert.Equal(t, 0, loaded.BattlesLost)
}

func TestPlayerRepository_ApplyDeltaClampsToMaxima(t *testing.T) {
	repo := setupPlayerRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "kope", element.Fire)
	require.NoError(t, err)

	err = repo.ApplyDelta(ctx, 1, engine.StatDelta{
		HP:      intPtr(9999),
		Stamina: intPtr(-5),
	})
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, loaded.Block.MaxHP, loaded.Block.HP)
	assert.Equal(t, 0, loaded.Block.Stamina)
}

func TestPlayerRepository_ApplyDeltaReplacesStatBlock(t *testing.T) {
	repo := setupPlayerRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "kope", element.Fire)
	require.NoError(t, err)

	next := combat.StatsForLevel(2, element.Fire)
	err = repo.ApplyDelta(ctx, 1, engine.StatDelta{XP: 100, Stats: &next})
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, next, loaded.Block)
	assert.Equal(t, 100, loaded.Experience)
}

func TestPlayerRepository_ApplyDeltaNotFound(t *testing.T) {
	repo := setupPlayerRepo(t)

	err := repo.ApplyDelta(context.Background(), 99, engine.StatDelta{XP: 10})
	assert.ErrorIs(t, err, engine.ErrPlayerNotFound)
}

func TestPlayerRepository_ClaimDaily(t *testing.T) {
	repo := setupPlayerRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "kope", element.Fire)
	require.NoError(t, err)

	day1 := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	streak, err := repo.ClaimDaily(ctx, 1, day1)
	require.NoError(t, err)
	assert.Equal(t, 0, streak)

	// Second claim on the same calendar day is rejected.
	_, err = repo.ClaimDaily(ctx, 1, day1.Add(2*time.Hour))
	assert.ErrorIs(t, err, engine.ErrDailyAlreadyClaimed)

	// Next day within 48 hours extends the streak.
	day2 := day1.Add(26 * time.Hour)
	streak, err = repo.ClaimDaily(ctx, 1, day2)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	// A long gap resets the streak.
	streak, err = repo.ClaimDaily(ctx, 1, day2.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestPlayerRepository_ClaimDailyNotFound(t *testing.T) {
	repo := setupPlayerRepo(t)

	_, err := repo.ClaimDaily(context.Background(), 99, time.Now())
	assert.ErrorIs(t, err, engine.ErrPlayerNotFound)
}

func TestPlayerRepository_TopPlayers(t *testing.T) {
	repo := setupPlayerRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "rookie", element.Fire)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 2, "veteran", element.Water)
	require.NoError(t, err)

	// Promote the veteran to level 3.
	next := combat.StatsForLevel(3, element.Water)
	err = repo.ApplyDelta(ctx, 2, engine.StatDelta{XP: 500, BattlesWon: 2, Stats: &next})
	require.NoError(t, err)

	ranked, err := repo.TopPlayers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "veteran", ranked[0].Username)
	assert.Equal(t, 3, ranked[0].Level)
	assert.Equal(t, 2, ranked[0].BattlesWon)
	assert.Equal(t, combat.PowerRating(&next), ranked[0].PowerRating)
	assert.Equal(t, "rookie", ranked[1].Username)

	// Limit is honored.
	top, err := repo.TopPlayers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "veteran", top[0].Username)
}
