package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toseph-here/kope-quest/internal/engine"
	"github.com/toseph-here/kope-quest/internal/game/combat"
	"github.com/toseph-here/kope-quest/internal/game/element"
)

// StartingCoins is the coin balance granted on registration.
const StartingCoins = 100

// PlayerRepository provides PostgreSQL-backed player persistence.
type PlayerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository creates a player repository backed by the given pool.
//
// Precondition: pool must be non-nil and connected.
func NewPlayerRepository(pool *Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool.DB()}
}

// Create registers a new player with level-1 starting stats.
//
// Precondition: accountID must be positive; username must be non-empty; elem
// must be a valid element.
// Postcondition: Returns the created player snapshot, or engine.ErrPlayerExists
// if the account already has a player.
func (r *PlayerRepository) Create(ctx context.Context, accountID int64, username string, elem element.Element) (*combat.PlayerCombatant, error) {
	stats := combat.StatsForLevel(1, elem)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO players (
			account_id, username, element, level,
			hp, max_hp, stamina, max_stamina,
			attack, defense, agility, element_power,
			experience, coins, battles_won, battles_lost,
			daily_streak
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		accountID, username, string(elem), stats.Level,
		stats.HP, stats.MaxHP, stats.Stamina, stats.MaxStamina,
		stats.Attack, stats.Defense, stats.Agility, stats.ElementPower,
		0, StartingCoins, 0, 0,
		0,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, engine.ErrPlayerExists
		}
		return nil, fmt.Errorf("creating player: %w", err)
	}

	return &combat.PlayerCombatant{
		AccountID: accountID,
		Username:  username,
		Coins:     StartingCoins,
		Block:     stats,
	}, nil
}

// Load returns the player's current snapshot.
//
// Postcondition: Returns engine.ErrPlayerNotFound if no player exists for the
// account.
func (r *PlayerRepository) Load(ctx context.Context, accountID int64) (*combat.PlayerCombatant, error) {
	return scanPlayer(r.pool.QueryRow(ctx, `
		SELECT account_id, username, element, level,
		       hp, max_hp, stamina, max_stamina,
		       attack, defense, agility, element_power,
		       experience, coins, battles_won, battles_lost
		FROM players
		WHERE account_id = $1`,
		accountID,
	))
}

// ApplyDelta applies one stat update inside a transaction.
//
// The HP and Stamina pointers, when set, are absolute values; XP, Coins and
// the battle counters are increments; a non-nil Stats block replaces the
// whole stat block.
//
// Postcondition: Returns engine.ErrPlayerNotFound if no player exists for the
// account. HP and stamina are clamped to their maxima.
func (r *PlayerRepository) ApplyDelta(ctx context.Context, accountID int64, delta engine.StatDelta) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	player, err := scanPlayer(tx.QueryRow(ctx, `
		SELECT account_id, username, element, level,
		       hp, max_hp, stamina, max_stamina,
		       attack, defense, agility, element_power,
		       experience, coins, battles_won, battles_lost
		FROM players
		WHERE account_id = $1
		FOR UPDATE`,
		accountID,
	))
	if err != nil {
		return err
	}

	stats := player.Block
	if delta.Stats != nil {
		stats = *delta.Stats
	}
	if delta.HP != nil {
		stats.HP = *delta.HP
	}
	if delta.Stamina != nil {
		stats.Stamina = *delta.Stamina
	}
	stats.HP = clamp(stats.HP, 0, stats.MaxHP)
	stats.Stamina = clamp(stats.Stamina, 0, stats.MaxStamina)

	_, err = tx.Exec(ctx, `
		UPDATE players
		SET level = $2, hp = $3, max_hp = $4, stamina = $5, max_stamina = $6,
		    attack = $7, defense = $8, agility = $9, element_power = $10,
		    experience = experience + $11, coins = coins + $12,
		    battles_won = battles_won + $13, battles_lost = battles_lost + $14
		WHERE account_id = $1`,
		accountID,
		stats.Level, stats.HP, stats.MaxHP, stats.Stamina, stats.MaxStamina,
		stats.Attack, stats.Defense, stats.Agility, stats.ElementPower,
		delta.XP, delta.Coins, delta.BattlesWon, delta.BattlesLost,
	)
	if err != nil {
		return fmt.Errorf("updating player: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ClaimDaily records a daily claim at the given time and returns the
// resulting streak length.
//
// A second claim on the same calendar day returns
// engine.ErrDailyAlreadyClaimed. A claim within 48 hours of the previous one
// extends the streak; a later claim resets it.
func (r *PlayerRepository) ClaimDaily(ctx context.Context, accountID int64, now time.Time) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		last   *time.Time
		streak int
	)
	err = tx.QueryRow(ctx, `
		SELECT last_daily_claim, daily_streak
		FROM players
		WHERE account_id = $1
		FOR UPDATE`,
		accountID,
	).Scan(&last, &streak)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, engine.ErrPlayerNotFound
		}
		return 0, fmt.Errorf("loading daily claim: %w", err)
	}

	if last != nil && last.Year() == now.Year() && last.YearDay() == now.YearDay() {
		return 0, engine.ErrDailyAlreadyClaimed
	}
	if last != nil && now.Sub(*last) < 48*time.Hour {
		streak++
	} else {
		streak = 0
	}

	_, err = tx.Exec(ctx, `
		UPDATE players
		SET last_daily_claim = $2, daily_streak = $3
		WHERE account_id = $1`,
		accountID, now, streak,
	)
	if err != nil {
		return 0, fmt.Errorf("recording daily claim: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return streak, nil
}

// TopPlayers returns the leaderboard ordered by power rating.
//
// Precondition: limit must be positive.
// Postcondition: Returns at most limit rows, highest rating first.
func (r *PlayerRepository) TopPlayers(ctx context.Context, limit int) ([]engine.RankedPlayer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT account_id, username, level, battles_won, battles_lost,
		       level * 50 + attack + defense + agility + element_power AS power_rating
		FROM players
		ORDER BY power_rating DESC, account_id ASC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var ranked []engine.RankedPlayer
	for rows.Next() {
		var p engine.RankedPlayer
		if err := rows.Scan(&p.AccountID, &p.Username, &p.Level, &p.BattlesWon, &p.BattlesLost, &p.PowerRating); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		ranked = append(ranked, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leaderboard: %w", err)
	}
	return ranked, nil
}

func scanPlayer(row pgx.Row) (*combat.PlayerCombatant, error) {
	var (
		p    combat.PlayerCombatant
		elem string
	)
	err := row.Scan(
		&p.AccountID, &p.Username, &elem, &p.Block.Level,
		&p.Block.HP, &p.Block.MaxHP, &p.Block.Stamina, &p.Block.MaxStamina,
		&p.Block.Attack, &p.Block.Defense, &p.Block.Agility, &p.Block.ElementPower,
		&p.Experience, &p.Coins, &p.BattlesWon, &p.BattlesLost,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, engine.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("scanning player: %w", err)
	}
	p.Block.Element = element.Element(elem)
	return &p, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// isDuplicateKeyError reports whether err is a PostgreSQL unique violation.
func isDuplicateKeyError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
