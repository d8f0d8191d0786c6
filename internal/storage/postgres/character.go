package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soma-satoro/dies/internal/game/character"
	"github.com/soma-satoro/dies/internal/game/health"
	"github.com/soma-satoro/dies/internal/game/stat"
	"github.com/soma-satoro/dies/internal/storage"
)

// Storage sentinels, re-exported.
var (
	ErrCharacterNotFound  = storage.ErrCharacterNotFound
	ErrCharacterNameTaken = storage.ErrCharacterNameTaken
)

var _ storage.CharacterStore = (*CharacterRepository)(nil)

const characterColumns = `id, name, splat, stats, health_levels, bashing, lethal, aggravated,
	undead, injury_level, created_at, updated_at`

// CharacterRepository provides character persistence operations. Stat blocks
// are stored as JSONB; loaded blocks are bound to the repository's definitions
// and derivers.
type CharacterRepository struct {
	db       *pgxpool.Pool
	defs     stat.Definitions
	derivers []stat.Deriver
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
// Loaded characters get stat.DefaultDerivers plus extra.
//
// Precondition: db must be a valid, open connection pool. defs may be nil.
func NewCharacterRepository(db *pgxpool.Pool, defs stat.Definitions, extra ...stat.Deriver) *CharacterRepository {
	return &CharacterRepository{
		db:       db,
		defs:     defs,
		derivers: append(stat.DefaultDerivers(), extra...),
	}
}

// Create inserts c and sets its timestamps. A nil ID is replaced with a fresh one.
//
// Precondition: c must be non-nil with a non-empty Name, Stats and Health.
// Postcondition: Returns c with ID and timestamps set, or ErrCharacterNameTaken
// when the name is already used, compared case-insensitively.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	stats, err := c.Stats.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding stats: %w", err)
	}
	t := c.Health
	err = r.db.QueryRow(ctx, `
		INSERT INTO characters
			(id, name, splat, stats, health_levels, bashing, lethal, aggravated, undead, injury_level)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Splat, stats,
		t.HealthLevels, t.Bashing, t.Lethal, t.Aggravated, t.Undead, string(t.Injury),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return c, nil
}

// GetByID retrieves a character by its primary key.
//
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id uuid.UUID) (*character.Character, error) {
	row := r.db.QueryRow(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = $1`, id)
	return r.scanOne(row)
}

// GetByName retrieves a character by name, compared case-insensitively.
//
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByName(ctx context.Context, name string) (*character.Character, error) {
	row := r.db.QueryRow(ctx, `SELECT `+characterColumns+` FROM characters WHERE LOWER(name) = LOWER($1)`, name)
	return r.scanOne(row)
}

// List returns every character ordered by name.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) List(ctx context.Context) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx, `SELECT `+characterColumns+` FROM characters ORDER BY LOWER(name) ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// SaveStats persists c's splat and stat block.
//
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row updated.
func (r *CharacterRepository) SaveStats(ctx context.Context, c *character.Character) error {
	return saveStats(ctx, r.db, c)
}

// SaveHealth persists c's health track.
//
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row updated.
func (r *CharacterRepository) SaveHealth(ctx context.Context, c *character.Character) error {
	return saveHealth(ctx, r.db, c)
}

// Save persists stats and health in one transaction.
//
// Postcondition: Both are written, or neither and a non-nil error is returned.
func (r *CharacterRepository) Save(ctx context.Context, c *character.Character) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := saveStats(ctx, tx, c); err != nil {
		return err
	}
	if err := saveHealth(ctx, tx, c); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing character: %w", err)
	}
	return nil
}

// Delete removes a character and its pending boosts.
//
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row deleted.
func (r *CharacterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "deleting character", `DELETE FROM characters WHERE id = $1`, id)
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// execOne runs sql and maps zero affected rows to ErrCharacterNotFound.
func execOne(ctx context.Context, db execer, what, sql string, args ...any) error {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

func saveStats(ctx context.Context, db execer, c *character.Character) error {
	stats, err := c.Stats.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	return execOne(ctx, db, "saving character stats", `
		UPDATE characters SET splat = $2, stats = $3, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Splat, stats,
	)
}

func saveHealth(ctx context.Context, db execer, c *character.Character) error {
	t := c.Health
	return execOne(ctx, db, "saving character health", `
		UPDATE characters SET health_levels = $2, bashing = $3, lethal = $4, aggravated = $5,
			undead = $6, injury_level = $7, updated_at = NOW()
		WHERE id = $1`,
		c.ID, t.HealthLevels, t.Bashing, t.Lethal, t.Aggravated, t.Undead, string(t.Injury),
	)
}

func (r *CharacterRepository) scanOne(row pgx.Row) (*character.Character, error) {
	c, err := r.scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, nil
}

func (r *CharacterRepository) scan(row pgx.Row) (*character.Character, error) {
	var (
		c      character.Character
		t      health.Track
		raw    []byte
		injury string
	)
	if err := row.Scan(
		&c.ID, &c.Name, &c.Splat, &raw,
		&t.HealthLevels, &t.Bashing, &t.Lethal, &t.Aggravated, &t.Undead, &injury,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Injury = health.Level(injury)
	c.Health = &t
	c.Stats = stat.NewBlock(r.defs, r.derivers...)
	if err := c.Stats.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("decoding stats of %q: %w", c.Name, err)
	}
	return &c, nil
}
