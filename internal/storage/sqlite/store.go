// Package sqlite provides a single-file SQLite character store for shells
// that run without a PostgreSQL server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/soma-satoro/dies/internal/game/character"
	"github.com/soma-satoro/dies/internal/game/health"
	"github.com/soma-satoro/dies/internal/game/stat"
	"github.com/soma-satoro/dies/internal/storage"
	"github.com/soma-satoro/dies/internal/storage/sqlite/migrations"
)

var (
	_ storage.CharacterStore = (*Store)(nil)
	_ storage.BoostStore     = (*BoostStore)(nil)
)

const characterColumns = `id, name, splat, stats, health_levels, bashing, lethal, aggravated,
	undead, injury_level, created_at, updated_at`

// Store persists characters in SQLite. Loaded stat blocks are bound to the
// store's definitions and derivers.
type Store struct {
	sqlDB    *sql.DB
	defs     stat.Definitions
	derivers []stat.Deriver
}

// Open opens the database at path and applies embedded migrations. Loaded
// characters get stat.DefaultDerivers plus extra.
//
// Precondition: path must be non-empty. defs may be nil.
// Postcondition: Returns a migrated Store, or a non-nil error.
func Open(path string, defs stat.Definitions, extra ...stat.Deriver) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{
		sqlDB:    sqlDB,
		defs:     defs,
		derivers: append(stat.DefaultDerivers(), extra...),
	}, nil
}

// applyMigrations runs the embedded migrations without closing sqlDB.
func applyMigrations(sqlDB *sql.DB) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("reading embedded migrations: %w", err)
	}
	defer src.Close()
	drv, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Boosts returns a BoostStore sharing this store's database.
func (s *Store) Boosts() *BoostStore {
	return &BoostStore{sqlDB: s.sqlDB}
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Create inserts c and sets its timestamps. A nil ID is replaced with a fresh one.
//
// Precondition: c must be non-nil with a non-empty Name, Stats and Health.
// Postcondition: Returns c, or storage.ErrCharacterNameTaken when the name is
// already used, compared case-insensitively.
func (s *Store) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	stats, err := c.Stats.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding stats: %w", err)
	}
	now := time.Now().UTC()
	t := c.Health
	_, err = s.sqlDB.ExecContext(ctx, `
		INSERT INTO characters (`+characterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.Name, c.Splat, string(stats),
		t.HealthLevels, t.Bashing, t.Lethal, t.Aggravated, t.Undead, string(t.Injury),
		toMillis(now), toMillis(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	c.CreatedAt, c.UpdatedAt = fromMillis(toMillis(now)), fromMillis(toMillis(now))
	return c, nil
}

// GetByID retrieves a character by its primary key.
//
// Postcondition: Returns the Character or storage.ErrCharacterNotFound.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*character.Character, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, id.String())
	return s.scanOne(row)
}

// GetByName retrieves a character by name, compared case-insensitively.
//
// Postcondition: Returns the Character or storage.ErrCharacterNotFound.
func (s *Store) GetByName(ctx context.Context, name string) (*character.Character, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE name = ? COLLATE NOCASE`, name)
	return s.scanOne(row)
}

// List returns every character ordered by name.
func (s *Store) List(ctx context.Context) ([]*character.Character, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+characterColumns+` FROM characters ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// Save persists splat, stats and health in one statement.
//
// Postcondition: Returns nil on success, storage.ErrCharacterNotFound if no row updated.
func (s *Store) Save(ctx context.Context, c *character.Character) error {
	stats, err := c.Stats.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	t := c.Health
	now := time.Now().UTC()
	res, err := s.sqlDB.ExecContext(ctx, `
		UPDATE characters SET splat = ?, stats = ?, health_levels = ?, bashing = ?, lethal = ?,
			aggravated = ?, undead = ?, injury_level = ?, updated_at = ?
		WHERE id = ?`,
		c.Splat, string(stats), t.HealthLevels, t.Bashing, t.Lethal, t.Aggravated, t.Undead,
		string(t.Injury), toMillis(now), c.ID.String(),
	)
	if err := affectedOne(res, err, "saving character"); err != nil {
		return err
	}
	c.UpdatedAt = fromMillis(toMillis(now))
	return nil
}

// Delete removes a character and its pending boosts.
//
// Postcondition: Returns nil on success, storage.ErrCharacterNotFound if no row deleted.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id.String())
	return affectedOne(res, err, "deleting character")
}

func affectedOne(res sql.Result, err error, what string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return storage.ErrCharacterNotFound
	}
	return nil
}

func (s *Store) scanOne(row *sql.Row) (*character.Character, error) {
	c, err := s.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scan(row scanner) (*character.Character, error) {
	var (
		c                    character.Character
		t                    health.Track
		id, raw, injury      string
		createdAt, updatedAt int64
	)
	if err := row.Scan(
		&id, &c.Name, &c.Splat, &raw,
		&t.HealthLevels, &t.Bashing, &t.Lethal, &t.Aggravated, &t.Undead, &injury,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing id of %q: %w", c.Name, err)
	}
	c.ID = parsed
	t.Injury = health.Level(injury)
	c.Health = &t
	c.CreatedAt, c.UpdatedAt = fromMillis(createdAt), fromMillis(updatedAt)
	c.Stats = stat.NewBlock(s.defs, s.derivers...)
	if err := c.Stats.UnmarshalJSON([]byte(raw)); err != nil {
		return nil, fmt.Errorf("decoding stats of %q: %w", c.Name, err)
	}
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// BoostStore persists pending pump boosts in the same database as Store.
type BoostStore struct {
	sqlDB *sql.DB
}

// Schedule stores b for the character with characterID. Storing the same
// boost twice is a no-op.
func (b *BoostStore) Schedule(ctx context.Context, characterID uuid.UUID, boost character.Boost) error {
	_, err := b.sqlDB.ExecContext(ctx, `
		INSERT OR IGNORE INTO character_boosts (id, character_id, attribute, amount, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		boost.ID.String(), characterID.String(), boost.Attribute, boost.Amount, toMillis(boost.Expires),
	)
	if err != nil {
		return fmt.Errorf("storing boost: %w", err)
	}
	return nil
}

// Delete removes the boost with id. Deleting a missing boost is not an error.
func (b *BoostStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := b.sqlDB.ExecContext(ctx, `DELETE FROM character_boosts WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("deleting boost: %w", err)
	}
	return nil
}

// Pending returns every stored boost ordered by expiry.
func (b *BoostStore) Pending(ctx context.Context) ([]storage.StoredBoost, error) {
	rows, err := b.sqlDB.QueryContext(ctx, `
		SELECT id, character_id, attribute, amount, expires_at
		FROM character_boosts ORDER BY expires_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing boosts: %w", err)
	}
	defer rows.Close()

	out := make([]storage.StoredBoost, 0)
	for rows.Next() {
		var (
			sb         storage.StoredBoost
			id, charID string
			expiresAt  int64
		)
		if err := rows.Scan(&id, &charID, &sb.Boost.Attribute, &sb.Boost.Amount, &expiresAt); err != nil {
			return nil, fmt.Errorf("scanning boost row: %w", err)
		}
		if sb.Boost.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing boost id: %w", err)
		}
		if sb.CharacterID, err = uuid.Parse(charID); err != nil {
			return nil, fmt.Errorf("parsing character id: %w", err)
		}
		sb.Boost.Expires = fromMillis(expiresAt)
		out = append(out, sb)
	}
	return out, rows.Err()
}
