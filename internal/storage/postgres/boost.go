package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soma-satoro/dies/internal/game/character"
	"github.com/soma-satoro/dies/internal/storage"
)

var _ storage.BoostStore = (*BoostRepository)(nil)

// BoostRepository persists pending pump boosts.
type BoostRepository struct {
	db *pgxpool.Pool
}

// NewBoostRepository creates a BoostRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBoostRepository(db *pgxpool.Pool) *BoostRepository {
	return &BoostRepository{db: db}
}

// Schedule stores b for the character with characterID. Storing the same
// boost twice is a no-op.
//
// Postcondition: Returns nil on success or a non-nil error.
func (r *BoostRepository) Schedule(ctx context.Context, characterID uuid.UUID, b character.Boost) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO character_boosts (id, character_id, attribute, amount, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		b.ID, characterID, b.Attribute, b.Amount, b.Expires,
	)
	if err != nil {
		return fmt.Errorf("storing boost: %w", err)
	}
	return nil
}

// Delete removes the boost with id. Deleting a missing boost is not an error.
func (r *BoostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM character_boosts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting boost: %w", err)
	}
	return nil
}

// Pending returns every stored boost ordered by expiry.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *BoostRepository) Pending(ctx context.Context) ([]storage.StoredBoost, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, character_id, attribute, amount, expires_at
		FROM character_boosts ORDER BY expires_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing boosts: %w", err)
	}
	defer rows.Close()

	out := make([]storage.StoredBoost, 0)
	for rows.Next() {
		var sb storage.StoredBoost
		if err := rows.Scan(&sb.Boost.ID, &sb.CharacterID, &sb.Boost.Attribute, &sb.Boost.Amount, &sb.Boost.Expires); err != nil {
			return nil, fmt.Errorf("scanning boost row: %w", err)
		}
		out = append(out, sb)
	}
	return out, rows.Err()
}
