// Package storage defines what the shell needs from a character store,
// independent of the backing database.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/soma-satoro/dies/internal/game/character"
)

var (
	// ErrCharacterNotFound is returned when a character lookup yields no results.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrCharacterNameTaken is returned when creating a character with a name already in use.
	ErrCharacterNameTaken = errors.New("character name already taken")
)

// StoredBoost is a pending pump boost together with its owner.
type StoredBoost struct {
	CharacterID uuid.UUID
	Boost       character.Boost
}

// CharacterStore persists characters. Names are unique case-insensitively.
type CharacterStore interface {
	Create(ctx context.Context, c *character.Character) (*character.Character, error)
	GetByID(ctx context.Context, id uuid.UUID) (*character.Character, error)
	GetByName(ctx context.Context, name string) (*character.Character, error)
	List(ctx context.Context) ([]*character.Character, error)
	Save(ctx context.Context, c *character.Character) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BoostStore persists pending pump boosts. Deleting a character deletes
// its boosts.
type BoostStore interface {
	Schedule(ctx context.Context, characterID uuid.UUID, b character.Boost) error
	Delete(ctx context.Context, id uuid.UUID) error
	Pending(ctx context.Context) ([]StoredBoost, error)
}
