package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/museo-companion/internal/domain"
)

// StorageRepo is a string key/value store scoped to one session.
type StorageRepo interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if nothing is stored.
	Get(ctx context.Context, sessionID uuid.UUID, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, sessionID uuid.UUID, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, sessionID uuid.UUID, key string) error

	// Clear deletes every key in the session.
	Clear(ctx context.Context, sessionID uuid.UUID) error
}

type pgStorageRepo struct {
	db db
}

// NewStorageRepo constructs a StorageRepo backed by the provided db connection.
func NewStorageRepo(db db) StorageRepo {
	return &pgStorageRepo{db: db}
}

func (r *pgStorageRepo) Get(ctx context.Context, sessionID uuid.UUID, key string) (string, error) {
	const q = `
		SELECT value
		FROM session_values
		WHERE session_id = @session_id AND key = @key`

	var value string
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"session_id": sessionID, "key": key}).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("repo.StorageRepo.Get: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("repo.StorageRepo.Get: %w", err)
	}
	return value, nil
}

// Set upserts on the (session_id, key) primary key.
func (r *pgStorageRepo) Set(ctx context.Context, sessionID uuid.UUID, key, value string) error {
	const q = `
		INSERT INTO session_values (session_id, key, value)
		VALUES (@session_id, @key, @value)
		ON CONFLICT (session_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	args := pgx.NamedArgs{"session_id": sessionID, "key": key, "value": value}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.StorageRepo.Set: %w", err)
	}
	return nil
}

func (r *pgStorageRepo) Remove(ctx context.Context, sessionID uuid.UUID, key string) error {
	const q = `DELETE FROM session_values WHERE session_id = @session_id AND key = @key`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"session_id": sessionID, "key": key}); err != nil {
		return fmt.Errorf("repo.StorageRepo.Remove: %w", err)
	}
	return nil
}

func (r *pgStorageRepo) Clear(ctx context.Context, sessionID uuid.UUID) error {
	const q = `DELETE FROM session_values WHERE session_id = @session_id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"session_id": sessionID}); err != nil {
		return fmt.Errorf("repo.StorageRepo.Clear: %w", err)
	}
	return nil
}
