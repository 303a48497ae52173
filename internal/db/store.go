package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"you-sub/internal/models"
)

const (
	KeySubscriptions = "subscriptions"
	KeyGroups        = "groups"
)

const (
	selectState          = `SELECT key, value FROM storage WHERE key IN ($1, $2)`
	selectStateForUpdate = selectState + ` FOR UPDATE`
	upsertState          = `
		INSERT INTO storage (key, value)
		VALUES ($1, $2), ($3, $4)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
)

type entry struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}

// Store keeps the subscription map and the group list as two JSON rows of
// the storage table, mirroring the extension's local storage keys.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// Load reads both keys. Missing rows decode to an empty state.
func (s *Store) Load(ctx context.Context) (models.State, error) {
	var entries []entry
	if err := DB.SelectContext(ctx, &entries, selectState, KeySubscriptions, KeyGroups); err != nil {
		return models.State{}, fmt.Errorf("failed to load state: %w", err)
	}
	return decodeState(entries)
}

// Update runs fn between a locking read and a single combined write of both
// keys, all inside one transaction.
func (s *Store) Update(ctx context.Context, fn func(*models.State) error) error {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	state, err := lockState(ctx, tx)
	if err != nil {
		return err
	}

	if err := fn(&state); err != nil {
		return err
	}

	subs, err := json.Marshal(state.Subscriptions)
	if err != nil {
		return fmt.Errorf("failed to encode subscriptions: %w", err)
	}
	groups, err := json.Marshal(state.Groups)
	if err != nil {
		return fmt.Errorf("failed to encode groups: %w", err)
	}

	if _, err := tx.ExecContext(ctx, upsertState, KeySubscriptions, string(subs), KeyGroups, string(groups)); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}

func lockState(ctx context.Context, tx *sqlx.Tx) (models.State, error) {
	var entries []entry
	if err := tx.SelectContext(ctx, &entries, selectStateForUpdate, KeySubscriptions, KeyGroups); err != nil {
		return models.State{}, fmt.Errorf("failed to lock state: %w", err)
	}
	return decodeState(entries)
}

func decodeState(entries []entry) (models.State, error) {
	var state models.State
	for _, e := range entries {
		var err error
		switch e.Key {
		case KeySubscriptions:
			err = json.Unmarshal(e.Value, &state.Subscriptions)
		case KeyGroups:
			err = json.Unmarshal(e.Value, &state.Groups)
		}
		if err != nil {
			return models.State{}, fmt.Errorf("failed to decode %s: %w", e.Key, err)
		}
	}
	if state.Subscriptions == nil {
		state.Subscriptions = map[string]models.Subscription{}
	}
	return state, nil
}
