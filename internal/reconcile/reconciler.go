package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"you-sub/internal/models"
)

var (
	// ErrDuplicateGroup is returned when adding a group that already exists or has no name.
	ErrDuplicateGroup = errors.New("group already exists")
	// ErrProtectedGroup is returned when deleting the default group.
	ErrProtectedGroup = errors.New("group cannot be deleted")
	// ErrStoreIO wraps every failure reading or writing the persisted state.
	ErrStoreIO = errors.New("subscription store failure")
)

// Store persists the subscription map and group list as one unit.
// Update loads the state, applies fn and writes both halves back in a single
// write. Nothing is written when fn returns an error.
type Store interface {
	Load(ctx context.Context) (models.State, error)
	Update(ctx context.Context, fn func(*models.State) error) error
}

// Reconciler owns every read-modify-write cycle against the store.
type Reconciler struct {
	store Store
	mu    sync.Mutex
}

// New returns a Reconciler that reads and writes through store.
func New(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile merges freshly scraped subscriptions into state. Existing group
// assignments win, new channels land in the default group and channels no
// longer scraped are dropped. A fresh record without an icon keeps the stored
// one. The group list is passed through.
func Reconcile(fresh []models.Subscription, state models.State) models.State {
	updated := make(map[string]models.Subscription, len(fresh))
	for _, sub := range fresh {
		sub.Group = models.DefaultGroup
		if existing, ok := state.Subscriptions[sub.ChannelID]; ok {
			if existing.Group != "" {
				sub.Group = existing.Group
			}
			if sub.Icon == "" {
				sub.Icon = existing.Icon
			}
		}
		updated[sub.ChannelID] = sub
	}

	groups := make([]string, len(state.Groups))
	copy(groups, state.Groups)

	return models.State{Subscriptions: updated, Groups: groups}
}

// State returns the persisted state.
func (r *Reconciler) State(ctx context.Context) (models.State, error) {
	state, err := r.store.Load(ctx)
	if err != nil {
		log.Printf("Error loading state: %v", err)
		return models.State{}, fmt.Errorf("%w: %w", ErrStoreIO, err)
	}
	return state.Normalized(), nil
}

// Sync replaces the stored subscriptions with fresh, keeping group assignments.
func (r *Reconciler) Sync(ctx context.Context, fresh []models.Subscription) (models.State, error) {
	var result models.State
	err := r.update(ctx, func(state *models.State) error {
		*state = Reconcile(fresh, *state)
		result = *state
		return nil
	})
	if err != nil {
		return models.State{}, err
	}
	log.Printf("Synced %d subscriptions", len(result.Subscriptions))
	return result, nil
}

// SetSubscriptionGroup moves a channel into group. Unknown channels are
// ignored. The group is not checked against the group list.
func (r *Reconciler) SetSubscriptionGroup(ctx context.Context, channelID, group string) error {
	return r.update(ctx, func(state *models.State) error {
		sub, ok := state.Subscriptions[channelID]
		if !ok {
			return errSkip
		}
		sub.Group = group
		state.Subscriptions[channelID] = sub
		return nil
	})
}

// AddGroup appends name to the group list and returns the updated list.
func (r *Reconciler) AddGroup(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is empty", ErrDuplicateGroup)
	}

	var groups []string
	err := r.update(ctx, func(state *models.State) error {
		if state.HasGroup(name) {
			return fmt.Errorf("%w: %q", ErrDuplicateGroup, name)
		}
		state.Groups = append(state.Groups, name)
		groups = state.Groups
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// DeleteGroup removes name from the group list and moves its members to the
// default group.
func (r *Reconciler) DeleteGroup(ctx context.Context, name string) error {
	if name == models.DefaultGroup {
		return fmt.Errorf("%w: %q", ErrProtectedGroup, name)
	}

	return r.update(ctx, func(state *models.State) error {
		for id, sub := range state.Subscriptions {
			if sub.Group == name {
				sub.Group = models.DefaultGroup
				state.Subscriptions[id] = sub
			}
		}

		groups := state.Groups[:0:0]
		for _, g := range state.Groups {
			if g != name {
				groups = append(groups, g)
			}
		}
		state.Groups = groups
		return nil
	})
}

// errSkip aborts an update without writing and without reporting an error.
var errSkip = errors.New("skip write")

type domainError struct{ error }

func (e domainError) Unwrap() error { return e.error }

func (r *Reconciler) update(ctx context.Context, fn func(*models.State) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.store.Update(ctx, func(state *models.State) error {
		*state = state.Normalized()
		if err := fn(state); err != nil {
			return domainError{err}
		}
		return nil
	})

	var de domainError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		if errors.Is(de.error, errSkip) {
			return nil
		}
		return de.error
	default:
		log.Printf("Error updating state: %v", err)
		return fmt.Errorf("%w: %w", ErrStoreIO, err)
	}
}
