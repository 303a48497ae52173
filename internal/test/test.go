// Package test holds fakes shared by the package tests.
package test

import (
	"context"
	"sync"

	"github.com/hibiken/asynq"
	"you-sub/internal/models"
)

// MockTaskEnqueuer is a mock implementation of tasks.TaskEnqueuer for testing.
type MockTaskEnqueuer struct {
	EnqueuedTasks []*asynq.Task
	Err           error
}

func (m *MockTaskEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.EnqueuedTasks = append(m.EnqueuedTasks, task)
	return &asynq.TaskInfo{ID: "test-task-id", Queue: "sync", Type: task.Type(), State: asynq.TaskStatePending}, nil
}

// MockTaskInspector is a mock implementation of tasks.TaskInspector for testing.
type MockTaskInspector struct {
	Tasks map[string]*asynq.TaskInfo
}

func (m *MockTaskInspector) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	info, ok := m.Tasks[id]
	if !ok {
		return nil, asynq.ErrTaskNotFound
	}
	return info, nil
}

// MemStore is an in-memory reconcile.Store.
type MemStore struct {
	mu     sync.Mutex
	State  models.State
	Writes int
	// LoadErr and UpdateErr, when set, are returned instead of touching State.
	LoadErr   error
	UpdateErr error
}

func NewMemStore(state models.State) *MemStore {
	return &MemStore{State: state}
}

func (m *MemStore) Load(ctx context.Context) (models.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return models.State{}, m.LoadErr
	}
	return clone(m.State), nil
}

func (m *MemStore) Update(ctx context.Context, fn func(*models.State) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	state := clone(m.State)
	if err := fn(&state); err != nil {
		return err
	}
	m.State = state
	m.Writes++
	return nil
}

func clone(s models.State) models.State {
	out := models.State{Subscriptions: make(map[string]models.Subscription, len(s.Subscriptions))}
	for k, v := range s.Subscriptions {
		out.Subscriptions[k] = v
	}
	if s.Groups != nil {
		out.Groups = append([]string(nil), s.Groups...)
	}
	return out
}
