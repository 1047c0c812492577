// Package service wires a task store to the mutation bus for a host process.
package service

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/GoCodeAlone/tasker/comms"
	"github.com/GoCodeAlone/tasker/task"
)

// Manager runs task store operations and announces each successful mutation
// on the bus. Failed operations publish nothing.
//
// Like task.Store, Manager is not safe for concurrent use.
type Manager struct {
	store  *task.Store
	bus    comms.Bus
	logger *slog.Logger
}

// NewManager creates a Manager. A nil store gets a fresh task.Store, a nil
// bus gets an InMemoryBus and a nil logger discards output.
func NewManager(store *task.Store, bus comms.Bus, logger *slog.Logger) *Manager {
	if store == nil {
		store = task.New()
	}
	if bus == nil {
		bus = comms.NewInMemoryBus()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{store: store, bus: bus, logger: logger}
}

// Store returns the underlying store.
func (m *Manager) Store() *task.Store { return m.store }

// Bus returns the bus mutations are published on.
func (m *Manager) Bus() comms.Bus { return m.bus }

// Create adds a task and returns its id.
func (m *Manager) Create(ctx context.Context, f task.Fields) (int, error) {
	id, err := m.store.Create(f)
	if err != nil {
		m.logger.Warn("create task failed", "name", f.Name, "error", err)
		return id, err
	}
	m.logger.Info("task created", "id", id, "name", f.Name)
	return id, m.publish(ctx, comms.TypeCreated, id)
}

// Upsert inserts or merges a task under id.
func (m *Manager) Upsert(ctx context.Context, id int, f task.Fields) (int, error) {
	got, err := m.store.Upsert(id, f)
	if err != nil {
		m.logger.Warn("upsert task failed", "id", id, "error", err)
		return got, err
	}
	m.logger.Info("task upserted", "id", got)
	return got, m.publish(ctx, comms.TypeUpserted, got)
}

// Update applies a partial update to task id.
func (m *Manager) Update(ctx context.Context, id int, p task.Patch) error {
	if err := m.store.Update(id, p); err != nil {
		m.logger.Warn("update task failed", "id", id, "error", err)
		return err
	}
	m.logger.Info("task updated", "id", id)
	return m.publish(ctx, comms.TypeUpdated, id)
}

// Delete removes task id.
func (m *Manager) Delete(ctx context.Context, id int) error {
	if err := m.store.Delete(id); err != nil {
		m.logger.Warn("delete task failed", "id", id, "error", err)
		return err
	}
	m.logger.Info("task deleted", "id", id)
	return m.publish(ctx, comms.TypeDeleted, id)
}

// Reset empties the store.
func (m *Manager) Reset(ctx context.Context) error {
	m.store.Reset()
	m.logger.Info("task store reset")
	return m.publish(ctx, comms.TypeReset, 0)
}

// Get returns a copy of task id.
func (m *Manager) Get(id int) (task.Task, error) { return m.store.Get(id) }

// List returns the tasks matching filter.
func (m *Manager) List(filter task.Filter) []task.Task { return m.store.List(filter) }

// Sorted returns the tasks matching filter ordered by status (active first),
// priority, deadline and start time. Ties keep storage order.
func (m *Manager) Sorted(filter task.Filter) []task.Task {
	tasks := m.store.List(filter)
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Status != b.Status {
			return a.Status < b.Status
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.Deadline != b.Deadline {
			return a.Deadline < b.Deadline
		}
		return a.StartTime < b.StartTime
	})
	return tasks
}

// publish reports subscriber failures without undoing the mutation.
func (m *Manager) publish(ctx context.Context, typ comms.MessageType, id int) error {
	if err := m.bus.Publish(ctx, comms.NewMessage(typ, id)); err != nil {
		m.logger.Error("publish mutation failed", "type", typ, "id", id, "error", err)
		return err
	}
	return nil
}
