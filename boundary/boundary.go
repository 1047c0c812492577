// Package boundary exposes a task store through primitive-only calls that
// report failure with sentinel values instead of Go errors. It serves hosts
// linking against a C-like surface, where "keep" is spelled -1 for integer
// fields and nil for string fields.
package boundary

import "github.com/GoCodeAlone/tasker/task"

// Keep is the integer sentinel meaning "leave the field unchanged".
const Keep = -1

// Failed is returned by AddTask and AddTaskWithID on any error.
const Failed = -1

// Boundary wraps a task store owned by the host.
type Boundary struct {
	store *task.Store
}

// New wraps store. A nil store gets a fresh one.
func New(store *task.Store) *Boundary {
	if store == nil {
		store = task.New()
	}
	return &Boundary{store: store}
}

// Store returns the wrapped store.
func (b *Boundary) Store() *task.Store { return b.store }

// Init initializes the store if needed; existing records survive.
func (b *Boundary) Init() { b.store.Init() }

// Reset empties the store and restarts ids at 1.
func (b *Boundary) Reset() { b.store.Reset() }

// AddTask creates a task and returns its id, or Failed. A nil category means
// the default category; nil deadline and start time mean empty strings.
func (b *Boundary) AddTask(name string, category *string, priority int, deadline, startTime *string, durationMins, status int) int {
	id, err := b.store.Create(fields(name, category, priority, deadline, startTime, durationMins, status))
	if err != nil {
		return Failed
	}
	return id
}

// AddTaskWithID inserts a task under id or merges into the existing one.
// On merge, name and category are ignored and the remaining fields follow
// UpdateTask's keep rules.
func (b *Boundary) AddTaskWithID(id int, name string, category *string, priority int, deadline, startTime *string, durationMins, status int) int {
	if id <= 0 {
		return Failed
	}
	// A stored id is always below the counter, so the merge path only patches.
	if err := b.store.Update(id, patch(priority, deadline, startTime, durationMins, status)); err == nil {
		return id
	}
	got, err := b.store.Upsert(id, fields(name, category, priority, deadline, startTime, durationMins, status))
	if err != nil {
		return Failed
	}
	return got
}

// UpdateTask applies the non-sentinel arguments to task id. It returns 1 when
// the task exists and 0 otherwise.
func (b *Boundary) UpdateTask(id, priority int, deadline, startTime *string, durationMins, status int) int {
	if err := b.store.Update(id, patch(priority, deadline, startTime, durationMins, status)); err != nil {
		return 0
	}
	return 1
}

// DeleteTask removes task id, returning 1 on success and 0 if it is absent.
func (b *Boundary) DeleteTask(id int) int {
	if err := b.store.Delete(id); err != nil {
		return 0
	}
	return 1
}

func fields(name string, category *string, priority int, deadline, startTime *string, durationMins, status int) task.Fields {
	return task.Fields{
		Name:         name,
		Category:     deref(category),
		Priority:     priority,
		Deadline:     deref(deadline),
		StartTime:    deref(startTime),
		DurationMins: durationMins,
		Status:       task.Status(status),
	}
}

func patch(priority int, deadline, startTime *string, durationMins, status int) task.Patch {
	var p task.Patch
	if priority != Keep {
		p.Priority = task.Set(priority)
	}
	if deadline != nil {
		p.Deadline = task.Set(*deadline)
	}
	if startTime != nil {
		p.StartTime = task.Set(*startTime)
	}
	if durationMins != Keep {
		p.DurationMins = task.Set(durationMins)
	}
	if status != Keep {
		p.Status = task.Set(task.Status(status))
	}
	return p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
