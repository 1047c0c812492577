// Package task defines the task record model and the in-process store that
// owns every record.
package task

import "fmt"

// DefaultCategory is stored when a task is created without a category.
const DefaultCategory = "general"

// Status represents the lifecycle state of a task.
type Status int

const (
	StatusActive Status = 0
	StatusDone   Status = 1
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// ParseStatus converts "active" or "done" to a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "active":
		return StatusActive, nil
	case "done":
		return StatusDone, nil
	}
	return 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// Task is a single stored record.
type Task struct {
	ID           int    `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Category     string `json:"category" yaml:"category"`
	Priority     int    `json:"priority" yaml:"priority"`
	Deadline     string `json:"deadline" yaml:"deadline"`     // YYYY-MM-DD
	StartTime    string `json:"start_time" yaml:"start_time"` // HH:MM
	DurationMins int    `json:"duration_mins" yaml:"duration_mins"`
	Status       Status `json:"status" yaml:"status"`
}

// Fields is the input for Create and Upsert.
type Fields struct {
	Name         string
	Category     string // empty means DefaultCategory
	Priority     int
	Deadline     string
	StartTime    string
	DurationMins int
	Status       Status
}

func (f Fields) build(id int) Task {
	category := f.Category
	if category == "" {
		category = DefaultCategory
	}
	return Task{
		ID:           id,
		Name:         f.Name,
		Category:     category,
		Priority:     f.Priority,
		Deadline:     f.Deadline,
		StartTime:    f.StartTime,
		DurationMins: f.DurationMins,
		Status:       f.Status,
	}
}

// patch returns the partial update Upsert applies to an existing record.
func (f Fields) patch() Patch {
	return Patch{
		Priority:     Set(f.Priority),
		Deadline:     Set(f.Deadline),
		StartTime:    Set(f.StartTime),
		DurationMins: Set(f.DurationMins),
		Status:       Set(f.Status),
	}
}

// Opt is an optional field value. The zero Opt keeps the current value.
type Opt[T any] struct {
	val T
	ok  bool
}

// Set returns an Opt that overwrites the field with v.
func Set[T any](v T) Opt[T] { return Opt[T]{val: v, ok: true} }

// Keep returns an Opt that leaves the field unchanged.
func Keep[T any]() Opt[T] { return Opt[T]{} }

// Get returns the value and whether it was supplied.
func (o Opt[T]) Get() (T, bool) { return o.val, o.ok }

func (o Opt[T]) apply(dst *T) {
	if o.ok {
		*dst = o.val
	}
}

// Patch describes a partial update. Name and category are not patchable.
type Patch struct {
	Priority     Opt[int]
	Deadline     Opt[string]
	StartTime    Opt[string]
	DurationMins Opt[int]
	Status       Opt[Status]
}

func (p Patch) applyTo(t *Task) {
	p.Priority.apply(&t.Priority)
	p.Deadline.apply(&t.Deadline)
	p.StartTime.apply(&t.StartTime)
	p.DurationMins.apply(&t.DurationMins)
	p.Status.apply(&t.Status)
}

// Filter controls which tasks are returned by List. Every set field must
// match; the scan is linear.
type Filter struct {
	Status   *Status `json:"status,omitempty"`
	Category string  `json:"category,omitempty"`
	Deadline string  `json:"deadline,omitempty"`
}

func (f Filter) match(t *Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Deadline != "" && t.Deadline != f.Deadline {
		return false
	}
	return true
}
