package task

import (
	"fmt"
	"math"
)

const defaultInitialCapacity = 16

// Store holds task records in a contiguous growable slice and owns every
// record in it. Records handed out by Get and List are copies.
//
// Store is not safe for concurrent use. Confine it to one goroutine or guard
// it with an external mutex. One Store should exist per logical task list.
type Store struct {
	tasks       []Task
	nextID      int
	initialCap  int
	maxRecords  int
	initialized bool
}

// MaxID is the largest identifier the store accepts. The counter must stay
// above every id, so math.MaxInt itself is never assigned.
const MaxID = math.MaxInt - 1

// Option configures a Store.
type Option func(*Store)

// WithInitialCapacity sets the capacity allocated on the first insert.
func WithInitialCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.initialCap = n
		}
	}
}

// WithMaxRecords bounds how many records the store may hold. Growth past the
// bound fails with ErrOutOfMemory. Zero means unbounded.
func WithMaxRecords(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxRecords = n
		}
	}
}

// New returns an initialized, empty store.
func New(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	s.Init()
	return s
}

// Init puts an uninitialized store into its empty starting state. It never
// discards existing records.
func (s *Store) Init() {
	if s.initialized {
		return
	}
	s.initialized = true
	s.tasks = nil
	s.nextID = 1
	if s.initialCap <= 0 {
		s.initialCap = defaultInitialCapacity
	}
}

// Reset destroys every record and restarts identifiers at 1.
func (s *Store) Reset() {
	clear(s.tasks)
	s.tasks = nil
	s.initialized = false
	s.Init()
}

// Create appends a new record with the next identifier and returns it.
func (s *Store) Create(f Fields) (int, error) {
	s.Init()
	return s.insert(0, f)
}

// Upsert inserts a record under a caller-chosen id, or, when id is already
// stored, applies f's priority, deadline, start time, duration and status to
// it as a partial update. Name and category of an existing record are never
// overwritten, so Upsert cannot rename a task. Either way the identifier
// counter ends past id.
func (s *Store) Upsert(id int, f Fields) (int, error) {
	s.Init()
	if id <= 0 {
		return -1, fmt.Errorf("upsert task %d: %w: id must be positive", id, ErrInvalidInput)
	}
	if id > MaxID {
		return -1, fmt.Errorf("upsert task %d: %w: id must not exceed %d", id, ErrInvalidInput, MaxID)
	}
	if idx := s.indexOf(id); idx >= 0 {
		f.patch().applyTo(&s.tasks[idx])
		s.advance(id)
		return id, nil
	}
	return s.insert(id, f)
}

// Update applies p to the record with the given id. It succeeds for a stored
// id even when no value changes.
func (s *Store) Update(id int, p Patch) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("update task %d: %w", id, ErrNotFound)
	}
	p.applyTo(&s.tasks[idx])
	return nil
}

// Delete removes the record with the given id. The last record is moved into
// the freed slot, so deletion does not preserve insertion order.
func (s *Store) Delete(id int) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}
	last := len(s.tasks) - 1
	s.tasks[idx] = s.tasks[last]
	s.tasks[last] = Task{}
	s.tasks = s.tasks[:last]
	return nil
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id int) (Task, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return s.tasks[idx], nil
}

// List returns copies of the records matching filter in storage order, which
// is insertion order only until the first Delete.
func (s *Store) List(filter Filter) []Task {
	out := make([]Task, 0, len(s.tasks))
	for i := range s.tasks {
		if filter.match(&s.tasks[i]) {
			out = append(out, s.tasks[i])
		}
	}
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int { return len(s.tasks) }

// Cap returns the current capacity of the backing storage.
func (s *Store) Cap() int { return cap(s.tasks) }

// NextID returns the identifier the next Create will assign.
func (s *Store) NextID() int {
	s.Init()
	return s.nextID
}

// insert validates f, makes room, then appends. A non-zero id is forced.
// Nothing is modified unless every step succeeds.
func (s *Store) insert(id int, f Fields) (int, error) {
	if f.Name == "" {
		return -1, fmt.Errorf("create task: %w: name is required", ErrInvalidInput)
	}
	if id == 0 {
		if s.nextID > MaxID {
			return -1, fmt.Errorf("create task: %w: identifiers exhausted", ErrOutOfMemory)
		}
		id = s.nextID
	}
	if err := s.ensureCap(len(s.tasks) + 1); err != nil {
		return -1, fmt.Errorf("create task: %w", err)
	}
	s.tasks = append(s.tasks, f.build(id))
	s.advance(id)
	return id, nil
}

// ensureCap grows the backing slice to hold need records, doubling from the
// initial capacity.
func (s *Store) ensureCap(need int) error {
	if cap(s.tasks) >= need {
		return nil
	}
	if s.maxRecords > 0 && need > s.maxRecords {
		return fmt.Errorf("%w: limit %d records", ErrOutOfMemory, s.maxRecords)
	}
	newCap := cap(s.tasks) * 2
	if newCap == 0 {
		newCap = s.initialCap
	}
	for newCap < need {
		newCap *= 2
	}
	if s.maxRecords > 0 && newCap > s.maxRecords {
		newCap = s.maxRecords
	}
	grown := make([]Task, len(s.tasks), newCap)
	copy(grown, s.tasks)
	s.tasks = grown
	return nil
}

func (s *Store) advance(id int) {
	if id >= s.nextID {
		s.nextID = id + 1
	}
}

func (s *Store) indexOf(id int) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
