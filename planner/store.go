// Package planner holds the weekly task store: the authoritative task list,
// its day x period projection, and every mutation the UI may apply.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"weekly-planner/domain"
	"weekly-planner/storage"
)

// DefaultKey is the storage key the snapshot is written under.
const DefaultKey = "plannerTasks"

// Options configures Open.
type Options struct {
	// Key overrides DefaultKey.
	Key string
	// Logger defaults to the logrus standard logger.
	Logger *log.Logger
	// NewID overrides random UUID generation.
	NewID IDFunc
	// RecoverCorrupt seeds the example week instead of failing when the
	// stored snapshot cannot be decoded.
	RecoverCorrupt bool
}

// Store owns the task list. Every mutation persists the full list before it
// becomes visible; a failed write leaves the previous state in place.
type Store struct {
	mu      sync.RWMutex
	tasks   []domain.Task
	backend storage.Backend
	key     string
	newID   IDFunc
	log     *log.Logger
	watch   *broker
}

// Open loads the snapshot from backend, or seeds the example week when none exists.
func Open(ctx context.Context, backend storage.Backend, opts Options) (*Store, error) {
	if backend == nil {
		return nil, errors.New("planner: backend is nil")
	}
	s := &Store{
		backend: backend,
		key:     opts.Key,
		newID:   opts.NewID,
		log:     opts.Logger,
		watch:   newBroker(),
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.log == nil {
		s.log = log.StandardLogger()
	}

	tasks, err := s.load(ctx)
	switch {
	case err == nil:
		s.log.WithFields(log.Fields{"key": s.key, "tasks": len(tasks)}).Debug("task snapshot loaded")
	case errors.Is(err, storage.ErrNotFound):
		tasks = domain.SeedTasks()
		s.log.WithField("key", s.key).Info("no task snapshot found, using example week")
	case errors.Is(err, ErrCorruptSnapshot) && opts.RecoverCorrupt:
		tasks = domain.SeedTasks()
		s.log.WithError(err).WithField("key", s.key).Warn("task snapshot unreadable, using example week")
	default:
		return nil, err
	}
	s.tasks = tasks
	return s, nil
}

func (s *Store) load(ctx context.Context) ([]domain.Task, error) {
	data, err := s.backend.Load(ctx, s.key)
	if err != nil {
		return nil, err
	}
	var tasks []domain.Task
	if err := sonic.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// commit persists next and makes it the current list. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, op string, next []domain.Task) error {
	data, err := sonic.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := s.backend.Save(ctx, s.key, data); err != nil {
		s.log.WithError(err).WithFields(log.Fields{"op": op, "key": s.key}).Error("task snapshot write failed")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.tasks = next
	s.log.WithFields(log.Fields{"op": op, "tasks": len(next)}).Debug("tasks committed")
	s.watch.notify()
	return nil
}

// Tasks returns a copy of the current list.
func (s *Store) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.tasks)
}

// Task returns the task with the given id.
func (s *Store) Task(id string) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return domain.Task{}, false
}

// HasTasks reports whether the list is non-empty.
func (s *Store) HasTasks() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks) > 0
}

// GroupedBySlot projects the current list onto the week grid.
func (s *Store) GroupedBySlot() Grouping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return GroupBySlot(s.tasks)
}

// Subscribe returns a channel signalled after every committed mutation and a
// func that stops the subscription and closes the channel.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := s.watch.subscribe()
	return ch, func() { s.watch.unsubscribe(ch) }
}

// Add appends a new task built from data with a fresh id and completed=false.
func (s *Store) Add(ctx context.Context, data domain.TaskData) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := domain.NewTask(uniqueID(s.newID, s.tasks), data)
	next := make([]domain.Task, 0, len(s.tasks)+1)
	next = append(next, s.tasks...)
	next = append(next, task)
	if err := s.commit(ctx, "add", next); err != nil {
		return domain.Task{}, err
	}
	return task.Clone(), nil
}

// Update replaces the task with the same id. Unknown ids are ignored.
func (s *Store) Update(ctx context.Context, task domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Task, len(s.tasks))
	for i, t := range s.tasks {
		if t.ID == task.ID {
			t = task.Clone()
		}
		next[i] = t
	}
	return s.commit(ctx, "update", next)
}

// Delete removes the task with the given id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	return s.commit(ctx, "delete", next)
}

// DeleteAll empties the list.
func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, "delete_all", []domain.Task{})
}

// ToggleCompletion flips the completed flag of the task with the given id.
// Unknown ids are ignored.
func (s *Store) ToggleCompletion(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Task, len(s.tasks))
	for i, t := range s.tasks {
		if t.ID == id {
			t.Completed = !t.Completed
		}
		next[i] = t
	}
	return s.commit(ctx, "toggle_completion", next)
}

// UpdateSlotTasks drops every task in slot and appends tasks in the given order.
func (s *Store) UpdateSlotTasks(ctx context.Context, slot domain.Slot, tasks []domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.Slot() != slot {
			next = append(next, t)
		}
	}
	next = append(next, cloneTasks(tasks)...)
	return s.commit(ctx, "update_slot", next)
}

// UpdateTwoSlotsTasks drops every task in both slots and appends fromTasks
// followed by toTasks. Moved tasks must already carry their destination slot.
func (s *Store) UpdateTwoSlotsTasks(ctx context.Context, from domain.Slot, fromTasks []domain.Task, to domain.Slot, toTasks []domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Task, 0, len(s.tasks)+1)
	for _, t := range s.tasks {
		if sl := t.Slot(); sl != from && sl != to {
			next = append(next, t)
		}
	}
	next = append(next, cloneTasks(fromTasks)...)
	next = append(next, cloneTasks(toTasks)...)
	return s.commit(ctx, "update_two_slots", next)
}

// ImportTasks replaces the whole list with tasks as given.
func (s *Store) ImportTasks(ctx context.Context, tasks []domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneTasks(tasks)
	return s.commit(ctx, "import", next)
}
