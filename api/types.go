package api

import (
	"context"

	"weekly-planner/domain"
	"weekly-planner/planner"
)

// Store is the task store surface the handlers read from and write to.
type Store interface {
	Tasks() []domain.Task
	Task(id string) (domain.Task, bool)
	HasTasks() bool
	GroupedBySlot() planner.Grouping
	Subscribe() (<-chan struct{}, func())

	Add(ctx context.Context, data domain.TaskData) (domain.Task, error)
	Update(ctx context.Context, task domain.Task) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	ToggleCompletion(ctx context.Context, id string) error
	UpdateSlotTasks(ctx context.Context, slot domain.Slot, tasks []domain.Task) error
	UpdateTwoSlotsTasks(ctx context.Context, from domain.Slot, fromTasks []domain.Task, to domain.Slot, toTasks []domain.Task) error
	ImportTasks(ctx context.Context, tasks []domain.Task) error
}

// Authenticator is implemented by types able to validate Authorization headers.
type Authenticator interface {
	Verify(header string) error
}

// Deduper prevents processing of duplicate create requests.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, key string) (bool, error)
	// Remove deletes a previously added key, used when the store write fails.
	Remove(ctx context.Context, key string) error
}
