package planner

import (
	"github.com/google/uuid"

	"weekly-planner/domain"
)

// IDFunc returns a candidate identifier for a new task.
type IDFunc func() string

const maxIDAttempts = 16

// uniqueID draws from gen until the value is non-empty and unused by tasks.
// A generator that keeps colliding is abandoned in favor of random UUIDs.
func uniqueID(gen IDFunc, tasks []domain.Task) string {
	used := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		used[t.ID] = struct{}{}
	}
	for attempt := 0; ; attempt++ {
		if attempt >= maxIDAttempts {
			gen = uuid.NewString
		}
		id := gen()
		if id == "" {
			continue
		}
		if _, taken := used[id]; !taken {
			return id
		}
	}
}
