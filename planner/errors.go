package planner

import "errors"

var (
	// ErrCorruptSnapshot is returned by Open when the persisted snapshot cannot be decoded.
	ErrCorruptSnapshot = errors.New("corrupt task snapshot")
	// ErrPersist wraps failures to write the snapshot. The mutation is not applied.
	ErrPersist = errors.New("persist task snapshot")
)
