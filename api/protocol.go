package api

import (
	"weekly-planner/domain"
	"weekly-planner/planner"
)

const (
	postTaskMaxSize  = 16 * 1024  // 16 KiB
	slotBodyMaxSize  = 512 * 1024 // 512 KiB
	deleteAllConfirm = "delete-all"
)

// GET /api/week response body
type weekResponse struct {
	Days     []domain.Day     `json:"days"`
	Periods  []domain.Period  `json:"periods"`
	Today    domain.Day       `json:"today"`
	HasTasks bool             `json:"hasTasks"`
	Slots    planner.Grouping `json:"slots"`
}

// PUT /api/tasks/:id request body. A full task as returned by GET is
// accepted; its id, when present, must match the path.
type updateTaskRequest struct {
	ID string `json:"id,omitempty"`
	domain.TaskData
	Completed *bool `json:"completed,omitempty"`
}

// POST /api/slots/move request body. Either both task lists or both indices
// must be supplied.
type moveRequest struct {
	From      string         `json:"from"`
	To        string         `json:"to"`
	FromTasks *[]domain.Task `json:"fromTasks,omitempty"`
	ToTasks   *[]domain.Task `json:"toTasks,omitempty"`
	FromIndex *int           `json:"fromIndex,omitempty"`
	ToIndex   *int           `json:"toIndex,omitempty"`
}

// POST /api/import response body
type importResponse struct {
	Token string `json:"token,omitempty"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
