package api

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"weekly-planner/domain"
)

const (
	maxTitleLen   = 100
	maxContentLen = 500
)

// validationError is reported to the client as 400 with its message.
type validationError struct {
	field string
	msg   string
}

func (e validationError) Error() string { return e.field + ": " + e.msg }

// NormalizeTaskData applies the task form rules: trimmed required title,
// bounded content, de-duplicated tags, week coordinates and a palette color.
// Empty day, period and color fall back to the form defaults.
func NormalizeTaskData(d domain.TaskData) (domain.TaskData, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return d, validationError{field: "title", msg: "required"}
	}
	if utf8.RuneCountInString(d.Title) > maxTitleLen {
		return d, validationError{field: "title", msg: fmt.Sprintf("must be at most %d characters", maxTitleLen)}
	}
	if utf8.RuneCountInString(d.Content) > maxContentLen {
		return d, validationError{field: "content", msg: fmt.Sprintf("must be at most %d characters", maxContentLen)}
	}

	tags := make([]string, 0, len(d.Tags))
	seen := make(map[string]struct{}, len(d.Tags))
	for _, tag := range d.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	d.Tags = tags

	if d.Day == "" {
		d.Day = domain.AllDays[0]
	}
	if !d.Day.Valid() {
		return d, validationError{field: "day", msg: fmt.Sprintf("unknown day %q", d.Day)}
	}
	if d.Period == "" {
		d.Period = domain.AllPeriods[0]
	}
	if !d.Period.Valid() {
		return d, validationError{field: "period", msg: fmt.Sprintf("unknown period %q", d.Period)}
	}
	if d.Color == "" {
		d.Color = domain.DefaultColor
	}
	if _, ok := domain.LookupTheme(d.Color); !ok {
		return d, validationError{field: "color", msg: fmt.Sprintf("unknown color %q", d.Color)}
	}
	return d, nil
}

// checkSlotMembers verifies every task already carries the slot it is sent for.
func checkSlotMembers(slot domain.Slot, tasks []domain.Task) error {
	for _, t := range tasks {
		if t.Slot() != slot {
			return validationError{field: "tasks", msg: fmt.Sprintf("task %s belongs to %s, not %s", t.ID, t.Slot(), slot)}
		}
	}
	return nil
}
