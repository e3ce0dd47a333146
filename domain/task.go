package domain

import (
	"strings"
	"time"
)

// Day identifies a weekday column of the planner.
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// AllDays lists the days in display order.
var AllDays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Period identifies a part of the day.
type Period string

const (
	Morning   Period = "morning"
	Afternoon Period = "afternoon"
	Evening   Period = "evening"
)

// AllPeriods lists the periods in display order.
var AllPeriods = []Period{Morning, Afternoon, Evening}

func (d Day) Valid() bool {
	for _, v := range AllDays {
		if v == d {
			return true
		}
	}
	return false
}

func (p Period) Valid() bool {
	for _, v := range AllPeriods {
		if v == p {
			return true
		}
	}
	return false
}

// DayOf returns the planner day for the weekday of t.
func DayOf(t time.Time) Day {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// Slot is a day x period cell of the week grid.
type Slot struct {
	Day    Day    `json:"day"`
	Period Period `json:"period"`
}

func (s Slot) Valid() bool { return s.Day.Valid() && s.Period.Valid() }

// String renders the slot as "day-period".
func (s Slot) String() string { return string(s.Day) + "-" + string(s.Period) }

// ParseSlot parses the "day-period" form produced by Slot.String.
func ParseSlot(raw string) (Slot, bool) {
	day, period, ok := strings.Cut(strings.ToLower(strings.TrimSpace(raw)), "-")
	if !ok {
		return Slot{}, false
	}
	s := Slot{Day: Day(day), Period: Period(period)}
	return s, s.Valid()
}

// Task is a single planner entry pinned to one slot.
type Task struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Day       Day      `json:"day"`
	Period    Period   `json:"period"`
	Completed bool     `json:"completed"`
	Color     string   `json:"color"`
	IsBlock   bool     `json:"isBlock"`
}

// Slot returns the slot the task belongs to.
func (t Task) Slot() Slot { return Slot{Day: t.Day, Period: t.Period} }

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	if t.Tags != nil {
		t.Tags = append(make([]string, 0, len(t.Tags)), t.Tags...)
	}
	return t
}

// TaskData carries the fields of a new task; id and completion are assigned by the store.
type TaskData struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Day     Day      `json:"day"`
	Period  Period   `json:"period"`
	Color   string   `json:"color"`
	IsBlock bool     `json:"isBlock"`
}

// NewTask builds a task from data with the given id and completed=false.
func NewTask(id string, data TaskData) Task {
	tags := []string{}
	if data.Tags != nil {
		tags = append(tags, data.Tags...)
	}
	return Task{
		ID:      id,
		Title:   data.Title,
		Content: data.Content,
		Tags:    tags,
		Day:     data.Day,
		Period:  data.Period,
		Color:   data.Color,
		IsBlock: data.IsBlock,
	}
}

// Data returns the editable fields of t.
func (t Task) Data() TaskData {
	return TaskData{
		Title:   t.Title,
		Content: t.Content,
		Tags:    append([]string{}, t.Tags...),
		Day:     t.Day,
		Period:  t.Period,
		Color:   t.Color,
		IsBlock: t.IsBlock,
	}
}
