package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func TestTaskMarshalIncludesEmptyTagsAndFalseFlags(t *testing.T) {
	task := NewTask("t1", TaskData{Title: "Title", Day: Monday, Period: Morning})

	payload, err := sonic.Marshal(task)
	if err != nil {
		t.Fatalf("marshal task: %v", err)
	}

	for _, want := range []string{`"tags":[]`, `"completed":false`, `"isBlock":false`, `"period":"morning"`} {
		if !strings.Contains(string(payload), want) {
			t.Fatalf("expected %s in %s", want, payload)
		}
	}
}

func TestParseSlot(t *testing.T) {
	tests := []struct {
		raw  string
		want Slot
		ok   bool
	}{
		{raw: "monday-morning", want: Slot{Day: Monday, Period: Morning}, ok: true},
		{raw: " Sunday-Evening ", want: Slot{Day: Sunday, Period: Evening}, ok: true},
		{raw: "monday", ok: false},
		{raw: "funday-morning", ok: false},
		{raw: "monday-night", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseSlot(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ParseSlot(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("ParseSlot(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
			if ok && got.String() != strings.ToLower(strings.TrimSpace(tt.raw)) {
				t.Fatalf("round trip mismatch: %s", got)
			}
		})
	}
}

func TestDayOf(t *testing.T) {
	// 2024-01-01 was a Monday.
	base := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	for i, want := range AllDays {
		if got := DayOf(base.AddDate(0, 0, i)); got != want {
			t.Fatalf("DayOf(+%d) = %s, want %s", i, got, want)
		}
	}
}

func TestThemeForFallsBackToDefault(t *testing.T) {
	if got := ThemeFor("violet"); got.Name != "violet" {
		t.Fatalf("unexpected theme: %+v", got)
	}
	if got := ThemeFor("chartreuse"); got.Name != DefaultColor {
		t.Fatalf("expected default theme, got %+v", got)
	}
}

func TestCloneDoesNotShareTags(t *testing.T) {
	orig := Task{ID: "1", Tags: []string{"a"}}
	c := orig.Clone()
	c.Tags[0] = "b"
	if orig.Tags[0] != "a" {
		t.Fatalf("clone shares tag storage")
	}
}

func TestSeedTasks(t *testing.T) {
	seed := SeedTasks()
	if len(seed) != 5 {
		t.Fatalf("expected 5 seed tasks, got %d", len(seed))
	}
	seen := map[string]bool{}
	for _, task := range seed {
		if seen[task.ID] {
			t.Fatalf("duplicate seed id %s", task.ID)
		}
		seen[task.ID] = true
		if !task.Slot().Valid() {
			t.Fatalf("seed task %s has invalid slot %s", task.ID, task.Slot())
		}
		if _, ok := LookupTheme(task.Color); !ok {
			t.Fatalf("seed task %s has unknown color %q", task.ID, task.Color)
		}
		if task.Completed != (task.ID == "4") {
			t.Fatalf("unexpected completion for seed task %s", task.ID)
		}
	}
}
