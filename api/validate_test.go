package api

import (
	"reflect"
	"strings"
	"testing"

	"weekly-planner/domain"
)

func TestNormalizeTaskData(t *testing.T) {
	got, err := NormalizeTaskData(domain.TaskData{
		Title:   "  Plan  ",
		Content: "notes",
		Tags:    []string{" a ", "b", "a", "  "},
		Day:     domain.Sunday,
		Period:  domain.Evening,
		Color:   "teal",
		IsBlock: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.TaskData{
		Title:   "Plan",
		Content: "notes",
		Tags:    []string{"a", "b"},
		Day:     domain.Sunday,
		Period:  domain.Evening,
		Color:   "teal",
		IsBlock: true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeTaskData = %#v, want %#v", got, want)
	}
}

func TestNormalizeTaskDataNilTags(t *testing.T) {
	got, err := NormalizeTaskData(domain.TaskData{Title: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Fatalf("expected empty non-nil tags, got %#v", got.Tags)
	}
}

func TestNormalizeTaskDataErrorsNameField(t *testing.T) {
	_, err := NormalizeTaskData(domain.TaskData{Title: "x", Color: "plaid"})
	if err == nil || !strings.HasPrefix(err.Error(), "color:") {
		t.Fatalf("expected color error, got %v", err)
	}
}

func TestCheckSlotMembers(t *testing.T) {
	slot := domain.Slot{Day: domain.Monday, Period: domain.Morning}
	ok := []domain.Task{{ID: "a", Day: domain.Monday, Period: domain.Morning}}
	if err := checkSlotMembers(slot, ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := append(ok, domain.Task{ID: "b", Day: domain.Monday, Period: domain.Evening})
	if err := checkSlotMembers(slot, bad); err == nil {
		t.Fatalf("expected error for task outside slot")
	}
}
