package storage

import (
	"context"
	"errors"
	"testing"
)

func TestRedisRoundTrip(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	st := NewRedis(client, "planner:")

	if _, err := st.Load(ctx, "plannerTasks"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.Save(ctx, "plannerTasks", []byte(`[]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := mr.Get("planner:plannerTasks")
	if err != nil {
		t.Fatalf("miniredis get: %v", err)
	}
	if got != "[]" {
		t.Fatalf("unexpected stored value %q", got)
	}
	if ttl := mr.TTL("planner:plannerTasks"); ttl != 0 {
		t.Fatalf("snapshot should not expire, ttl=%v", ttl)
	}
	data, err := st.Load(ctx, "plannerTasks")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("unexpected data %q", data)
	}
}

func TestRedisLoadError(t *testing.T) {
	mr, client := newTestRedis(t)
	st := NewRedis(client, "")
	mr.Close()

	_, err := st.Load(context.Background(), "k")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected connection error, got %v", err)
	}
}
