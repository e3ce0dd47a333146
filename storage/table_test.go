package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

type fakeTable struct {
	entities  map[string][]byte
	createErr error
	upsertErr error
	mode      aztables.UpdateMode
}

func (f *fakeTable) GetEntity(_ context.Context, pk, rk string, _ *aztables.GetEntityOptions) (aztables.GetEntityResponse, error) {
	v, ok := f.entities[pk+"/"+rk]
	if !ok {
		return aztables.GetEntityResponse{}, &azcore.ResponseError{StatusCode: http.StatusNotFound, ErrorCode: "ResourceNotFound"}
	}
	return aztables.GetEntityResponse{Value: v}, nil
}

func (f *fakeTable) UpsertEntity(_ context.Context, entity []byte, opts *aztables.UpsertEntityOptions) (aztables.UpsertEntityResponse, error) {
	if f.upsertErr != nil {
		return aztables.UpsertEntityResponse{}, f.upsertErr
	}
	var keys struct {
		PartitionKey string
		RowKey       string
	}
	if err := json.Unmarshal(entity, &keys); err != nil {
		return aztables.UpsertEntityResponse{}, err
	}
	if opts != nil {
		f.mode = opts.UpdateMode
	}
	f.entities[keys.PartitionKey+"/"+keys.RowKey] = entity
	return aztables.UpsertEntityResponse{}, nil
}

func (f *fakeTable) CreateTable(context.Context, *aztables.CreateTableOptions) (aztables.CreateTableResponse, error) {
	return aztables.CreateTableResponse{}, f.createErr
}

func TestTableRoundTrip(t *testing.T) {
	fake := &fakeTable{entities: map[string][]byte{}}
	st := &Table{client: fake}
	ctx := context.Background()

	if _, err := st.Load(ctx, "plannerTasks"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	big := "[" + strings.Repeat(`"ação",`, 20000) + `"x"]`
	if err := st.Save(ctx, "plannerTasks", []byte(big)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if fake.mode != aztables.UpdateModeReplace {
		t.Fatalf("expected replace mode, got %q", fake.mode)
	}
	data, err := st.Load(ctx, "plannerTasks")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != big {
		t.Fatalf("snapshot corrupted across chunks")
	}
}

func TestDecodeSnapshotEntity(t *testing.T) {
	data := []byte(`{"PartitionKey":"planner","RowKey":"k","Parts":2,"Part0":"[{\"id\":","Part1":"\"1\"}]"}`)
	got, err := decodeSnapshotEntity(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Fatalf("unexpected snapshot %s", got)
	}

	if _, err := decodeSnapshotEntity([]byte(`{"Parts":2,"Part0":"a"}`)); err == nil {
		t.Fatalf("expected error for missing part")
	}
	if _, err := decodeSnapshotEntity([]byte(`{"PartitionKey":"planner"}`)); err == nil {
		t.Fatalf("expected error for missing part count")
	}
}

func TestSplitChunksKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("é", 10)
	parts := splitChunks(s, 3)
	if strings.Join(parts, "") != s {
		t.Fatalf("chunks do not reassemble")
	}
	for _, p := range parts {
		if len(p) > 3 || !utf8.ValidString(p) {
			t.Fatalf("bad chunk %q", p)
		}
	}
	if got := splitChunks("", 3); len(got) != 1 || got[0] != "" {
		t.Fatalf("empty input should yield one empty chunk, got %q", got)
	}
}

func TestEnsureTable(t *testing.T) {
	st := &Table{client: &fakeTable{createErr: &azcore.ResponseError{StatusCode: http.StatusConflict, ErrorCode: string(aztables.TableAlreadyExists)}}}
	if err := st.EnsureTable(context.Background()); err != nil {
		t.Fatalf("existing table should be tolerated: %v", err)
	}

	boom := errors.New("forbidden")
	st = &Table{client: &fakeTable{createErr: boom}}
	if err := st.EnsureTable(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected create error, got %v", err)
	}
}
