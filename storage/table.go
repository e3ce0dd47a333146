package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

const (
	snapshotPartition = "planner"
	// Table string properties are capped at 64 KiB; snapshots are split across
	// Part0..PartN properties below that size.
	snapshotChunkBytes = 30000
)

type tableClient interface {
	GetEntity(ctx context.Context, partitionKey, rowKey string, options *aztables.GetEntityOptions) (aztables.GetEntityResponse, error)
	UpsertEntity(ctx context.Context, entity []byte, options *aztables.UpsertEntityOptions) (aztables.UpsertEntityResponse, error)
	CreateTable(ctx context.Context, options *aztables.CreateTableOptions) (aztables.CreateTableResponse, error)
}

// Table stores snapshots as entities of an Azure Storage table.
type Table struct {
	client tableClient
}

// NewTable creates a Table backend from the given connection string.
func NewTable(connStr, tableName string) (*Table, error) {
	if connStr == "" || tableName == "" {
		return nil, fmt.Errorf("table storage config required")
	}
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &Table{client: svc.NewClient(tableName)}, nil
}

// EnsureTable creates the backing table, tolerating an existing one.
func (t *Table) EnsureTable(ctx context.Context) error {
	_, err := t.client.CreateTable(ctx, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists) {
			return nil
		}
		return err
	}
	return nil
}

func (t *Table) Load(ctx context.Context, key string) ([]byte, error) {
	resp, err := t.client.GetEntity(ctx, snapshotPartition, key, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeSnapshotEntity(resp.Value)
}

func (t *Table) Save(ctx context.Context, key string, data []byte) error {
	payload, err := encodeSnapshotEntity(key, data)
	if err != nil {
		return err
	}
	_, err = t.client.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace})
	return err
}

func encodeSnapshotEntity(key string, data []byte) ([]byte, error) {
	parts := splitChunks(string(data), snapshotChunkBytes)
	ent := map[string]any{
		"PartitionKey": snapshotPartition,
		"RowKey":       key,
		"Parts":        len(parts),
		"SavedAt":      time.Now().UTC().Format(time.RFC3339Nano),
	}
	for i, p := range parts {
		ent[fmt.Sprintf("Part%d", i)] = p
	}
	return json.Marshal(ent)
}

func decodeSnapshotEntity(raw []byte) ([]byte, error) {
	var ent map[string]any
	if err := json.Unmarshal(raw, &ent); err != nil {
		return nil, err
	}
	n, ok := ent["Parts"].(float64)
	if !ok || n < 0 {
		return nil, fmt.Errorf("snapshot entity missing Parts")
	}
	var sb strings.Builder
	for i := 0; i < int(n); i++ {
		p, ok := ent[fmt.Sprintf("Part%d", i)].(string)
		if !ok {
			return nil, fmt.Errorf("snapshot entity missing Part%d", i)
		}
		sb.WriteString(p)
	}
	return []byte(sb.String()), nil
}

// splitChunks cuts s into pieces of at most size bytes without splitting runes.
func splitChunks(s string, size int) []string {
	parts := make([]string, 0, len(s)/size+1)
	for len(s) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			cut = size
		}
		parts = append(parts, s[:cut])
		s = s[cut:]
	}
	return append(parts, s)
}
