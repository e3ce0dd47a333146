package main

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-planner/planner"
	"weekly-planner/storage"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, backendFile, cfg.Backend)
	assert.Equal(t, ".planner", cfg.DataDir)
	assert.Equal(t, planner.DefaultKey, cfg.SnapshotKey)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.DeduperTTL)
	assert.False(t, cfg.RecoverCorrupt)
	assert.False(t, cfg.Debug)
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := loadConfig(envFrom(map[string]string{
		"PLANNER_BACKEND":         " Redis ",
		"REDIS_CONNECTION_STRING": "localhost:6379",
		"SNAPSHOT_CACHE_TTL":      "0s",
		"DEDUPER_TTL":             "1h",
		"PLANNER_RECOVER_CORRUPT": "true",
		"PLANNER_SNAPSHOT_KEY":    "week-1",
		"DEBUG":                   "1",
	}))
	require.NoError(t, err)
	assert.Equal(t, backendRedis, cfg.Backend)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL)
	assert.Equal(t, time.Hour, cfg.DeduperTTL)
	assert.True(t, cfg.RecoverCorrupt)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "week-1", cfg.SnapshotKey)
}

func TestLoadConfigErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown_backend": {"PLANNER_BACKEND": "s3"},
		"redis_no_conn":   {"PLANNER_BACKEND": "redis"},
		"table_no_conn":   {"PLANNER_BACKEND": "table"},
		"bad_cache_ttl":   {"SNAPSHOT_CACHE_TTL": "soon"},
		"negative_ttl":    {"SNAPSHOT_CACHE_TTL": "-1s"},
		"zero_dedup_ttl":  {"DEDUPER_TTL": "0s"},
		"bad_recover":     {"PLANNER_RECOVER_CORRUPT": "maybe"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadConfig(envFrom(env))
			assert.Error(t, err)
		})
	}
}

func TestParseRedisOptions(t *testing.T) {
	opts, err := parseRedisOptions("redis://:pw@localhost:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = parseRedisOptions("cache.example.net:6380,password=secret,ssl=True,abortConnect=False")
	require.NoError(t, err)
	assert.Equal(t, "cache.example.net:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.NotNil(t, opts.TLSConfig)

	_, err = parseRedisOptions("password=secret")
	assert.Error(t, err)
}

func TestOpenBackendRedis(t *testing.T) {
	m := miniredis.RunT(t)
	cfg, err := loadConfig(envFrom(map[string]string{
		"PLANNER_BACKEND":         "redis",
		"REDIS_CONNECTION_STRING": m.Addr(),
	}))
	require.NoError(t, err)

	ctx := context.Background()
	d, err := cfg.openBackend(ctx)
	require.NoError(t, err)
	defer d.Close()
	require.IsType(t, &storage.Redis{}, d.backend)
	require.NotNil(t, d.redis)

	require.NoError(t, d.backend.Save(ctx, cfg.SnapshotKey, []byte("[]")))
	assert.True(t, m.Exists("planner:"+cfg.SnapshotKey))
}

func TestOpenStoreFileBackend(t *testing.T) {
	dir := t.TempDir()
	cfg, err := loadConfig(envFrom(map[string]string{"PLANNER_DATA_DIR": dir}))
	require.NoError(t, err)

	store, d, err := cfg.openStore(context.Background(), nil)
	require.NoError(t, err)
	defer d.Close()
	assert.Nil(t, d.redis)
	assert.Len(t, store.Tasks(), 5)
}
