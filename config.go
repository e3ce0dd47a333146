package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"weekly-planner/planner"
	"weekly-planner/storage"
)

const (
	backendFile   = "file"
	backendMemory = "memory"
	backendRedis  = "redis"
	backendTable  = "table"
)

type config struct {
	Backend        string
	DataDir        string
	SnapshotKey    string
	RedisConn      string
	StorageConn    string
	SnapshotTable  string
	CacheTTL       time.Duration
	DeduperTTL     time.Duration
	AuthSecret     string
	Port           string
	RecoverCorrupt bool
	Debug          bool
}

func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{
		Backend:       strings.ToLower(strings.TrimSpace(getenv("PLANNER_BACKEND"))),
		DataDir:       getenv("PLANNER_DATA_DIR"),
		SnapshotKey:   getenv("PLANNER_SNAPSHOT_KEY"),
		RedisConn:     getenv("REDIS_CONNECTION_STRING"),
		StorageConn:   getenv("STORAGE_CONNECTION_STRING"),
		SnapshotTable: getenv("SNAPSHOT_TABLE"),
		CacheTTL:      5 * time.Minute,
		DeduperTTL:    24 * time.Hour,
		AuthSecret:    getenv("PLANNER_AUTH_SECRET"),
		Port:          getenv("PLANNER_PORT"),
	}
	if cfg.Backend == "" {
		cfg.Backend = backendFile
	}
	if cfg.DataDir == "" {
		cfg.DataDir = ".planner"
	}
	if cfg.SnapshotKey == "" {
		cfg.SnapshotKey = planner.DefaultKey
	}
	if cfg.SnapshotTable == "" {
		cfg.SnapshotTable = "PlannerSnapshots"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	var err error
	if v := getenv("SNAPSHOT_CACHE_TTL"); v != "" {
		if cfg.CacheTTL, err = time.ParseDuration(v); err != nil || cfg.CacheTTL < 0 {
			return cfg, fmt.Errorf("invalid SNAPSHOT_CACHE_TTL %q", v)
		}
	}
	if v := getenv("DEDUPER_TTL"); v != "" {
		if cfg.DeduperTTL, err = time.ParseDuration(v); err != nil || cfg.DeduperTTL <= 0 {
			return cfg, fmt.Errorf("invalid DEDUPER_TTL %q", v)
		}
	}
	if v := getenv("PLANNER_RECOVER_CORRUPT"); v != "" {
		if cfg.RecoverCorrupt, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("invalid PLANNER_RECOVER_CORRUPT %q", v)
		}
	}
	if v := getenv("DEBUG"); v != "" {
		cfg.Debug, _ = strconv.ParseBool(v)
	}

	switch cfg.Backend {
	case backendFile, backendMemory:
	case backendRedis:
		if cfg.RedisConn == "" {
			return cfg, fmt.Errorf("backend %q needs REDIS_CONNECTION_STRING", cfg.Backend)
		}
	case backendTable:
		if cfg.StorageConn == "" {
			return cfg, fmt.Errorf("backend %q needs STORAGE_CONNECTION_STRING", cfg.Backend)
		}
	default:
		return cfg, fmt.Errorf("unknown PLANNER_BACKEND %q", cfg.Backend)
	}
	return cfg, nil
}

// parseRedisOptions accepts a redis:// URL or the Azure style
// "host:port,password=...,ssl=True" connection string.
func parseRedisOptions(conn string) (*redis.Options, error) {
	if opts, err := redis.ParseURL(conn); err == nil {
		return opts, nil
	}
	parts := strings.Split(conn, ",")
	addr := strings.TrimSpace(parts[0])
	if addr == "" || strings.Contains(addr, "=") {
		return nil, fmt.Errorf("invalid redis connection string")
	}
	opts := &redis.Options{Addr: addr}
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "password":
			opts.Password = v
		case "ssl":
			if strings.EqualFold(strings.TrimSpace(v), "true") {
				opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			}
		}
	}
	return opts, nil
}

// deps holds what the configured backend needs at runtime.
type deps struct {
	backend storage.Backend
	redis   *redis.Client
}

func (d deps) Close() {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.WithError(err).Warn("redis close")
		}
	}
}

func (c config) redisClient() (*redis.Client, error) {
	if c.RedisConn == "" {
		return nil, nil
	}
	opts, err := parseRedisOptions(c.RedisConn)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func (c config) openBackend(ctx context.Context) (deps, error) {
	rc, err := c.redisClient()
	if err != nil {
		return deps{}, err
	}
	d := deps{redis: rc}
	switch c.Backend {
	case backendMemory:
		d.backend = storage.NewMemory()
	case backendFile:
		d.backend, err = storage.NewFile(c.DataDir)
	case backendRedis:
		d.backend = storage.NewRedis(rc, "planner:")
	case backendTable:
		var table *storage.Table
		table, err = storage.NewTable(c.StorageConn, c.SnapshotTable)
		if err != nil {
			break
		}
		if err = table.EnsureTable(ctx); err != nil {
			break
		}
		d.backend = table
		if rc != nil && c.CacheTTL > 0 {
			d.backend = storage.NewCache(table, rc, c.CacheTTL)
		}
	}
	if err != nil {
		d.Close()
		return deps{}, err
	}
	log.WithFields(log.Fields{"backend": c.Backend, "key": c.SnapshotKey}).Debug("storage configured")
	return d, nil
}

func (c config) openStore(ctx context.Context, logger *log.Logger) (*planner.Store, deps, error) {
	d, err := c.openBackend(ctx)
	if err != nil {
		return nil, deps{}, fmt.Errorf("storage: %w", err)
	}
	store, err := planner.Open(ctx, d.backend, planner.Options{
		Key:            c.SnapshotKey,
		Logger:         logger,
		RecoverCorrupt: c.RecoverCorrupt,
	})
	if err != nil {
		d.Close()
		return nil, deps{}, err
	}
	return store, d, nil
}
