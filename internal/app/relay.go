package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"courier/internal/blob"
	"courier/internal/inbox"
	"courier/internal/server"
)

// RelayConfig configures cmd/relay.
type RelayConfig struct {
	Listen          string        `yaml:"listen"`
	PublicURL       string        `yaml:"public_url"`
	LongPollTimeout time.Duration `yaml:"long_poll_timeout"`
	ItemTTL         time.Duration `yaml:"item_ttl"`
	MaxItemSize     int64         `yaml:"max_item_size"`
	PurgeInterval   time.Duration `yaml:"purge_interval"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`

	Inbox struct {
		// Backend is memory, redis or mongo.
		Backend       string `yaml:"backend"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
		MongoURI      string `yaml:"mongo_uri"`
		MongoDatabase string `yaml:"mongo_database"`
	} `yaml:"inbox"`

	Blob struct {
		// Backend is memory or badger.
		Backend string `yaml:"backend"`
		Dir     string `yaml:"dir"`
	} `yaml:"blob"`
}

// LoadRelayConfig reads the YAML file at path (optional when empty or
// missing), loads .env from the working directory if present, applies
// COURIER_* overrides and fills defaults.
func LoadRelayConfig(path string) (RelayConfig, error) {
	var cfg RelayConfig
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *RelayConfig) applyEnv() error {
	str := map[string]*string{
		"COURIER_LISTEN":         &c.Listen,
		"COURIER_PUBLIC_URL":     &c.PublicURL,
		"COURIER_LOG_LEVEL":      &c.LogLevel,
		"COURIER_LOG_FORMAT":     &c.LogFormat,
		"COURIER_INBOX_BACKEND":  &c.Inbox.Backend,
		"COURIER_REDIS_ADDR":     &c.Inbox.RedisAddr,
		"COURIER_REDIS_PASSWORD": &c.Inbox.RedisPassword,
		"COURIER_MONGO_URI":      &c.Inbox.MongoURI,
		"COURIER_MONGO_DATABASE": &c.Inbox.MongoDatabase,
		"COURIER_BLOB_BACKEND":   &c.Blob.Backend,
		"COURIER_BLOB_DIR":       &c.Blob.Dir,
	}
	for k, p := range str {
		if v, ok := os.LookupEnv(k); ok {
			*p = v
		}
	}
	dur := map[string]*time.Duration{
		"COURIER_LONG_POLL_TIMEOUT": &c.LongPollTimeout,
		"COURIER_ITEM_TTL":          &c.ItemTTL,
		"COURIER_PURGE_INTERVAL":    &c.PurgeInterval,
	}
	for k, p := range dur {
		if v, ok := os.LookupEnv(k); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			*p = d
		}
	}
	if v, ok := os.LookupEnv("COURIER_REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("COURIER_REDIS_DB: %w", err)
		}
		c.Inbox.RedisDB = n
	}
	return nil
}

func (c *RelayConfig) setDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.PublicURL == "" {
		c.PublicURL = "http://localhost" + c.Listen
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.Inbox.Backend == "" {
		c.Inbox.Backend = "memory"
	}
	if c.Inbox.RedisAddr == "" {
		c.Inbox.RedisAddr = "localhost:6379"
	}
	if c.Inbox.MongoURI == "" {
		c.Inbox.MongoURI = "mongodb://localhost:27017"
	}
	if c.Inbox.MongoDatabase == "" {
		c.Inbox.MongoDatabase = "courier"
	}
	if c.Blob.Backend == "" {
		c.Blob.Backend = "memory"
	}
	if c.Blob.Dir == "" {
		c.Blob.Dir = "blobs"
	}
}

// Relay is an opened relay server and the resources behind it.
type Relay struct {
	Server  *server.Server
	closers []func() error
}

// Close releases every backend.
func (r *Relay) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return errors.Join(errs...)
}

// OpenRelay connects the configured backends and builds the server.
func OpenRelay(ctx context.Context, cfg RelayConfig, log *zap.Logger) (*Relay, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Relay{}
	fail := func(err error) (*Relay, error) {
		_ = r.Close()
		return nil, err
	}

	var (
		store    inbox.Store
		notifier inbox.Notifier
	)
	switch cfg.Inbox.Backend {
	case "memory":
		store = inbox.NewMemoryStore()
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Inbox.RedisAddr,
			Password: cfg.Inbox.RedisPassword,
			DB:       cfg.Inbox.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return fail(fmt.Errorf("redis %s: %w", cfg.Inbox.RedisAddr, err))
		}
		store = inbox.NewRedisStore(rdb)
		notifier = inbox.NewRedisNotifier(rdb, log.Named("notify"))
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Inbox.MongoURI))
		if err != nil {
			return fail(fmt.Errorf("mongo: %w", err))
		}
		ms, err := inbox.NewMongoStore(ctx, client, cfg.Inbox.MongoDatabase)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return fail(err)
		}
		store = ms
	default:
		return fail(fmt.Errorf("unknown inbox backend %q", cfg.Inbox.Backend))
	}
	r.closers = append(r.closers, store.Close)

	var blobs blob.Server
	switch cfg.Blob.Backend {
	case "memory":
		blobs = blob.NewMemoryStore(cfg.PublicURL)
	case "badger":
		bs, err := blob.OpenBadgerStore(cfg.Blob.Dir, cfg.PublicURL, log.Named("blob"))
		if err != nil {
			return fail(err)
		}
		blobs = bs
	default:
		return fail(fmt.Errorf("unknown blob backend %q", cfg.Blob.Backend))
	}
	r.closers = append(r.closers, blobs.Close)

	r.Server = server.New(server.Config{
		PublicURL:       cfg.PublicURL,
		LongPollTimeout: cfg.LongPollTimeout,
		ItemTTL:         cfg.ItemTTL,
		MaxItemSize:     cfg.MaxItemSize,
		PurgeInterval:   cfg.PurgeInterval,
	}, store, notifier, blobs, log)
	return r, nil
}
