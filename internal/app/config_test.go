package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier/internal/app"
	"courier/internal/domain"
)

func TestConfig_MergeFileAndDefaults(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, app.ConfigFilename), []byte(
		"relay: https://relay.example.com\nlevel: maximum\nsocial_profile_url: https://social.example.com/api/{handle}\n",
	), 0o600))

	fc, err := app.LoadFileConfig(home)
	require.NoError(t, err)

	cfg := app.Config{Home: home, LogLevel: "debug"}
	cfg.Merge(fc)
	assert.Equal(t, "https://relay.example.com", cfg.RelayURL)
	assert.Equal(t, "https://relay.example.com", cfg.BlobURL, "blob host defaults to the relay")
	assert.Equal(t, domain.SecurityMaximum, cfg.Level)
	assert.Equal(t, "debug", cfg.LogLevel, "flags win over the file")
	assert.Equal(t, "https://social.example.com/api/{handle}", cfg.SocialProfileURL)
}

func TestConfig_MissingFile(t *testing.T) {
	fc, err := app.LoadFileConfig(t.TempDir())
	require.NoError(t, err)
	cfg := app.Config{}
	cfg.Merge(fc)
	assert.Equal(t, domain.SecurityRecommended, cfg.Level)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestRelayConfig_FileEnvDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"listen: \":9090\"\nlong_poll_timeout: 10s\ninbox:\n  backend: redis\nblob:\n  backend: badger\n  dir: /var/lib/courier\n",
	), 0o600))
	t.Setenv("COURIER_INBOX_BACKEND", "memory")
	t.Setenv("COURIER_ITEM_TTL", "48h")

	cfg, err := app.LoadRelayConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "http://localhost:9090", cfg.PublicURL)
	assert.Equal(t, 10*time.Second, cfg.LongPollTimeout)
	assert.Equal(t, 48*time.Hour, cfg.ItemTTL)
	assert.Equal(t, "memory", cfg.Inbox.Backend, "environment wins over the file")
	assert.Equal(t, "badger", cfg.Blob.Backend)
	assert.Equal(t, "/var/lib/courier", cfg.Blob.Dir)

	t.Setenv("COURIER_PURGE_INTERVAL", "soon")
	_, err = app.LoadRelayConfig(path)
	assert.Error(t, err)
}

func TestOpenRelay_MemoryAndBadger(t *testing.T) {
	cfg, err := app.LoadRelayConfig("")
	require.NoError(t, err)
	cfg.Inbox.Backend = "memory"
	cfg.Blob.Backend = "badger"
	cfg.Blob.Dir = t.TempDir()

	r, err := app.OpenRelay(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, r.Server)
	assert.NoError(t, r.Close())

	cfg.Inbox.Backend = "cassandra"
	_, err = app.OpenRelay(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	l, err := app.NewLogger("info", "json")
	require.NoError(t, err)
	assert.NotNil(t, l)
	_, err = app.NewLogger("loud", "console")
	assert.Error(t, err)
}
