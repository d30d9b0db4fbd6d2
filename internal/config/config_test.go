package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "erp.record.events", cfg.Kafka.EventsTopic)
	assert.Equal(t, "mail.outbound", cfg.Kafka.MailTopic)
	assert.Equal(t, 72*time.Hour, cfg.Dedupe.TTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Dispatcher.BatchWait)
	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "primary", cfg.Providers[0].Name)
	assert.True(t, cfg.Providers[0].Enabled)
	assert.Equal(t, 3, cfg.Providers[0].Breaker.FailThreshold)
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9999"
  api_keys: ["k1", "k2"]
kafka:
  group_id: "from-file"
`), 0o600))

	t.Setenv("ONOTIFY_KAFKA_GROUP_ID", "from-env")
	t.Setenv("ONOTIFY_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, []string{"k1", "k2"}, cfg.HTTP.APIKeys)
	assert.Equal(t, "from-env", cfg.Kafka.GroupID)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, "mail.outbound", cfg.Kafka.MailTopic)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)
	require.NoError(t, base.Validate())

	dup := base
	dup.Providers = []ProviderConfig{{Name: "a", SendPath: "/x"}, {Name: "a", SendPath: "/y"}}
	assert.ErrorContains(t, dup.Validate(), "duplicate provider")

	noPath := base
	noPath.Providers = []ProviderConfig{{Name: "a", Enabled: true}}
	assert.ErrorContains(t, noPath.Validate(), "send_path")

	badTTL := base
	badTTL.Dedupe.TTL = -time.Second
	assert.Error(t, badTTL.Validate())
}
