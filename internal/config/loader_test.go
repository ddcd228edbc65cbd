package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 9090
  mode: "release"
database:
  host: "db.internal"
  port: 5432
  user: "chemrxn"
  password: "secret"
  db_name: "reactions"
redis:
  addr: "redis.internal:6379"
kafka:
  brokers: ["kafka.internal:9092"]
  group_id: "chemrxn-core"
alignment:
  base_url: "http://aligner.internal:8000"
  timeout: 90s
log:
  level: "debug"
  format: "text"
reaction:
  ts_methods: ["QST2", "NEB"]
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "reactions", cfg.Database.DBName)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"kafka.internal:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "http://aligner.internal:8000", cfg.Alignment.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Raw method names pass through the loader; lower-casing happens in the
	// domain layer.
	assert.Equal(t, []string{"QST2", "NEB"}, cfg.Reaction.TSMethods)
}

func TestLoad_DefaultsFillUnsetFields(t *testing.T) {
	minimal := `
database:
  user: "chemrxn"
`
	cfg, err := Load(writeTempConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, DefaultDBName, cfg.Database.DBName)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultMinIOBucket, cfg.MinIO.Bucket)
	assert.Equal(t, DefaultTSMethods, cfg.Reaction.TSMethods)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeTempConfig(t, "server: [not: valid"))
	require.Error(t, err)
}

func TestLoad_InvalidConfigFailsValidation(t *testing.T) {
	bad := `
database:
  user: "chemrxn"
server:
  mode: "production"
`
	_, err := Load(writeTempConfig(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}

func TestApplyDefaults_NilIsSafe(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestApplyDefaults_ExplicitValuesWin(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 3000
	cfg.Log.Level = "warn"
	ApplyDefaults(cfg)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
}
