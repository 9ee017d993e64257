package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_USER", "board")
	t.Setenv("DB_NAME", "board")
}

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("RATE_LIMIT_WINDOW", "2s")
	t.Setenv("WORKER_CONCURRENCY", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "bb:", cfg.KeyPrefix)
	assert.Equal(t, 2*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "@every 10m", cfg.PurgeSweepSchedule)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	setMinimalEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_port: "9000"
log_level: debug
purge_grace_period: 30m
db_driver: postgres
`), 0o600))
	t.Setenv("SERVER_PORT", "9100")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.ServerPort, "environment wins over the file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.PurgeGracePeriod)
	assert.Equal(t, "postgres", cfg.DBDriver)
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}},
		{"bad integer", map[string]string{"REDIS_DB": "one"}},
		{"bad duration", map[string]string{"PURGE_GRACE_PERIOD": "soon"}},
		{"no database", map[string]string{"DB_USER": "", "DB_NAME": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setMinimalEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig("")
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MemoryNeedsNoDatabase(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
}

func TestConfig_DSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBUser, cfg.DBPassword, cfg.DBName = "u", "p", "board"

	assert.Equal(t, "u:p@tcp(127.0.0.1:3306)/board?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())

	cfg.DBDriver, cfg.DBPort = "postgres", "5432"
	assert.Equal(t, "host=127.0.0.1 port=5432 user=u password=p dbname=board sslmode=disable TimeZone=UTC", cfg.DSN())

	cfg.DBDSN = "explicit"
	assert.Equal(t, "explicit", cfg.DSN())
}
