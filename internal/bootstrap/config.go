package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/team-pig/backend/internal/infra/setup"
)

// DriverMemory keeps every record in process. Nothing survives a restart.
const DriverMemory = "memory"

// Config is the application configuration.
type Config struct {
	DBDriver   string `yaml:"db_driver" validate:"oneof=mysql postgres memory"`
	DBDSN      string `yaml:"db_dsn"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBName     string `yaml:"db_name"`

	RedisAddr     string `yaml:"redis_addr" validate:"required"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db" validate:"gte=0"`
	KeyPrefix     string `yaml:"redis_key_prefix"`

	JWTSecret      string `yaml:"jwt_secret" validate:"required"`
	JWTExpiryHours int    `yaml:"jwt_expiry_hours" validate:"gt=0"`

	ServerPort         string   `yaml:"server_port" validate:"required,numeric"`
	LogLevel           string   `yaml:"log_level"`
	AppEnv             string   `yaml:"app_env" validate:"oneof=development production test"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	RateLimitMax      int           `yaml:"rate_limit_max" validate:"gt=0"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window" validate:"gt=0"`
	InviteLimitPerMin int           `yaml:"invite_limit_per_min" validate:"gt=0"`
	InviteLimitBurst  int           `yaml:"invite_limit_burst" validate:"gt=0"`

	WorkerConcurrency  int           `yaml:"worker_concurrency" validate:"gt=0"`
	PurgeSweepSchedule string        `yaml:"purge_sweep_schedule" validate:"required"`
	PurgeGracePeriod   time.Duration `yaml:"purge_grace_period" validate:"gte=0"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() *Config {
	return &Config{
		DBDriver:           setup.DriverMySQL,
		DBHost:             "127.0.0.1",
		DBPort:             "3306",
		DBName:             "board",
		RedisAddr:          "127.0.0.1:6379",
		KeyPrefix:          "bb:",
		JWTExpiryHours:     24,
		ServerPort:         "8080",
		LogLevel:           "info",
		AppEnv:             "development",
		RateLimitMax:       100,
		RateLimitWindow:    time.Second,
		InviteLimitPerMin:  10,
		InviteLimitBurst:   5,
		WorkerConcurrency:  10,
		PurgeSweepSchedule: "@every 10m",
		PurgeGracePeriod:   5 * time.Minute,
	}
}

// LoadConfig layers defaults, the optional YAML file at path, a .env file
// and the environment, in that order, then validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, describeConfigError(err)
	}
	if cfg.DBDriver != DriverMemory && cfg.DBDSN == "" && (cfg.DBUser == "" || cfg.DBName == "") {
		return nil, errors.New("config: DB_DSN, or DB_USER and DB_NAME, must be set")
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	str("DB_DRIVER", &c.DBDriver)
	str("DB_DSN", &c.DBDSN)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_HOST", &c.DBHost)
	str("DB_PORT", &c.DBPort)
	str("DB_NAME", &c.DBName)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	str("REDIS_KEY_PREFIX", &c.KeyPrefix)
	str("JWT_SECRET", &c.JWTSecret)
	str("SERVER_PORT", &c.ServerPort)
	str("LOG_LEVEL", &c.LogLevel)
	str("APP_ENV", &c.AppEnv)
	str("PURGE_SWEEP_SCHEDULE", &c.PurgeSweepSchedule)

	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		c.CORSAllowedOrigins = splitList(v)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"REDIS_DB", &c.RedisDB},
		{"JWT_EXPIRY_HOURS", &c.JWTExpiryHours},
		{"RATE_LIMIT_MAX", &c.RateLimitMax},
		{"INVITE_LIMIT_PER_MIN", &c.InviteLimitPerMin},
		{"INVITE_LIMIT_BURST", &c.InviteLimitBurst},
		{"WORKER_CONCURRENCY", &c.WorkerConcurrency},
	}
	for _, e := range ints {
		if v, ok := os.LookupEnv(e.key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("config: %s must be an integer: %w", e.key, err)
			}
			*e.dst = n
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"RATE_LIMIT_WINDOW", &c.RateLimitWindow},
		{"PURGE_GRACE_PERIOD", &c.PurgeGracePeriod},
	}
	for _, e := range durations {
		if v, ok := os.LookupEnv(e.key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config: %s must be a duration: %w", e.key, err)
			}
			*e.dst = d
		}
	}
	return nil
}

// DSN returns DBDSN when set, otherwise builds one for the driver.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case setup.DriverPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func describeConfigError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("config: invalid settings: %s", strings.Join(msgs, "; "))
}
