package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	MySQL      DatabaseConfig   `mapstructure:"mysql"`
	ClickHouse DatabaseConfig   `mapstructure:"clickhouse"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Dedupe     DedupeConfig     `mapstructure:"dedupe"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Providers  []ProviderConfig `mapstructure:"providers"`
}

// ---- Leaf structs ----

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type HTTPConfig struct {
	Addr    string   `mapstructure:"addr"`
	APIKeys []string `mapstructure:"api_keys"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	GroupID        string   `mapstructure:"group_id"`
	EventsTopic    string   `mapstructure:"events_topic"`
	MailTopic      string   `mapstructure:"mail_topic"`
	MinBytes       int      `mapstructure:"min_bytes"`
	MaxBytes       int      `mapstructure:"max_bytes"`
	CommitInterval int      `mapstructure:"commit_interval_ms"`
}

type DedupeConfig struct {
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type DispatcherConfig struct {
	WorkerCount      int           `mapstructure:"worker_count"`
	BatchSize        int           `mapstructure:"batch_size"`
	BatchWait        time.Duration `mapstructure:"batch_wait"`
	MaxRetryAttempts int           `mapstructure:"max_retry_attempts"`
}

type RateLimitConfig struct {
	RPS int `mapstructure:"rps"`
}

type BreakerConfig struct {
	FailThreshold int `mapstructure:"fail_threshold" yaml:"fail_threshold"`
	OpenForMs     int `mapstructure:"open_for_ms"    yaml:"open_for_ms"`
}

type ProviderConfig struct {
	Name      string        `mapstructure:"name"`
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	SendPath  string        `mapstructure:"send_path"`
	TimeoutMs int           `mapstructure:"timeout_ms"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (ONOTIFY_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	// a missing file is fine (defaults + env); a broken one is not
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	// env override (ONOTIFY_HTTP_ADDR -> http.addr)
	v.SetEnvPrefix("ONOTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the notifier cannot run with.
func (c Config) Validate() error {
	if c.Dedupe.TTL < 0 {
		return fmt.Errorf("config: dedupe.ttl must not be negative")
	}
	if c.Dispatcher.MaxRetryAttempts < 0 {
		return fmt.Errorf("config: dispatcher.max_retry_attempts must not be negative")
	}

	seen := make(map[string]struct{}, len(c.Providers))
	for i, p := range c.Providers {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("config: providers[%d] has no name", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("config: duplicate provider %q", name)
		}
		seen[name] = struct{}{}
		if p.Enabled && p.SendPath == "" {
			return fmt.Errorf("config: provider %q has no send_path", name)
		}
	}
	return nil
}
