package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"SigFuse/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Feed struct {
		WebSocketURL string        `yaml:"websocket_url"`
		Symbols      []string      `yaml:"symbols"`
		BackoffMin   time.Duration `yaml:"backoff_min"`
		BackoffMax   time.Duration `yaml:"backoff_max"`
		PingInterval time.Duration `yaml:"ping_interval"`
	} `yaml:"feed"`
	Backfill struct {
		Limit   int           `yaml:"limit"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"backfill"`
	Pipeline struct {
		BufferCapacity      int           `yaml:"buffer_capacity"`
		SnapshotTTL         time.Duration `yaml:"snapshot_ttl"`
		Cooldown            time.Duration `yaml:"cooldown"`
		ModelWindow         int           `yaml:"model_window"`
		HorizonBars         int           `yaml:"horizon_bars"`
		RegimePenaltySource string        `yaml:"regime_penalty_source"` // local | macro
	} `yaml:"pipeline"`
	Scorer struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"scorer"`
	Macro struct {
		URL     string        `yaml:"url"`
		TTL     time.Duration `yaml:"ttl"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"macro"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port"`
		Database    string        `yaml:"database"`
		User        string        `yaml:"user"`
		Password    string        `yaml:"password"`
		DialTimeout time.Duration `yaml:"dial_timeout"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Feed.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("SCORER_URL"); v != "" {
		c.Scorer.URL = v
	}
	if v := os.Getenv("MACRO_URL"); v != "" {
		c.Macro.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("PORT"), c.Server.Port)
	c.ClickHouse.Enabled = util.ParseBoolDefault(os.Getenv("CLICKHOUSE_ENABLED"), c.ClickHouse.Enabled)

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Feed.WebSocketURL == "" {
		c.Feed.WebSocketURL = "wss://stream.binance.com:9443/stream"
	}
	if c.Feed.BackoffMin <= 0 {
		c.Feed.BackoffMin = time.Second
	}
	if c.Feed.BackoffMax <= 0 {
		c.Feed.BackoffMax = time.Minute
	}
	if c.Feed.PingInterval <= 0 {
		c.Feed.PingInterval = 20 * time.Second
	}
	if c.Backfill.Limit <= 0 {
		c.Backfill.Limit = 1000
	}
	if c.Backfill.Timeout <= 0 {
		c.Backfill.Timeout = 20 * time.Second
	}
	if c.Pipeline.BufferCapacity <= 0 {
		c.Pipeline.BufferCapacity = 6000
	}
	if c.Pipeline.SnapshotTTL <= 0 {
		c.Pipeline.SnapshotTTL = 10 * time.Second
	}
	if c.Pipeline.Cooldown <= 0 {
		c.Pipeline.Cooldown = 25 * time.Minute
	}
	if c.Pipeline.ModelWindow <= 0 {
		c.Pipeline.ModelWindow = 5000
	}
	if c.Pipeline.HorizonBars <= 0 {
		c.Pipeline.HorizonBars = 5
	}
	if c.Pipeline.RegimePenaltySource == "" {
		c.Pipeline.RegimePenaltySource = "local"
	}
	if c.Scorer.Timeout <= 0 {
		c.Scorer.Timeout = 3 * time.Second
	}
	if c.Macro.TTL <= 0 {
		c.Macro.TTL = 5 * time.Minute
	}
	if c.Macro.Timeout <= 0 {
		c.Macro.Timeout = 5 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Feed.Symbols) == 0 {
		return fmt.Errorf("feed.symbols cannot be empty")
	}
	if c.Feed.BackoffMin > c.Feed.BackoffMax {
		return fmt.Errorf("feed.backoff_min must be <= feed.backoff_max")
	}
	if s := c.Pipeline.RegimePenaltySource; s != "local" && s != "macro" {
		return fmt.Errorf("pipeline.regime_penalty_source must be 'local' or 'macro', got '%s'", s)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host required when clickhouse is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr required when redis is enabled")
	}
	return nil
}
