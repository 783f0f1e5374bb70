package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	HTTP      HTTPConfig      `koanf:"http"`
	Database  DatabaseConfig  `koanf:"database"`
	Mongo     MongoConfig     `koanf:"mongo"`
	Redis     RedisConfig     `koanf:"redis"`
	MQTT      MQTTConfig      `koanf:"mqtt"`
	Influx    InfluxConfig    `koanf:"influx"`
	Assistant AssistantConfig `koanf:"assistant"`
	Logging   LoggingConfig   `koanf:"logging"`
	Seed      SeedConfig      `koanf:"seed"`
}

type HTTPConfig struct {
	Port            string        `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

func (c *HTTPConfig) SetDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Storage drivers understood by repositories.Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	URL    string `koanf:"url"`
	Path   string `koanf:"path"`
}

func (c *DatabaseConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.Path == "" {
		c.Path = "data/app.db"
	}
}

func (c DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverMemory, DriverMongo:
		return nil
	case DriverPostgres:
		if strings.TrimSpace(c.URL) == "" {
			return errors.New("database: url is required for the postgres driver")
		}
		return nil
	default:
		return fmt.Errorf("database: unsupported driver %q", c.Driver)
	}
}

type MongoConfig struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

func (c *MongoConfig) SetDefaults() {
	if c.Database == "" {
		c.Database = "wastewise"
	}
}

// RedisConfig enables the Redis event broker when URL is set.
type RedisConfig struct {
	URL string `koanf:"url"`
}

// MQTTConfig enables sensor ingestion when Broker is set.
type MQTTConfig struct {
	Broker      string `koanf:"broker"`
	ClientID    string `koanf:"client_id"`
	Username    string `koanf:"username"`
	Password    string `koanf:"password"`
	TopicPrefix string `koanf:"topic_prefix"`
	QoS         byte   `koanf:"qos"`
}

func (c *MQTTConfig) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "waste-route-service"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "wastewise/bins"
	}
}

// InfluxConfig enables the fill level history sink when URL is set.
type InfluxConfig struct {
	URL    string `koanf:"url"`
	Token  string `koanf:"token"`
	Org    string `koanf:"org"`
	Bucket string `koanf:"bucket"`
}

func (c InfluxConfig) Validate() error {
	if c.URL == "" {
		return nil
	}
	if c.Org == "" || c.Bucket == "" {
		return errors.New("influx: org and bucket are required when url is set")
	}
	return nil
}

// AssistantConfig enables the Gemini completion provider when APIKey is set.
type AssistantConfig struct {
	APIKey         string        `koanf:"api_key"`
	Model          string        `koanf:"model"`
	BaseURL        string        `koanf:"base_url"`
	RequestsPerSec float64       `koanf:"requests_per_sec"`
	Burst          int           `koanf:"burst"`
	Timeout        time.Duration `koanf:"timeout"`
}

func (c *AssistantConfig) SetDefaults() {
	if c.Model == "" {
		c.Model = "gemini-1.5-flash"
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.RequestsPerSec == 0 {
		c.RequestsPerSec = 1
	}
	if c.Burst == 0 {
		c.Burst = 3
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
}

type LoggingConfig struct {
	Level string `koanf:"level"`
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

func (c LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging: invalid level %q", c.Level)
	}
}

type SeedConfig struct {
	Path    string `koanf:"path"`
	OnStart bool   `koanf:"on_start"`
}

func (c *SeedConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "data/seeds/bins.yaml"
	}
}

// Plain environment names accepted next to the WW_SECTION__KEY form.
var envAliases = map[string]string{
	"PORT":           "http.port",
	"DB_DRIVER":      "database.driver",
	"DATABASE_URL":   "database.url",
	"DB_PATH":        "database.path",
	"MONGODB_URI":    "mongo.uri",
	"REDIS_URL":      "redis.url",
	"MQTT_BROKER":    "mqtt.broker",
	"INFLUX_URL":     "influx.url",
	"INFLUX_TOKEN":   "influx.token",
	"GEMINI_API_KEY": "assistant.api_key",
	"SEED_PATH":      "seed.path",
	"SEED_ON_START":  "seed.on_start",
	"LOG_LEVEL":      "logging.level",
}

func envKey(s string) string {
	if strings.HasPrefix(s, "WW_") {
		s = strings.ToLower(strings.TrimPrefix(s, "WW_"))
		return strings.ReplaceAll(s, "__", ".")
	}
	return envAliases[s]
}

// Load reads configuration from an optional YAML or JSON file at path and
// then applies environment overrides. A .env file in the working directory
// is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("load config: unsupported format %q", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config: read %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load config: environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: unmarshal: %w", err)
	}

	cfg.HTTP.SetDefaults()
	cfg.Database.SetDefaults()
	cfg.Mongo.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Assistant.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Seed.SetDefaults()

	if err := cfg.Database.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Influx.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &cfg, nil
}

// Get returns the environment variable key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
