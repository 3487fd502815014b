package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

const envPrefix = "APP"

type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Booking  BookingConfig  `mapstructure:"booking"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Google   GoogleConfig   `mapstructure:"google"`
	Log      LogConfig      `mapstructure:"log"`
}

type HTTPConfig struct {
	Address               string `mapstructure:"address"`
	SwaggerDir            string `mapstructure:"swagger_dir"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
}

func (h HTTPConfig) RequestTimeout() time.Duration {
	return time.Duration(h.RequestTimeoutSeconds) * time.Second
}

// GRPCConfig serves the same use cases over gRPC when Address is set.
type GRPCConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int    `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	if d.MaxConns > 0 {
		dsn += fmt.Sprintf(" pool_max_conns=%d", d.MaxConns)
	}
	return dsn
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers            []string `mapstructure:"brokers"`
	BookingEventsTopic string   `mapstructure:"booking_events_topic"`
	GroupID            string   `mapstructure:"group_id"`
}

type BookingConfig struct {
	// Timezone decides what "today" is for past-date and same-day checks.
	Timezone          string `mapstructure:"timezone"`
	LockTimeoutMillis int    `mapstructure:"lock_timeout_ms"`
	SlotsCacheTTL     int    `mapstructure:"slots_cache_ttl_seconds"`
}

func (b BookingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("booking timezone %q: %w", b.Timezone, err)
	}
	return loc, nil
}

func (b BookingConfig) LockTimeout() time.Duration {
	return time.Duration(b.LockTimeoutMillis) * time.Millisecond
}

func (b BookingConfig) SlotsCacheTTLDuration() time.Duration {
	return time.Duration(b.SlotsCacheTTL) * time.Second
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	// SeedFile lists members and calendars loaded into the memory store.
	SeedFile string `mapstructure:"seed_file"`
}

type GoogleConfig struct {
	// CredentialsFile is a service account key. Calendar mirroring is off
	// when it is empty.
	CredentialsFile string `mapstructure:"credentials_file"`
	TimeZone        string `mapstructure:"time_zone"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// LoadConfig reads the yaml file at path. Any key can be overridden from
// the environment as APP_<SECTION>_<KEY>, e.g. APP_DATABASE_HOST.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	v := newViper()
	if err := v.MergeConfigMap(raw); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Kafka.Brokers = cleanList(cfg.Kafka.Brokers)
	if cfg.Google.TimeZone == "" {
		cfg.Google.TimeZone = cfg.Booking.Timezone
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newViper registers every key with a default. AutomaticEnv only resolves
// keys viper already knows about.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.swagger_dir", "")
	v.SetDefault("http.request_timeout_seconds", 10)
	v.SetDefault("grpc.address", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 0)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.booking_events_topic", "booking-events")
	v.SetDefault("kafka.group_id", "slotbooking-calendar-sync")

	v.SetDefault("booking.timezone", "UTC")
	v.SetDefault("booking.lock_timeout_ms", 3000)
	v.SetDefault("booking.slots_cache_ttl_seconds", 60)

	v.SetDefault("storage.driver", StorageDriverPostgres)
	v.SetDefault("storage.seed_file", "")

	v.SetDefault("google.credentials_file", "")
	v.SetDefault("google.time_zone", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	return v
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Booking.LockTimeoutMillis < 0 {
		return fmt.Errorf("booking.lock_timeout_ms must not be negative")
	}
	if _, err := c.Booking.Location(); err != nil {
		return err
	}
	return nil
}

// cleanList trims list entries; an env value like "a:1, b:2," decodes
// with blanks around the commas.
func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
