package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultCommand        = "!serverpings"
	defaultUpdateInterval = 30000 // milliseconds
	defaultSubscription   = "default"
	defaultTimezone       = "Local"
	defaultPublishTimeout = 10 * time.Second
	defaultHTTPAddr       = ":8080"
	defaultMQTTTopic      = "pingcard/telemetry"
)

// Handle store backends.
const (
	HandleStoreMemory   = "memory"
	HandleStorePostgres = "postgres"
	HandleStoreRedis    = "redis"
)

// ErrInvalidInterval is returned when CARD_UPDATE_INTERVAL is not a positive integer.
var ErrInvalidInterval = errors.New("CARD_UPDATE_INTERVAL must be a positive integer number of milliseconds")

// ErrInvalidPublishTimeout is returned when PUBLISH_TIMEOUT is not a positive duration.
var ErrInvalidPublishTimeout = errors.New("PUBLISH_TIMEOUT must be a positive duration such as 10s")

type Config struct {
	Command        string
	UpdateInterval time.Duration
	Subscription   string
	Location       *time.Location
	WebhookURL     string
	PublishTimeout time.Duration
	HandleStore    string
	DatabaseURL    string
	RedisAddr      string
	MQTTBroker     string
	MQTTTopic      string
	HTTPAddr       string
	MetricsAddr    string
}

type LoadOptions struct {
	RequireWebhookURL  bool
	RequireDatabaseURL bool
}

// Load reads the configuration used by the card service.
func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireWebhookURL: true})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		Command:      getenvDefault("CARD_COMMAND", defaultCommand),
		Subscription: strings.TrimSpace(getenvDefault("CARD_SUBSCRIPTION", defaultSubscription)),
		WebhookURL:   strings.TrimSpace(os.Getenv("WEBHOOK_URL")),
		HandleStore:  strings.ToLower(strings.TrimSpace(getenvDefault("HANDLE_STORE", HandleStoreMemory))),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisAddr:    strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		MQTTBroker:   strings.TrimSpace(os.Getenv("MQTT_BROKER")),
		MQTTTopic:    getenvDefault("MQTT_TOPIC", defaultMQTTTopic),
		HTTPAddr:     getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		MetricsAddr:  os.Getenv("METRICS_ADDR"),
	}

	interval, err := parseInterval(os.Getenv("CARD_UPDATE_INTERVAL"))
	if err != nil {
		return cfg, err
	}
	cfg.UpdateInterval = interval

	publishTimeout, err := getenvDurationDefault("PUBLISH_TIMEOUT", defaultPublishTimeout)
	if err != nil {
		return cfg, err
	}
	cfg.PublishTimeout = publishTimeout

	loc, err := loadLocation(getenvDefault("CARD_TIMEZONE", defaultTimezone))
	if err != nil {
		return cfg, err
	}
	cfg.Location = loc

	if cfg.Subscription == "" {
		cfg.Subscription = defaultSubscription
	}

	switch cfg.HandleStore {
	case HandleStoreMemory:
	case HandleStorePostgres:
		if cfg.DatabaseURL == "" {
			return cfg, errors.New("DATABASE_URL is required when HANDLE_STORE=postgres")
		}
	case HandleStoreRedis:
		if cfg.RedisAddr == "" {
			return cfg, errors.New("REDIS_ADDR is required when HANDLE_STORE=redis")
		}
	default:
		return cfg, fmt.Errorf("HANDLE_STORE must be one of: %s, %s, %s", HandleStoreMemory, HandleStorePostgres, HandleStoreRedis)
	}

	if opts.RequireWebhookURL && cfg.WebhookURL == "" {
		return cfg, errors.New("WEBHOOK_URL is required")
	}
	if opts.RequireDatabaseURL && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

func parseInterval(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultUpdateInterval * time.Millisecond, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, raw)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func loadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("CARD_TIMEZONE: %w", err)
	}
	return loc, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDurationDefault(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPublishTimeout, v)
	}
	return d, nil
}
