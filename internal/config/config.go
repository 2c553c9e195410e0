package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ServiceConfig is the evaluator's service.yaml (or service.toml). WISH_*
// environment variables override file values.
type ServiceConfig struct {
	Version int           `yaml:"version" toml:"version"`
	Service ServiceInfo   `yaml:"service" toml:"service"`
	Network NetworkConfig `yaml:"network" toml:"network"`
	Catalog CatalogRef    `yaml:"catalog" toml:"catalog"`
	Journal JournalConfig `yaml:"journal" toml:"journal"`
	MQTT    MQTTConfig    `yaml:"mqtt" toml:"mqtt"`
	Alerts  AlertConfig   `yaml:"alerts" toml:"alerts"`
}

type ServiceInfo struct {
	Name string `yaml:"name" toml:"name" env:"WISH_SERVICE_NAME"`
}

type NetworkConfig struct {
	HTTPPort int `yaml:"http_port" toml:"http_port" env:"WISH_HTTP_PORT"`
}

type CatalogRef struct {
	// Path to a paradise.yaml. Empty means the embedded default catalog.
	Path string `yaml:"path" toml:"path" env:"WISH_CATALOG"`
}

// JournalConfig selects where the event stream is persisted.
// Driver is "", "postgres" or "sqlite".
type JournalConfig struct {
	Driver   string `yaml:"driver" toml:"driver" env:"WISH_JOURNAL_DRIVER"`
	DSN      string `yaml:"dsn" toml:"dsn" env:"WISH_JOURNAL_DSN"`
	Optional bool   `yaml:"optional" toml:"optional" env:"WISH_JOURNAL_OPTIONAL"`
}

type MQTTConfig struct {
	Broker      string `yaml:"broker" toml:"broker" env:"WISH_MQTT_URL"`
	ClientID    string `yaml:"client_id" toml:"client_id" env:"WISH_MQTT_CLIENT_ID"`
	TopicPrefix string `yaml:"topic_prefix" toml:"topic_prefix" env:"WISH_MQTT_TOPIC_PREFIX"`
	Username    string `yaml:"username" toml:"username" env:"WISH_MQTT_USER"`

	PublishTimeout time.Duration `yaml:"publish_timeout" toml:"publish_timeout" env:"WISH_MQTT_PUBLISH_TIMEOUT"`
}

type AlertConfig struct {
	WebhookURL string        `yaml:"webhook_url" toml:"webhook_url" env:"WISH_ALERT_WEBHOOK_URL"`
	Cooldown   time.Duration `yaml:"cooldown" toml:"cooldown" env:"WISH_ALERT_COOLDOWN"`
}

// Name returns the service name, defaulting to "wish-engine".
func (c *ServiceConfig) Name() string {
	if c.Service.Name == "" {
		return "wish-engine"
	}
	return c.Service.Name
}

// HTTPPort returns the configured HTTP port, defaulting to 8080 if not set.
func (c *ServiceConfig) HTTPPort() int {
	if c.Network.HTTPPort == 0 {
		return 8080
	}
	return c.Network.HTTPPort
}

// MQTTEnabled reports whether a broker is configured.
func (c *ServiceConfig) MQTTEnabled() bool {
	return c.MQTT.Broker != ""
}

// MQTTClientID returns the client id, defaulting to the service name.
func (c *ServiceConfig) MQTTClientID() string {
	if c.MQTT.ClientID == "" {
		return c.Name()
	}
	return c.MQTT.ClientID
}

// MQTTTopicPrefix returns the topic prefix, defaulting to "wish".
func (c *ServiceConfig) MQTTTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "wish"
	}
	return c.MQTT.TopicPrefix
}

// AlertCooldown returns the minimum gap between repeated alerts.
func (c *ServiceConfig) AlertCooldown() time.Duration {
	if c.Alerts.Cooldown <= 0 {
		return 5 * time.Minute
	}
	return c.Alerts.Cooldown
}

// LoadServiceConfig reads service.yaml and applies environment overrides.
// Files ending in .toml are decoded as TOML. An empty path skips the file
// and uses defaults plus environment.
func LoadServiceConfig(path string) (*ServiceConfig, error) {
	cfg := ServiceConfig{Version: 1}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := decodeServiceConfig(path, b, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if cfg.Version != 1 {
			return nil, fmt.Errorf("unsupported service.yaml version: %d", cfg.Version)
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}

	switch cfg.Journal.Driver {
	case "", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported journal driver: %q", cfg.Journal.Driver)
	}

	return &cfg, nil
}

func decodeServiceConfig(path string, b []byte, cfg *ServiceConfig) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(b, cfg)
	}
	return yaml.Unmarshal(b, cfg)
}

// ParseEnv applies environment variables to the env-tagged fields of target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
