package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port    int      `yaml:"port"`
		APIKeys []string `yaml:"api_keys"`
	} `yaml:"server"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"ssl_mode"`
	} `yaml:"database"`

	Redis struct {
		Address            string `yaml:"address"`
		Password           string `yaml:"password"`
		DB                 int    `yaml:"db"`
		ResourceTTLSeconds int    `yaml:"resource_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Booking struct {
		SessionTimeoutMinutes int `yaml:"session_timeout_minutes"`
		MaxBatchResources     int `yaml:"max_batch_resources"`
	} `yaml:"booking"`

	Reminders struct {
		Enabled            bool    `yaml:"enabled"`
		Timezone           string  `yaml:"timezone"`
		DailyHour          int     `yaml:"daily_hour"`
		HoursBeforeCheckIn int     `yaml:"hours_before_check_in"`
		WebhookURL         string  `yaml:"webhook_url"`
		RatePerSecond      float64 `yaml:"rate_per_second"`
	} `yaml:"reminders"`

	LogLevel string `yaml:"log_level"`
}

// Load reads YAML configuration from path, expanding ${ENV_VAR} placeholders.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Name == "" {
		return nil, fmt.Errorf("database.name is required")
	}
	if len(cfg.Server.APIKeys) == 0 {
		return nil, fmt.Errorf("server.api_keys must not be empty")
	}

	return &cfg, nil
}

// SessionTimeout returns the booking session idle timeout.
func (c *Config) SessionTimeout() time.Duration {
	if c.Booking.SessionTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Booking.SessionTimeoutMinutes) * time.Minute
}

// MaxBatchResources caps how many resources one batch check may cover.
func (c *Config) MaxBatchResources() int {
	if c.Booking.MaxBatchResources <= 0 {
		return 200
	}
	return c.Booking.MaxBatchResources
}

// ResourceCacheTTL returns the redis TTL for the resource catalog cache.
// Zero disables caching.
func (c *Config) ResourceCacheTTL() time.Duration {
	if c.Redis.ResourceTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.ResourceTTLSeconds) * time.Second
}

// ReminderWindow returns how far ahead of check-in reminders go out.
func (c *Config) ReminderWindow() time.Duration {
	if c.Reminders.HoursBeforeCheckIn <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Reminders.HoursBeforeCheckIn) * time.Hour
}
