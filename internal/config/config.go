package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultCatalogAPIURL is used when CATALOG_API_URL is not set.
const DefaultCatalogAPIURL = "https://telefonchi-backend-working.loca.lt/api"

// Config holds all configuration for the catalog client.
type Config struct {
	ServiceName            string        `mapstructure:"SERVICE_NAME"`
	CatalogAPIURL          string        `mapstructure:"CATALOG_API_URL"`
	RequestTimeout         time.Duration `mapstructure:"CATALOG_REQUEST_TIMEOUT"`
	AuthScheme             string        `mapstructure:"CATALOG_AUTH_SCHEME"`
	TunnelBypass           bool          `mapstructure:"CATALOG_TUNNEL_BYPASS"`
	ManagePageSize         int           `mapstructure:"MANAGE_PAGE_SIZE"`
	HostInitData           string        `mapstructure:"HOST_INIT_DATA"`
	HostUserID             int64         `mapstructure:"HOST_USER_ID"`
	HostUsername           string        `mapstructure:"HOST_USERNAME"`
	Language               string        `mapstructure:"LANGUAGE"`
	LogLevel               string        `mapstructure:"LOG_LEVEL"`
	LogFormat              string        `mapstructure:"LOG_FORMAT"`
	LogOutputFile          string        `mapstructure:"LOG_OUTPUT_FILE"`
	PrometheusMetricsPort  string        `mapstructure:"PROMETHEUS_METRICS_PORT"`
	OTExporterOTLPEndpoint string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// LoggerConfig projects the logging keys into the logger's own config type.
func (c *Config) LoggerConfig() *logger.LoggerConfig {
	return &logger.LoggerConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		OutputFile: c.LogOutputFile,
	}
}

var keys = []string{
	"SERVICE_NAME", "CATALOG_API_URL", "CATALOG_REQUEST_TIMEOUT", "CATALOG_AUTH_SCHEME",
	"CATALOG_TUNNEL_BYPASS", "MANAGE_PAGE_SIZE", "HOST_INIT_DATA", "HOST_USER_ID",
	"HOST_USERNAME", "LANGUAGE", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT_FILE",
	"PROMETHEUS_METRICS_PORT", "OTEL_EXPORTER_OTLP_ENDPOINT",
}

// LoadConfig reads an optional .env file, then environment variables over the defaults.
func LoadConfig(envFiles ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetDefault("SERVICE_NAME", "marketplace-client")
	v.SetDefault("CATALOG_API_URL", DefaultCatalogAPIURL)
	v.SetDefault("CATALOG_REQUEST_TIMEOUT", "10s")
	v.SetDefault("CATALOG_AUTH_SCHEME", "tma")
	v.SetDefault("CATALOG_TUNNEL_BYPASS", true)
	v.SetDefault("MANAGE_PAGE_SIZE", 10)
	v.SetDefault("HOST_INIT_DATA", "")
	v.SetDefault("HOST_USER_ID", 0)
	v.SetDefault("HOST_USERNAME", "")
	v.SetDefault("LANGUAGE", "ru")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT_FILE", "stderr")
	v.SetDefault("PROMETHEUS_METRICS_PORT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.CatalogAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("CATALOG_API_URL must be an absolute http(s) URL, got %q", c.CatalogAPIURL))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("CATALOG_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout))
	}
	if c.ManagePageSize <= 0 {
		errs = append(errs, fmt.Errorf("MANAGE_PAGE_SIZE must be positive, got %d", c.ManagePageSize))
	}
	if c.AuthScheme == "" {
		errs = append(errs, errors.New("CATALOG_AUTH_SCHEME must not be empty"))
	}
	if c.Language != "ru" && c.Language != "uz" {
		errs = append(errs, fmt.Errorf("LANGUAGE must be ru or uz, got %q", c.Language))
	}
	return errors.Join(errs...)
}
