// Package config loads math2visual settings from file, environment, and
// defaults.
package config

import (
	"errors"
	"net/url"
	"time"
)

// Config is the top-level configuration struct for math2visual.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Display DisplayConfig `mapstructure:"display"`
	Service ServiceConfig `mapstructure:"service"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// DisplayConfig holds rendering and matching knobs.
type DisplayConfig struct {
	// Threshold is the largest integral quantity drawn as individual icon
	// instances; larger quantities render as a single numeric label.
	Threshold int `mapstructure:"threshold"`
	// Locale is a BCP 47 tag for number-word matching.
	Locale string `mapstructure:"locale"`
}

// ServiceConfig holds the generation backend endpoint.
type ServiceConfig struct {
	URL     string `mapstructure:"url"`
	Timeout string `mapstructure:"timeout"`
}

// MetricsConfig holds the Prometheus scrape endpoint settings.
type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// Defaults.
const (
	DefaultDisplayThreshold = 20
	DefaultLocale           = "en"
	DefaultServiceURL       = "http://localhost:9017"
	DefaultServiceTimeout   = "30s"
	DefaultMetricsListen    = ":9090"
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidThreshold indicates the display threshold is not positive.
	ErrInvalidThreshold = errors.New("display.threshold must be positive")
	// ErrInvalidLocale indicates an empty locale tag.
	ErrInvalidLocale = errors.New("display.locale must not be empty")
	// ErrInvalidServiceURL indicates an unparsable backend URL.
	ErrInvalidServiceURL = errors.New("service.url must be a valid http(s) URL")
	// ErrInvalidTimeout indicates an unparsable service timeout.
	ErrInvalidTimeout = errors.New("service.timeout must be a positive duration")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Display.Threshold <= 0 {
		return ErrInvalidThreshold
	}

	if c.Display.Locale == "" {
		return ErrInvalidLocale
	}

	parsed, err := url.Parse(c.Service.URL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return ErrInvalidServiceURL
	}

	timeout, err := time.ParseDuration(c.Service.Timeout)
	if err != nil || timeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}

// ServiceTimeout returns the parsed backend timeout. Call after Validate.
func (c *Config) ServiceTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.Service.Timeout)
	if err != nil {
		return 0
	}

	return timeout
}