package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// configName is the config file name without extension.
	configName = ".math2visual"
	// configType is the config file format.
	configType = "yaml"
	// envPrefix is the environment variable prefix for math2visual settings.
	envPrefix = "MATH2VISUAL"
)

// LoadConfig resolves the effective configuration: defaults first, then an
// optional config file, then MATH2VISUAL_* environment variables. With an
// empty configPath the file is searched in the CWD and $HOME; a missing file
// is fine, env and defaults still apply.
func LoadConfig(configPath string) (*Config, error) {
	v := newViper()

	addConfigSources(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// newViper creates a viper instance with defaults and env binding applied.
// Nested keys map onto env names with underscores: `display.threshold`
// becomes MATH2VISUAL_DISPLAY_THRESHOLD.
func newViper() *viper.Viper {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func addConfigSources(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)

		return
	}

	v.SetConfigName(configName)
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
}

// readConfigFile reads the resolved config file, tolerating only its
// absence. An explicitly named file that cannot be read is still an error
// because viper reports that as a distinct failure, not as not-found.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}

	return fmt.Errorf("read config: %w", err)
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("display.threshold", DefaultDisplayThreshold)
	v.SetDefault("display.locale", DefaultLocale)

	v.SetDefault("service.url", DefaultServiceURL)
	v.SetDefault("service.timeout", DefaultServiceTimeout)

	v.SetDefault("metrics.listen", DefaultMetricsListen)
}
