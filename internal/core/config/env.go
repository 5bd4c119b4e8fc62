package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by Env.
const EnvPrefix = "LOGBOOK"

// Env holds the connection settings read from LOGBOOK_* environment variables.
type Env struct {
	HAURL           string        `envconfig:"HA_URL" default:"http://homeassistant.local:8123"`
	HAToken         string        `envconfig:"HA_TOKEN"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"5s"`
	Timezone        string        `envconfig:"TIMEZONE" default:"Local"`
	Language        string        `envconfig:"LANGUAGE" default:"en"`
	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFile         string        `envconfig:"LOG_FILE"`
}

// LoadEnv reads the environment.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to read %s_* environment: %w", EnvPrefix, err)
	}
	return &env, nil
}
