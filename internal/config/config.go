package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is the process-level configuration from the environment.
// The wheel's own settings (spin duration, timing, volume) live in the
// persisted config document owned by the store, not here.
type Config struct {
	Port      string
	Env       string
	DataDir   string
	SoundsDir string
	LogFile   string

	// GPIOEnabled turns the hardware button watcher on. GPIOValuePath
	// overrides the sysfs path, mainly for tests and simulation rigs.
	GPIOEnabled   bool
	GPIOValuePath string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "5000"),
		Env:           getEnv("ENV", "development"),
		DataDir:       getEnv("DATA_DIR", "data"),
		SoundsDir:     getEnv("SOUNDS_DIR", "static/sounds"),
		LogFile:       getEnv("LOG_FILE", "prize_wheel.log"),
		GPIOValuePath: os.Getenv("GPIO_VALUE_PATH"),
	}

	if v := os.Getenv("GPIO_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid GPIO_ENABLED value %q: %w", v, err)
		}
		cfg.GPIOEnabled = enabled
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
