// Package config loads process settings from an optional YAML file, a .env
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultPath is read when ESTIMATOR_CONFIG is not set. A missing file is not an error.
const DefaultPath = "config/estimator.yaml"

type Config struct {
	Port string `yaml:"port"`
	// CalibrationFile is empty for the embedded default table.
	CalibrationFile   string `yaml:"calibration_file"`
	StrictCalibration bool   `yaml:"strict_calibration"`
	// GinMode is passed to gin.SetMode ("debug", "release", "test").
	GinMode string `yaml:"gin_mode"`
	// AllowedOrigin is sent as Access-Control-Allow-Origin.
	AllowedOrigin string `yaml:"allowed_origin"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Config {
	return Config{
		Port:          "8080",
		GinMode:       "release",
		AllowedOrigin: "*",
	}
}

// Load reads .env (if present), then the YAML file named by ESTIMATOR_CONFIG
// or DefaultPath, then applies environment overrides.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("[CONFIG] Ignoring .env: %v\n", err)
	}

	path := os.Getenv("ESTIMATOR_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Defaults()
	if err := loadFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	} else {
		fmt.Printf("[CONFIG] Loaded %s\n", path)
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays PORT, CALIBRATION_FILE, STRICT_CALIBRATION, GIN_MODE and
// CORS_ALLOWED_ORIGIN.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		cfg.Port = v
	}
	if v, ok := lookup("CALIBRATION_FILE"); ok && strings.TrimSpace(v) != "" {
		cfg.CalibrationFile = strings.TrimSpace(v)
	}
	if v, ok := lookup("STRICT_CALIBRATION"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STRICT_CALIBRATION: %w", err)
		}
		cfg.StrictCalibration = b
	}
	if v, ok := lookup("GIN_MODE"); ok && v != "" {
		cfg.GinMode = v
	}
	if v, ok := lookup("CORS_ALLOWED_ORIGIN"); ok && v != "" {
		cfg.AllowedOrigin = v
	}
	return nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
