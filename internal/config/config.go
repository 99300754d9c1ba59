// Package config resolves tore's runtime settings from defaults, an optional
// YAML file and TORE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	AppName        = "tore"
	DefaultDBName  = ".tore"
	configFileName = "config.yaml"
)

type RuntimeConfig struct {
	DBPath               string `yaml:"db_path"`
	TraceMigrations      bool   `yaml:"trace_migrations"`
	LogLevel             string `yaml:"log_level"`
	LogJSON              bool   `yaml:"log_json"`
	DesktopNotifications bool   `yaml:"desktop_notifications"`
	BusyTimeoutMS        int    `yaml:"busy_timeout_ms"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DBPath:        filepath.Join(xdg.Home, DefaultDBName),
		LogLevel:      "warn",
		BusyTimeoutMS: 5000,
	}
}

// DefaultFilePath is where Load looks for the YAML file.
func DefaultFilePath() string {
	return filepath.Join(xdg.ConfigHome, AppName, configFileName)
}

// Load resolves the configuration. A missing file is not an error.
func Load(path string) (RuntimeConfig, error) {
	cfg, err := RuntimeConfigFromFile(DefaultRuntimeConfig(), path)
	if err != nil {
		return RuntimeConfig{}, err
	}
	return RuntimeConfigFromEnv(cfg), nil
}

func RuntimeConfigFromFile(base RuntimeConfig, path string) (RuntimeConfig, error) {
	cfg := base
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return RuntimeConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.DBPath = expandHome(cfg.DBPath)
	return cfg, nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("TORE_DB")); v != "" {
		cfg.DBPath = expandHome(v)
	}
	// Presence alone turns tracing on.
	if _, ok := os.LookupEnv("TORE_TRACE_MIGRATION_QUERIES"); ok {
		cfg.TraceMigrations = true
	}
	if v := strings.TrimSpace(os.Getenv("TORE_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v, ok := getEnvBool("TORE_LOG_JSON"); ok {
		cfg.LogJSON = v
	}
	if v, ok := getEnvBool("TORE_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvInt("TORE_BUSY_TIMEOUT_MS"); ok && v >= 0 {
		cfg.BusyTimeoutMS = v
	}
	return cfg
}

func expandHome(p string) string {
	if p == "~" {
		return xdg.Home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(xdg.Home, p[2:])
	}
	return p
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
