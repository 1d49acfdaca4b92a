package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Joseda-hg/lazygoals/internal/dates"
	"github.com/Joseda-hg/lazygoals/internal/stats"
)

const (
	EnvDB        = "LAZYGOALS_DB"
	EnvPort      = "LAZYGOALS_PORT"
	EnvWeekStart = "LAZYGOALS_WEEK_START"
)

type Config struct {
	DBPath       string `json:"db_path"`
	WebEnabled   bool   `json:"web_enabled"`
	WebPort      int    `json:"web_port"`
	WeekStart    string `json:"week_start"`
	DefaultRange string `json:"default_range"`
}

func Default() Config {
	return Config{
		WebPort:      8080,
		WeekStart:    "sunday",
		DefaultRange: string(stats.AllTime),
	}
}

func (c Config) FirstWeekday() time.Weekday {
	return dates.ParseWeekday(c.WeekStart)
}

func (c Config) Range() stats.TimeRange {
	r, err := stats.ParseTimeRange(c.DefaultRange)
	if err != nil {
		return stats.AllTime
	}
	return r
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazygoals", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

// LoadEnv reads .env files into the process environment. Missing files are
// not an error; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// ApplyEnv overrides file values with LAZYGOALS_* variables.
func ApplyEnv(cfg Config, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if value := strings.TrimSpace(getenv(EnvDB)); value != "" {
		cfg.DBPath = value
	}
	if value := strings.TrimSpace(getenv(EnvPort)); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q", EnvPort, value)
		}
		cfg.WebPort = port
	}
	if value := strings.TrimSpace(getenv(EnvWeekStart)); value != "" {
		cfg.WeekStart = strings.ToLower(value)
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
