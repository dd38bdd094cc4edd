package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envConfigPath = "CAMPUSLINK_CONFIG"
	envPlatform   = "CAMPUSLINK_PLATFORM"
	envBaseURL    = "CAMPUSLINK_BASE_URL"
	envTokenDir   = "CAMPUSLINK_TOKEN_DIR"
	envRedisAddr  = "CAMPUSLINK_REDIS_ADDR"
	envLogLevel   = "CAMPUSLINK_LOG_LEVEL"
)

// Loader resolves configuration from defaults, an optional yaml file and
// CAMPUSLINK_* environment variables, in that order of precedence.
type Loader struct {
	useDotEnv bool
	path      string
}

func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the config file location (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()

	path := l.path
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if len(cfg.Endpoint.Candidates) == 0 {
		return nil, fmt.Errorf("config %s: endpoint requires at least one host candidate", path)
	}

	return &Result{Config: cfg, Path: path}, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envPlatform); v != "" {
		cfg.Platform = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(envTokenDir); v != "" {
		cfg.Session.Store.File.Dir = v
	}
	if v := os.Getenv(envRedisAddr); v != "" {
		cfg.Session.Store.Redis.Addr = v
		cfg.DevServer.RedisAddr = v
	}
	if v := os.Getenv(envBaseURL); v != "" {
		// An explicit base URL beats the whole candidate dance.
		cfg.Endpoint.Candidates = append(
			[]HostCandidate{{URL: v, Affinity: "any"}},
			cfg.Endpoint.Candidates...,
		)
	}
}
