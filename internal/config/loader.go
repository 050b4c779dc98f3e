package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Environment variables that override file values.
const (
	EnvVerifyToken = "VERIFY_TOKEN"
	EnvAppSecret   = "APP_SECRET"
	EnvPort        = "PORT"
	EnvLogLevel    = "LOG_LEVEL"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none are
// given) into the process environment. Variables already set win, and a
// missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load builds the configuration: defaults, then the YAML file at configPath
// (skipped when empty), then environment overrides. The result is validated.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", configPath, err)
		}
		if err := yaml.Unmarshal([]byte(interpolateEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", configPath, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays environment variables. Set-but-empty APP_SECRET is
// honoured so signature checking can be switched off explicitly.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvVerifyToken); ok {
		cfg.Webhook.VerifyToken = v
	}
	if v, ok := os.LookupEnv(EnvAppSecret); ok {
		cfg.Webhook.AppSecret = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		cfg.Server.Listen = "0.0.0.0:" + v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
}

// interpolateEnv replaces ${VAR} with its environment value. Unset
// variables are left in place and caught by Validate.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// Marshal renders cfg as YAML with secrets masked.
func Marshal(cfg *Config) ([]byte, error) {
	masked := *cfg
	masked.Webhook.VerifyToken = mask(cfg.Webhook.VerifyToken)
	masked.Webhook.AppSecret = mask(cfg.Webhook.AppSecret)
	return yaml.Marshal(&masked)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
