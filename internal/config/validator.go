package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validate checks cfg and returns every problem found, joined.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, fmt.Errorf("server.listen is required"))
	}
	if c.Server.DashboardLimit <= 0 {
		errs = append(errs, fmt.Errorf("server.dashboard_limit must be positive (got %d)", c.Server.DashboardLimit))
	}
	if c.Ledger.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("ledger.capacity must be positive (got %d)", c.Ledger.Capacity))
	}
	if _, err := ParseByteSize(c.Webhook.MaxBodySize); err != nil {
		errs = append(errs, fmt.Errorf("webhook.max_body_size %q: %w", c.Webhook.MaxBodySize, err))
	}

	for name, v := range map[string]string{
		"webhook.verify_token": c.Webhook.VerifyToken,
		"webhook.app_secret":   c.Webhook.AppSecret,
	} {
		if m := envVarPattern.FindStringSubmatch(v); m != nil {
			errs = append(errs, fmt.Errorf("%s: environment variable ${%s} is not set", name, m[1]))
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error (got %q)", c.Log.Level))
	}
	if f := strings.ToLower(c.Log.Format); f != "json" && f != "text" {
		errs = append(errs, fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format))
	}

	return errors.Join(errs...)
}

// MaxBodyBytes returns the parsed webhook.max_body_size.
func (c *Config) MaxBodyBytes() int64 {
	n, err := ParseByteSize(c.Webhook.MaxBodySize)
	if err != nil {
		return 0
	}
	return n
}

// ParseByteSize parses size strings like "1MB", "512KB" or "2048576" to bytes.
func ParseByteSize(size string) (int64, error) {
	if size == "" {
		return 0, fmt.Errorf("size is empty")
	}

	upper := strings.ToUpper(strings.TrimSpace(size))
	multiplier := int64(1)

	switch {
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1024
		upper = strings.TrimSuffix(upper, "KB")
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1024 * 1024
		upper = strings.TrimSuffix(upper, "MB")
	case strings.HasSuffix(upper, "GB"):
		multiplier = 1024 * 1024 * 1024
		upper = strings.TrimSuffix(upper, "GB")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(upper), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}

	// Readers allow one byte past the limit to detect oversize bodies.
	result := value * multiplier
	if result/multiplier != value || result == math.MaxInt64 {
		return 0, fmt.Errorf("size too large")
	}
	return result, nil
}
