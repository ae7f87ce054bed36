package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/gookit/validate"
)

// Validate checks every configuration section and reports all failures at once.
func (cfg *BaseServerConfig) Validate() error {
	var errs []error

	sections := map[string]any{
		"log":             &cfg.Log,
		"log.rotation":    &cfg.Log.Rotation,
		"metadata":        &cfg.Metadata,
		"metadata.sqlite": &cfg.Metadata.SQLite,
		"cache":           &cfg.Cache,
		"refresh":         &cfg.Refresh,
	}

	for name, section := range sections {
		v := validate.Struct(section)
		if !v.Validate() {
			errs = append(errs, fmt.Errorf("%s: %s", name, v.Errors.Error()))
		}
	}

	if _, err := time.ParseDuration(cfg.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("shutdown_timeout: %w", err))
	}

	interval, err := time.ParseDuration(cfg.Refresh.Interval)
	if err != nil {
		errs = append(errs, fmt.Errorf("refresh.interval: %w", err))
	} else if interval <= 0 {
		errs = append(errs, fmt.Errorf("refresh.interval: must be positive"))
	}

	if cfg.Cache.Enabled && cfg.Cache.SizeMB <= 0 {
		errs = append(errs, fmt.Errorf("cache.size_mb: must be positive when cache is enabled"))
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Address == "" {
		errs = append(errs, fmt.Errorf("metrics.address: required when metrics are enabled"))
	}

	return errors.Join(errs...)
}
