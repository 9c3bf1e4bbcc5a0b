// Package config loads declarative limiter definitions from YAML.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vnykmshr/driplimit/pkg/common/errors"
	"github.com/vnykmshr/driplimit/pkg/limiter"
	"github.com/vnykmshr/driplimit/pkg/metrics"
)

// Limit describes one named admission limit.
type Limit struct {
	MaxRate  float64 `yaml:"max_rate"`
	PeriodMS int     `yaml:"period_ms"`
}

// Period returns the drain period, defaulting to one minute.
func (l Limit) Period() time.Duration {
	if l.PeriodMS <= 0 {
		return time.Minute
	}
	return time.Duration(l.PeriodMS) * time.Millisecond
}

// Metrics controls Prometheus instrumentation of the built limiters.
type Metrics struct {
	Enabled bool `yaml:"enabled"`
}

// Root is the top-level configuration document.
type Root struct {
	Limits  map[string]Limit `yaml:"limits"`
	Metrics Metrics          `yaml:"metrics"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Root, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Root
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	for name, lim := range cfg.Limits {
		if name == "" {
			return nil, errors.NewValidationError("config", "name", name, "cannot be empty")
		}
		if lim.MaxRate <= 0 {
			return nil, errors.NewValidationError("config", name+".max_rate", lim.MaxRate, "must be positive").
				WithHint("each limit needs a positive max_rate")
		}
	}
	return &cfg, nil
}

// Build constructs a limiter per named limit. When metrics are enabled each
// limiter is wrapped with instrumentation labeled by its name.
func (r *Root) Build() (map[string]limiter.Limiter, error) {
	limiters := make(map[string]limiter.Limiter, len(r.Limits))
	for name, lim := range r.Limits {
		cfg := limiter.Config{
			MaxRate:      lim.MaxRate,
			Period:       lim.Period(),
			InitialLevel: -1,
		}
		if r.Metrics.Enabled {
			limiters[name] = limiter.NewWithConfigAndMetrics(cfg, name, metrics.Config{
				Enabled:  true,
				Registry: nil, // DefaultRegistry
			})
			continue
		}
		built, err := limiter.NewWithConfigSafe(cfg)
		if err != nil {
			return nil, err
		}
		limiters[name] = built
	}
	return limiters, nil
}
