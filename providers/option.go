package providers

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	logging "github.com/ipfs/go-log/v2"
)

const (
	defaultCacheSize       = 256
	defaultCleanupInterval = time.Hour
	defaultProvideValidity = 24 * time.Hour
)

type config struct {
	cacheSize       int
	cleanupInterval time.Duration
	provideValidity time.Duration
	clock           clock.Clock
	logger          *logging.ZapEventLogger
}

// Option is a function that sets a value in a Registry's config.
type Option func(*config) error

func getOpts(opts []Option) (config, error) {
	cfg := config{
		cacheSize:       defaultCacheSize,
		cleanupInterval: defaultCleanupInterval,
		provideValidity: defaultProvideValidity,
		clock:           clock.New(),
		logger:          log,
	}
	for i, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, fmt.Errorf("option %d failed: %w", i, err)
		}
	}
	return cfg, nil
}

// WithCacheSize sets the number of cids the in-memory LRU cache holds at
// once. Eviction is least-recently-used.
//
// Default is 256.
func WithCacheSize(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("cache size must be positive, got %d", n)
		}
		cfg.cacheSize = n
		return nil
	}
}

// WithCleanupInterval sets the time between expiry sweeps, given as a
// time.Duration.
//
// Default is 1 hour.
func WithCleanupInterval(d time.Duration) Option {
	return func(cfg *config) error {
		if d <= 0 {
			return fmt.Errorf("cleanup interval must be positive, got %s", d)
		}
		cfg.cleanupInterval = d
		return nil
	}
}

// WithProvideValidity sets the maximum age a provider record may reach
// before a sweep considers it stale and removes it.
//
// Default is 24 hours.
func WithProvideValidity(d time.Duration) Option {
	return func(cfg *config) error {
		if d <= 0 {
			return fmt.Errorf("provide validity must be positive, got %s", d)
		}
		cfg.provideValidity = d
		return nil
	}
}

// WithClock injects the clock and timer source the registry uses to read
// wall-clock time and schedule sweeps. Tests use this to drive virtual time
// with clock.NewMock(); production code can leave this unset to get the
// real clock.
func WithClock(c clock.Clock) Option {
	return func(cfg *config) error {
		if c != nil {
			cfg.clock = c
		}
		return nil
	}
}

// WithLogger overrides the package default logger sink.
func WithLogger(l *logging.ZapEventLogger) Option {
	return func(cfg *config) error {
		if l != nil {
			cfg.logger = l
		}
		return nil
	}
}
