package limiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vnykmshr/driplimit/pkg/common/errors"
	"github.com/vnykmshr/driplimit/pkg/common/validation"
	"github.com/vnykmshr/driplimit/pkg/scheduler"
)

// DefaultPeriod is the drain period used when Config.Period is zero.
const DefaultPeriod = time.Minute

// ErrAmountTooLarge is returned by Acquire when the requested amount exceeds
// the limiter's maximum rate. Such a request could never be admitted, even
// with an empty bucket, so it fails synchronously without suspending.
var ErrAmountTooLarge = fmt.Errorf("requested amount exceeds max rate: %w", errors.ErrCapacityExceeded)

// Limiter caps the rate at which callers may perform a unit of work using a
// leaky bucket: up to MaxRate units are admitted per TimePeriod, with
// bursting allowed up to the full capacity. Capacity is never returned; it
// only drains over time.
type Limiter interface {
	// HasCapacity reports whether one unit could be admitted right now.
	// It does not consume capacity and does not block.
	HasCapacity() bool

	// HasCapacityN reports whether amount units could be admitted right now.
	// It does not consume capacity and does not block.
	HasCapacityN(amount float64) bool

	// Acquire admits one unit, suspending the caller until enough capacity
	// has drained. It returns ctx.Err() if the context is canceled while
	// waiting.
	Acquire(ctx context.Context) error

	// AcquireN admits amount units, suspending the caller until enough
	// capacity has drained. Amounts no greater than zero are admitted
	// immediately. It fails with an error wrapping
	// errors.ErrCapacityExceeded if amount exceeds MaxRate, and with
	// ctx.Err() if the context is canceled while waiting.
	AcquireN(ctx context.Context, amount float64) error

	// Do acquires one unit and then runs fn. Nothing is released when fn
	// returns; the admitted unit drains over time like any other.
	Do(ctx context.Context, fn func() error) error

	// MaxRate returns the capacity ceiling.
	MaxRate() float64

	// TimePeriod returns the period over which MaxRate units drain.
	TimePeriod() time.Duration

	// Level returns the current fill level of the bucket, decayed to now.
	Level() float64

	// Waiting returns the number of entries in the waiter queue, including
	// canceled entries that have not yet been purged.
	Waiting() int

	// Rebinds returns how many times the limiter has rebound to a new
	// scheduler after its previous one was stopped.
	Rebinds() uint64

	// String describes the limiter's configuration and current state.
	String() string
}

// Config holds configuration options for creating a new Limiter.
type Config struct {
	// MaxRate is the number of units admitted per Period.
	MaxRate float64

	// Period is the duration over which MaxRate units drain.
	// If zero, DefaultPeriod is used.
	Period time.Duration

	// Scheduler provides time and wake timers. If nil, the limiter binds
	// lazily to the scheduler carried by the first caller's context
	// (scheduler.System when none is set).
	Scheduler scheduler.Scheduler

	// Logger receives the diagnostic emitted when the limiter is reused
	// across scheduler instances. If nil, diagnostics are discarded.
	Logger *zerolog.Logger

	// InitialLevel is the initial fill level of the bucket. Negative
	// values start empty; values above MaxRate are clamped.
	InitialLevel float64
}

// leakyBucket implements the Limiter interface.
type leakyBucket struct {
	maxRate    float64
	period     time.Duration
	ratePerSec float64
	logger     zerolog.Logger

	mu        sync.Mutex
	sched     scheduler.Scheduler
	level     float64
	lastCheck time.Time
	waiters   waiterQueue
	nextSeq   uint64
	waker     scheduler.Timer
	rebinds   uint64
}

// New creates a new leaky bucket limiter admitting maxRate units per period.
// The bucket starts empty. It panics on invalid input; use NewSafe for
// validated construction.
func New(maxRate float64, period time.Duration) Limiter {
	return NewWithConfig(Config{
		MaxRate:      maxRate,
		Period:       period,
		InitialLevel: -1,
	})
}

// NewSafe creates a new leaky bucket limiter with validation that returns an
// error instead of panicking. This is the recommended way to create limiters
// for production use.
func NewSafe(maxRate float64, period time.Duration) (Limiter, error) {
	return NewWithConfigSafe(Config{
		MaxRate:      maxRate,
		Period:       period,
		InitialLevel: -1,
	})
}

// NewWithConfig creates a new leaky bucket limiter with the specified
// configuration. It panics on invalid input.
func NewWithConfig(config Config) Limiter {
	lim, err := NewWithConfigSafe(config)
	if err != nil {
		panic(err)
	}
	return lim
}

// NewWithConfigSafe creates a new leaky bucket limiter with validation that
// returns an error instead of panicking.
func NewWithConfigSafe(config Config) (Limiter, error) {
	if config.Period == 0 {
		config.Period = DefaultPeriod
	}
	if err := validation.ValidatePositiveFloat("limiter", "max_rate", config.MaxRate); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveDuration("limiter", "period", config.Period); err != nil {
		return nil, err
	}

	initialLevel := config.InitialLevel
	if initialLevel < 0 {
		initialLevel = 0
	}
	if initialLevel > config.MaxRate {
		initialLevel = config.MaxRate
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	l := &leakyBucket{
		maxRate:    config.MaxRate,
		period:     config.Period,
		ratePerSec: config.MaxRate / config.Period.Seconds(),
		logger:     logger,
		level:      initialLevel,
	}
	if config.Scheduler != nil {
		l.sched = config.Scheduler
		l.lastCheck = config.Scheduler.Now()
	}
	return l, nil
}

// MaxRate returns the capacity ceiling.
func (l *leakyBucket) MaxRate() float64 {
	return l.maxRate
}

// TimePeriod returns the period over which MaxRate units drain.
func (l *leakyBucket) TimePeriod() time.Duration {
	return l.period
}

// Level returns the current fill level of the bucket.
func (l *leakyBucket) Level() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sched != nil {
		l.leakLocked()
	}
	return l.level
}

// Waiting returns the number of entries in the waiter queue.
func (l *leakyBucket) Waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.waiters.Len()
}

// Rebinds returns how many times the limiter has rebound schedulers.
func (l *leakyBucket) Rebinds() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rebinds
}
