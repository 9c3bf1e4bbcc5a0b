package limiter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vnykmshr/driplimit/internal/testutil"
	dlerrors "github.com/vnykmshr/driplimit/pkg/common/errors"
	"github.com/vnykmshr/driplimit/pkg/scheduler"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// newVirtual returns a limiter bound to a fresh virtual scheduler.
func newVirtual(t *testing.T, maxRate float64, period time.Duration) (Limiter, *scheduler.Virtual) {
	t.Helper()
	vs := scheduler.NewVirtual(t0)
	lim := NewWithConfig(Config{
		MaxRate:      maxRate,
		Period:       period,
		Scheduler:    vs,
		InitialLevel: -1,
	})
	return lim, vs
}

// acquireAsync runs AcquireN in its own goroutine, reporting the result on
// the returned channel.
func acquireAsync(ctx context.Context, lim Limiter, amount float64) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- lim.AcquireN(ctx, amount) }()
	return ch
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		maxRate float64
		period  time.Duration
		panic   bool
	}{
		{"valid parameters", 10, time.Second, false},
		{"fractional rate", 0.5, time.Minute, false},
		{"zero rate", 0, time.Second, true},
		{"negative rate", -1, time.Second, true},
		{"negative period", 10, -time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.panic {
				defer func() {
					if r := recover(); r == nil {
						t.Error("expected panic")
					}
				}()
			}

			lim := New(tt.maxRate, tt.period)
			if !tt.panic {
				testutil.AssertEqual(t, lim.MaxRate(), tt.maxRate)
				testutil.AssertEqual(t, lim.TimePeriod(), tt.period)
				testutil.AssertEqual(t, lim.Level(), 0.0) // Starts empty
			}
		})
	}
}

func TestNewSafe(t *testing.T) {
	lim, err := NewSafe(5, 10*time.Second)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, lim.MaxRate(), 5.0)

	if _, err := NewSafe(0, time.Second); err == nil {
		t.Error("zero rate should be rejected")
	} else if !errors.Is(err, dlerrors.ErrInvalidConfiguration) {
		t.Errorf("want a validation error, got %v", err)
	}
}

func TestDefaultPeriod(t *testing.T) {
	lim := NewWithConfig(Config{MaxRate: 60})
	testutil.AssertEqual(t, lim.TimePeriod(), time.Minute)
}

func TestInitialLevelClamped(t *testing.T) {
	vs := scheduler.NewVirtual(t0)
	lim := NewWithConfig(Config{
		MaxRate:      3,
		Period:       3 * time.Second,
		Scheduler:    vs,
		InitialLevel: 10,
	})
	testutil.AssertEqual(t, lim.Level(), 3.0)
}

func TestAcquireTooLarge(t *testing.T) {
	lim, _ := newVirtual(t, 3, 3*time.Second)
	ctx := context.Background()

	err := lim.AcquireN(ctx, 4)
	testutil.AssertError(t, err)
	if !errors.Is(err, dlerrors.ErrCapacityExceeded) {
		t.Errorf("want ErrCapacityExceeded, got %v", err)
	}

	// fails synchronously: no suspension, no state mutation
	testutil.AssertEqual(t, lim.Level(), 0.0)
	testutil.AssertEqual(t, lim.Waiting(), 0)
}

func TestAcquireNonPositiveAmount(t *testing.T) {
	lim, _ := newVirtual(t, 3, 3*time.Second)
	ctx := context.Background()

	testutil.AssertNoError(t, lim.AcquireN(ctx, 0))
	testutil.AssertNoError(t, lim.AcquireN(ctx, -2))
	testutil.AssertEqual(t, lim.Level(), 0.0)
}

func TestAcquireCanceledContext(t *testing.T) {
	lim, _ := newVirtual(t, 3, 3*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := lim.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
	testutil.AssertEqual(t, lim.Level(), 0.0)
}

func TestHasCapacityMatchesAcquire(t *testing.T) {
	lim, _ := newVirtual(t, 3, 3*time.Second)
	ctx := context.Background()

	testutil.AssertNoError(t, lim.AcquireN(ctx, 2))

	if !lim.HasCapacityN(1) {
		t.Error("HasCapacityN(1) should be true with level 2 of 3")
	}
	if lim.HasCapacityN(1.5) {
		t.Error("HasCapacityN(1.5) should be false with level 2 of 3")
	}
	if lim.HasCapacityN(4) {
		t.Error("amounts above max rate never have capacity")
	}

	// the probe and an immediate acquire agree
	testutil.AssertNoError(t, lim.AcquireN(ctx, 1))
	testutil.AssertEqual(t, lim.Level(), 3.0)
	if lim.HasCapacity() {
		t.Error("HasCapacity should be false with a full bucket")
	}
}

func TestLevelDecay(t *testing.T) {
	lim, vs := newVirtual(t, 3, 3*time.Second) // drains 1 unit per second
	ctx := context.Background()

	testutil.AssertNoError(t, lim.AcquireN(ctx, 3))
	testutil.AssertEqual(t, lim.Level(), 3.0)

	vs.Advance(1500 * time.Millisecond)
	testutil.AssertEqual(t, lim.Level(), 1.5)

	// level clamps at zero, never negative
	vs.Advance(time.Minute)
	testutil.AssertEqual(t, lim.Level(), 0.0)
}

func TestBurstThenRefill(t *testing.T) {
	lim, vs := newVirtual(t, 5, 10*time.Second)
	ctx := context.Background()

	// the full capacity is available as a burst
	for i := 0; i < 5; i++ {
		testutil.AssertNoError(t, lim.Acquire(ctx))
	}
	if lim.HasCapacity() {
		t.Error("bucket should be full after the burst")
	}

	// one unit drains every two seconds at 5 per 10s
	vs.Advance(2 * time.Second)
	if !lim.HasCapacity() {
		t.Error("one unit should fit after 2s")
	}
}

func TestSystemSchedulerLiveness(t *testing.T) {
	// real clock: a full bucket drains and a suspended acquire completes
	lim := New(5, 50*time.Millisecond)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	for i := 0; i < 5; i++ {
		testutil.AssertNoError(t, lim.Acquire(ctx))
	}
	testutil.AssertNoError(t, lim.Acquire(ctx))
}

func TestString(t *testing.T) {
	lim, _ := newVirtual(t, 5, 10*time.Second)

	s := lim.String()
	if !strings.Contains(s, "max_rate=5") {
		t.Errorf("String() = %q, want it to mention max_rate", s)
	}
	if !strings.Contains(s, "waiters=0") {
		t.Errorf("String() = %q, want it to mention waiters", s)
	}
}
