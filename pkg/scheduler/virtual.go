package scheduler

import (
	"container/heap"
	"sync"
	"time"
)

// Virtual is a deterministic Scheduler driven entirely by Advance. It is
// intended for simulations and tests: time only moves when told to, and due
// timers fire synchronously inside Advance, in (due time, arm order) order,
// with Now reporting each timer's due time while its callback runs.
type Virtual struct {
	mu      sync.Mutex
	now     time.Time
	nextSeq uint64
	timers  timerHeap
	stopped bool
}

// NewVirtual creates a Virtual scheduler starting at the given time.
// If zero time is provided, uses current time.
func NewVirtual(start time.Time) *Virtual {
	if start.IsZero() {
		start = time.Now()
	}
	return &Virtual{now: start}
}

// Now returns the current virtual time.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// AfterFunc arms a virtual timer. On a stopped scheduler the returned timer
// is inert and never fires.
func (v *Virtual) AfterFunc(d time.Duration, f func()) Timer {
	v.mu.Lock()
	defer v.mu.Unlock()

	if d < 0 {
		d = 0
	}
	t := &virtualTimer{
		v:    v,
		when: v.now.Add(d),
		seq:  v.nextSeq,
		fn:   f,
	}
	v.nextSeq++

	if v.stopped {
		t.stopped = true
		return t
	}
	heap.Push(&v.timers, t)
	return t
}

// Advance moves the virtual clock forward by d, firing every due timer along
// the way. Callbacks run synchronously in the caller's goroutine, without the
// scheduler lock held, so they may arm or stop timers; newly armed timers that
// fall within the advanced window fire during the same call.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	for !v.stopped {
		for v.timers.Len() > 0 && v.timers[0].stopped {
			heap.Pop(&v.timers)
		}
		if v.timers.Len() == 0 || v.timers[0].when.After(target) {
			break
		}
		t := heap.Pop(&v.timers).(*virtualTimer)
		if t.when.After(v.now) {
			v.now = t.when
		}
		t.fired = true
		v.mu.Unlock()
		t.fn()
		v.mu.Lock()
	}
	if target.After(v.now) {
		v.now = target
	}
	v.mu.Unlock()
}

// Stop tears the scheduler down. Pending timers are discarded and never fire.
func (v *Virtual) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopped = true
	v.timers = nil
}

// Stopped reports whether Stop has been called.
func (v *Virtual) Stopped() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stopped
}

type virtualTimer struct {
	v       *Virtual
	when    time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

// Stop cancels the timer. It reports false if the timer already fired or
// was already stopped.
func (t *virtualTimer) Stop() bool {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// timerHeap orders pending timers by due time, then by arm order.
type timerHeap []*virtualTimer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x interface{}) {
	*h = append(*h, x.(*virtualTimer))
}

func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return item
}
