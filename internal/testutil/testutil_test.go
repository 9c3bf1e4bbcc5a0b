package testutil

import (
	"testing"
	"time"
)

func TestAssertEqual(t *testing.T) {
	AssertEqual(t, 42, 42)
	AssertEqual(t, "a", "a")
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(t)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("context should have a deadline")
	}
	if time.Until(deadline) > TestTimeout {
		t.Error("deadline exceeds the test timeout")
	}
}

func TestWaitN(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	ch <- 3

	got := WaitN(t, ch, 3)
	AssertEqual(t, len(got), 3)
}

func TestAssertNone(t *testing.T) {
	ch := make(chan int)
	AssertNone(t, ch, 10*time.Millisecond)
}

func TestEventually(t *testing.T) {
	n := 0
	Eventually(t, func() bool {
		n++
		return n > 3
	})
}
