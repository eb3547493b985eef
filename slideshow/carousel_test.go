package slideshow

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock runs scheduled callbacks only when Advance moves time past
// their deadline.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()

		next.f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func TestNew_NoSlides(t *testing.T) {
	if _, err := New(0); !errors.Is(err, ErrNoSlides) {
		t.Fatalf("err = %v, want ErrNoSlides", err)
	}
}

func TestCyclicClosure(t *testing.T) {
	for n := 1; n <= 6; n++ {
		c, err := New(n)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		for start := 0; start < n; start++ {
			if _, err := c.GoTo(start); err != nil {
				t.Fatalf("goto %d: %v", start, err)
			}
			for i := 0; i < n; i++ {
				c.Next()
			}
			if got := c.Current(); got != start {
				t.Errorf("n=%d: next x%d from %d landed on %d", n, n, start, got)
			}
			for i := 0; i < n; i++ {
				c.Prev()
			}
			if got := c.Current(); got != start {
				t.Errorf("n=%d: prev x%d from %d landed on %d", n, n, start, got)
			}
		}
	}
}

func TestNextPrevWrap(t *testing.T) {
	c, _ := New(3)
	if got := c.Prev(); got != 2 {
		t.Errorf("prev from 0 = %d, want 2", got)
	}
	if got := c.Next(); got != 0 {
		t.Errorf("next from 2 = %d, want 0", got)
	}
}

func TestGoTo(t *testing.T) {
	c, _ := New(4)
	for k := 0; k < 4; k++ {
		got, err := c.GoTo(k)
		if err != nil || got != k || c.Current() != k {
			t.Errorf("GoTo(%d) = %d, %v", k, got, err)
		}
	}

	c.GoTo(2)
	for _, k := range []int{-1, 4, 100} {
		got, err := c.GoTo(k)
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("GoTo(%d) err = %v, want ErrOutOfRange", k, err)
		}
		if got != 2 || c.Current() != 2 {
			t.Errorf("GoTo(%d) moved the slide to %d", k, c.Current())
		}
	}
}

func TestAutoRotation(t *testing.T) {
	clock := &fakeClock{}
	c, _ := New(3, WithInterval(2*time.Second), WithClock(clock))
	c.Start()

	clock.Advance(1999 * time.Millisecond)
	if got := c.Current(); got != 0 {
		t.Fatalf("advanced early to %d", got)
	}

	clock.Advance(time.Millisecond)
	if got := c.Current(); got != 1 {
		t.Fatalf("after 2s index = %d, want 1", got)
	}
	if got := clock.pending(); got != 1 {
		t.Fatalf("pending timers = %d, want exactly 1", got)
	}

	clock.Advance(4 * time.Second)
	if got := c.Current(); got != 0 {
		t.Fatalf("after 6s index = %d, want 0", got)
	}

	c.Stop()
	if got := clock.pending(); got != 0 {
		t.Fatalf("pending timers after stop = %d", got)
	}
	clock.Advance(10 * time.Second)
	if got := c.Current(); got != 0 {
		t.Fatalf("advanced after stop to %d", got)
	}
}

func TestAutoRotation_NavigationRearms(t *testing.T) {
	clock := &fakeClock{}
	c, _ := New(3, WithInterval(2*time.Second), WithClock(clock))
	c.Start()

	clock.Advance(1500 * time.Millisecond)
	c.Next()
	if got := clock.pending(); got != 1 {
		t.Fatalf("pending timers = %d, want 1", got)
	}

	// the countdown restarted at the manual step
	clock.Advance(1500 * time.Millisecond)
	if got := c.Current(); got != 1 {
		t.Fatalf("index = %d, want 1", got)
	}
	clock.Advance(500 * time.Millisecond)
	if got := c.Current(); got != 2 {
		t.Fatalf("index = %d, want 2", got)
	}
}

func TestStaleCallbackIgnored(t *testing.T) {
	clock := &fakeClock{}
	c, _ := New(3, WithInterval(time.Second), WithClock(clock))
	c.Start()

	clock.mu.Lock()
	stale := clock.timers[0].f
	clock.mu.Unlock()

	c.Next()
	stale()
	if got := c.Current(); got != 1 {
		t.Fatalf("stale callback advanced the slide to %d", got)
	}

	c.Stop()
	clock.mu.Lock()
	last := clock.timers[len(clock.timers)-1].f
	clock.mu.Unlock()
	last()
	if got := c.Current(); got != 1 {
		t.Fatalf("callback after stop advanced the slide to %d", got)
	}
}

func TestNoRotation(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		interval time.Duration
	}{
		{"single slide", 1, time.Second},
		{"zero interval", 3, 0},
		{"negative interval", 3, -time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{}
			c, _ := New(tt.n, WithInterval(tt.interval), WithClock(clock))
			c.Start()
			if got := clock.pending(); got != 0 {
				t.Fatalf("pending timers = %d, want 0", got)
			}
			clock.Advance(time.Minute)
			if got := c.Current(); got != 0 {
				t.Fatalf("index = %d, want 0", got)
			}
		})
	}
}

func TestSetInterval(t *testing.T) {
	clock := &fakeClock{}
	c, _ := New(2, WithClock(clock))
	c.Start()
	if clock.pending() != 0 {
		t.Fatal("no timer expected without interval")
	}

	c.SetInterval(3 * time.Second)
	clock.Advance(3 * time.Second)
	if got := c.Current(); got != 1 {
		t.Fatalf("index = %d, want 1", got)
	}

	c.SetInterval(0)
	if clock.pending() != 0 {
		t.Fatal("timer should be torn down")
	}
	if c.Interval() != 0 {
		t.Fatalf("interval = %v", c.Interval())
	}
}

func TestStopFreezes(t *testing.T) {
	c, _ := New(3)
	c.Next()
	c.Stop()
	c.Stop()
	if !c.Stopped() {
		t.Fatal("expected stopped")
	}
	c.Next()
	c.Prev()
	if got := c.Current(); got != 1 {
		t.Fatalf("index changed after stop: %d", got)
	}
}

func TestSubscribe(t *testing.T) {
	c, _ := New(3)
	ch, cancel := c.Subscribe()

	c.Next()
	if got := <-ch; got != 1 {
		t.Fatalf("got %d, want 1", got)
	}

	// a slow reader only sees the latest index
	c.Next()
	c.Next()
	if got := <-ch; got != 0 {
		t.Fatalf("got %d, want 0", got)
	}

	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}
	cancel()

	ch2, _ := c.Subscribe()
	c.Stop()
	if _, ok := <-ch2; ok {
		t.Fatal("channel should be closed after stop")
	}

	ch3, _ := c.Subscribe()
	if _, ok := <-ch3; ok {
		t.Fatal("subscribing to a stopped carousel should yield a closed channel")
	}
}

func TestAutoRotation_RealClock(t *testing.T) {
	c, _ := New(2, WithInterval(10*time.Millisecond))
	ch, cancel := c.Subscribe()
	defer cancel()
	c.Start()
	defer c.Stop()

	select {
	case got := <-ch:
		if got != 1 {
			t.Fatalf("got %d, want 1", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("carousel did not advance")
	}
}
