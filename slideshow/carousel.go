// Package slideshow keeps the slide state of a mounted carousel and
// advances it on a timer.
package slideshow

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrNoSlides   = errors.New("carousel needs at least one slide")
	ErrOutOfRange = errors.New("slide index out of range")
)

// Clock schedules one-shot callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Option func(*Carousel)

// WithInterval sets the auto-rotation interval. Zero or less disables it.
func WithInterval(d time.Duration) Option {
	return func(c *Carousel) { c.interval = d }
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clock Clock) Option {
	return func(c *Carousel) { c.clock = clock }
}

// Carousel is the slide state machine of one mounted carousel. The index
// wraps over [0, n). While started with a positive interval and more than
// one slide, a single timer advances it; every index or interval change
// replaces that timer, and Stop cancels it for good.
type Carousel struct {
	mu sync.Mutex

	n        int
	index    int
	interval time.Duration

	clock   Clock
	timer   Timer
	seq     uint64
	running bool
	stopped bool

	subs    map[int]chan int
	nextSub int
}

func New(n int, opts ...Option) (*Carousel, error) {
	if n <= 0 {
		return nil, ErrNoSlides
	}
	c := &Carousel{
		n:     n,
		clock: realClock{},
		subs:  make(map[int]chan int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start arms auto-rotation. Calling it again has no effect.
func (c *Carousel) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running || c.stopped {
		return
	}
	c.running = true
	c.rearmLocked()
}

// Stop unmounts the carousel: the pending timer is cancelled, subscribers
// are closed and the index is frozen.
func (c *Carousel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true
	c.running = false
	c.rearmLocked()

	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
}

func (c *Carousel) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setLocked((c.index + 1) % c.n)
	return c.index
}

func (c *Carousel) Prev() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setLocked((c.index - 1 + c.n) % c.n)
	return c.index
}

// GoTo jumps to slide k. Out of range indices are rejected and leave the
// current slide in place.
func (c *Carousel) GoTo(k int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if k < 0 || k >= c.n {
		return c.index, ErrOutOfRange
	}
	c.setLocked(k)
	return c.index, nil
}

func (c *Carousel) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

func (c *Carousel) Len() int {
	return c.n
}

func (c *Carousel) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// SetInterval changes the rotation interval and restarts the countdown.
func (c *Carousel) SetInterval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.interval = d
	c.rearmLocked()
}

// Stopped reports whether the carousel has been unmounted.
func (c *Carousel) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// Subscribe returns a channel that receives the index after every change.
// A slow reader only ever sees the latest index. The returned func
// unsubscribes; the channel is closed on unsubscribe or Stop.
func (c *Carousel) Subscribe() (<-chan int, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan int, 1)
	if c.stopped {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			close(sub)
			delete(c.subs, id)
		}
	}
}

func (c *Carousel) setLocked(i int) {
	if c.stopped || i == c.index {
		return
	}
	c.index = i
	c.rearmLocked()
	c.notifyLocked()
}

// rearmLocked drops the pending timer and, when rotation applies, arms a
// new one. Bumping seq makes any callback that already fired a no-op.
func (c *Carousel) rearmLocked() {
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if !c.running || c.stopped || c.interval <= 0 || c.n <= 1 {
		return
	}

	seq := c.seq
	c.timer = c.clock.AfterFunc(c.interval, func() { c.tick(seq) })
}

func (c *Carousel) tick(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		return
	}
	c.timer = nil
	c.setLocked((c.index + 1) % c.n)
}

func (c *Carousel) notifyLocked() {
	for _, ch := range c.subs {
		select {
		case ch <- c.index:
		default:
			// drop the stale value, keep the latest
			select {
			case <-ch:
			default:
			}
			ch <- c.index
		}
	}
}
