// internal/core/carousel/carousel.go

// Package carousel implements a self-rotating carousel. Entries are kept in
// a circular buffer and rotation only moves an offset, so a next followed by
// a prev always restores the original order.
package carousel

import (
	"slices"
	"sync"
	"time"
)

// Default timings.
const (
	DefaultInterval        = 5 * time.Second
	DefaultAnimationWindow = 2 * time.Second
)

// State is the carousel's interaction state.
type State int

const (
	StateIdle State = iota
	StateAnimating
	StateDetailView
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnimating:
		return "animating"
	case StateDetailView:
		return "detail_view"
	}
	return "unknown"
}

// Direction of the last rotation.
type Direction int

const (
	DirectionNext Direction = iota
	DirectionPrev
)

func (d Direction) String() string {
	if d == DirectionPrev {
		return "prev"
	}
	return "next"
}

// Trigger names what caused a rotation.
type Trigger string

const (
	TriggerAuto   Trigger = "auto"
	TriggerManual Trigger = "manual"
	TriggerClick  Trigger = "click"
)

// Snapshot is the observable state after a transition.
type Snapshot[T any] struct {
	State     State
	Direction Direction
	Trigger   Trigger
	Order     []T
}

// Config holds carousel timings.
type Config struct {
	// Interval between automatic advances.
	Interval time.Duration
	// AnimationWindow is how long rotations are blocked after one starts
	// when no explicit completion signal arrives.
	AnimationWindow time.Duration
}

// DefaultConfig returns the standard carousel timings.
func DefaultConfig() Config {
	return Config{Interval: DefaultInterval, AnimationWindow: DefaultAnimationWindow}
}

// Option configures a Carousel.
type Option[T any] func(*Carousel[T])

// WithClock substitutes the clock used for timers.
func WithClock[T any](c Clock) Option[T] {
	return func(cr *Carousel[T]) { cr.clock = c }
}

// WithConfig overrides the default timings. Zero fields keep defaults.
func WithConfig[T any](cfg Config) Option[T] {
	return func(cr *Carousel[T]) {
		if cfg.Interval > 0 {
			cr.cfg.Interval = cfg.Interval
		}
		if cfg.AnimationWindow > 0 {
			cr.cfg.AnimationWindow = cfg.AnimationWindow
		}
	}
}

// WithObserver registers a callback invoked after every rotation and state
// change. It runs outside the carousel's lock.
func WithObserver[T any](fn func(Snapshot[T])) Option[T] {
	return func(cr *Carousel[T]) { cr.observer = fn }
}

// Carousel rotates a fixed set of entries. Rotations are guarded: while an
// animation is in flight further triggers are dropped, not queued. The
// auto-advance timer only exists while the carousel is started and not in
// detail view. Carousel is safe for concurrent use.
type Carousel[T any] struct {
	mu        sync.Mutex
	entries   []T
	offset    int
	direction Direction
	animating bool
	detail    bool
	started   bool
	closed    bool

	cfg      Config
	clock    Clock
	observer func(Snapshot[T])

	// Generation counters let late timer callbacks detect that the timer
	// they belong to was torn down.
	autoTimer Timer
	autoGen   uint64
	animTimer Timer
	animGen   uint64
}

// New creates a carousel over a copy of entries.
func New[T any](entries []T, opts ...Option[T]) *Carousel[T] {
	c := &Carousel[T]{
		entries: slices.Clone(entries),
		cfg:     DefaultConfig(),
		clock:   SystemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start mounts the carousel and arms auto-advance. Calling Start again is a
// no-op.
func (c *Carousel[T]) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true
	if !c.detail {
		c.armAutoLocked()
	}
}

// Close unmounts the carousel. All timers are cancelled and later triggers
// are ignored.
func (c *Carousel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.started = false
	c.stopAutoLocked()
	c.stopAnimLocked()
	c.animating = false
}

// Next rotates forward. It reports false when the trigger was dropped:
// during an animation, in detail view, or after Close.
func (c *Carousel[T]) Next() bool { return c.trigger(DirectionNext, TriggerManual) }

// Prev rotates backward. It reports false when the trigger was dropped.
func (c *Carousel[T]) Prev() bool { return c.trigger(DirectionPrev, TriggerManual) }

// Click handles a click at x within a viewport of the given width: the left
// half rotates back and the right half forward.
func (c *Carousel[T]) Click(x, width float64) bool {
	if width <= 0 || x < 0 || x > width {
		return false
	}
	dir := DirectionNext
	if x < width/2 {
		dir = DirectionPrev
	}
	return c.trigger(dir, TriggerClick)
}

// AnimationComplete ends the current animation early. It is a no-op when
// nothing is animating.
func (c *Carousel[T]) AnimationComplete() {
	c.mu.Lock()
	if !c.animating {
		c.mu.Unlock()
		return
	}
	c.stopAnimLocked()
	c.animating = false
	snap := c.snapshotLocked(TriggerManual)
	c.mu.Unlock()
	c.notify(snap)
}

// EnterDetail opens the detail view and suspends auto-advance.
func (c *Carousel[T]) EnterDetail() {
	c.mu.Lock()
	if c.detail || c.closed {
		c.mu.Unlock()
		return
	}
	c.detail = true
	c.stopAutoLocked()
	snap := c.snapshotLocked(TriggerManual)
	c.mu.Unlock()
	c.notify(snap)
}

// ExitDetail leaves the detail view and resumes auto-advance, counting a
// full interval from now.
func (c *Carousel[T]) ExitDetail() {
	c.mu.Lock()
	if !c.detail || c.closed {
		c.mu.Unlock()
		return
	}
	c.detail = false
	if c.started {
		c.armAutoLocked()
	}
	snap := c.snapshotLocked(TriggerManual)
	c.mu.Unlock()
	c.notify(snap)
}

// State returns the current interaction state. Detail view takes precedence
// over an animation still in flight.
func (c *Carousel[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Direction returns the direction of the most recent rotation.
func (c *Carousel[T]) Direction() Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.direction
}

// Order returns the entries in display order, starting with the current one.
func (c *Carousel[T]) Order() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.windowLocked(len(c.entries))
}

// Window returns the first n entries in display order.
func (c *Carousel[T]) Window(n int) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.windowLocked(n)
}

// Current returns the entry in front.
func (c *Carousel[T]) Current() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if len(c.entries) == 0 {
		return zero, false
	}
	return c.entries[c.offset], true
}

// Len returns the number of entries.
func (c *Carousel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Carousel[T]) trigger(dir Direction, src Trigger) bool {
	c.mu.Lock()
	if !c.rotateLocked(dir) {
		c.mu.Unlock()
		return false
	}
	snap := c.snapshotLocked(src)
	c.mu.Unlock()
	c.notify(snap)
	return true
}

func (c *Carousel[T]) rotateLocked(dir Direction) bool {
	n := len(c.entries)
	if c.closed || c.detail || c.animating || n < 2 {
		return false
	}

	c.animating = true
	c.direction = dir
	if dir == DirectionNext {
		c.offset = (c.offset + 1) % n
	} else {
		c.offset = (c.offset - 1 + n) % n
	}

	c.animGen++
	gen := c.animGen
	c.animTimer = c.clock.AfterFunc(c.cfg.AnimationWindow, func() { c.finishAnimation(gen) })
	return true
}

func (c *Carousel[T]) finishAnimation(gen uint64) {
	c.mu.Lock()
	if gen != c.animGen || !c.animating {
		c.mu.Unlock()
		return
	}
	c.animating = false
	c.animTimer = nil
	snap := c.snapshotLocked(TriggerAuto)
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Carousel[T]) armAutoLocked() {
	c.stopAutoLocked()
	c.autoGen++
	gen := c.autoGen
	c.autoTimer = c.clock.AfterFunc(c.cfg.Interval, func() { c.tick(gen) })
}

func (c *Carousel[T]) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.autoGen || !c.started || c.detail || c.closed {
		c.mu.Unlock()
		return
	}
	c.autoTimer = c.clock.AfterFunc(c.cfg.Interval, func() { c.tick(gen) })
	rotated := c.rotateLocked(DirectionNext)
	var snap Snapshot[T]
	if rotated {
		snap = c.snapshotLocked(TriggerAuto)
	}
	c.mu.Unlock()
	if rotated {
		c.notify(snap)
	}
}

func (c *Carousel[T]) stopAutoLocked() {
	c.autoGen++
	if c.autoTimer != nil {
		c.autoTimer.Stop()
		c.autoTimer = nil
	}
}

func (c *Carousel[T]) stopAnimLocked() {
	c.animGen++
	if c.animTimer != nil {
		c.animTimer.Stop()
		c.animTimer = nil
	}
}

func (c *Carousel[T]) stateLocked() State {
	switch {
	case c.detail:
		return StateDetailView
	case c.animating:
		return StateAnimating
	}
	return StateIdle
}

func (c *Carousel[T]) windowLocked(n int) []T {
	total := len(c.entries)
	if n > total {
		n = total
	}
	if n <= 0 {
		return []T{}
	}
	out := make([]T, n)
	for i := range n {
		out[i] = c.entries[(c.offset+i)%total]
	}
	return out
}

func (c *Carousel[T]) snapshotLocked(src Trigger) Snapshot[T] {
	return Snapshot[T]{
		State:     c.stateLocked(),
		Direction: c.direction,
		Trigger:   src,
		Order:     c.windowLocked(len(c.entries)),
	}
}

func (c *Carousel[T]) notify(s Snapshot[T]) {
	if c.observer != nil {
		c.observer(s)
	}
}
