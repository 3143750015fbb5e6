// Package buffered wraps a containment index for concurrent use. Reads run
// under the shared side of a read/write lock; adds collect in a concurrent
// buffer under the same shared side and a background worker flushes the
// buffer into the wrapped index in batches under the exclusive side, which
// amortizes the write-lock cost. Readers see buffered entries immediately:
// every read method consults the buffer as well as the wrapped index.
//
// Locking protocol: scalar methods (Add, Del, Has, Len, NumSubsets,
// NumSupersets) lock internally and must be called without holding the
// cache's lock. Sequence methods (Subsets, Supersets, Iter) do not lock:
// the caller acquires the read lock before the call and holds it until the
// sequence is fully consumed, which keeps the flusher out for the whole
// query. Go's RWMutex is not reentrant, so the two groups must not nest.
//
//	c.RLock()
//	seq, err := c.Supersets(q)
//	if err == nil {
//		for e := range seq { ... }
//	}
//	c.RUnlock()
package buffered

import (
	"cmp"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/aglyzov/containment"
	"github.com/aglyzov/containment/nested"
)

// Option configures a Cache.
type Option func(*config)

type config struct {
	threshold int
	logger    *slog.Logger
}

// WithFlushThreshold sets how many buffered adds wake the background
// flusher. The default is 64. Reads scan the whole buffer, so keep it small.
func WithFlushThreshold(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.threshold = n
		}
	}
}

// WithLogger sets the logger the background flusher reports to. Logging is
// off by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Cache decorates a containment index with thread safety and add buffering.
type Cache[E cmp.Ordered, C containment.Entry[E]] struct {
	inner containment.Cache[E, C]

	mu sync.RWMutex // read side: queries and buffered adds; write side: Del, flush

	bufMu sync.Mutex // buffer map access under the shared lock side
	buf   map[C]struct{}

	sem    *semaphore
	logger *slog.Logger
	closed atomic.Bool
	done   chan struct{}
	once   sync.Once
}

var _ containment.Lockable[int, *containment.Item[int]] = (*Cache[int, *containment.Item[int]])(nil)

// New wraps an index and starts the background flusher. The wrapped index
// must not be used directly afterwards.
func New[E cmp.Ordered, C containment.Entry[E]](inner containment.Cache[E, C], opts ...Option) *Cache[E, C] {
	cfg := config{
		threshold: 64,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Cache[E, C]{
		inner:  inner,
		buf:    make(map[C]struct{}),
		sem:    newSemaphore(),
		logger: cfg.logger,
		done:   make(chan struct{}),
	}

	go c.flusher(cfg.threshold)
	return c
}

// RLock acquires the read lock. Hold it across a sequence method call and
// the consumption of its result.
func (c *Cache[E, C]) RLock() {
	c.mu.RLock()
}

// RUnlock releases the read lock.
func (c *Cache[E, C]) RUnlock() {
	c.mu.RUnlock()
}

// Close stops the background flusher after one final drain of the buffer.
// Further adds bypass the buffer and go straight to the wrapped index under
// the write lock. Close must not be called while holding the read lock.
func (c *Cache[E, C]) Close() error {
	c.once.Do(func() {
		c.closed.Store(true)
		c.sem.close()
		<-c.done
	})
	return nil
}

func (c *Cache[E, C]) Add(entry C) error {
	if c.closed.Load() {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.inner.Add(entry)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	// Validate up front: the flusher has nobody to hand an error to.
	if chk, ok := c.inner.(containment.Checker[C]); ok {
		if err := chk.Check(entry); err != nil {
			return err
		}
	}
	if c.inner.Has(entry) {
		return nil
	}

	c.bufMu.Lock()
	_, dup := c.buf[entry]
	if !dup {
		c.buf[entry] = struct{}{}
	}
	c.bufMu.Unlock()

	if !dup {
		c.sem.release(1)
	}
	return nil
}

func (c *Cache[E, C]) Del(entry C) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.buf[entry]; ok {
		delete(c.buf, entry)
		if !c.sem.tryAcquire(1) {
			panic(fmt.Errorf("%w: buffered entry had no semaphore permit", containment.ErrInvariant))
		}
		return nil
	}
	return c.inner.Del(entry)
}

func (c *Cache[E, C]) Has(entry C) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.inner.Has(entry) {
		return true
	}
	c.bufMu.Lock()
	_, ok := c.buf[entry]
	c.bufMu.Unlock()
	return ok
}

// Subsets yields the subsets present in the wrapped index, then the
// buffered ones. The buffer never overlaps the index (the Add guard), so no
// entry repeats. Call and consume under RLock.
func (c *Cache[E, C]) Subsets(entry C) (iter.Seq[C], error) {
	seq, err := c.inner.Subsets(entry)
	if err != nil {
		return nil, err
	}
	q := elementSet(entry)
	buffered := c.snapshot(func(b C) bool {
		return subsetOf(b.Elements(), q)
	})
	return nested.Concat(seq, sliceSeq(buffered)), nil
}

func (c *Cache[E, C]) NumSubsets(entry C) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n, err := c.inner.NumSubsets(entry)
	if err != nil {
		return 0, err
	}
	q := elementSet(entry)
	for _, b := range c.snapshot(func(b C) bool {
		return subsetOf(b.Elements(), q)
	}) {
		if !c.inner.Has(b) {
			n++
		}
	}
	return n, nil
}

// Supersets yields the supersets present in the wrapped index, then the
// buffered ones. Call and consume under RLock.
func (c *Cache[E, C]) Supersets(entry C) (iter.Seq[C], error) {
	seq, err := c.inner.Supersets(entry)
	if err != nil {
		return nil, err
	}
	q := entry.Elements()
	buffered := c.snapshot(func(b C) bool {
		return subsetOf(q, elementSet(b))
	})
	return nested.Concat(seq, sliceSeq(buffered)), nil
}

func (c *Cache[E, C]) NumSupersets(entry C) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n, err := c.inner.NumSupersets(entry)
	if err != nil {
		return 0, err
	}
	q := entry.Elements()
	for _, b := range c.snapshot(func(b C) bool {
		return subsetOf(q, elementSet(b))
	}) {
		if !c.inner.Has(b) {
			n++
		}
	}
	return n, nil
}

// Iter yields every entry: the wrapped index lazily, then a snapshot of the
// buffer. Call and consume under RLock.
func (c *Cache[E, C]) Iter() iter.Seq[C] {
	buffered := c.snapshot(func(C) bool { return true })
	return nested.Concat(c.inner.Iter(), sliceSeq(buffered))
}

func (c *Cache[E, C]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.bufMu.Lock()
	buffered := len(c.buf)
	c.bufMu.Unlock()
	return c.inner.Len() + buffered
}

// flusher drains the buffer into the wrapped index every time threshold new
// entries have accumulated, and once more on shutdown.
func (c *Cache[E, C]) flusher(threshold int) {
	defer close(c.done)

	for c.sem.acquire(threshold) {
		c.flush()
	}
	c.flush()
}

func (c *Cache[E, C]) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.buf) == 0 {
		return
	}
	if err := containment.AddAll(c.inner, maps.Keys(c.buf)); err != nil {
		// Entries were validated on Add; anything here is a bug.
		c.logger.Error("buffered flush failed", "error", err)
	}
	n := len(c.buf)
	clear(c.buf)
	c.sem.drain()
	c.logger.Debug("flushed add buffer", "entries", n)
}

func (c *Cache[E, C]) snapshot(keep func(C) bool) []C {
	c.bufMu.Lock()
	defer c.bufMu.Unlock()

	var out []C
	for b := range c.buf {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func sliceSeq[C any](s []C) iter.Seq[C] {
	return func(yield func(C) bool) {
		for _, v := range s {
			if !yield(v) {
				return
			}
		}
	}
}

func elementSet[E cmp.Ordered, C containment.Entry[E]](entry C) map[E]struct{} {
	elems := entry.Elements()
	set := make(map[E]struct{}, len(elems))
	for _, el := range elems {
		set[el] = struct{}{}
	}
	return set
}

func subsetOf[E cmp.Ordered](elems []E, set map[E]struct{}) bool {
	for _, el := range elems {
		if _, ok := set[el]; !ok {
			return false
		}
	}
	return true
}
