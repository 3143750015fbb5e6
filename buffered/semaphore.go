package buffered

import "sync"

// semaphore is a counting semaphore that starts at zero permits, which is
// what the flush protocol needs and what x/sync's weighted semaphore cannot
// express (it treats releasing above the initial capacity as misuse). The
// permit count always mirrors the add-buffer size.
type semaphore struct {
	mu      sync.Mutex
	cond    *sync.Cond
	permits int
	closed  bool
}

func newSemaphore() *semaphore {
	s := &semaphore{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// release adds n permits and wakes the waiter.
func (s *semaphore) release(n int) {
	s.mu.Lock()
	s.permits += n
	s.mu.Unlock()
	s.cond.Broadcast()
}

// acquire blocks until n permits are available and takes them. It returns
// false, without taking anything, once the semaphore is closed.
func (s *semaphore) acquire(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.permits < n && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		return false
	}
	s.permits -= n
	return true
}

// tryAcquire takes n permits if they are available right now.
func (s *semaphore) tryAcquire(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.permits < n {
		return false
	}
	s.permits -= n
	return true
}

// drain resets the permit count to zero.
func (s *semaphore) drain() {
	s.mu.Lock()
	s.permits = 0
	s.mu.Unlock()
}

// close wakes the waiter and makes every future acquire fail.
func (s *semaphore) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}
