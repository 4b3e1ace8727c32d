package usecase

import "sync"

// threadLocks hands out one mutex per thread id so every mutation of a
// thread's record or its message log is serialized, while operations on
// distinct threads proceed in parallel. Locks are never released back; the
// set only grows with the number of live threads, which is bounded by
// participants actually conversing.
type threadLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newThreadLocks() *threadLocks {
	return &threadLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

func (l *threadLocks) get(threadID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[threadID] = lock
	}
	return lock
}
