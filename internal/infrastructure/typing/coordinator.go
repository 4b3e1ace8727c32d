package typing

import (
	"sync"
	"time"
)

// Coordinator tracks which participants are currently composing a message in
// each thread. Entries expire after a short TTL and are evaluated lazily at
// read time; a background sweep keeps the maps from accumulating dead
// threads. Nothing here is persisted and every operation is best-effort.
type Coordinator struct {
	mu       sync.Mutex
	ttl      time.Duration
	byThread map[string]map[string]time.Time
	now      func() time.Time
}

func NewCoordinator(ttl time.Duration) *Coordinator {
	return &Coordinator{
		ttl:      ttl,
		byThread: make(map[string]map[string]time.Time),
		now:      time.Now,
	}
}

// Set records participantID as typing in threadID until now+TTL. Each
// keystroke event refreshes the deadline.
func (c *Coordinator) Set(threadID, participantID string) {
	if threadID == "" || participantID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	typers, ok := c.byThread[threadID]
	if !ok {
		typers = make(map[string]time.Time)
		c.byThread[threadID] = typers
	}
	typers[participantID] = c.now().Add(c.ttl)
}

// Clear removes the participant's typing signal, called on send or on an
// explicit stop-typing event.
func (c *Coordinator) Clear(threadID, participantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	typers, ok := c.byThread[threadID]
	if !ok {
		return
	}
	delete(typers, participantID)
	if len(typers) == 0 {
		delete(c.byThread, threadID)
	}
}

// ActiveTypers returns the participants whose signals have not expired yet.
func (c *Coordinator) ActiveTypers(threadID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	typers, ok := c.byThread[threadID]
	if !ok {
		return nil
	}

	now := c.now()
	var active []string
	for participantID, deadline := range typers {
		if deadline.After(now) {
			active = append(active, participantID)
		} else {
			delete(typers, participantID)
		}
	}
	if len(typers) == 0 {
		delete(c.byThread, threadID)
	}
	return active
}

func (c *Coordinator) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for threadID, typers := range c.byThread {
		for participantID, deadline := range typers {
			if !deadline.After(now) {
				delete(typers, participantID)
			}
		}
		if len(typers) == 0 {
			delete(c.byThread, threadID)
		}
	}
}

// StartSweepRoutine starts a periodic cleanup of expired signals.
func (c *Coordinator) StartSweepRoutine() {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			c.sweep()
		}
	}()
}
