package presence

import (
	"sync"
	"time"
)

type record struct {
	online   bool
	lastSeen time.Time
}

// Tracker holds each known contact's online flag and last-seen timestamp.
// Records are created the first time a contact is observed and only ever go
// stale, never away. Presence is advisory: no ordering guarantee relative to
// message state.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]*record
	now     func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		records: make(map[string]*record),
		now:     time.Now,
	}
}

func (t *Tracker) SetOnline(contactID string) {
	if contactID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[contactID] = &record{online: true, lastSeen: t.now()}
}

func (t *Tracker) SetOffline(contactID string) {
	if contactID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[contactID] = &record{online: false, lastSeen: t.now()}
}

// Heartbeat refreshes last-seen for a contact that is already connected.
func (t *Tracker) Heartbeat(contactID string) {
	t.SetOnline(contactID)
}

func (t *Tracker) IsOnline(contactID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.records[contactID]
	return ok && r.online
}

// LastSeen returns the last-seen timestamp and whether the contact has ever
// been observed.
func (t *Tracker) LastSeen(contactID string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.records[contactID]
	if !ok {
		return time.Time{}, false
	}
	return r.lastSeen, true
}
