package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

// memoryThreadRepository keeps threads and their message logs in process
// memory. It is the default backend for development and tests. Reads return
// copies so callers can never mutate the stored records behind the
// repository's back.
type memoryThreadRepository struct {
	mu       sync.RWMutex
	threads  map[string]*entity.Thread
	byKey    map[string]string
	messages map[string][]*entity.Message
}

func NewMemoryThreadRepository() repository.ThreadRepository {
	return &memoryThreadRepository{
		threads:  make(map[string]*entity.Thread),
		byKey:    make(map[string]string),
		messages: make(map[string][]*entity.Message),
	}
}

func (r *memoryThreadRepository) Create(ctx context.Context, thread *entity.Thread) error {
	if thread.ID == "" {
		thread.ID = uuid.New().String()
	}

	now := time.Now()
	thread.CreatedAt = now
	thread.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[thread.Key]; exists {
		return errors.New("CONFLICT", "thread already exists for key", 409, nil)
	}

	stored := copyThread(thread)
	r.threads[thread.ID] = stored
	r.byKey[thread.Key] = thread.ID
	return nil
}

func (r *memoryThreadRepository) GetByID(ctx context.Context, id string) (*entity.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thread, ok := r.threads[id]
	if !ok {
		return nil, errors.ThreadNotFound(id)
	}
	return copyThread(thread), nil
}

func (r *memoryThreadRepository) GetByKey(ctx context.Context, key string) (*entity.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok {
		return nil, errors.NotFound("Thread", nil)
	}
	return copyThread(r.threads[id]), nil
}

func (r *memoryThreadRepository) ListByParticipant(ctx context.Context, participantID string, limit, offset int) ([]*entity.Thread, int64, error) {
	r.mu.RLock()
	var matched []*entity.Thread
	for _, thread := range r.threads {
		if thread.HasParticipant(participantID) {
			matched = append(matched, copyThread(thread))
		}
	}
	r.mu.RUnlock()

	// Most recent activity first; threads that never got a message fall back
	// to creation time, newest first.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.LastMessageAt.Equal(b.LastMessageAt) {
			return a.LastMessageAt.After(b.LastMessageAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	total := int64(len(matched))

	start := offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return matched[start:end], total, nil
}

func (r *memoryThreadRepository) Update(ctx context.Context, thread *entity.Thread) error {
	thread.UpdatedAt = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.threads[thread.ID]; !ok {
		return errors.ThreadNotFound(thread.ID)
	}
	r.threads[thread.ID] = copyThread(thread)
	return nil
}

func (r *memoryThreadRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.threads[message.ThreadID]; !ok {
		return errors.ThreadNotFound(message.ThreadID)
	}

	log := r.messages[message.ThreadID]
	message.Seq = int64(len(log)) + 1
	r.messages[message.ThreadID] = append(log, copyMessage(message))
	return nil
}

func (r *memoryThreadRepository) GetMessageByID(ctx context.Context, threadID, messageID string) (*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, msg := range r.messages[threadID] {
		if msg.ID == messageID {
			return copyMessage(msg), nil
		}
	}
	return nil, errors.NotFound("Message", nil)
}

func (r *memoryThreadRepository) ListMessages(ctx context.Context, threadID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.threads[threadID]; !ok {
		return nil, 0, errors.ThreadNotFound(threadID)
	}

	log := r.messages[threadID]
	total := int64(len(log))

	start := offset
	if start > len(log) {
		start = len(log)
	}
	end := len(log)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	out := make([]*entity.Message, 0, end-start)
	for _, msg := range log[start:end] {
		out = append(out, copyMessage(msg))
	}
	return out, total, nil
}

func (r *memoryThreadRepository) UpdateMessage(ctx context.Context, threadID string, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.messages[threadID]
	for i, msg := range log {
		if msg.ID == message.ID {
			updated := copyMessage(message)
			updated.Seq = msg.Seq
			log[i] = updated
			return nil
		}
	}
	return errors.NotFound("Message", nil)
}

func copyThread(t *entity.Thread) *entity.Thread {
	c := *t
	c.Participants = append([]string(nil), t.Participants...)
	c.ArchivedBy = append([]string(nil), t.ArchivedBy...)
	return &c
}

func copyMessage(m *entity.Message) *entity.Message {
	c := *m
	if m.Metadata != nil {
		c.Metadata = make(map[string]interface{}, len(m.Metadata))
		for k, v := range m.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
