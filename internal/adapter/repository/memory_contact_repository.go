package repository

import (
	"context"
	"sync"
	"time"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type memoryContactRepository struct {
	mu       sync.RWMutex
	contacts map[string]*entity.Contact
}

func NewMemoryContactRepository() repository.ContactRepository {
	return &memoryContactRepository{
		contacts: make(map[string]*entity.Contact),
	}
}

func (r *memoryContactRepository) GetByID(ctx context.Context, id string) (*entity.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contact, ok := r.contacts[id]
	if !ok {
		return nil, errors.NotFound("Contact", nil)
	}
	c := *contact
	return &c, nil
}

func (r *memoryContactRepository) Save(ctx context.Context, contact *entity.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}
	contact.UpdatedAt = now

	c := *contact
	r.contacts[contact.ID] = &c
	return nil
}
