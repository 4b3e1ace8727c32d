package repository

import (
	"context"
	"sync"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

// MemoryListingRepository is exported so development seeding can add listings.
type MemoryListingRepository struct {
	mu       sync.RWMutex
	listings map[string]*entity.Listing
}

var _ repository.ListingRepository = (*MemoryListingRepository)(nil)

func NewMemoryListingRepository() *MemoryListingRepository {
	return &MemoryListingRepository{
		listings: make(map[string]*entity.Listing),
	}
}

func (r *MemoryListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	l := *listing
	return &l, nil
}

func (r *MemoryListingRepository) Put(listing *entity.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := *listing
	r.listings[listing.ID] = &l
}
