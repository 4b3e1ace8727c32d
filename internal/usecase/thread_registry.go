package usecase

import (
	"context"
	"sync"
	"time"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

// ThreadRegistry owns thread identity and the dedup invariant: at most one
// thread per unordered participant pair and listing id. The check-then-create
// in FindOrCreate runs under a single mutex so two callers racing to open the
// same new conversation can never both create one.
type ThreadRegistry struct {
	repo  repository.ThreadRepository
	locks *threadLocks
	mu    sync.Mutex
}

func NewThreadRegistry(repo repository.ThreadRepository, locks *threadLocks) *ThreadRegistry {
	return &ThreadRegistry{
		repo:  repo,
		locks: locks,
	}
}

// FindOrCreate returns the existing thread for the participant pair and
// listing, or lazily creates one. Idempotent: any interleaving of calls with
// the same pair (in either order) and listing yields the same thread. The
// second return value reports whether a new thread was created.
func (r *ThreadRegistry) FindOrCreate(ctx context.Context, participantA, participantB, listingID string) (*entity.Thread, bool, error) {
	key, err := entity.ThreadKey(participantA, participantB, listingID)
	if err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.repo.GetByKey(ctx, key)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, false, err
	}

	thread := &entity.Thread{
		Key:          key,
		Participants: []string{participantA, participantB},
		ListingID:    listingID,
	}
	if err := r.repo.Create(ctx, thread); err != nil {
		return nil, false, err
	}
	return thread, true, nil
}

func (r *ThreadRegistry) Get(ctx context.Context, threadID string) (*entity.Thread, error) {
	return r.repo.GetByID(ctx, threadID)
}

// ListForParticipant returns the participant's threads ordered by last
// message time descending, creation time descending on ties.
func (r *ThreadRegistry) ListForParticipant(ctx context.Context, participantID string, limit, offset int) ([]*entity.Thread, int64, error) {
	return r.repo.ListByParticipant(ctx, participantID, limit, offset)
}

// SetArchived flips the per-viewer visibility flag on a thread. Runs under
// the thread's lock so it cannot race a concurrent append's lastMessage
// update.
func (r *ThreadRegistry) SetArchived(ctx context.Context, threadID, userID string, archived bool) error {
	lock := r.locks.get(threadID)
	lock.Lock()
	defer lock.Unlock()

	thread, err := r.repo.GetByID(ctx, threadID)
	if err != nil {
		return err
	}
	thread.SetArchived(userID, archived)
	thread.UpdatedAt = time.Now()
	return r.repo.Update(ctx, thread)
}
