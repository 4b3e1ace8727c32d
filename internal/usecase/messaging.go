package usecase

import "campusmarket/internal/domain/repository"

// NewMessagingCore builds a thread registry and message store backed by the
// same repository and the same per-thread lock set. They must share locks:
// the unread counter and the bulk read mark observe the same serialization
// domain only when both components lock the same mutex per thread.
func NewMessagingCore(repo repository.ThreadRepository, maxContentLength int) (*ThreadRegistry, *MessageStore) {
	locks := newThreadLocks()
	return NewThreadRegistry(repo, locks), NewMessageStore(repo, locks, maxContentLength)
}
