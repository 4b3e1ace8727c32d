package usecase

import (
	"context"
	"time"
	"unicode/utf8"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

const lastMessagePreviewLen = 120

// MessageStore owns each thread's append-only message log and its delivery
// state. Every operation takes the thread's lock, which gives the two
// guarantees the rest of the system relies on: appends never interleave (so
// the lastMessage pointer always names the true latest message) and
// MarkAllRead is atomic relative to UnreadCountFor.
type MessageStore struct {
	repo             repository.ThreadRepository
	locks            *threadLocks
	maxContentLength int
}

func NewMessageStore(repo repository.ThreadRepository, locks *threadLocks, maxContentLength int) *MessageStore {
	return &MessageStore{
		repo:             repo,
		locks:            locks,
		maxContentLength: maxContentLength,
	}
}

// Append validates and stores a new message with initial state "sent",
// advancing the thread's lastMessage pointer in the same critical section.
// Oversized content is rejected before anything is mutated.
func (s *MessageStore) Append(ctx context.Context, threadID, senderID, content, msgType string, metadata map[string]interface{}) (*entity.Message, error) {
	if utf8.RuneCountInString(content) > s.maxContentLength {
		return nil, errors.MessageTooLarge(s.maxContentLength)
	}

	lock := s.locks.get(threadID)
	lock.Lock()
	defer lock.Unlock()

	thread, err := s.repo.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		ThreadID:      threadID,
		SenderID:      senderID,
		Content:       content,
		Type:          msgType,
		DeliveryState: entity.DeliverySent,
		Metadata:      metadata,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	thread.LastMessage = preview(content)
	thread.LastMessageAt = message.CreatedAt
	if err := s.repo.Update(ctx, thread); err != nil {
		return nil, err
	}

	return message, nil
}

// MarkDelivered advances a message to "delivered". A stale acknowledgement
// for a message that is already delivered or read is a no-op, not an error.
func (s *MessageStore) MarkDelivered(ctx context.Context, threadID, messageID string) error {
	return s.advance(ctx, threadID, messageID, entity.DeliveryDelivered)
}

// MarkRead advances a message to "read". Idempotent: read receipts may be
// retried.
func (s *MessageStore) MarkRead(ctx context.Context, threadID, messageID string) error {
	return s.advance(ctx, threadID, messageID, entity.DeliveryRead)
}

func (s *MessageStore) advance(ctx context.Context, threadID, messageID, state string) error {
	lock := s.locks.get(threadID)
	lock.Lock()
	defer lock.Unlock()

	message, err := s.repo.GetMessageByID(ctx, threadID, messageID)
	if err != nil {
		return err
	}

	if !message.AdvanceDelivery(state) {
		return nil
	}
	return s.repo.UpdateMessage(ctx, threadID, message)
}

// UnreadCountFor counts messages in the thread that were not sent by
// viewerID and are not yet read.
func (s *MessageStore) UnreadCountFor(ctx context.Context, threadID, viewerID string) (int, error) {
	lock := s.locks.get(threadID)
	lock.Lock()
	defer lock.Unlock()

	messages, _, err := s.repo.ListMessages(ctx, threadID, 0, 0)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, message := range messages {
		if message.Unread(viewerID) {
			count++
		}
	}
	return count, nil
}

// MarkAllRead transitions every message countable against viewerID to "read"
// in one step: no concurrent UnreadCountFor can observe a partially applied
// update. Returns how many messages changed state.
func (s *MessageStore) MarkAllRead(ctx context.Context, threadID, viewerID string) (int, error) {
	lock := s.locks.get(threadID)
	lock.Lock()
	defer lock.Unlock()

	messages, _, err := s.repo.ListMessages(ctx, threadID, 0, 0)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, message := range messages {
		if !message.Unread(viewerID) {
			continue
		}
		if message.AdvanceDelivery(entity.DeliveryRead) {
			if err := s.repo.UpdateMessage(ctx, threadID, message); err != nil {
				return marked, err
			}
			marked++
		}
	}
	return marked, nil
}

// ListMessages returns a page of the thread's log in append order.
func (s *MessageStore) ListMessages(ctx context.Context, threadID string, limit, offset int) ([]*entity.Message, int64, error) {
	lock := s.locks.get(threadID)
	lock.Lock()
	defer lock.Unlock()

	return s.repo.ListMessages(ctx, threadID, limit, offset)
}

// GetMessage returns one message from the thread's log.
func (s *MessageStore) GetMessage(ctx context.Context, threadID, messageID string) (*entity.Message, error) {
	lock := s.locks.get(threadID)
	lock.Lock()
	defer lock.Unlock()

	return s.repo.GetMessageByID(ctx, threadID, messageID)
}

// SetOfferStatus resolves a pending price-offer message to the given status
// ("accepted" or "rejected") and records who resolved it.
func (s *MessageStore) SetOfferStatus(ctx context.Context, threadID, messageID, status, actorID string) (*entity.Message, error) {
	lock := s.locks.get(threadID)
	lock.Lock()
	defer lock.Unlock()

	message, err := s.repo.GetMessageByID(ctx, threadID, messageID)
	if err != nil {
		return nil, err
	}

	if message.Type != entity.MessageTypeOffer {
		return nil, errors.BadRequest("Message is not an offer", nil)
	}
	if current, ok := message.Metadata["status"].(string); ok && current != "pending" {
		return nil, errors.BadRequest("Offer is not pending", nil)
	}

	if message.Metadata == nil {
		message.Metadata = make(map[string]interface{})
	}
	message.Metadata["status"] = status
	message.Metadata["resolved_by"] = actorID
	message.Metadata["resolved_at"] = time.Now().UTC().Format(time.RFC3339)

	if err := s.repo.UpdateMessage(ctx, threadID, message); err != nil {
		return nil, err
	}
	return message, nil
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= lastMessagePreviewLen {
		return content
	}
	runes := []rune(content)
	return string(runes[:lastMessagePreviewLen])
}
