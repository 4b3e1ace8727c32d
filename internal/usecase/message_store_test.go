package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"campusmarket/internal/adapter/repository"
	"campusmarket/internal/domain/entity"
	"campusmarket/pkg/errors"
)

func newTestStore(t *testing.T) (*ThreadRegistry, *MessageStore, *entity.Thread) {
	t.Helper()

	registry, store := NewMessagingCore(repository.NewMemoryThreadRepository(), 4000)
	thread, _, err := registry.FindOrCreate(context.Background(), "u1", "u2", "item-42")
	assert.NoError(t, err)
	return registry, store, thread
}

func TestAppendStartsAsSent(t *testing.T) {
	_, store, thread := newTestStore(t)
	ctx := context.Background()

	msg, err := store.Append(ctx, thread.ID, "u1", "hey, is this still available?", entity.MessageTypeText, nil)
	assert.NoError(t, err)
	assert.Equal(t, entity.DeliverySent, msg.DeliveryState)
	assert.Equal(t, int64(1), msg.Seq)
}

func TestAppendAdvancesLastMessage(t *testing.T) {
	registry, store, thread := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, thread.ID, "u1", "first", entity.MessageTypeText, nil)
	assert.NoError(t, err)
	_, err = store.Append(ctx, thread.ID, "u2", "second", entity.MessageTypeText, nil)
	assert.NoError(t, err)

	got, err := registry.Get(ctx, thread.ID)
	assert.NoError(t, err)
	assert.Equal(t, "second", got.LastMessage)
	assert.False(t, got.LastMessageAt.IsZero())
}

func TestAppendRejectsOversizedContent(t *testing.T) {
	registry, store := NewMessagingCore(repository.NewMemoryThreadRepository(), 10)
	ctx := context.Background()
	thread, _, err := registry.FindOrCreate(ctx, "u1", "u2", "")
	assert.NoError(t, err)

	_, err = store.Append(ctx, thread.ID, "u1", strings.Repeat("x", 11), entity.MessageTypeText, nil)
	assert.True(t, errors.Is(err, "MESSAGE_TOO_LARGE"))

	// Nothing was appended and the thread pointer is untouched.
	messages, total, err := store.ListMessages(ctx, thread.ID, 0, 0)
	assert.NoError(t, err)
	assert.Empty(t, messages)
	assert.Equal(t, int64(0), total)

	got, err := registry.Get(ctx, thread.ID)
	assert.NoError(t, err)
	assert.Empty(t, got.LastMessage)
}

func TestAppendCountsRunesNotBytes(t *testing.T) {
	registry, store := NewMessagingCore(repository.NewMemoryThreadRepository(), 10)
	ctx := context.Background()
	thread, _, err := registry.FindOrCreate(ctx, "u1", "u2", "")
	assert.NoError(t, err)

	// Ten multibyte runes are within a ten-character limit.
	_, err = store.Append(ctx, thread.ID, "u1", strings.Repeat("é", 10), entity.MessageTypeText, nil)
	assert.NoError(t, err)
}

func TestUnreadCountFor(t *testing.T) {
	_, store, thread := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, thread.ID, "u1", "hello", entity.MessageTypeText, nil)
		assert.NoError(t, err)
	}

	unread, err := store.UnreadCountFor(ctx, thread.ID, "u2")
	assert.NoError(t, err)
	assert.Equal(t, 3, unread)

	// The sender's own messages never count against them.
	unread, err = store.UnreadCountFor(ctx, thread.ID, "u1")
	assert.NoError(t, err)
	assert.Equal(t, 0, unread)
}

func TestDeliveredStillCountsAsUnread(t *testing.T) {
	_, store, thread := newTestStore(t)
	ctx := context.Background()

	msg, err := store.Append(ctx, thread.ID, "u1", "hello", entity.MessageTypeText, nil)
	assert.NoError(t, err)
	assert.NoError(t, store.MarkDelivered(ctx, thread.ID, msg.ID))

	unread, err := store.UnreadCountFor(ctx, thread.ID, "u2")
	assert.NoError(t, err)
	assert.Equal(t, 1, unread)
}

func TestMarkAllRead(t *testing.T) {
	_, store, thread := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, thread.ID, "u1", "hello", entity.MessageTypeText, nil)
		assert.NoError(t, err)
	}
	_, err := store.Append(ctx, thread.ID, "u2", "reply", entity.MessageTypeText, nil)
	assert.NoError(t, err)

	marked, err := store.MarkAllRead(ctx, thread.ID, "u2")
	assert.NoError(t, err)
	assert.Equal(t, 3, marked, "only the other side's messages are marked")

	unread, err := store.UnreadCountFor(ctx, thread.ID, "u2")
	assert.NoError(t, err)
	assert.Equal(t, 0, unread)

	// u1 still has u2's reply unread.
	unread, err = store.UnreadCountFor(ctx, thread.ID, "u1")
	assert.NoError(t, err)
	assert.Equal(t, 1, unread)

	// Idempotent.
	marked, err = store.MarkAllRead(ctx, thread.ID, "u2")
	assert.NoError(t, err)
	assert.Equal(t, 0, marked)
}

func TestStaleDeliveryAckAfterRead(t *testing.T) {
	_, store, thread := newTestStore(t)
	ctx := context.Background()

	msg, err := store.Append(ctx, thread.ID, "u1", "hello", entity.MessageTypeText, nil)
	assert.NoError(t, err)

	assert.NoError(t, store.MarkRead(ctx, thread.ID, msg.ID))
	assert.NoError(t, store.MarkDelivered(ctx, thread.ID, msg.ID), "late acknowledgement is a no-op, not an error")

	got, err := store.GetMessage(ctx, thread.ID, msg.ID)
	assert.NoError(t, err)
	assert.Equal(t, entity.DeliveryRead, got.DeliveryState)
}

func TestMarkAllReadAtomicAgainstUnreadCount(t *testing.T) {
	_, store, thread := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := store.Append(ctx, thread.ID, "u1", "hello", entity.MessageTypeText, nil)
		assert.NoError(t, err)
	}

	const observations = 50
	counts := make([]int, observations)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < observations; i++ {
			n, err := store.UnreadCountFor(ctx, thread.ID, "u2")
			assert.NoError(t, err)
			counts[i] = n
		}
	}()

	marked, err := store.MarkAllRead(ctx, thread.ID, "u2")
	assert.NoError(t, err)
	assert.Equal(t, 20, marked)
	wg.Wait()

	// Every observed count is either everything or nothing: the bulk mark is
	// never visible half-applied.
	for _, n := range counts {
		assert.Contains(t, []int{0, 20}, n)
	}
}

func TestSetOfferStatus(t *testing.T) {
	_, store, thread := newTestStore(t)
	ctx := context.Background()

	offer, err := store.Append(ctx, thread.ID, "u1", "50 for the desk lamp?", entity.MessageTypeOffer, map[string]interface{}{
		"status": "pending",
		"amount": 50,
	})
	assert.NoError(t, err)

	updated, err := store.SetOfferStatus(ctx, thread.ID, offer.ID, "accepted", "u2")
	assert.NoError(t, err)
	assert.Equal(t, "accepted", updated.Metadata["status"])
	assert.Equal(t, "u2", updated.Metadata["resolved_by"])

	// A resolved offer cannot be resolved again.
	_, err = store.SetOfferStatus(ctx, thread.ID, offer.ID, "rejected", "u2")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSetOfferStatusRejectsNonOffer(t *testing.T) {
	_, store, thread := newTestStore(t)
	ctx := context.Background()

	msg, err := store.Append(ctx, thread.ID, "u1", "hello", entity.MessageTypeText, nil)
	assert.NoError(t, err)

	_, err = store.SetOfferStatus(ctx, thread.ID, msg.ID, "accepted", "u2")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}
