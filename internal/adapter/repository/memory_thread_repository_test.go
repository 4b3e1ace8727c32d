package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"campusmarket/internal/domain/entity"
	"campusmarket/pkg/errors"
)

func newTestThread(t *testing.T, repo interface {
	Create(ctx context.Context, thread *entity.Thread) error
}, a, b, listing string) *entity.Thread {
	t.Helper()

	key, err := entity.ThreadKey(a, b, listing)
	assert.NoError(t, err)

	thread := &entity.Thread{
		Key:          key,
		Participants: []string{a, b},
		ListingID:    listing,
	}
	assert.NoError(t, repo.Create(context.Background(), thread))
	return thread
}

func TestMemoryThreadCreateAndLookup(t *testing.T) {
	repo := NewMemoryThreadRepository()
	ctx := context.Background()

	thread := newTestThread(t, repo, "u1", "u2", "item-42")
	assert.NotEmpty(t, thread.ID)

	byID, err := repo.GetByID(ctx, thread.ID)
	assert.NoError(t, err)
	assert.Equal(t, thread.Key, byID.Key)

	byKey, err := repo.GetByKey(ctx, thread.Key)
	assert.NoError(t, err)
	assert.Equal(t, thread.ID, byKey.ID)
}

func TestMemoryThreadDuplicateKeyRejected(t *testing.T) {
	repo := NewMemoryThreadRepository()
	thread := newTestThread(t, repo, "u1", "u2", "")

	dup := &entity.Thread{Key: thread.Key, Participants: []string{"u1", "u2"}}
	err := repo.Create(context.Background(), dup)
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestMemoryThreadGetUnknown(t *testing.T) {
	repo := NewMemoryThreadRepository()

	_, err := repo.GetByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, "THREAD_NOT_FOUND"))

	_, err = repo.GetByKey(context.Background(), "nope")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestMemoryMessagesKeepAppendOrder(t *testing.T) {
	repo := NewMemoryThreadRepository()
	ctx := context.Background()
	thread := newTestThread(t, repo, "u1", "u2", "")

	for i := 1; i <= 5; i++ {
		msg := &entity.Message{
			ThreadID: thread.ID,
			SenderID: "u1",
			Content:  fmt.Sprintf("message %d", i),
			Type:     entity.MessageTypeText,
		}
		assert.NoError(t, repo.CreateMessage(ctx, msg))
		assert.Equal(t, int64(i), msg.Seq)
	}

	messages, total, err := repo.ListMessages(ctx, thread.ID, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
	for i, msg := range messages {
		assert.Equal(t, fmt.Sprintf("message %d", i+1), msg.Content)
	}
}

func TestMemoryMessagesPagination(t *testing.T) {
	repo := NewMemoryThreadRepository()
	ctx := context.Background()
	thread := newTestThread(t, repo, "u1", "u2", "")

	for i := 1; i <= 5; i++ {
		assert.NoError(t, repo.CreateMessage(ctx, &entity.Message{
			ThreadID: thread.ID,
			SenderID: "u1",
			Content:  fmt.Sprintf("message %d", i),
		}))
	}

	page, total, err := repo.ListMessages(ctx, thread.ID, 2, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)
	assert.Equal(t, "message 2", page[0].Content)
	assert.Equal(t, "message 3", page[1].Content)
}

func TestMemoryListByParticipantOrdering(t *testing.T) {
	repo := NewMemoryThreadRepository()
	ctx := context.Background()

	older := newTestThread(t, repo, "u1", "u2", "")
	newer := newTestThread(t, repo, "u1", "u3", "")

	older.LastMessageAt = time.Now().Add(-time.Hour)
	assert.NoError(t, repo.Update(ctx, older))
	newer.LastMessageAt = time.Now()
	assert.NoError(t, repo.Update(ctx, newer))

	threads, total, err := repo.ListByParticipant(ctx, "u1", 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, newer.ID, threads[0].ID)
	assert.Equal(t, older.ID, threads[1].ID)

	// u2 only sees the thread it belongs to.
	threads, total, err = repo.ListByParticipant(ctx, "u2", 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, older.ID, threads[0].ID)
}

func TestMemoryReadsReturnCopies(t *testing.T) {
	repo := NewMemoryThreadRepository()
	ctx := context.Background()
	thread := newTestThread(t, repo, "u1", "u2", "")

	got, err := repo.GetByID(ctx, thread.ID)
	assert.NoError(t, err)
	got.Participants[0] = "intruder"

	again, err := repo.GetByID(ctx, thread.ID)
	assert.NoError(t, err)
	assert.Equal(t, "u1", again.Participants[0])
}

func TestMemoryUpdateMessagePreservesSeq(t *testing.T) {
	repo := NewMemoryThreadRepository()
	ctx := context.Background()
	thread := newTestThread(t, repo, "u1", "u2", "")

	msg := &entity.Message{ThreadID: thread.ID, SenderID: "u1", Content: "hi"}
	assert.NoError(t, repo.CreateMessage(ctx, msg))

	msg.DeliveryState = entity.DeliveryRead
	msg.Seq = 999
	assert.NoError(t, repo.UpdateMessage(ctx, thread.ID, msg))

	stored, err := repo.GetMessageByID(ctx, thread.ID, msg.ID)
	assert.NoError(t, err)
	assert.Equal(t, entity.DeliveryRead, stored.DeliveryState)
	assert.Equal(t, int64(1), stored.Seq)
}
