package repository

import (
	"context"

	"campusmarket/internal/domain/entity"
)

// ThreadRepository is the persistence port for threads and their message
// logs. The conversation service owns all cross-record consistency (dedup,
// per-thread serialization); implementations only need per-call atomicity.
type ThreadRepository interface {
	Create(ctx context.Context, thread *entity.Thread) error
	GetByID(ctx context.Context, id string) (*entity.Thread, error)
	GetByKey(ctx context.Context, key string) (*entity.Thread, error)
	ListByParticipant(ctx context.Context, participantID string, limit, offset int) ([]*entity.Thread, int64, error)
	Update(ctx context.Context, thread *entity.Thread) error

	// Message log methods. Messages belong to exactly one thread and are
	// appended with a per-thread monotonic sequence number.
	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessageByID(ctx context.Context, threadID, messageID string) (*entity.Message, error)
	ListMessages(ctx context.Context, threadID string, limit, offset int) ([]*entity.Message, int64, error)
	UpdateMessage(ctx context.Context, threadID string, message *entity.Message) error
}
