package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
)

type firestoreThreadRepository struct {
	client *firestore.Client
}

func NewFirestoreThreadRepository(client *firestore.Client) repository.ThreadRepository {
	return &firestoreThreadRepository{
		client: client,
	}
}

func (r *firestoreThreadRepository) Create(ctx context.Context, thread *entity.Thread) error {
	if thread.ID == "" {
		thread.ID = uuid.New().String()
	}

	now := time.Now()
	thread.CreatedAt = now
	thread.UpdatedAt = now

	_, err := r.client.Collection("threads").Doc(thread.ID).Set(ctx, thread)
	if err != nil {
		return errors.Internal("Failed to create thread", err)
	}

	return nil
}

func (r *firestoreThreadRepository) GetByID(ctx context.Context, id string) (*entity.Thread, error) {
	doc, err := r.client.Collection("threads").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.ThreadNotFound(id)
		}
		return nil, errors.Internal("Failed to get thread", err)
	}

	var thread entity.Thread
	if err := doc.DataTo(&thread); err != nil {
		return nil, errors.Internal("Failed to parse thread data", err)
	}

	return &thread, nil
}

func (r *firestoreThreadRepository) GetByKey(ctx context.Context, key string) (*entity.Thread, error) {
	query := r.client.Collection("threads").Where("key", "==", key).Limit(1)
	iter := query.Documents(ctx)
	doc, err := iter.Next()

	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Thread", nil)
		}
		return nil, errors.Internal("Failed to query thread by key", err)
	}

	var thread entity.Thread
	if err := doc.DataTo(&thread); err != nil {
		return nil, errors.Internal("Failed to parse thread data", err)
	}

	return &thread, nil
}

func (r *firestoreThreadRepository) ListByParticipant(ctx context.Context, participantID string, limit, offset int) ([]*entity.Thread, int64, error) {
	query := r.client.Collection("threads").
		Where("participants", "array-contains", participantID).
		OrderBy("lastMessageAt", firestore.Desc).
		OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching threads for participant %s: %v", participantID, err)
		return nil, 0, errors.Internal("Failed to fetch threads", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var threads []*entity.Thread
	for i := start; i < end; i++ {
		var thread entity.Thread
		if err := allDocs[i].DataTo(&thread); err != nil {
			logger.Warn("Skipping malformed thread document for participant %s: %v", participantID, err)
			continue
		}
		threads = append(threads, &thread)
	}

	return threads, total, nil
}

func (r *firestoreThreadRepository) Update(ctx context.Context, thread *entity.Thread) error {
	thread.UpdatedAt = time.Now()

	_, err := r.client.Collection("threads").Doc(thread.ID).Set(ctx, thread)
	if err != nil {
		return errors.Internal("Failed to update thread", err)
	}

	return nil
}

func (r *firestoreThreadRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	if message.Seq == 0 {
		seq, err := r.nextSeq(ctx, message.ThreadID)
		if err != nil {
			return err
		}
		message.Seq = seq
	}

	_, err := r.client.Collection("threads").Doc(message.ThreadID).Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

// nextSeq derives the next per-thread sequence number from the current log
// length. The conversation service serializes appends per thread, so two
// appends can never race here within one process.
func (r *firestoreThreadRepository) nextSeq(ctx context.Context, threadID string) (int64, error) {
	docs, err := r.client.Collection("threads").Doc(threadID).Collection("messages").Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count messages for thread", err)
	}
	return int64(len(docs)) + 1, nil
}

func (r *firestoreThreadRepository) GetMessageByID(ctx context.Context, threadID, messageID string) (*entity.Message, error) {
	doc, err := r.client.Collection("threads").Doc(threadID).Collection("messages").Doc(messageID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

func (r *firestoreThreadRepository) ListMessages(ctx context.Context, threadID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("threads").Doc(threadID).Collection("messages").OrderBy("seq", firestore.Asc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching messages for thread %s: %v", threadID, err)
		return nil, 0, errors.Internal("Failed to fetch messages", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var messages []*entity.Message
	for i := start; i < end; i++ {
		var message entity.Message
		if err := allDocs[i].DataTo(&message); err != nil {
			logger.Warn("Skipping malformed message document in thread %s: %v", threadID, err)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreThreadRepository) UpdateMessage(ctx context.Context, threadID string, message *entity.Message) error {
	_, err := r.client.Collection("threads").Doc(threadID).Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to update message", err)
	}
	return nil
}
