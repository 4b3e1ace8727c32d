package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type firestoreContactRepository struct {
	client *firestore.Client
}

func NewFirestoreContactRepository(client *firestore.Client) repository.ContactRepository {
	return &firestoreContactRepository{
		client: client,
	}
}

func (r *firestoreContactRepository) GetByID(ctx context.Context, id string) (*entity.Contact, error) {
	doc, err := r.client.Collection("contacts").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Contact", nil)
		}
		return nil, errors.Internal("Failed to get contact", err)
	}

	var contact entity.Contact
	if err := doc.DataTo(&contact); err != nil {
		return nil, errors.Internal("Failed to parse contact data", err)
	}

	return &contact, nil
}

func (r *firestoreContactRepository) Save(ctx context.Context, contact *entity.Contact) error {
	now := time.Now()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}
	contact.UpdatedAt = now

	_, err := r.client.Collection("contacts").Doc(contact.ID).Set(ctx, contact)
	if err != nil {
		return errors.Internal("Failed to save contact", err)
	}

	return nil
}
