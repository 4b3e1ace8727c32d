package repository

import (
	"context"

	"campusmarket/internal/domain/entity"
)

type ContactRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Contact, error)
	Save(ctx context.Context, contact *entity.Contact) error
}
