package repository

import (
	"context"

	"propdocs/internal/model"
)

// TagRepository persists the shared tag catalogue.
type TagRepository interface {
	List(ctx context.Context) ([]model.Tag, error)
	Create(ctx context.Context, tag *model.Tag) (*model.Tag, error)
}

// PropertyRepository reads properties. Properties are owned by another system.
type PropertyRepository interface {
	List(ctx context.Context) ([]model.Property, error)
	FindByID(ctx context.Context, id string) (*model.Property, error)
}
