package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"propdocs/internal/model"
	"propdocs/internal/repository"
)

// DefaultTagColor is used for tags created without a color.
const DefaultTagColor = "#6b7280"

// CatalogService reads properties and manages the shared tag list.
type CatalogService interface {
	ListProperties(ctx context.Context) ([]model.Property, error)
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
	CreateTag(ctx context.Context, name, color string) (*model.Tag, error)
}

type catalogService struct {
	properties repository.PropertyRepository
	tags       repository.TagRepository
}

// NewCatalogService constructs a new CatalogService.
func NewCatalogService(properties repository.PropertyRepository, tags repository.TagRepository) CatalogService {
	return &catalogService{properties: properties, tags: tags}
}

func (s *catalogService) ListProperties(ctx context.Context) ([]model.Property, error) {
	return s.properties.List(ctx)
}

func (s *catalogService) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, ErrPropertyRequired
	}
	p, err := s.properties.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *catalogService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.tags.List(ctx)
}

func (s *catalogService) CreateTag(ctx context.Context, name, color string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTagNameRequired
	}
	if color == "" {
		color = DefaultTagColor
	}
	return s.tags.Create(ctx, &model.Tag{ID: uuid.New().String(), Name: name, Color: color})
}
