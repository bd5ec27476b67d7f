package service

import (
	"context"
	"database/sql"
	"testing"

	"propdocs/internal/model"
	repoMocks "propdocs/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_GetProperty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mProps *repoMocks.MockPropertyRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "p1",
			setupMocks: func(mProps *repoMocks.MockPropertyRepository) {
				mProps.On("FindByID", ctx, "p1").Return(&model.Property{ID: "p1", Name: "Flat 1"}, nil)
			},
		},
		{
			name:       "empty id",
			setupMocks: func(mProps *repoMocks.MockPropertyRepository) {},
			wantErr:    ErrPropertyRequired,
		},
		{
			name: "unknown property",
			id:   "nope",
			setupMocks: func(mProps *repoMocks.MockPropertyRepository) {
				mProps.On("FindByID", ctx, "nope").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrPropertyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mProps := new(repoMocks.MockPropertyRepository)
			svc := NewCatalogService(mProps, nil)
			tt.setupMocks(mProps)

			p, err := svc.GetProperty(ctx, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.id, p.ID)
			}
			mProps.AssertExpectations(t)
		})
	}
}

func TestCatalogService_CreateTag(t *testing.T) {
	ctx := context.Background()

	t.Run("trims name and applies default color", func(t *testing.T) {
		mTags := new(repoMocks.MockTagRepository)
		svc := NewCatalogService(nil, mTags)
		mTags.On("Create", ctx, mock.MatchedBy(func(tag *model.Tag) bool {
			return tag.ID != "" && tag.Name == "Urgent" && tag.Color == DefaultTagColor
		})).Return(&model.Tag{ID: "t1", Name: "Urgent", Color: DefaultTagColor}, nil)

		tag, err := svc.CreateTag(ctx, "  Urgent ", "")

		require.NoError(t, err)
		assert.Equal(t, "t1", tag.ID)
		mTags.AssertExpectations(t)
	})

	t.Run("blank name", func(t *testing.T) {
		svc := NewCatalogService(nil, new(repoMocks.MockTagRepository))
		_, err := svc.CreateTag(ctx, "   ", "#fff")
		assert.ErrorIs(t, err, ErrTagNameRequired)
	})
}
