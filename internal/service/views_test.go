package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"propdocs/internal/cache"
	"propdocs/internal/model"
	repoMocks "propdocs/internal/repository/mocks"
	"propdocs/internal/storage"
	storeMocks "propdocs/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type failingRegistry struct{ cache.Registry }

func (failingRegistry) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingRegistry) Set(context.Context, string, []byte) error {
	return errors.New("cache down")
}

func TestDocumentService_ListPropertyDocuments_ReadThrough(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockDocumentRepository)
	views := cache.NewMemory()
	svc := NewDocumentService(nil, mRepo, views, testOptions())
	lease := model.DocumentTypeLease

	docs := []model.Document{{ID: "d1", PropertyID: "p1", Name: "Tenancy", Type: lease}}
	mRepo.On("ListByProperty", ctx, "p1", &lease).Return(docs, nil).Once()

	first, err := svc.ListPropertyDocuments(ctx, "p1", &lease)
	require.NoError(t, err)
	second, err := svc.ListPropertyDocuments(ctx, "p1", &lease)
	require.NoError(t, err)

	assert.Equal(t, "d1", first[0].ID)
	assert.Equal(t, first[0].Name, second[0].Name)
	_, ok, _ := views.Get(ctx, "property-documents:p1:lease")
	assert.True(t, ok)
	mRepo.AssertExpectations(t)
}

func TestDocumentService_ListPropertyDocuments_ReloadsAfterUpload(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockDocumentRepository)
	views := cache.NewMemory()
	svc := NewDocumentService(mStore, mRepo, views, testOptions())

	before := []model.Document{{ID: "d1", PropertyID: "p1"}}
	after := []model.Document{{ID: "d2", PropertyID: "p1"}, {ID: "d1", PropertyID: "p1"}}
	mRepo.On("ListByProperty", ctx, "p1", (*model.DocumentType)(nil)).Return(before, nil).Once()
	mRepo.On("ListByProperty", ctx, "p1", (*model.DocumentType)(nil)).Return(after, nil).Once()

	got, err := svc.ListPropertyDocuments(ctx, "p1", nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{Key: "documents/p1/new.pdf"}, nil)
	mRepo.On("Create", mock.Anything, mock.Anything).Return(&model.Document{ID: "d2", PropertyID: "p1"}, nil)
	_, err = svc.Upload(ctx, UploadInput{PropertyID: "p1", Content: strings.NewReader("x"), Filename: "new.pdf"})
	require.NoError(t, err)

	got, err = svc.ListPropertyDocuments(ctx, "p1", nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	mRepo.AssertExpectations(t)
}

func TestDocumentService_ListRecent(t *testing.T) {
	ctx := context.Background()

	t.Run("non-positive limit uses the configured default", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		views := cache.NewMemory()
		opts := testOptions()
		opts.RecentLimit = 5
		svc := NewDocumentService(nil, mRepo, views, opts)

		mRepo.On("ListRecent", ctx, 5).Return([]model.Document{{ID: "d1"}}, nil).Once()

		got, err := svc.ListRecent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		_, ok, _ := views.Get(ctx, "recent-documents:5")
		assert.True(t, ok)

		require.NoError(t, views.Invalidate(ctx, cache.RecentDocumentsKey))
		_, ok, _ = views.Get(ctx, "recent-documents:5")
		assert.False(t, ok)
	})

	t.Run("repository error is returned and nothing cached", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		views := cache.NewMemory()
		svc := NewDocumentService(nil, mRepo, views, testOptions())

		mRepo.On("ListRecent", ctx, 3).Return(nil, errors.New("db fail"))

		_, err := svc.ListRecent(ctx, 3)
		assert.EqualError(t, err, "db fail")
		_, ok, _ := views.Get(ctx, "recent-documents:3")
		assert.False(t, ok)
	})
}

func TestDocumentService_ListExpiring(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockDocumentRepository)
	svc := NewDocumentService(nil, mRepo, failingRegistry{}, testOptions())

	mRepo.On("ListExpiring", ctx, fixedNow).Return(nil, nil).Twice()

	for range 2 {
		got, err := svc.ListExpiring(ctx)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	mRepo.AssertExpectations(t)
}

func TestDocumentService_ListPropertyDocuments_RequiresProperty(t *testing.T) {
	svc := NewDocumentService(nil, new(repoMocks.MockDocumentRepository), nil, testOptions())

	_, err := svc.ListPropertyDocuments(context.Background(), "", nil)

	assert.ErrorIs(t, err, ErrPropertyRequired)
}
