package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"propdocs/internal/repository"
	repoMocks "propdocs/internal/repository/mocks"
	"propdocs/internal/storage"
	storeMocks "propdocs/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func blob(s string) io.ReadCloser { return io.NopCloser(strings.NewReader(s)) }

func TestAccessRecorder_Download(t *testing.T) {
	ctx := context.Background()
	req := DownloadRequest{DocumentID: "d1", StoragePath: "documents/p1/a.pdf", DisplayName: "Lease.pdf"}
	accessed := repository.DocumentPatch{LastAccessedAt: &fixedNow}

	tests := []struct {
		name       string
		req        DownloadRequest
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		wantBody   string
		wantLog    string
	}{
		{
			name: "happy path records access",
			req:  req,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Get", mock.Anything, "documents/p1/a.pdf").
					Return(blob("%PDF"), storage.ObjectInfo{ContentType: "application/pdf"}, nil)
				mRepo.On("Update", mock.Anything, "d1", accessed).Return(nil)
			},
			wantBody: "%PDF",
		},
		{
			name: "record failure does not fail the download",
			req:  req,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Get", mock.Anything, "documents/p1/a.pdf").
					Return(blob("%PDF"), storage.ObjectInfo{ContentType: "application/pdf"}, nil)
				mRepo.On("Update", mock.Anything, "d1", accessed).Return(errors.New("db down"))
			},
			wantBody: "%PDF",
			wantLog:  "access record failed",
		},
		{
			name: "missing blob",
			req:  req,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Get", mock.Anything, "documents/p1/a.pdf").
					Return(nil, storage.ObjectInfo{}, storage.ErrObjectNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "storage error",
			req:  req,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Get", mock.Anything, "documents/p1/a.pdf").
					Return(nil, storage.ObjectInfo{}, errors.New("connection reset"))
			},
			wantErr: errors.New("fetch blob: connection reset"),
		},
		{
			name:       "validation - empty path",
			req:        DownloadRequest{DocumentID: "d1"},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrPathRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockDocumentRepository)
			opts := testOptions()
			opts.Log = slog.New(slog.NewJSONHandler(&logs, nil))
			rec := NewAccessRecorder(mStore, mRepo, opts)

			tt.setupMocks(mStore, mRepo)

			dl, err := rec.Download(ctx, tt.req)
			rec.Wait()

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrNotFound) || errors.Is(tt.wantErr, ErrPathRequired) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.EqualError(t, err, tt.wantErr.Error())
				}
				assert.Nil(t, dl)
				mRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(dl.Content))
				assert.Equal(t, "Lease.pdf", dl.Name)
				assert.Equal(t, "application/pdf", dl.ContentType)
				assert.EqualValues(t, len(tt.wantBody), dl.Size)
			}
			if tt.wantLog != "" {
				assert.Contains(t, logs.String(), tt.wantLog)
				assert.Contains(t, logs.String(), `"level":"WARN"`)
				assert.Contains(t, logs.String(), `"document_id":"d1"`)
			} else {
				assert.Empty(t, logs.String())
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestAccessRecorder_DownloadOutlivesRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockDocumentRepository)
	rec := NewAccessRecorder(mStore, mRepo, testOptions())

	var recordErr error
	mStore.On("Get", mock.Anything, "k").Return(blob("x"), storage.ObjectInfo{}, nil)
	mRepo.On("Update", mock.Anything, "d1", mock.Anything).
		Run(func(args mock.Arguments) {
			recordErr = args.Get(0).(context.Context).Err()
		}).
		Return(nil)

	_, err := rec.Download(ctx, DownloadRequest{DocumentID: "d1", StoragePath: "k"})
	cancel()
	rec.Wait()

	require.NoError(t, err)
	assert.NoError(t, recordErr)
	mRepo.AssertExpectations(t)
}

func TestAccessRecorder_RecordAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps now", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		rec := NewAccessRecorder(nil, mRepo, testOptions())
		mRepo.On("Update", ctx, "d1", repository.DocumentPatch{LastAccessedAt: &fixedNow}).Return(nil)

		assert.NoError(t, rec.RecordAccess(ctx, "d1"))
		mRepo.AssertExpectations(t)
	})

	t.Run("failure is an AccessRecordError", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		rec := NewAccessRecorder(nil, mRepo, testOptions())
		cause := errors.New("db down")
		mRepo.On("Update", ctx, "d1", mock.Anything).Return(cause)

		err := rec.RecordAccess(ctx, "d1")

		var recErr *AccessRecordError
		require.ErrorAs(t, err, &recErr)
		assert.Equal(t, "d1", recErr.DocumentID)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("empty id", func(t *testing.T) {
		rec := NewAccessRecorder(nil, new(repoMocks.MockDocumentRepository), testOptions())
		assert.ErrorIs(t, rec.RecordAccess(ctx, ""), ErrIDRequired)
	})
}
