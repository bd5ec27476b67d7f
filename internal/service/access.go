package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"propdocs/internal/repository"
	"propdocs/internal/storage"
)

// DownloadRequest names the blob to fetch and the document it belongs to.
type DownloadRequest struct {
	DocumentID  string
	StoragePath string
	DisplayName string
}

// Download is a fetched blob.
type Download struct {
	Name        string
	ContentType string
	Size        int64
	Content     []byte
}

// AccessRecorder tracks when documents were last read.
type AccessRecorder interface {
	// RecordAccess stamps the document's last-accessed time with now.
	RecordAccess(ctx context.Context, documentID string) error

	// Download fetches the blob and records the access in the background. A failed
	// recording is logged and never fails the download.
	Download(ctx context.Context, req DownloadRequest) (*Download, error)

	// Wait blocks until background recordings have finished.
	Wait()
}

type accessRecorder struct {
	store storage.Storage
	repo  repository.DocumentRepository
	opts  Options
	wg    sync.WaitGroup
}

// NewAccessRecorder constructs an AccessRecorder.
func NewAccessRecorder(store storage.Storage, repo repository.DocumentRepository, opts Options) AccessRecorder {
	return &accessRecorder{store: store, repo: repo, opts: opts.withDefaults()}
}

func (a *accessRecorder) RecordAccess(ctx context.Context, documentID string) error {
	if documentID == "" {
		return &AccessRecordError{Err: ErrIDRequired}
	}
	now := a.opts.Now()
	if err := a.repo.Update(ctx, documentID, repository.DocumentPatch{LastAccessedAt: &now}); err != nil {
		return &AccessRecordError{DocumentID: documentID, Err: err}
	}
	return nil
}

func (a *accessRecorder) Download(ctx context.Context, req DownloadRequest) (*Download, error) {
	ctx, span := tracer.Start(ctx, "AccessRecorder.Download",
		trace.WithAttributes(
			attribute.String("document.id", req.DocumentID),
			attribute.String("storage.path", req.StoragePath),
		))
	defer span.End()

	if req.StoragePath == "" {
		return nil, ErrPathRequired
	}
	rc, info, err := a.store.Get(ctx, req.StoragePath)
	if err != nil {
		fail(span, err)
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch blob: %w", err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		fail(span, err)
		return nil, fmt.Errorf("read blob: %w", err)
	}

	a.wg.Add(1)
	go a.recordDetached(ctx, req.DocumentID)

	name := req.DisplayName
	if name == "" {
		name = req.StoragePath
	}
	return &Download{
		Name:        name,
		ContentType: info.ContentType,
		Size:        int64(len(body)),
		Content:     body,
	}, nil
}

// recordDetached outlives the request that triggered it, bounded by its own timeout.
func (a *accessRecorder) recordDetached(parent context.Context, documentID string) {
	defer a.wg.Done()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), a.opts.AccessRecordTimeout)
	defer cancel()

	if err := a.RecordAccess(ctx, documentID); err != nil {
		a.opts.Log.WarnContext(ctx, "access record failed",
			slog.String("document_id", documentID),
			slog.String("error", err.Error()),
		)
	}
}

func (a *accessRecorder) Wait() {
	a.wg.Wait()
}
