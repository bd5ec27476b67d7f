package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"propdocs/internal/cache"
	"propdocs/internal/logger"
	"propdocs/internal/model"
	"propdocs/internal/repository"
	"propdocs/internal/storage"
)

var tracer = otel.Tracer("propdocs/internal/service")

// UploadInput is a new document to store under a property.
type UploadInput struct {
	PropertyID       string
	Content          io.Reader
	Filename         string
	ContentType      string
	Size             int64
	Name             string
	Description      string
	Type             model.DocumentType
	ExpiryDate       *time.Time
	NotificationDays *int
	Tags             []model.Tag
	Notes            string
}

// VersionInput is a blob that supersedes a document's current revision.
type VersionInput struct {
	Content     io.Reader
	Filename    string
	ContentType string
	Size        int64
	// Name renames the document when non-empty.
	Name string
	// Notes describe the revision being superseded.
	Notes string
}

// DocumentService defines the use cases for handling documents.
// It is the only component that writes documents or blobs, and it owns invalidation
// of the cached document views.
type DocumentService interface {
	// Upload stores the blob, saves metadata, and removes the blob again if the metadata write fails.
	// Any failure is returned as *UploadError.
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)

	// UploadVersion stores a new blob for an existing document and archives the current revision.
	UploadVersion(ctx context.Context, documentID string, in VersionInput) (*model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Delete removes the metadata record and then every blob the document references.
	Delete(ctx context.Context, documentID, storagePath string) error

	SetFavorite(ctx context.Context, id string, favorite bool) (*model.Document, error)
	UpdateNotes(ctx context.Context, id string, notes string) (*model.Document, error)

	// PresignURL returns a time-limited download link for the current revision.
	PresignURL(ctx context.Context, id string) (string, error)

	ListPropertyDocuments(ctx context.Context, propertyID string, docType *model.DocumentType) ([]model.Document, error)
	ListRecent(ctx context.Context, limit int) ([]model.Document, error)
	ListExpiring(ctx context.Context) ([]model.Document, error)
}

// Options tune the services. Zero values fall back to defaults.
type Options struct {
	Log                 *slog.Logger
	Now                 func() time.Time
	PresignExpiry       time.Duration
	RecentLimit         int
	AccessRecordTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Log == nil {
		o.Log = logger.Log
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.PresignExpiry <= 0 {
		o.PresignExpiry = 15 * time.Minute
	}
	if o.RecentLimit <= 0 {
		o.RecentLimit = 10
	}
	if o.AccessRecordTimeout <= 0 {
		o.AccessRecordTimeout = 5 * time.Second
	}
	return o
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
	views cache.Registry
	opts  Options
}

// NewDocumentService constructs a new DocumentService. views may be nil, in which case
// list reads go straight to the repository and nothing is invalidated.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, views cache.Registry, opts Options) DocumentService {
	return &documentService{store: store, repo: repo, views: views, opts: opts.withDefaults()}
}

func objectKey(propertyID, originalFilename string) string {
	genName := uuid.New().String() + filepath.Ext(originalFilename)
	return filepath.ToSlash(filepath.Join("documents", propertyID, genName))
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Upload",
		trace.WithAttributes(attribute.String("property.id", in.PropertyID)))
	defer span.End()

	if in.PropertyID == "" {
		return nil, &UploadError{Op: "validate", Err: ErrPropertyRequired}
	}
	if in.Content == nil {
		return nil, &UploadError{Op: "validate", Err: ErrReaderNil}
	}
	docType := in.Type
	if docType == "" {
		docType = model.DefaultDocumentType
	}
	name := in.Name
	if name == "" {
		name = in.Filename
	}

	key := objectKey(in.PropertyID, in.Filename)
	objInfo, err := s.store.Put(ctx, key, in.Content, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"original-filename": in.Filename,
			"property-id":       in.PropertyID,
		},
	})
	if err != nil {
		fail(span, err)
		return nil, &UploadError{Op: "store blob", Err: fmt.Errorf("upload to storage: %w", err)}
	}

	doc := &model.Document{
		ID:               uuid.New().String(),
		PropertyID:       in.PropertyID,
		Name:             name,
		Description:      in.Description,
		StoragePath:      objInfo.Key,
		ContentType:      objInfo.ContentType,
		Size:             objInfo.Size,
		Type:             docType,
		UploadedAt:       s.opts.Now(),
		ExpiryDate:       in.ExpiryDate,
		NotificationDays: in.NotificationDays,
		Version:          1,
		Tags:             in.Tags,
		Notes:            in.Notes,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		fail(span, err)
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, &UploadError{Op: "save metadata", Err: fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)}
		}
		return nil, &UploadError{Op: "save metadata", Err: fmt.Errorf("db save failed: %w", err)}
	}

	s.invalidate(ctx,
		cache.PropertyDocumentsKey(in.PropertyID, &docType),
		cache.PropertyDocumentsKey(in.PropertyID, nil),
		cache.RecentDocumentsKey,
		cache.ExpiringDocumentsKey,
	)
	s.opts.Log.InfoContext(ctx, "document uploaded",
		slog.String("document_id", stored.ID),
		slog.String("property_id", in.PropertyID),
		slog.String("document_type", string(docType)),
		slog.Int64("size", objInfo.Size),
	)
	return stored, nil
}

func (s *documentService) UploadVersion(ctx context.Context, documentID string, in VersionInput) (*model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.UploadVersion",
		trace.WithAttributes(attribute.String("document.id", documentID)))
	defer span.End()

	if documentID == "" {
		return nil, &UploadError{Op: "validate", Err: ErrIDRequired}
	}
	if in.Content == nil {
		return nil, &UploadError{Op: "validate", Err: ErrReaderNil}
	}
	current, err := s.find(ctx, documentID)
	if err == nil {
		err = checkVersions(current)
	}
	if err != nil {
		fail(span, err)
		return nil, &UploadError{Op: "load document", Err: err}
	}

	key := objectKey(current.PropertyID, in.Filename)
	objInfo, err := s.store.Put(ctx, key, in.Content, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"original-filename": in.Filename,
			"property-id":       current.PropertyID,
			"document-id":       documentID,
		},
	})
	if err != nil {
		fail(span, err)
		return nil, &UploadError{Op: "store blob", Err: fmt.Errorf("upload to storage: %w", err)}
	}

	updated, err := s.repo.AddVersion(ctx, documentID, repository.NextVersion{
		Name:        in.Name,
		StoragePath: objInfo.Key,
		ContentType: objInfo.ContentType,
		Size:        objInfo.Size,
		UploadedAt:  s.opts.Now(),
		Notes:       in.Notes,
	})
	if err != nil {
		fail(span, err)
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, &UploadError{Op: "save version", Err: fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)}
		}
		return nil, &UploadError{Op: "save version", Err: fmt.Errorf("db save failed: %w", err)}
	}
	if err := checkVersions(updated); err != nil {
		s.opts.Log.ErrorContext(ctx, "document history invalid after version upload",
			slog.String("document_id", documentID),
			slog.String("error", err.Error()),
		)
	}

	s.invalidate(ctx,
		cache.PropertyDocumentsKey(current.PropertyID, &current.Type),
		cache.PropertyDocumentsKey(current.PropertyID, nil),
		cache.RecentDocumentsKey,
		cache.ExpiringDocumentsKey,
	)
	s.opts.Log.InfoContext(ctx, "document version uploaded",
		slog.String("document_id", documentID),
		slog.Int("version", updated.Version),
	)
	return updated, nil
}

// Get returns a document by ID. A record whose version history breaks the ordering
// or path uniqueness rules is reported as ErrVersionHistory.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersions(doc); err != nil {
		s.opts.Log.ErrorContext(ctx, "document history invalid",
			slog.String("document_id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return doc, nil
}

func checkVersions(doc *model.Document) error {
	if err := doc.ValidateVersions(); err != nil {
		return fmt.Errorf("%w: %v", ErrVersionHistory, err)
	}
	return nil
}

func (s *documentService) find(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Delete removes the metadata record first and the blobs second. A blob failure after the
// record is gone leaves orphaned blobs behind; the views are still invalidated because the
// document no longer exists.
func (s *documentService) Delete(ctx context.Context, documentID, storagePath string) error {
	ctx, span := tracer.Start(ctx, "DocumentService.Delete",
		trace.WithAttributes(attribute.String("document.id", documentID)))
	defer span.End()

	if documentID == "" {
		return ErrIDRequired
	}
	doc, err := s.find(ctx, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		fail(span, err)
		return &DeleteError{DocumentID: documentID, Err: fmt.Errorf("load document: %w", err)}
	}

	// The caller's path only confirms which revision it saw; blobs are taken from the record.
	if storagePath != "" && !slices.Contains(doc.StoragePaths(), storagePath) {
		return ErrPathMismatch
	}

	if err := s.repo.Delete(ctx, documentID); err != nil {
		fail(span, err)
		return &DeleteError{DocumentID: documentID, Err: fmt.Errorf("delete metadata: %w", err)}
	}

	paths := doc.StoragePaths()
	var (
		orphaned []string
		errs     []error
	)
	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			orphaned = append(orphaned, p)
			errs = append(errs, err)
		}
	}

	s.invalidate(ctx,
		cache.PropertyDocumentsPrefix(doc.PropertyID),
		cache.RecentDocumentsKey,
		cache.ExpiringDocumentsKey,
	)

	if len(orphaned) > 0 {
		err := errors.Join(errs...)
		fail(span, err)
		s.opts.Log.ErrorContext(ctx, "document blobs orphaned",
			slog.String("document_id", documentID),
			slog.Any("paths", orphaned),
			slog.String("error", err.Error()),
		)
		return &DeleteError{
			DocumentID: documentID,
			Orphaned:   true,
			Paths:      orphaned,
			Err:        fmt.Errorf("delete storage: %w", err),
		}
	}
	s.opts.Log.InfoContext(ctx, "document deleted",
		slog.String("document_id", documentID),
		slog.Int("blobs", len(paths)),
	)
	return nil
}

func (s *documentService) SetFavorite(ctx context.Context, id string, favorite bool) (*model.Document, error) {
	return s.update(ctx, id, repository.DocumentPatch{Favorite: &favorite})
}

func (s *documentService) UpdateNotes(ctx context.Context, id string, notes string) (*model.Document, error) {
	return s.update(ctx, id, repository.DocumentPatch{Notes: &notes})
}

func (s *documentService) update(ctx context.Context, id string, patch repository.DocumentPatch) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx,
		cache.PropertyDocumentsPrefix(doc.PropertyID),
		cache.RecentDocumentsKey,
		cache.ExpiringDocumentsKey,
	)
	return doc, nil
}

func (s *documentService) PresignURL(ctx context.Context, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, doc.StoragePath, s.opts.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", doc.StoragePath, err)
	}
	return u, nil
}

// invalidate signals every key. The mutation has already happened, so failures are only logged.
func (s *documentService) invalidate(ctx context.Context, keys ...string) {
	if s.views == nil {
		return
	}
	for _, k := range keys {
		if err := s.views.Invalidate(ctx, k); err != nil {
			s.opts.Log.WarnContext(ctx, "view invalidation failed",
				slog.String("key", k),
				slog.String("error", err.Error()),
			)
		}
	}
}
