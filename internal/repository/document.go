package repository

import (
	"context"
	"time"

	"propdocs/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and links the document's tags by ID.
	// Returns the stored document (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID including prior versions and tags.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListByProperty returns a property's documents, newest first.
	// A nil docType returns every type.
	ListByProperty(ctx context.Context, propertyID string, docType *model.DocumentType) ([]model.Document, error)

	// ListRecent returns the most recently uploaded documents across all properties.
	ListRecent(ctx context.Context, limit int) ([]model.Document, error)

	// ListExpiring returns documents whose notification window has opened at now, soonest expiry first.
	ListExpiring(ctx context.Context, now time.Time) ([]model.Document, error)

	// Update applies a partial update. It returns sql.ErrNoRows if the document does not exist.
	Update(ctx context.Context, id string, patch DocumentPatch) error

	// AddVersion archives the current revision into the version history and makes next current.
	AddVersion(ctx context.Context, id string, next NextVersion) (*model.Document, error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// DocumentPatch lists the mutable document fields. Nil fields are left untouched.
type DocumentPatch struct {
	Favorite       *bool
	Notes          *string
	LastAccessedAt *time.Time
}

// Empty reports whether the patch changes nothing.
func (p DocumentPatch) Empty() bool {
	return p.Favorite == nil && p.Notes == nil && p.LastAccessedAt == nil
}

// NextVersion describes the blob that supersedes a document's current revision.
type NextVersion struct {
	// Name replaces the document name when non-empty.
	Name        string
	StoragePath string
	ContentType string
	Size        int64
	UploadedAt  time.Time
	// Notes are stored with the archived revision.
	Notes string
}
