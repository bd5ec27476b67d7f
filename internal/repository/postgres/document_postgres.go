package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"propdocs/internal/model"
	"propdocs/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// documentColumns selects a document row with its tags folded into a JSON array.
const documentColumns = `
		d.id, d.property_id, d.name, d.description, d.storage_path, d.content_type, d.size,
		d.document_type, d.uploaded_at, d.expiry_date, d.notification_period, d.favorite,
		d.version, d.last_accessed_at, d.notes,
		COALESCE((
			SELECT json_agg(json_build_object('id', t.id, 'name', t.name, 'color', t.color) ORDER BY t.name)
			FROM document_tags dt JOIN tags t ON t.id = dt.tag_id
			WHERE dt.document_id = d.id
		), '[]') AS tags`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d            model.Document
		docType      string
		expiry       sql.NullTime
		notifyDays   sql.NullInt32
		lastAccessed sql.NullTime
		tags         []byte
	)
	if err := row.Scan(
		&d.ID,
		&d.PropertyID,
		&d.Name,
		&d.Description,
		&d.StoragePath,
		&d.ContentType,
		&d.Size,
		&docType,
		&d.UploadedAt,
		&expiry,
		&notifyDays,
		&d.Favorite,
		&d.Version,
		&lastAccessed,
		&d.Notes,
		&tags,
	); err != nil {
		return nil, err
	}
	d.Type = model.DocumentType(docType)
	if expiry.Valid {
		t := expiry.Time
		d.ExpiryDate = &t
	}
	if notifyDays.Valid {
		n := int(notifyDays.Int32)
		d.NotificationDays = &n
	}
	if lastAccessed.Valid {
		t := lastAccessed.Time
		d.LastAccessedAt = &t
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &d.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if len(d.Tags) == 0 {
		d.Tags = nil
	}
	return &d, nil
}

func (r *DocumentPostgres) queryDocuments(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new document row and its tag links in one transaction.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO documents (
			id, property_id, name, description, storage_path, content_type, size,
			document_type, uploaded_at, expiry_date, notification_period, version, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, uploaded_at, version
	`
	var notifyDays any
	if doc.NotificationDays != nil {
		notifyDays = *doc.NotificationDays
	}
	var expiry any
	if doc.ExpiryDate != nil {
		expiry = *doc.ExpiryDate
	}
	version := doc.Version
	if version < 1 {
		version = 1
	}

	out := *doc
	if err := tx.QueryRowContext(ctx, q,
		doc.ID,
		doc.PropertyID,
		doc.Name,
		doc.Description,
		doc.StoragePath,
		doc.ContentType,
		doc.Size,
		string(doc.Type),
		doc.UploadedAt,
		expiry,
		notifyDays,
		version,
		doc.Notes,
	).Scan(&out.ID, &out.UploadedAt, &out.Version); err != nil {
		return nil, err
	}

	const qTag = `INSERT INTO document_tags (document_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, tag := range doc.Tags {
		if _, err := tx.ExecContext(ctx, qTag, out.ID, tag.ID); err != nil {
			return nil, fmt.Errorf("link tag %s: %w", tag.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single document by its ID together with its version history.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + `
		FROM documents d
		WHERE d.id = $1
	`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}

	const qVersions = `
		SELECT version, uploaded_at, storage_path, notes
		FROM document_versions
		WHERE document_id = $1
		ORDER BY version ASC
	`
	rows, err := r.db.QueryContext(ctx, qVersions, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var v model.DocumentVersion
		if err := rows.Scan(&v.Version, &v.UploadedAt, &v.StoragePath, &v.Notes); err != nil {
			return nil, err
		}
		d.Versions = append(d.Versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// ListByProperty returns a property's documents, optionally restricted to one type.
func (r *DocumentPostgres) ListByProperty(ctx context.Context, propertyID string, docType *model.DocumentType) ([]model.Document, error) {
	if docType == nil {
		q := `SELECT ` + documentColumns + `
			FROM documents d
			WHERE d.property_id = $1
			ORDER BY d.uploaded_at DESC, d.id DESC
		`
		return r.queryDocuments(ctx, q, propertyID)
	}
	q := `SELECT ` + documentColumns + `
		FROM documents d
		WHERE d.property_id = $1 AND d.document_type = $2
		ORDER BY d.uploaded_at DESC, d.id DESC
	`
	return r.queryDocuments(ctx, q, propertyID, string(*docType))
}

// ListRecent returns the newest documents across all properties.
func (r *DocumentPostgres) ListRecent(ctx context.Context, limit int) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + `
		FROM documents d
		ORDER BY d.uploaded_at DESC, d.id DESC
		LIMIT $1
	`
	return r.queryDocuments(ctx, q, limit)
}

// ListExpiring returns documents whose expiry minus notification period is not after now.
func (r *DocumentPostgres) ListExpiring(ctx context.Context, now time.Time) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + `
		FROM documents d
		WHERE d.expiry_date IS NOT NULL
		  AND d.expiry_date - make_interval(days => COALESCE(d.notification_period, $2)) <= $1
		ORDER BY d.expiry_date ASC, d.id ASC
	`
	return r.queryDocuments(ctx, q, now, model.DefaultNotificationDays)
}

// Update applies the non-nil fields of patch.
func (r *DocumentPostgres) Update(ctx context.Context, id string, patch repository.DocumentPatch) error {
	if patch.Empty() {
		return nil
	}

	sets := make([]string, 0, 3)
	args := []any{id}
	if patch.Favorite != nil {
		args = append(args, *patch.Favorite)
		sets = append(sets, fmt.Sprintf("favorite = $%d", len(args)))
	}
	if patch.Notes != nil {
		args = append(args, *patch.Notes)
		sets = append(sets, fmt.Sprintf("notes = $%d", len(args)))
	}
	if patch.LastAccessedAt != nil {
		args = append(args, *patch.LastAccessedAt)
		sets = append(sets, fmt.Sprintf("last_accessed_at = $%d", len(args)))
	}

	q := `UPDATE documents SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddVersion moves the current revision into document_versions and installs next as current.
func (r *DocumentPostgres) AddVersion(ctx context.Context, id string, next repository.NextVersion) (*model.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	const qCurrent = `
		SELECT version, uploaded_at, storage_path
		FROM documents
		WHERE id = $1
		FOR UPDATE
	`
	var cur model.DocumentVersion
	if err := tx.QueryRowContext(ctx, qCurrent, id).Scan(&cur.Version, &cur.UploadedAt, &cur.StoragePath); err != nil {
		return nil, err
	}

	const qArchive = `
		INSERT INTO document_versions (document_id, version, uploaded_at, storage_path, notes)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, qArchive, id, cur.Version, cur.UploadedAt, cur.StoragePath, next.Notes); err != nil {
		return nil, fmt.Errorf("archive version %d: %w", cur.Version, err)
	}

	const qPromote = `
		UPDATE documents
		SET storage_path = $2,
		    content_type = $3,
		    size = $4,
		    uploaded_at = $5,
		    version = $6,
		    name = COALESCE(NULLIF($7, ''), name)
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, qPromote,
		id,
		next.StoragePath,
		next.ContentType,
		next.Size,
		next.UploadedAt,
		cur.Version+1,
		next.Name,
	); err != nil {
		return nil, fmt.Errorf("promote version %d: %w", cur.Version+1, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Delete removes a document by ID. Versions and tag links cascade.
// It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return err
	}
	return nil
}
