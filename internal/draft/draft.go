// Package draft holds the in-progress state of a document upload before it is committed.
// Nothing in this package performs I/O.
package draft

import (
	"io"
	"slices"
	"time"

	"propdocs/internal/model"
)

// File is the selected upload: payload plus the name and size reported by the client.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

// Intent says what a committed draft becomes.
// It is either NewDocument or NewVersionOf.
type Intent interface {
	isIntent()
}

// NewDocument commits the draft as a brand new document. A name is required.
type NewDocument struct{}

// NewVersionOf commits the draft as the next version of an existing document.
// An empty name keeps the existing document's name.
type NewVersionOf struct {
	DocumentID string
}

func (NewDocument) isIntent()  {}
func (NewVersionOf) isIntent() {}

// Draft is an Upload Draft. It is owned by a single form session and is not safe for concurrent use.
type Draft struct {
	file               *File
	name               string
	description        string
	docType            model.DocumentType
	expiry             *time.Time
	notificationPeriod int
	versionNotes       string
	tags               []model.Tag
}

// New returns an empty draft.
func New() *Draft {
	d := &Draft{}
	d.Reset()
	return d
}

// SelectFile stores f. The first selected file, or any file while the name is blank,
// also sets the working name to the file's original filename.
func (d *Draft) SelectFile(f File) {
	if d.file == nil || d.name == "" {
		d.name = f.Name
	}
	d.file = &f
}

func (d *Draft) SetName(name string) { d.name = name }
func (d *Draft) SetDescription(description string) { d.description = description }
func (d *Draft) SetType(t model.DocumentType) { d.docType = t }
func (d *Draft) SetExpiry(expiry *time.Time) { d.expiry = expiry }
func (d *Draft) SetNotificationPeriod(days int) { d.notificationPeriod = days }
func (d *Draft) SetVersionNotes(notes string) { d.versionNotes = notes }

// ToggleTag removes tag from the selection if present and adds it otherwise.
// Tags are compared by ID.
func (d *Draft) ToggleTag(tag model.Tag) {
	i := slices.IndexFunc(d.tags, func(t model.Tag) bool { return t.ID == tag.ID })
	if i >= 0 {
		d.tags = slices.Delete(d.tags, i, i+1)
		if len(d.tags) == 0 {
			d.tags = nil
		}
		return
	}
	d.tags = append(d.tags, tag)
}

func (d *Draft) File() *File { return d.file }
func (d *Draft) Name() string { return d.name }
func (d *Draft) Description() string { return d.description }
func (d *Draft) Type() model.DocumentType { return d.docType }
func (d *Draft) Expiry() *time.Time { return d.expiry }
func (d *Draft) NotificationPeriod() int { return d.notificationPeriod }
func (d *Draft) VersionNotes() string { return d.versionNotes }
func (d *Draft) Tags() []model.Tag { return slices.Clone(d.tags) }

// Reset returns every field to its initial value.
func (d *Draft) Reset() {
	d.file = nil
	d.name = ""
	d.description = ""
	d.docType = model.DefaultDocumentType
	d.expiry = nil
	d.notificationPeriod = model.DefaultNotificationDays
	d.versionNotes = ""
	d.tags = nil
}

// Payload is a validated draft, ready to hand to the document service.
type Payload struct {
	Intent           Intent
	File             File               `validate:"required"`
	Name             string             `validate:"max=255"`
	Description      string             `validate:"max=2000"`
	Type             model.DocumentType `validate:"required,document_type"`
	ExpiryDate       *time.Time
	NotificationDays int `validate:"gte=0,lte=3650"`
	VersionNotes     string
	Tags             []model.Tag
}

// PrepareForCommit validates the draft for intent and returns the payload.
// It fails with *ValidationError when no file is selected, or when intent is
// NewDocument and the name is empty.
func (d *Draft) PrepareForCommit(intent Intent) (*Payload, error) {
	if d.file == nil {
		return nil, &ValidationError{Field: "file", Reason: "no file selected"}
	}
	switch in := intent.(type) {
	case NewDocument:
		if d.name == "" {
			return nil, &ValidationError{Field: "name", Reason: "name is required for a new document"}
		}
	case NewVersionOf:
		if in.DocumentID == "" {
			return nil, &ValidationError{Field: "document_id", Reason: "existing document is required for a new version"}
		}
	default:
		return nil, &ValidationError{Field: "intent", Reason: "unknown upload intent"}
	}

	p := &Payload{
		Intent:           intent,
		File:             *d.file,
		Name:             d.name,
		Description:      d.description,
		Type:             d.docType,
		ExpiryDate:       d.expiry,
		NotificationDays: d.notificationPeriod,
		VersionNotes:     d.versionNotes,
		Tags:             slices.Clone(d.tags),
	}
	if err := validatePayload(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Submit prepares the draft and passes the payload to commit. The draft is reset only
// when commit succeeds; on failure it is left untouched so the user can retry.
func (d *Draft) Submit(intent Intent, commit func(*Payload) error) error {
	p, err := d.PrepareForCommit(intent)
	if err != nil {
		return err
	}
	if err := commit(p); err != nil {
		return err
	}
	d.Reset()
	return nil
}
