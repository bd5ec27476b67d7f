package model

import (
	"fmt"
	"strings"
	"time"
)

// DocumentType groups documents into folders.
type DocumentType string

const (
	DocumentTypeLease          DocumentType = "lease"
	DocumentTypeUtility        DocumentType = "utility"
	DocumentTypeCompliance     DocumentType = "compliance"
	DocumentTypeServiceCharge  DocumentType = "service_charge"
	DocumentTypePhoto          DocumentType = "photo"
	DocumentTypeOther          DocumentType = "other"
	DocumentTypeCorrespondence DocumentType = "correspondence"
	DocumentTypeTax            DocumentType = "tax"
	DocumentTypeInsurance      DocumentType = "insurance"
)

// DefaultDocumentType is used when an upload does not name a type.
const DefaultDocumentType = DocumentTypeLease

// DefaultNotificationDays is the lead time before expiry used when none is given.
const DefaultNotificationDays = 90

// DocumentTypes lists every known document type in display order.
var DocumentTypes = []DocumentType{
	DocumentTypeLease,
	DocumentTypeUtility,
	DocumentTypeCompliance,
	DocumentTypeServiceCharge,
	DocumentTypePhoto,
	DocumentTypeOther,
	DocumentTypeCorrespondence,
	DocumentTypeTax,
	DocumentTypeInsurance,
}

// Valid reports whether t is one of the enumerated document types.
func (t DocumentType) Valid() bool {
	for _, known := range DocumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseDocumentType converts s into a DocumentType. Case is ignored and
// hyphens are accepted in place of underscores ("service-charge").
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !t.Valid() {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

// Document is a file stored for a property.
// A document belongs to exactly one property; PropertyID is a reference, not an owned value.
type Document struct {
	ID               string            `json:"id"`
	PropertyID       string            `json:"property_id"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	StoragePath      string            `json:"storage_path"`
	ContentType      string            `json:"content_type"`
	Size             int64             `json:"size"`
	Type             DocumentType      `json:"document_type"`
	UploadedAt       time.Time         `json:"uploaded_at"`
	ExpiryDate       *time.Time        `json:"expiry_date,omitempty"`
	NotificationDays *int              `json:"notification_period,omitempty"`
	Favorite         bool              `json:"favorite"`
	Version          int               `json:"version"`
	Versions         []DocumentVersion `json:"versions,omitempty"`
	Tags             []Tag             `json:"tags,omitempty"`
	LastAccessedAt   *time.Time        `json:"last_accessed_at,omitempty"`
	Notes            string            `json:"notes,omitempty"`
}

// DocumentVersion is a superseded revision of a document.
type DocumentVersion struct {
	Version     int       `json:"version"`
	UploadedAt  time.Time `json:"uploaded_at"`
	StoragePath string    `json:"storage_path"`
	Notes       string    `json:"notes,omitempty"`
}

// StoragePaths returns the current storage path followed by every prior version's path.
func (d *Document) StoragePaths() []string {
	paths := make([]string, 0, len(d.Versions)+1)
	if d.StoragePath != "" {
		paths = append(paths, d.StoragePath)
	}
	for _, v := range d.Versions {
		if v.StoragePath != "" {
			paths = append(paths, v.StoragePath)
		}
	}
	return paths
}

// ValidateVersions checks that prior versions are strictly increasing, all below
// the current version, and that no two revisions share a storage path.
func (d *Document) ValidateVersions() error {
	if d.Version < 1 {
		return fmt.Errorf("document %s: version %d is below 1", d.ID, d.Version)
	}
	seen := map[string]bool{d.StoragePath: true}
	prev := 0
	for _, v := range d.Versions {
		if v.Version <= prev {
			return fmt.Errorf("document %s: version %d is not greater than %d", d.ID, v.Version, prev)
		}
		if v.Version >= d.Version {
			return fmt.Errorf("document %s: prior version %d is not below current %d", d.ID, v.Version, d.Version)
		}
		if seen[v.StoragePath] {
			return fmt.Errorf("document %s: storage path %q reused", d.ID, v.StoragePath)
		}
		seen[v.StoragePath] = true
		prev = v.Version
	}
	return nil
}

// ExpiresWithin reports whether now falls inside the document's notification
// window, i.e. expiry minus the notification period is not after now.
func (d *Document) ExpiresWithin(now time.Time) bool {
	if d.ExpiryDate == nil {
		return false
	}
	days := DefaultNotificationDays
	if d.NotificationDays != nil {
		days = *d.NotificationDays
	}
	return !d.ExpiryDate.AddDate(0, 0, -days).After(now)
}
