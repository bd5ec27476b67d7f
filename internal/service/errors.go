package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIDRequired       = errors.New("id is required")
	ErrNotFound         = errors.New("document not found")
	ErrReaderNil        = errors.New("reader is nil")
	ErrPropertyRequired = errors.New("property id is required")
	ErrPathRequired     = errors.New("storage path is required")
	ErrPropertyNotFound = errors.New("property not found")
	ErrTagNameRequired  = errors.New("tag name is required")
	ErrPathMismatch     = errors.New("storage path does not belong to the document")
	ErrVersionHistory   = errors.New("inconsistent version history")
)

// UploadError reports a failed upload or version upload. Op names the step that failed.
type UploadError struct {
	Op  string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %s: %v", e.Op, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// DeleteError reports a failed delete. When Orphaned is set the metadata record is
// gone but the blobs listed in Paths could not be removed.
type DeleteError struct {
	DocumentID string
	Orphaned   bool
	Paths      []string
	Err        error
}

func (e *DeleteError) Error() string {
	if e.Orphaned {
		return fmt.Sprintf("delete document %s: orphaned blobs [%s]: %v", e.DocumentID, strings.Join(e.Paths, ", "), e.Err)
	}
	return fmt.Sprintf("delete document %s: %v", e.DocumentID, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// AccessRecordError reports that a last-accessed timestamp could not be written.
// It is logged and never returned to download callers.
type AccessRecordError struct {
	DocumentID string
	Err        error
}

func (e *AccessRecordError) Error() string {
	return fmt.Sprintf("record access for document %s: %v", e.DocumentID, e.Err)
}

func (e *AccessRecordError) Unwrap() error { return e.Err }
