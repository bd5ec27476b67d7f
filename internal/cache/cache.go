// Package cache holds cached document views and the invalidation signals that expire them.
//
// Keys are colon separated. Invalidating a key drops the entry stored under it and every
// entry below it, so "property-documents:p1" expires all of p1's per-type lists.
package cache

import (
	"context"
	"strings"

	"propdocs/internal/model"
)

const (
	// RecentDocumentsKey names the recent-documents view.
	RecentDocumentsKey = "recent-documents"
	// ExpiringDocumentsKey names the expiring-documents view.
	ExpiringDocumentsKey = "expiring-documents"

	propertyDocumentsView = "property-documents"
	allTypes              = "all"
)

// Registry stores cached views and broadcasts invalidations.
type Registry interface {
	// Get returns the cached value for key; ok is false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Invalidate drops key and its descendants and signals the invalidation.
	Invalidate(ctx context.Context, key string) error
}

// PropertyDocumentsKey names a property's document list. A nil docType names the all-types list.
func PropertyDocumentsKey(propertyID string, docType *model.DocumentType) string {
	t := allTypes
	if docType != nil {
		t = string(*docType)
	}
	return propertyDocumentsView + ":" + propertyID + ":" + t
}

// PropertyDocumentsPrefix names every document list of a property.
func PropertyDocumentsPrefix(propertyID string) string {
	return propertyDocumentsView + ":" + propertyID
}

// Covers reports whether invalidating key expires entry.
func Covers(key, entry string) bool {
	return entry == key || strings.HasPrefix(entry, key+":")
}

// ViewName returns the view a key belongs to, i.e. its first segment.
func ViewName(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
