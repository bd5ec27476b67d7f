package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"propdocs/internal/cache"
	"propdocs/internal/model"
)

// ListPropertyDocuments returns a property's documents, read through the property-documents view.
func (s *documentService) ListPropertyDocuments(ctx context.Context, propertyID string, docType *model.DocumentType) ([]model.Document, error) {
	if propertyID == "" {
		return nil, ErrPropertyRequired
	}
	return s.cachedList(ctx, cache.PropertyDocumentsKey(propertyID, docType), func(ctx context.Context) ([]model.Document, error) {
		return s.repo.ListByProperty(ctx, propertyID, docType)
	})
}

// ListRecent returns the newest documents. A non-positive limit uses the configured default.
func (s *documentService) ListRecent(ctx context.Context, limit int) ([]model.Document, error) {
	if limit <= 0 {
		limit = s.opts.RecentLimit
	}
	key := cache.RecentDocumentsKey + ":" + strconv.Itoa(limit)
	return s.cachedList(ctx, key, func(ctx context.Context) ([]model.Document, error) {
		return s.repo.ListRecent(ctx, limit)
	})
}

// ListExpiring returns documents whose notification window is open.
func (s *documentService) ListExpiring(ctx context.Context) ([]model.Document, error) {
	return s.cachedList(ctx, cache.ExpiringDocumentsKey, func(ctx context.Context) ([]model.Document, error) {
		return s.repo.ListExpiring(ctx, s.opts.Now())
	})
}

// cachedList serves key from the view cache, loading and storing it on a miss.
// Cache errors degrade to a direct load.
func (s *documentService) cachedList(ctx context.Context, key string, load func(context.Context) ([]model.Document, error)) ([]model.Document, error) {
	if s.views == nil {
		return load(ctx)
	}

	raw, ok, err := s.views.Get(ctx, key)
	if err != nil {
		s.opts.Log.WarnContext(ctx, "view cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if ok {
		var docs []model.Document
		if err := json.Unmarshal(raw, &docs); err == nil {
			return docs, nil
		}
		s.opts.Log.WarnContext(ctx, "view cache entry undecodable", slog.String("key", key))
	}

	docs, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []model.Document{}
	}
	if b, err := json.Marshal(docs); err == nil {
		if err := s.views.Set(ctx, key, b); err != nil {
			s.opts.Log.WarnContext(ctx, "view cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return docs, nil
}
