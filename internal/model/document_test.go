package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentType(t *testing.T) {
	tests := []struct {
		in      string
		want    DocumentType
		wantErr bool
	}{
		{in: "lease", want: DocumentTypeLease},
		{in: "Service-Charge", want: DocumentTypeServiceCharge},
		{in: " insurance ", want: DocumentTypeInsurance},
		{in: "receipt", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDocumentType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocument_ValidateVersions(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr string
	}{
		{
			name: "single version",
			doc:  Document{ID: "d", StoragePath: "a", Version: 1},
		},
		{
			name: "history below current",
			doc: Document{ID: "d", StoragePath: "c", Version: 3, Versions: []DocumentVersion{
				{Version: 1, StoragePath: "a"},
				{Version: 2, StoragePath: "b"},
			}},
		},
		{
			name:    "version zero",
			doc:     Document{ID: "d", StoragePath: "a"},
			wantErr: "below 1",
		},
		{
			name: "history out of order",
			doc: Document{ID: "d", StoragePath: "c", Version: 3, Versions: []DocumentVersion{
				{Version: 2, StoragePath: "b"},
				{Version: 1, StoragePath: "a"},
			}},
			wantErr: "not greater than",
		},
		{
			name: "history reaches current",
			doc: Document{ID: "d", StoragePath: "c", Version: 2, Versions: []DocumentVersion{
				{Version: 2, StoragePath: "b"},
			}},
			wantErr: "not below current",
		},
		{
			name: "storage path reused",
			doc: Document{ID: "d", StoragePath: "a", Version: 2, Versions: []DocumentVersion{
				{Version: 1, StoragePath: "a"},
			}},
			wantErr: "reused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.ValidateVersions()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDocument_StoragePaths(t *testing.T) {
	d := Document{StoragePath: "v3", Versions: []DocumentVersion{{Version: 1, StoragePath: "v1"}, {Version: 2}}}
	assert.Equal(t, []string{"v3", "v1"}, d.StoragePaths())
	assert.Empty(t, (&Document{}).StoragePaths())
}

func TestDocument_ExpiresWithin(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	in := func(days int) *time.Time {
		t := now.AddDate(0, 0, days)
		return &t
	}
	thirty := 30

	tests := []struct {
		name string
		doc  Document
		want bool
	}{
		{name: "no expiry", doc: Document{}, want: false},
		{name: "default window open", doc: Document{ExpiryDate: in(90)}, want: true},
		{name: "default window not yet open", doc: Document{ExpiryDate: in(91)}, want: false},
		{name: "custom window", doc: Document{ExpiryDate: in(45), NotificationDays: &thirty}, want: false},
		{name: "already expired", doc: Document{ExpiryDate: in(-1), NotificationDays: &thirty}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.ExpiresWithin(now))
		})
	}
}
