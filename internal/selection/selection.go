// Package selection tracks which property, folder and search text a document view is showing.
package selection

import (
	"iter"
	"strings"

	"propdocs/internal/model"
)

// Selection is the current property, folder and search query of a document view.
// The zero value selects nothing and matches every document.
type Selection struct {
	property *model.Property
	folder   *model.DocumentType
	query    string
}

// SelectProperty selects the property with id from known, or clears the selection
// when id is not among them. The folder selection is always cleared.
func (s *Selection) SelectProperty(id string, known []model.Property) {
	s.folder = nil
	s.property = nil
	for i := range known {
		if known[i].ID == id {
			p := known[i]
			s.property = &p
			return
		}
	}
}

// SelectFolder selects a document-type folder. A nil folder shows every type.
func (s *Selection) SelectFolder(folder *model.DocumentType) {
	s.folder = folder
}

// SetSearchQuery sets the free-text filter.
func (s *Selection) SetSearchQuery(text string) {
	s.query = text
}

// Property returns the selected property, or nil.
func (s *Selection) Property() *model.Property { return s.property }

// Folder returns the selected folder, or nil.
func (s *Selection) Folder() *model.DocumentType { return s.folder }

// Query returns the search text.
func (s *Selection) Query() string { return s.query }

// Filter yields, in order, the documents that match the folder and the search query.
// The sequence is lazy and evaluates the selection as it was when Filter was called;
// ranging over it again starts from scratch.
func (s *Selection) Filter(docs []model.Document) iter.Seq[model.Document] {
	folder := s.folder
	needle := strings.ToLower(s.query)
	return func(yield func(model.Document) bool) {
		for _, d := range docs {
			if folder != nil && d.Type != *folder {
				continue
			}
			if !Matches(d, needle) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// Matches reports whether d's name or description contains the lower-cased needle.
// An empty needle matches everything.
func Matches(d model.Document, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.Name), needle) ||
		strings.Contains(strings.ToLower(d.Description), needle)
}
