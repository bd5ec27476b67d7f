package model

// Tag is a reusable label. Documents reference tags by ID; a tag outlives any document it is attached to.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
