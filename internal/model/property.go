package model

// Property owns documents. Properties are managed elsewhere; this service only reads them.
type Property struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}
