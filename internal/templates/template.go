package templates

import "time"

// Template is reference data describing a known exercise. Exercises
// may link to one; the link is optional and survives template removal
// as a null.
type Template struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Equipment   string    `json:"equipment"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
