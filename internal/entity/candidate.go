package entity

// Source identifies the provider a lead was discovered through.
type Source string

const (
	SourcePlaceSearch     Source = "GMaps"
	SourceDirectorySearch Source = "local.ch"
)

// Candidate is a discovered pharmacy before it is persisted as a lead.
type Candidate struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	City      *string  `json:"city,omitempty"`
	Phone     *string  `json:"phone,omitempty"`
	Website   *string  `json:"website,omitempty"`
	SourceID  string   `json:"source_id"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Source    Source   `json:"source"`
}
