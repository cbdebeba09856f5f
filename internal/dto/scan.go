package dto

// ScanRequest is the payload used by the scan endpoint. An empty city scans the whole country.
// The city is checked by the scan service's region validation.
type ScanRequest struct {
	City string `json:"city"`
}
