package entity

import (
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the outreach pipeline stage of a lead.
type LeadStatus string

const (
	StatusNew       LeadStatus = "NEW"
	StatusContacted LeadStatus = "CONTACTED"
	StatusReplied   LeadStatus = "REPLIED"
	StatusQualified LeadStatus = "QUALIFIED"
	StatusWon       LeadStatus = "WON"
	StatusLost      LeadStatus = "LOST"
)

// LeadStatuses lists every pipeline stage in order.
var LeadStatuses = []LeadStatus{StatusNew, StatusContacted, StatusReplied, StatusQualified, StatusWon, StatusLost}

// Valid reports whether s is a known pipeline stage.
func (s LeadStatus) Valid() bool {
	for _, known := range LeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Lead represents a pharmacy tracked in the CRM.
type Lead struct {
	ID             uuid.UUID      `json:"id"`
	SourceID       *string        `json:"source_id,omitempty"`
	WebsiteURL     *string        `json:"website_url,omitempty"`
	PharmacyName   string         `json:"pharmacy_name"`
	City           string         `json:"city"`
	Address        *string        `json:"address,omitempty"`
	Phone          *string        `json:"phone,omitempty"`
	ContactName    *string        `json:"contact_name,omitempty"`
	Email          *string        `json:"email,omitempty"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	Source         Source         `json:"source"`
	ShopURL        *string        `json:"shop_url,omitempty"`
	OverallScore   int            `json:"overall_score"`
	HasWebshop     bool           `json:"has_webshop"`
	HasAIChatbot   bool           `json:"has_ai_chatbot"`
	HasAIProducts  bool           `json:"has_ai_products"`
	Owner          *string        `json:"owner,omitempty"`
	CategoryScores CategoryScores `json:"category_scores"`
	LastScanned    *time.Time     `json:"last_scanned,omitempty"`
	Status         LeadStatus     `json:"status"`
	Notes          *string        `json:"notes,omitempty"`
	Tags           []string       `json:"tags"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// HighQualityScore is the minimum overall score counted as a high quality lead.
const HighQualityScore = 8

// Analytics summarises the lead table for the dashboard.
type Analytics struct {
	TotalLeads    int                `json:"total_leads"`
	LeadsByStatus map[LeadStatus]int `json:"leads_by_status"`
	WithWebshop   int                `json:"with_webshop"`
	WithChatbot   int                `json:"with_chatbot"`
	HighQuality   int                `json:"high_quality"`
}
