package entity

import (
	"time"

	"github.com/google/uuid"
)

// SurveyResponse is a pharmacy's answer to the digital-audit questionnaire.
type SurveyResponse struct {
	ID                  uuid.UUID  `json:"id"`
	SurveyID            uuid.UUID  `json:"survey_id"`
	LeadID              *uuid.UUID `json:"lead_id,omitempty"`
	HasWebsite          bool       `json:"has_website"`
	WebsiteSatisfaction *int       `json:"website_satisfaction,omitempty"`
	WebshopStatus       string     `json:"webshop_status"`
	ITManagement        string     `json:"it_management"`
	AIUsage             string     `json:"ai_usage"`
	TopPriority         string     `json:"top_priority"`
	TopPriorityOther    *string    `json:"top_priority_other,omitempty"`
	ContactName         string     `json:"contact_name"`
	Email               string     `json:"email"`
	Phone               *string    `json:"phone,omitempty"`
	ConsentAccepted     bool       `json:"consent_accepted"`
	PharmacyName        *string    `json:"pharmacy_name,omitempty"`
	City                *string    `json:"city,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// NewsletterSignup records a consented newsletter subscription.
type NewsletterSignup struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	PharmacyName    *string    `json:"pharmacy_name,omitempty"`
	LeadID          *uuid.UUID `json:"lead_id,omitempty"`
	ConsentAccepted bool       `json:"consent_accepted"`
	CreatedAt       time.Time  `json:"created_at"`
}
