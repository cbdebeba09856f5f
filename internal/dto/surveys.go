package dto

// SurveyResponseRequest is the questionnaire payload submitted by a pharmacy.
type SurveyResponseRequest struct {
	SurveyID            string  `json:"survey_id" validate:"required,uuid"`
	LeadID              *string `json:"lead_id,omitempty" validate:"omitempty,uuid"`
	HasWebsite          bool    `json:"has_website"`
	WebsiteSatisfaction *int    `json:"website_satisfaction,omitempty" validate:"omitempty,min=1,max=5"`
	WebshopStatus       string  `json:"webshop_status" validate:"required,oneof=Yes No Planned"`
	ITManagement        string  `json:"it_management" validate:"required,oneof=in-house agency freelancer 'not sure'"`
	AIUsage             string  `json:"ai_usage" validate:"required,oneof=None Internal Chatbot Both"`
	TopPriority         string  `json:"top_priority" validate:"required"`
	TopPriorityOther    *string `json:"top_priority_other,omitempty"`
	ContactName         string  `json:"contact_name" validate:"required"`
	Email               string  `json:"email" validate:"required,email"`
	Phone               *string `json:"phone,omitempty"`
	ConsentAccepted     bool    `json:"consent_accepted" validate:"eq=true"`
}

// NewsletterSignupRequest subscribes an email address to the newsletter.
type NewsletterSignupRequest struct {
	Email           string  `json:"email" validate:"required,email"`
	PharmacyName    *string `json:"pharmacy_name,omitempty"`
	LeadID          *string `json:"lead_id,omitempty" validate:"omitempty,uuid"`
	ConsentAccepted bool    `json:"consent_accepted" validate:"eq=true"`
}
