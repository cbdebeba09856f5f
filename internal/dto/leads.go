package dto

// LeadFilter contains query parameters for lead listing endpoints.
type LeadFilter struct {
	City         string
	MinScore     *int
	HasWebshop   *bool
	HasAIChatbot *bool
	Status       string
	Page         int
	PerPage      int
	Limit        int
}

// UpdateLeadRequest captures a partial update of a lead's pipeline and contact fields.
type UpdateLeadRequest struct {
	Status        *string   `json:"status,omitempty" validate:"omitempty,oneof=NEW CONTACTED REPLIED QUALIFIED WON LOST"`
	Notes         *string   `json:"notes,omitempty"`
	Tags          *[]string `json:"tags,omitempty" validate:"omitempty,dive,required,max=50"`
	ContactName   *string   `json:"contact_name,omitempty" validate:"omitempty,max=200"`
	Email         *string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string   `json:"phone,omitempty" validate:"omitempty,max=50"`
	ShopURL       *string   `json:"shop_url,omitempty" validate:"omitempty,url"`
	HasWebshop    *bool     `json:"has_webshop,omitempty"`
	HasAIChatbot  *bool     `json:"has_ai_chatbot,omitempty"`
	HasAIProducts *bool     `json:"has_ai_products,omitempty"`
}

// Empty reports whether the request carries no fields to update.
func (r UpdateLeadRequest) Empty() bool {
	return r.Status == nil && r.Notes == nil && r.Tags == nil && r.ContactName == nil &&
		r.Email == nil && r.Phone == nil && r.ShopURL == nil && r.HasWebshop == nil &&
		r.HasAIChatbot == nil && r.HasAIProducts == nil
}
