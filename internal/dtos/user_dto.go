package dtos

type RegisterRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type SettingsRequest struct {
	TargetRole *string `json:"target_role"`
	Location   *string `json:"location"`
}

// ConnectionCreateRequest logs an outreach message. The job is resolved
// from JobID first, then LinkedInURL.
type ConnectionCreateRequest struct {
	JobID                string `json:"job_id"`
	LinkedInURL          string `json:"linkedin_url"`
	RecipientName        string `json:"recipient_name" binding:"required"`
	RecipientTitle       string `json:"recipient_title"`
	RecipientLinkedInURL string `json:"recipient_linkedin_url"`
	MessageType          string `json:"message_type"`
	Message              string `json:"message" binding:"required"`
	Status               string `json:"status"`
}

type ConnectionUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}
