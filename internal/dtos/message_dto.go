package dtos

import "github.com/justsurfingit/linkedin-agent/internal/messaging"

// ProfileRequest creates or overwrites a UserProfile keyed by email.
type ProfileRequest struct {
	Name              string `json:"name" binding:"required"`
	Email             string `json:"email" binding:"required,email"`
	CurrentTitle      string `json:"current_title"`
	CurrentCompany    string `json:"current_company"`
	ExperienceLevel   string `json:"experience_level"`
	TargetRole        string `json:"target_role"`
	TargetIndustry    string `json:"target_industry"`
	School            string `json:"school"`
	Major             string `json:"major"`
	GraduationYear    string `json:"graduation_year"`
	Skills            string `json:"skills"`
	Bio               string `json:"bio"`
	ConnectionPurpose string `json:"connection_purpose"`
}

// SenderFields describes the sender inline when no stored profile is used.
type SenderFields struct {
	UserProfileID       string `json:"user_profile_id"`
	UserName            string `json:"user_name"`
	UserTitle           string `json:"user_title"`
	UserCompany         string `json:"user_company"`
	UserSchool          string `json:"user_school"`
	UserMajor           string `json:"user_major"`
	UserEmail           string `json:"user_email"`
	UserExperienceLevel string `json:"user_experience_level"`
	UserSkills          string `json:"user_skills"`
	ConnectionPurpose   string `json:"connection_purpose"`
}

func (f SenderFields) Sender() messaging.Sender {
	return messaging.Sender{
		Name:            f.UserName,
		Title:           f.UserTitle,
		Company:         f.UserCompany,
		School:          f.UserSchool,
		Major:           f.UserMajor,
		Email:           f.UserEmail,
		ExperienceLevel: f.UserExperienceLevel,
		Skills:          f.UserSkills,
		Purpose:         f.ConnectionPurpose,
	}
}

// IncludeFlags are pointers so an absent flag takes the default rather
// than false.
type IncludeFlags struct {
	IncludeTitle   *bool `json:"include_title"`
	IncludeCompany *bool `json:"include_company"`
	IncludeSchool  *bool `json:"include_school"`
	IncludeMajor   *bool `json:"include_major"`
	IncludeEmail   *bool `json:"include_email"`
}

func (f IncludeFlags) Include() messaging.Include {
	inc := messaging.DefaultInclude()
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&inc.Title, f.IncludeTitle)
	set(&inc.Company, f.IncludeCompany)
	set(&inc.School, f.IncludeSchool)
	set(&inc.Major, f.IncludeMajor)
	set(&inc.Email, f.IncludeEmail)
	return inc
}

type GenerateMessageRequest struct {
	SenderFields
	IncludeFlags
	TargetName    string `json:"target_name" binding:"required"`
	TargetTitle   string `json:"target_title"`
	TargetCompany string `json:"target_company"`
	Tone          string `json:"tone" binding:"omitempty,oneof=professional friendly casual"`
}

type BatchGenerateRequest struct {
	SenderFields
	IncludeFlags
	Targets []messaging.Target `json:"targets" binding:"required,min=1"`
	Tone    string             `json:"tone" binding:"omitempty,oneof=professional friendly casual"`
}

type SentConnectionInput struct {
	TargetName        string `json:"target_name"`
	TargetTitle       string `json:"target_title"`
	TargetCompany     string `json:"target_company"`
	TargetLinkedInURL string `json:"target_linkedin_url"`
	MessageSent       string `json:"message_sent"`
	Status            string `json:"status"`
}

type BulkConnectionsRequest struct {
	ProfileID string                `json:"profile_id" binding:"required"`
	Requests  []SentConnectionInput `json:"requests"`
}
