package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User owns tracked jobs. Its ID doubles as the extension's bearer token.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email      string `gorm:"uniqueIndex;not null" json:"email"`
	TargetRole string `json:"target_role"`
	Location   string `json:"location"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// HiringContact is one person from a job's "meet the hiring team" block.
type HiringContact struct {
	Name             string `json:"name"`
	Title            string `json:"title,omitempty"`
	LinkedInURL      string `json:"linkedin_url,omitempty"`
	ConnectionDegree string `json:"connection_degree,omitempty"`
}

// JobPost is a scanned job. (UserID, LinkedInURL) is unique and LinkedInURL
// always holds the normalized form.
type JobPost struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"size:36;not null;uniqueIndex:idx_job_user_url,priority:1;index:idx_job_user_status,priority:1" json:"user_id"`

	LinkedInJobID string `gorm:"column:linkedin_job_id;size:100;index" json:"linkedin_job_id"`
	LinkedInURL   string `gorm:"column:linkedin_url;size:1000;not null;uniqueIndex:idx_job_user_url,priority:2" json:"linkedin_url"`

	Title       string `gorm:"size:500" json:"title"`
	Company     string `gorm:"size:200;index" json:"company"`
	Location    string `gorm:"size:200" json:"location"`
	Description string `gorm:"type:text" json:"description"`

	ExternalApplyURL string `gorm:"size:1000" json:"external_apply_url"`
	HasEasyApply     bool   `json:"has_easy_apply"`

	Status      JobStatus   `gorm:"size:20;not null;default:new;index:idx_job_user_status,priority:2" json:"status"`
	AppliedAt   *time.Time  `json:"applied_at"`
	ApplyMethod ApplyMethod `gorm:"size:20" json:"apply_method"`

	HiringContacts datatypes.JSONSlice[HiringContact] `json:"hiring_contacts"`
	MatchScore     *int                               `gorm:"index" json:"match_score"`
	AIAnalysis     datatypes.JSON                     `gorm:"column:ai_analysis" json:"ai_analysis"`
	Notes          string                             `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"scanned_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (j *JobPost) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = StatusNew
	}
	return nil
}

// ConnectionRequest is an outreach message to someone on a job's hiring team.
type ConnectionRequest struct {
	ID     string  `gorm:"primaryKey;size:36" json:"id"`
	UserID string  `gorm:"size:36;not null;index" json:"user_id"`
	JobID  *string `gorm:"size:36;index" json:"job_id"`

	RecipientName        string `gorm:"size:200;not null" json:"recipient_name"`
	RecipientTitle       string `gorm:"size:200" json:"recipient_title"`
	RecipientLinkedInURL string `gorm:"column:recipient_linkedin_url;size:500" json:"recipient_linkedin_url"`

	MessageType MessageType      `gorm:"size:20;default:message" json:"message_type"`
	Message     string           `gorm:"type:text" json:"message"`
	Status      ConnectionStatus `gorm:"size:20;default:pending;index" json:"status"`

	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at"`
}

func (c *ConnectionRequest) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ActivityLog is the append-only audit trail.
type ActivityLog struct {
	ID        string            `gorm:"primaryKey;size:36" json:"id"`
	UserID    string            `gorm:"size:36;not null;index:idx_activity_user_created,priority:1" json:"user_id"`
	Action    Action            `gorm:"size:50;index" json:"action"`
	Details   datatypes.JSONMap `json:"details"`
	JobID     *string           `gorm:"size:36;index" json:"job_id"`
	CreatedAt time.Time         `gorm:"index:idx_activity_user_created,priority:2" json:"created_at"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// UserProfile is what the message generator knows about the sender. It is
// separate from User and keyed by email.
type UserProfile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `gorm:"size:255;not null" json:"name"`
	Email string `gorm:"size:255;uniqueIndex;not null" json:"email"`

	CurrentTitle    string `gorm:"size:255" json:"current_title"`
	CurrentCompany  string `gorm:"size:255" json:"current_company"`
	ExperienceLevel string `gorm:"size:50" json:"experience_level"`
	TargetRole      string `gorm:"size:255" json:"target_role"`
	TargetIndustry  string `gorm:"size:255" json:"target_industry"`

	School         string `gorm:"size:255" json:"school"`
	Major          string `gorm:"size:255" json:"major"`
	GraduationYear string `gorm:"size:10" json:"graduation_year"`

	Skills            string `gorm:"type:text" json:"skills"`
	Bio               string `gorm:"type:text" json:"bio"`
	ConnectionPurpose string `gorm:"type:text" json:"connection_purpose"`
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// SentConnection records a connection note the extension sent on behalf of
// a UserProfile.
type SentConnection struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	UserProfileID string `gorm:"size:36;not null;index" json:"user_profile_id"`

	TargetName        string `gorm:"size:255;not null" json:"target_name"`
	TargetTitle       string `gorm:"size:255" json:"target_title"`
	TargetCompany     string `gorm:"size:255" json:"target_company"`
	TargetLinkedInURL string `gorm:"column:target_linkedin_url;size:500" json:"target_linkedin_url"`
	MessageSent       string `gorm:"type:text" json:"message_sent"`
	Status            string `gorm:"size:20;default:pending" json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *SentConnection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// UsageStats is one row per profile per day.
type UsageStats struct {
	ID                string `gorm:"primaryKey;size:36" json:"id"`
	UserProfileID     string `gorm:"size:36;not null;uniqueIndex:idx_usage_profile_date,priority:1" json:"user_profile_id"`
	Date              string `gorm:"size:10;not null;uniqueIndex:idx_usage_profile_date,priority:2" json:"date"`
	MessagesGenerated int    `gorm:"not null;default:0" json:"messages_generated"`
	ConnectionsSent   int    `gorm:"not null;default:0" json:"connections_sent"`
}

func (u *UsageStats) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (UsageStats) TableName() string { return "usage_stats" }
