package dtos

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// SaveJobsRequest is the batch the extension posts after a scan.
type SaveJobsRequest struct {
	Jobs []JobPayload `json:"jobs" binding:"required,min=1"`
}

// HiringTeamMember is a contact as the extension scrapes it.
type HiringTeamMember struct {
	Name             string `json:"name"`
	Title            string `json:"title"`
	ProfileURL       string `json:"profileUrl"`
	ConnectionDegree string `json:"connectionDegree"`
}

// JobPayload is one scraped job. Older extension builds used different key
// names for the same field, so decoding accepts all of them.
type JobPayload struct {
	URL              string
	JobID            string
	Title            string
	Company          string
	Location         string
	Description      string
	ExternalApplyURL string
	HasEasyApply     *bool
	Status           string
	ApplyMethod      string
	HiringTeam       []HiringTeamMember
	MatchScore       *int
	Analysis         json.RawMessage
	Notes            string
}

// first non-empty value wins
var payloadKeys = map[string][]string{
	"url":              {"linkedinUrl", "postUrl", "url", "linkedin_url"},
	"jobId":            {"jobId", "linkedin_job_id"},
	"title":            {"title"},
	"company":          {"company", "author"},
	"location":         {"location"},
	"description":      {"description", "content"},
	"externalApplyUrl": {"externalApplyUrl", "external_apply_url"},
	"status":           {"status"},
	"applyMethod":      {"applyMethod", "apply_method"},
	"notes":            {"notes"},
	"matchScore":       {"matchScore", "match_score"},
	"analysis":         {"analysis", "ai_analysis"},
	"hasEasyApply":     {"hasEasyApply", "has_easy_apply"},
	"hiringTeam":       {"hiringTeam", "hiring_contacts"},
}

func (p *JobPayload) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	str := func(field string) string {
		for _, k := range payloadKeys[field] {
			var s string
			if v, ok := raw[k]; ok && json.Unmarshal(v, &s) == nil && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	}
	value := func(field string) json.RawMessage {
		for _, k := range payloadKeys[field] {
			if v, ok := raw[k]; ok && !isNull(v) {
				return v
			}
		}
		return nil
	}

	p.URL = str("url")
	p.JobID = str("jobId")
	p.Title = str("title")
	p.Company = str("company")
	p.Location = str("location")
	p.Description = str("description")
	p.ExternalApplyURL = str("externalApplyUrl")
	p.Status = str("status")
	p.ApplyMethod = str("applyMethod")
	p.Notes = str("notes")

	if v := value("hasEasyApply"); v != nil {
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			p.HasEasyApply = &b
		}
	}
	if v := value("matchScore"); v != nil {
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			score := int(math.Round(f))
			p.MatchScore = &score
		}
	}
	if v := value("analysis"); v != nil {
		p.Analysis = v
	}
	if v := value("hiringTeam"); v != nil {
		var team []HiringTeamMember
		if err := json.Unmarshal(v, &team); err == nil {
			p.HiringTeam = team
		}
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// UpdateJobRequest is a partial update; nil fields are left alone.
type UpdateJobRequest struct {
	Title            *string `json:"title"`
	Company          *string `json:"company"`
	Location         *string `json:"location"`
	Description      *string `json:"description"`
	Notes            *string `json:"notes"`
	Status           *string `json:"status"`
	ApplyMethod      *string `json:"apply_method"`
	MatchScore       *int    `json:"match_score" binding:"omitempty,min=0,max=100"`
	ExternalApplyURL *string `json:"external_apply_url"`
}

// StatusUpdateRequest targets a job by id or by LinkedIn URL.
type StatusUpdateRequest struct {
	JobID       string  `json:"job_id"`
	LinkedInURL string  `json:"linkedin_url"`
	Status      string  `json:"status" binding:"required"`
	ApplyMethod string  `json:"apply_method"`
	Notes       *string `json:"notes"`
}

// AnalyzeRequest asks the model how well a job fits the user.
type AnalyzeRequest struct {
	JobID       string         `json:"job_id"`
	Job         AnalyzeJob     `json:"job"`
	UserProfile map[string]any `json:"user_profile"`
}

type AnalyzeJob struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Content     string `json:"content"`
}
