package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/justsurfingit/linkedin-agent/internal/dtos"
	"github.com/justsurfingit/linkedin-agent/internal/models"
	"gorm.io/datatypes"
)

const maxDescriptionChars = 4000

const jobFitPrompt = `Analyze this job posting for fit with the candidate.

JOB:
Title: %s
Company: %s
Location: %s
Description: %s

CANDIDATE:
Target Role: %s
Location: %s

Provide a match score (0-100), key matching qualifications, potential gaps,
a recommendation (Apply/Skip/Maybe) and talking points for a cover letter.

Respond in JSON only, no markdown:
{"matchScore": number, "matching": [...], "gaps": [...], "recommendation": "...", "talkingPoints": [...]}`

// AnalysisService scores how well a job fits the user.
type AnalysisService struct {
	LLM      Completer
	Jobs     *JobService
	Activity *ActivityLogger
	Timeout  time.Duration
}

func NewAnalysisService(llm Completer, jobs *JobService, activity *ActivityLogger, timeout time.Duration) *AnalysisService {
	return &AnalysisService{LLM: llm, Jobs: jobs, Activity: activity, Timeout: timeout}
}

// ProviderError wraps a failure of the language model backend.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return "analysis provider failed: " + e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// Analyze asks the model for a fit analysis. When req.JobID names one of
// the user's jobs, the analysis and score are stored on it.
func (s *AnalysisService) Analyze(ctx context.Context, user *models.User, req dtos.AnalyzeRequest) (map[string]any, error) {
	if s.LLM == nil {
		return nil, &ProviderError{Err: errNoProvider}
	}

	job := req.Job
	description := job.Description
	if description == "" {
		description = job.Content
	}
	description = clipRunes(description, maxDescriptionChars)
	targetRole := firstNonEmpty(user.TargetRole, profileString(req.UserProfile, "targetRole"))
	location := firstNonEmpty(user.Location, profileString(req.UserProfile, "location"))

	prompt := fmt.Sprintf(jobFitPrompt,
		orUnknown(job.Title), orUnknown(job.Company), orUnknown(job.Location), description,
		targetRole, location)

	text, err := s.LLM.Complete(ctx, CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   1000,
		Temperature: 0.7,
		Timeout:     s.Timeout,
	})
	if err != nil {
		return nil, &ProviderError{Err: err}
	}

	analysis := ParseAnalysis(text)
	score := matchScore(analysis)
	log.Printf("🧠 Job analysis for %q: score=%v", job.Title, score)

	var jobRef *string
	if req.JobID != "" {
		if stored, err := s.Jobs.Get(ctx, user.ID, req.JobID); err == nil {
			raw, _ := json.Marshal(analysis)
			stored.AIAnalysis = datatypes.JSON(raw)
			if score != nil {
				stored.MatchScore = score
			}
			if err := s.Jobs.DB.WithContext(ctx).Save(stored).Error; err != nil {
				return nil, fmt.Errorf("store analysis: %w", err)
			}
			jobRef = &stored.ID
		}
	}

	s.Activity.Log(ctx, user.ID, models.ActionAIAnalysis, map[string]any{
		"title":       job.Title,
		"company":     job.Company,
		"match_score": analysis["matchScore"],
	}, jobRef)
	return analysis, nil
}

// ParseAnalysis pulls the JSON object out of a completion. Models like to
// wrap it in prose or code fences, so everything from the first '{' to the
// last '}' is tried. Anything unparseable comes back as {"raw": text}.
func ParseAnalysis(text string) map[string]any {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		var out map[string]any
		if err := json.Unmarshal([]byte(text[start:end+1]), &out); err == nil {
			return out
		}
	}
	return map[string]any{"raw": text}
}

func matchScore(analysis map[string]any) *int {
	f, ok := analysis["matchScore"].(float64)
	if !ok || f < 0 || f > 100 {
		return nil
	}
	v := int(f + 0.5)
	return &v
}

func profileString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// clipRunes keeps at most n characters of s without splitting a rune.
func clipRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
