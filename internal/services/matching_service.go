package services

import (
	"context"
	"errors"
	"strings"

	"github.com/justsurfingit/linkedin-agent/internal/models"
	"github.com/justsurfingit/linkedin-agent/internal/textnorm"
	"gorm.io/gorm"
)

// MatcherService resolves loose references (an id, or a URL as the browser
// currently shows it) to a stored job.
type MatcherService struct {
	DB *gorm.DB
}

func NewMatcherService(db *gorm.DB) *MatcherService {
	return &MatcherService{DB: db}
}

// FindJobByURL returns the job of userID stored under the normalized form
// of rawURL. Failing an exact match, it takes the most recently updated job
// whose stored URL extends that form at a URL boundary, which tolerates rows
// saved under older normalization rules that kept extra path or query.
func (s *MatcherService) FindJobByURL(ctx context.Context, userID, rawURL string) (*models.JobPost, error) {
	prefix := textnorm.NormalizeJobURL(rawURL)
	if prefix == "" {
		return nil, invalid("url is required")
	}

	var job models.JobPost
	err := s.DB.WithContext(ctx).Where("user_id = ? AND linkedin_url = ?", userID, prefix).Take(&job).Error
	if err == nil {
		return &job, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var candidates []models.JobPost
	err = s.DB.WithContext(ctx).
		Where("user_id = ? AND linkedin_url LIKE ? ESCAPE '\\'", userID, escapeLike(prefix)+"%").
		Order("updated_at desc").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if extendsAtBoundary(candidates[i].LinkedInURL, prefix) {
			return &candidates[i], nil
		}
	}
	return nil, ErrNotFound
}

// extendsAtBoundary reports whether stored is prefix followed by nothing or
// by a path, query or fragment separator. ".../view/1" must not match
// ".../view/12345", nor "currentJobId=5" match "currentJobId=50".
func extendsAtBoundary(stored, prefix string) bool {
	if len(stored) < len(prefix) || !strings.EqualFold(stored[:len(prefix)], prefix) {
		return false
	}
	if len(stored) == len(prefix) {
		return true
	}
	switch stored[len(prefix)] {
	case '/', '?', '#', '&':
		return true
	}
	return false
}

// FindJob resolves a job by id when given, otherwise by URL prefix.
func (s *MatcherService) FindJob(ctx context.Context, userID, jobID, rawURL string) (*models.JobPost, error) {
	if jobID == "" && strings.TrimSpace(rawURL) == "" {
		return nil, invalid("either job_id or linkedin_url is required")
	}
	if jobID == "" {
		return s.FindJobByURL(ctx, userID, rawURL)
	}

	var job models.JobPost
	err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", jobID, userID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
