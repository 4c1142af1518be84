package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/justsurfingit/linkedin-agent/internal/dtos"
	"github.com/justsurfingit/linkedin-agent/internal/models"
	"github.com/justsurfingit/linkedin-agent/internal/stats"
	"github.com/justsurfingit/linkedin-agent/internal/textnorm"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	reasonNoChanges    = "no changes detected"
	reasonStorageError = "storage error, retry"
)

type JobService struct {
	DB       *gorm.DB
	Matcher  *MatcherService
	Activity *ActivityLogger

	now func() time.Time
}

func NewJobService(db *gorm.DB, matcher *MatcherService, activity *ActivityLogger) *JobService {
	return &JobService{
		DB:       db,
		Matcher:  matcher,
		Activity: activity,
		now:      time.Now,
	}
}

// SkippedJob explains why a payload did not create or update anything.
type SkippedJob struct {
	LinkedInURL string `json:"linkedin_url"`
	Reason      string `json:"reason"`
}

// SaveResult partitions a batch.
type SaveResult struct {
	Created []models.JobPost `json:"created"`
	Updated []models.JobPost `json:"updated"`
	Skipped []SkippedJob     `json:"skipped"`
}

type saveOutcome int

const (
	outcomeCreated saveOutcome = iota
	outcomeUpdated
	outcomeSkipped
)

// incoming is a payload after validation and normalization.
type incoming struct {
	url          string
	jobID        string
	title        string
	company      string
	location     string
	description  string
	externalURL  string
	hasEasyApply *bool
	status       models.JobStatus // empty when the payload did not say
	applyMethod  models.ApplyMethod
	contacts     []models.HiringContact
	matchScore   *int
	analysis     datatypes.JSON
	notes        string
}

func prepare(p dtos.JobPayload) (incoming, error) {
	in := incoming{
		url:          textnorm.NormalizeJobURL(p.URL),
		jobID:        p.JobID,
		title:        p.Title,
		company:      p.Company,
		location:     p.Location,
		description:  p.Description,
		externalURL:  p.ExternalApplyURL,
		hasEasyApply: p.HasEasyApply,
		notes:        p.Notes,
	}
	if in.url == "" {
		return in, invalid("missing job url")
	}
	if p.Status != "" {
		st, err := models.ParseJobStatus(p.Status)
		if err != nil {
			return in, invalid(err.Error())
		}
		in.status = st
	}
	if p.ApplyMethod != "" {
		m, err := models.ParseApplyMethod(p.ApplyMethod)
		if err != nil {
			return in, invalid(err.Error())
		}
		in.applyMethod = m
	}
	if p.MatchScore != nil {
		if *p.MatchScore < 0 || *p.MatchScore > 100 {
			return in, invalid(fmt.Sprintf("match score %d out of range 0-100", *p.MatchScore))
		}
		in.matchScore = p.MatchScore
	}
	if len(p.Analysis) > 0 {
		if !json.Valid(p.Analysis) {
			return in, invalid("analysis is not valid JSON")
		}
		in.analysis = datatypes.JSON(p.Analysis)
	}
	for _, c := range p.HiringTeam {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		in.contacts = append(in.contacts, models.HiringContact{
			Name:             c.Name,
			Title:            c.Title,
			LinkedInURL:      c.ProfileURL,
			ConnectionDegree: c.ConnectionDegree,
		})
	}
	return in, nil
}

// SaveJobs runs the create/update/skip decision for every payload. Bad
// payloads land in Skipped and never abort the batch, and neither does a
// storage failure on one item: it is logged and reported as skipped so the
// jobs already written keep their job_saved entries.
func (s *JobService) SaveJobs(ctx context.Context, userID string, payloads []dtos.JobPayload) (*SaveResult, error) {
	res := &SaveResult{
		Created: []models.JobPost{},
		Updated: []models.JobPost{},
		Skipped: []SkippedJob{},
	}

	for _, p := range payloads {
		in, err := prepare(p)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedJob{LinkedInURL: in.url, Reason: err.Error()})
			continue
		}

		job, outcome, err := s.saveOne(ctx, userID, in)
		if errors.Is(err, ErrConflict) {
			res.Skipped = append(res.Skipped, SkippedJob{LinkedInURL: in.url, Reason: "concurrent save conflict, retry"})
			continue
		}
		if err != nil {
			log.Printf("❌ Failed to save job %s: %v", in.url, err)
			res.Skipped = append(res.Skipped, SkippedJob{LinkedInURL: in.url, Reason: reasonStorageError})
			continue
		}

		switch outcome {
		case outcomeCreated:
			res.Created = append(res.Created, *job)
		case outcomeUpdated:
			res.Updated = append(res.Updated, *job)
		default:
			res.Skipped = append(res.Skipped, SkippedJob{LinkedInURL: in.url, Reason: reasonNoChanges})
		}
	}

	// one entry per created job, after the writes committed
	for i := range res.Created {
		job := res.Created[i]
		s.Activity.Log(ctx, userID, models.ActionJobSaved, map[string]any{
			"title":   job.Title,
			"company": job.Company,
		}, &job.ID)
	}

	log.Printf("💾 Jobs saved for %s: created=%d updated=%d skipped=%d", userID, len(res.Created), len(res.Updated), len(res.Skipped))
	return res, nil
}

// saveOne makes the create-or-update decision for one job atomically. The
// insert is ON CONFLICT DO NOTHING on (user_id, linkedin_url); if a
// concurrent request created the row first, we reload it and fall through
// to the update path.
func (s *JobService) saveOne(ctx context.Context, userID string, in incoming) (*models.JobPost, saveOutcome, error) {
	var (
		result  models.JobPost
		outcome saveOutcome
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.JobPost
		err := tx.Where("user_id = ? AND linkedin_url = ?", userID, in.url).Take(&existing).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			job := s.newJob(userID, in)
			r := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "linkedin_url"}},
				DoNothing: true,
			}).Create(&job)
			if r.Error != nil {
				return r.Error
			}
			if r.RowsAffected > 0 {
				result, outcome = job, outcomeCreated
				return nil
			}
			err = tx.Where("user_id = ? AND linkedin_url = ?", userID, in.url).Take(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConflict
			}
			if err != nil {
				return err
			}
		default:
			return err
		}

		if !s.merge(&existing, in) {
			result, outcome = existing, outcomeSkipped
			return nil
		}
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		result, outcome = existing, outcomeUpdated
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return &result, outcome, nil
}

func (s *JobService) newJob(userID string, in incoming) models.JobPost {
	job := models.JobPost{
		UserID:           userID,
		LinkedInJobID:    in.jobID,
		LinkedInURL:      in.url,
		Title:            in.title,
		Company:          in.company,
		Location:         in.location,
		Description:      in.description,
		ExternalApplyURL: in.externalURL,
		Status:           in.status,
		ApplyMethod:      in.applyMethod,
		HiringContacts:   datatypes.JSONSlice[models.HiringContact](in.contacts),
		MatchScore:       in.matchScore,
		AIAnalysis:       in.analysis,
		Notes:            in.notes,
	}
	if job.Title == "" {
		job.Title = "Unknown"
	}
	if job.Status == "" {
		job.Status = models.StatusNew
	}
	if job.HiringContacts == nil {
		job.HiringContacts = datatypes.JSONSlice[models.HiringContact]{}
	}
	if in.hasEasyApply != nil {
		job.HasEasyApply = *in.hasEasyApply
	}
	s.stampApplied(&job, in.applyMethod)
	return job
}

// merge applies in to job and reports whether anything worth writing
// changed. Rescans that bring no new status and fill no empty slot leave
// the row (and its updated_at) alone.
func (s *JobService) merge(job *models.JobPost, in incoming) bool {
	statusChanged := in.status != "" && in.status != job.Status
	newData := (in.matchScore != nil && job.MatchScore == nil) ||
		(len(in.analysis) > 0 && isEmptyJSON(job.AIAnalysis)) ||
		(len(in.contacts) > 0 && len(job.HiringContacts) == 0)
	if !statusChanged && !newData {
		return false
	}

	if statusChanged {
		job.Status = in.status
	}
	if in.matchScore != nil {
		job.MatchScore = in.matchScore
	}
	if len(in.analysis) > 0 {
		job.AIAnalysis = in.analysis
	}
	if len(in.contacts) > 0 {
		job.HiringContacts = datatypes.JSONSlice[models.HiringContact](in.contacts)
	}
	if in.externalURL != "" {
		job.ExternalApplyURL = in.externalURL
	}
	if in.hasEasyApply != nil {
		job.HasEasyApply = *in.hasEasyApply
	}
	if in.notes != "" {
		job.Notes = in.notes
	}
	s.stampApplied(job, in.applyMethod)
	return true
}

// stampApplied sets applied_at the first time a job is seen as applied.
// It is never overwritten afterwards.
func (s *JobService) stampApplied(job *models.JobPost, method models.ApplyMethod) bool {
	if job.Status != models.StatusApplied || job.AppliedAt != nil {
		return false
	}
	now := s.now()
	job.AppliedAt = &now
	switch {
	case method != "":
		job.ApplyMethod = method
	case job.ApplyMethod == "":
		job.ApplyMethod = models.ApplyExternal
	}
	return true
}

func isEmptyJSON(v datatypes.JSON) bool {
	s := strings.TrimSpace(string(v))
	return s == "" || s == "null" || s == "{}"
}

// UpdateStatus sets a job's status by id or by URL prefix. Any status may
// follow any other.
func (s *JobService) UpdateStatus(ctx context.Context, userID string, req dtos.StatusUpdateRequest) (*models.JobPost, error) {
	st, err := models.ParseJobStatus(req.Status)
	if err != nil {
		return nil, invalid(err.Error())
	}
	var method models.ApplyMethod
	if req.ApplyMethod != "" {
		if method, err = models.ParseApplyMethod(req.ApplyMethod); err != nil {
			return nil, invalid(err.Error())
		}
	}

	job, err := s.Matcher.FindJob(ctx, userID, req.JobID, req.LinkedInURL)
	if err != nil {
		return nil, err
	}

	oldStatus := job.Status
	job.Status = st
	if req.Notes != nil {
		job.Notes = *req.Notes
	}
	firstApply := s.stampApplied(job, method)

	if err := s.DB.WithContext(ctx).Save(job).Error; err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.Activity.Log(ctx, userID, models.ActionStatusChanged, map[string]any{
		"old_status": oldStatus,
		"new_status": job.Status,
		"title":      job.Title,
		"company":    job.Company,
	}, &job.ID)
	if firstApply {
		s.Activity.Log(ctx, userID, models.ActionApplied, map[string]any{
			"apply_method": job.ApplyMethod,
		}, &job.ID)
	}
	return job, nil
}

// FindByURL is the "have I seen this job" lookup used by the extension.
func (s *JobService) FindByURL(ctx context.Context, userID, rawURL string) (*models.JobPost, error) {
	return s.Matcher.FindJobByURL(ctx, userID, rawURL)
}

// List returns a user's jobs, most recently updated first. status must be a
// valid status when set; company is a case-insensitive substring.
func (s *JobService) List(ctx context.Context, userID, status, company string) ([]models.JobPost, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		st, err := models.ParseJobStatus(status)
		if err != nil {
			return nil, invalid(err.Error())
		}
		q = q.Where("status = ?", st)
	}
	if company = strings.TrimSpace(company); company != "" {
		q = q.Where("LOWER(company) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(company))+"%")
	}

	jobs := []models.JobPost{}
	if err := q.Order("updated_at desc").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *JobService) Get(ctx context.Context, userID, id string) (*models.JobPost, error) {
	return s.Matcher.FindJob(ctx, userID, id, "")
}

// Update applies a partial edit from the dashboard.
func (s *JobService) Update(ctx context.Context, userID, id string, req dtos.UpdateJobRequest) (*models.JobPost, error) {
	job, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&job.Title, req.Title)
	set(&job.Company, req.Company)
	set(&job.Location, req.Location)
	set(&job.Description, req.Description)
	set(&job.Notes, req.Notes)
	set(&job.ExternalApplyURL, req.ExternalApplyURL)

	var method models.ApplyMethod
	if req.ApplyMethod != nil && *req.ApplyMethod != "" {
		if method, err = models.ParseApplyMethod(*req.ApplyMethod); err != nil {
			return nil, invalid(err.Error())
		}
		job.ApplyMethod = method
	}
	if req.MatchScore != nil {
		if *req.MatchScore < 0 || *req.MatchScore > 100 {
			return nil, invalid("match_score must be between 0 and 100")
		}
		job.MatchScore = req.MatchScore
	}
	if req.Status != nil {
		st, err := models.ParseJobStatus(*req.Status)
		if err != nil {
			return nil, invalid(err.Error())
		}
		job.Status = st
		s.stampApplied(job, method)
	}

	if err := s.DB.WithContext(ctx).Save(job).Error; err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	return job, nil
}

// Delete removes a job. Outreach and activity rows keep existing with
// their job link cleared.
func (s *JobService) Delete(ctx context.Context, userID, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.JobPost{})
		if r.Error != nil {
			return r.Error
		}
		if r.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Model(&models.ConnectionRequest{}).Where("job_id = ?", id).Update("job_id", nil).Error; err != nil {
			return err
		}
		return tx.Model(&models.ActivityLog{}).Where("job_id = ?", id).Update("job_id", nil).Error
	})
}

// Stats summarizes all of a user's jobs plus their latest activity.
func (s *JobService) Stats(ctx context.Context, userID string) (stats.Summary, error) {
	jobs, err := s.List(ctx, userID, "", "")
	if err != nil {
		return stats.Summary{}, err
	}
	recent, err := s.Activity.Recent(ctx, userID, 10)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Compute(jobs, recent), nil
}
