package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/justsurfingit/linkedin-agent/internal/dtos"
	"github.com/justsurfingit/linkedin-agent/internal/models"
	"gorm.io/gorm"
)

func strp(s string) *string { return &s }

func TestSaveJobsEndToEnd(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	res, err := s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{
		{URL: "https://linkedin.com/jobs/view/1?trk=abc", Title: "A"},
		{URL: "https://linkedin.com/jobs/view/1", Status: "applied"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Created) != 1 || len(res.Updated) != 1 || len(res.Skipped) != 0 {
		t.Fatalf("partition = %d/%d/%d", len(res.Created), len(res.Updated), len(res.Skipped))
	}
	updated := res.Updated[0]
	if updated.Status != models.StatusApplied || updated.AppliedAt == nil {
		t.Fatalf("update should apply: %+v", updated)
	}
	if updated.ApplyMethod != models.ApplyExternal {
		t.Errorf("apply method = %q, want external", updated.ApplyMethod)
	}
	if updated.Title != "A" {
		t.Errorf("title = %q, rescan must not blank it", updated.Title)
	}

	var count int64
	s.db.Model(&models.JobPost{}).Where("user_id = ?", s.user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("stored %d jobs, want 1", count)
	}
	if n := s.pub.count("activity.job_saved"); n != 1 {
		t.Errorf("job_saved events = %d, want 1", n)
	}
}

func TestSaveJobsIdempotent(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	payload := []dtos.JobPayload{{URL: "https://www.linkedin.com/jobs/view/42/?refId=x", Title: "Go Engineer", Company: "Acme"}}

	first, err := s.jobs.SaveJobs(ctx, s.user.ID, payload)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.jobs.SaveJobs(ctx, s.user.ID, payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Created) != 1 {
		t.Fatalf("first save: %+v", first)
	}
	if len(second.Created) != 0 || len(second.Updated) != 0 || len(second.Skipped) != 1 {
		t.Fatalf("second save: %+v", second)
	}
	if second.Skipped[0].Reason != reasonNoChanges {
		t.Errorf("reason = %q", second.Skipped[0].Reason)
	}
}

func TestAppliedAtStampedOnce(t *testing.T) {
	s := newStack(t)
	s.jobs.now = fixedClock()
	ctx := context.Background()
	url := "https://linkedin.com/jobs/view/7"

	if _, err := s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{{URL: url, Title: "X"}}); err != nil {
		t.Fatal(err)
	}
	res, err := s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{{URL: url, Status: "applied"}})
	if err != nil {
		t.Fatal(err)
	}
	stamped := *res.Updated[0].AppliedAt

	res, err = s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{{URL: url, Status: "applied"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("third save should skip: %+v", res)
	}

	job, err := s.jobs.FindByURL(ctx, s.user.ID, url)
	if err != nil {
		t.Fatal(err)
	}
	if job.AppliedAt == nil || !job.AppliedAt.Equal(stamped) {
		t.Fatalf("applied_at changed: %v -> %v", stamped, job.AppliedAt)
	}

	// moving away and back does not restamp either
	for _, st := range []string{"interviewing", "applied"} {
		if _, err := s.jobs.UpdateStatus(ctx, s.user.ID, dtos.StatusUpdateRequest{LinkedInURL: url, Status: st}); err != nil {
			t.Fatal(err)
		}
	}
	job, _ = s.jobs.FindByURL(ctx, s.user.ID, url)
	if !job.AppliedAt.Equal(stamped) {
		t.Fatalf("applied_at restamped: %v", job.AppliedAt)
	}
}

func TestSaveJobsCreatedAsApplied(t *testing.T) {
	s := newStack(t)
	res, err := s.jobs.SaveJobs(context.Background(), s.user.ID, []dtos.JobPayload{
		{URL: "https://linkedin.com/jobs/view/5", Status: "applied", ApplyMethod: "easy_apply"},
	})
	if err != nil {
		t.Fatal(err)
	}
	job := res.Created[0]
	if job.AppliedAt == nil || job.ApplyMethod != models.ApplyEasyApply {
		t.Fatalf("created job: %+v", job)
	}
	if job.Title != "Unknown" {
		t.Errorf("title = %q, want Unknown", job.Title)
	}
}

func TestSaveJobsAbsentStatusKeepsStored(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	url := "https://linkedin.com/jobs/view/8"
	s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{{URL: url, Status: "interviewing"}})

	score := 77
	res, err := s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{{URL: url, MatchScore: &score}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Updated) != 1 {
		t.Fatalf("new score should update: %+v", res)
	}
	if got := res.Updated[0]; got.Status != models.StatusInterviewing || *got.MatchScore != 77 {
		t.Fatalf("merged job: status=%s score=%v", got.Status, got.MatchScore)
	}
}

func TestSaveJobsInvalidPayloadsAreSkipped(t *testing.T) {
	s := newStack(t)
	score := 140
	res, err := s.jobs.SaveJobs(context.Background(), s.user.ID, []dtos.JobPayload{
		{Title: "no url"},
		{URL: "https://linkedin.com/jobs/view/9", Status: "hired"},
		{URL: "https://linkedin.com/jobs/view/10", MatchScore: &score},
		{URL: "https://linkedin.com/jobs/view/11"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Created) != 1 || len(res.Skipped) != 3 {
		t.Fatalf("partition: created=%d skipped=%d", len(res.Created), len(res.Skipped))
	}
}

func TestSaveJobsConcurrentNoDuplicate(t *testing.T) {
	s := newStack(t)
	payload := []dtos.JobPayload{{URL: "https://linkedin.com/jobs/view/99?trk=a", Title: "Race"}}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.jobs.SaveJobs(context.Background(), s.user.ID, payload)
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			created += len(res.Created)
			mu.Unlock()
		}()
	}
	wg.Wait()

	var count int64
	s.db.Model(&models.JobPost{}).Count(&count)
	if count != 1 || created != 1 {
		t.Fatalf("rows=%d created=%d, want 1 and 1", count, created)
	}
}

func TestFindByURLPrefix(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{{URL: "https://linkedin.com/jobs/view/123", Title: "T"}})

	job, err := s.jobs.FindByURL(ctx, s.user.ID, "https://linkedin.com/jobs/view/123?trk=feed")
	if err != nil {
		t.Fatal(err)
	}
	if job.Title != "T" {
		t.Fatalf("found %+v", job)
	}

	if _, err := s.jobs.FindByURL(ctx, s.user.ID, "https://linkedin.com/jobs/view/999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.jobs.FindByURL(ctx, "someone-else", "https://linkedin.com/jobs/view/123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user's job leaked: %v", err)
	}
}

func TestUpdateStatusLogsActivity(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	res, _ := s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{{URL: "https://linkedin.com/jobs/view/3"}})
	id := res.Created[0].ID

	job, err := s.jobs.UpdateStatus(ctx, s.user.ID, dtos.StatusUpdateRequest{JobID: id, Status: "applied", ApplyMethod: "referral", Notes: strp("via Sam")})
	if err != nil {
		t.Fatal(err)
	}
	if job.ApplyMethod != models.ApplyReferral || job.Notes != "via Sam" {
		t.Fatalf("job = %+v", job)
	}
	if s.pub.count("activity.status_changed") != 1 || s.pub.count("activity.applied") != 1 {
		t.Fatalf("events = %v", s.pub.channels)
	}

	var verr *ValidationError
	if _, err := s.jobs.UpdateStatus(ctx, s.user.ID, dtos.StatusUpdateRequest{JobID: id, Status: "bogus"}); !errors.As(err, &verr) {
		t.Fatalf("bad status err = %v", err)
	}
	if _, err := s.jobs.UpdateStatus(ctx, s.user.ID, dtos.StatusUpdateRequest{Status: "new"}); !errors.As(err, &verr) {
		t.Fatalf("missing reference err = %v", err)
	}
}

func TestListFilters(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{
		{URL: "https://linkedin.com/jobs/view/1", Company: "Acme Corp"},
		{URL: "https://linkedin.com/jobs/view/2", Company: "Globex", Status: "applied"},
		{URL: "https://linkedin.com/jobs/view/3", Company: "ACME Labs", Status: "applied"},
	})

	jobs, err := s.jobs.List(ctx, s.user.ID, "applied", "acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].Company != "ACME Labs" {
		t.Fatalf("jobs = %+v", jobs)
	}

	var verr *ValidationError
	if _, err := s.jobs.List(ctx, s.user.ID, "hired", ""); !errors.As(err, &verr) {
		t.Fatalf("err = %v", err)
	}
}

func TestUpdateJob(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	res, _ := s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{{URL: "https://linkedin.com/jobs/view/4", Title: "Old"}})
	id := res.Created[0].ID

	score := 55
	job, err := s.jobs.Update(ctx, s.user.ID, id, dtos.UpdateJobRequest{Title: strp("New"), Status: strp("applied"), MatchScore: &score})
	if err != nil {
		t.Fatal(err)
	}
	if job.Title != "New" || job.AppliedAt == nil || *job.MatchScore != 55 {
		t.Fatalf("job = %+v", job)
	}

	if _, err := s.jobs.Update(ctx, s.user.ID, "missing", dtos.UpdateJobRequest{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeleteClearsLinks(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	res, _ := s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{{URL: "https://linkedin.com/jobs/view/6", Title: "Gone"}})
	id := res.Created[0].ID

	conns := NewConnectionService(s.db, s.matcher, s.activity)
	conn, err := conns.Create(ctx, s.user.ID, dtos.ConnectionCreateRequest{JobID: id, RecipientName: "Sam", Message: "Hi"})
	if err != nil {
		t.Fatal(err)
	}
	if conn.JobID == nil || *conn.JobID != id {
		t.Fatalf("connection not linked: %+v", conn)
	}

	if err := s.jobs.Delete(ctx, s.user.ID, id); err != nil {
		t.Fatal(err)
	}
	if err := s.jobs.Delete(ctx, s.user.ID, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}

	var linked int64
	s.db.Model(&models.ConnectionRequest{}).Where("job_id = ?", id).Count(&linked)
	var logged int64
	s.db.Model(&models.ActivityLog{}).Where("job_id = ?", id).Count(&logged)
	if linked != 0 || logged != 0 {
		t.Fatalf("links left: connections=%d activity=%d", linked, logged)
	}
	var kept int64
	s.db.Model(&models.ConnectionRequest{}).Count(&kept)
	if kept != 1 {
		t.Fatal("connection row should survive the job")
	}
}

func TestStats(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	a, b := 80, 60
	s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{
		{URL: "https://linkedin.com/jobs/view/1", Company: "Acme", MatchScore: &a},
		{URL: "https://linkedin.com/jobs/view/2", Company: "Acme", MatchScore: &b, Status: "interviewing"},
		{URL: "https://linkedin.com/jobs/view/3", Status: "applied"},
	})

	sum, err := s.jobs.Stats(ctx, s.user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalJobs != 3 || *sum.AverageMatchScore != 70 || sum.JobsApplied != 1 || sum.JobsInterviewing != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(sum.TopCompanies) != 1 || sum.TopCompanies[0].Count != 2 {
		t.Fatalf("top companies = %+v", sum.TopCompanies)
	}
	if len(sum.RecentActivity) == 0 {
		t.Fatal("recent activity missing")
	}
}

func TestFindByURLPrefersExactMatch(t *testing.T) {
	tests := []struct {
		name   string
		target string
		other  string
		lookup string
	}{
		{"path", "https://linkedin.com/jobs/view/1", "https://linkedin.com/jobs/view/12345", "https://linkedin.com/jobs/view/1?trk=x"},
		{"job id param", "https://linkedin.com/jobs/search/?currentJobId=5", "https://linkedin.com/jobs/search/?currentJobId=50", "https://linkedin.com/jobs/search/?currentJobId=5&trk=y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStack(t)
			ctx := context.Background()
			// the other job is saved last so it is the most recently updated
			s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{{URL: tt.target, Title: "One"}})
			s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{{URL: tt.other, Title: "Other"}})

			job, err := s.jobs.FindByURL(ctx, s.user.ID, tt.lookup)
			if err != nil {
				t.Fatal(err)
			}
			if job.Title != "One" {
				t.Fatalf("found %q at %s", job.Title, job.LinkedInURL)
			}

			if _, err := s.jobs.UpdateStatus(ctx, s.user.ID, dtos.StatusUpdateRequest{LinkedInURL: tt.lookup, Status: "applied"}); err != nil {
				t.Fatal(err)
			}
			other, err := s.jobs.FindByURL(ctx, s.user.ID, tt.other)
			if err != nil {
				t.Fatal(err)
			}
			if other.Title != "Other" || other.Status != models.StatusNew {
				t.Fatalf("status update hit the wrong job: %+v", other)
			}
			target, _ := s.jobs.FindByURL(ctx, s.user.ID, tt.target)
			if target.Status != models.StatusApplied {
				t.Fatalf("target status = %s", target.Status)
			}
		})
	}
}

func TestFindByURLPrefixStopsAtBoundary(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	// rows written under older rules may carry extra path segments
	legacy := models.JobPost{UserID: s.user.ID, LinkedInURL: "https://linkedin.com/jobs/view/77/apply", Title: "Legacy"}
	if err := s.db.Create(&legacy).Error; err != nil {
		t.Fatal(err)
	}
	s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{{URL: "https://linkedin.com/jobs/search/?currentJobId=50"}})

	job, err := s.jobs.FindByURL(ctx, s.user.ID, "https://linkedin.com/jobs/view/77")
	if err != nil || job.Title != "Legacy" {
		t.Fatalf("legacy row not found: %+v, %v", job, err)
	}
	for _, miss := range []string{"https://linkedin.com/jobs/view/7", "https://linkedin.com/jobs/search/?currentJobId=5"} {
		if _, err := s.jobs.FindByURL(ctx, s.user.ID, miss); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByURL(%q) err = %v, want ErrNotFound", miss, err)
		}
	}
}

func TestExtendsAtBoundary(t *testing.T) {
	tests := []struct {
		stored, prefix string
		want           bool
	}{
		{"https://x.com/jobs/view/1", "https://x.com/jobs/view/1", true},
		{"https://x.com/jobs/view/1/", "https://x.com/jobs/view/1", true},
		{"https://x.com/jobs/view/1?a=b", "https://x.com/jobs/view/1", true},
		{"https://x.com/jobs/view/1#top", "https://x.com/jobs/view/1", true},
		{"https://x.com/jobs/view/12345", "https://x.com/jobs/view/1", false},
		{"https://x.com/s?currentJobId=50", "https://x.com/s?currentJobId=5", false},
		{"https://x.com/jobs", "https://x.com/jobs/view/1", false},
	}
	for _, tt := range tests {
		if got := extendsAtBoundary(tt.stored, tt.prefix); got != tt.want {
			t.Errorf("extendsAtBoundary(%q, %q) = %v", tt.stored, tt.prefix, got)
		}
	}
}

func TestSaveJobsKeepsGoingAfterStorageError(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	err := s.db.Callback().Create().Before("gorm:create").Register("fail_broken_job", func(tx *gorm.DB) {
		if job, ok := tx.Statement.Dest.(*models.JobPost); ok && job.Title == "Broken" {
			tx.AddError(errors.New("disk full"))
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.jobs.SaveJobs(ctx, s.user.ID, []dtos.JobPayload{
		{URL: "https://www.linkedin.com/jobs/view/301", Title: "First"},
		{URL: "https://www.linkedin.com/jobs/view/302", Title: "Broken"},
		{URL: "https://www.linkedin.com/jobs/view/303", Title: "Third"},
	})
	if err != nil {
		t.Fatalf("batch aborted: %v", err)
	}
	if len(res.Created) != 2 || len(res.Skipped) != 1 {
		t.Fatalf("partition = %d created / %d skipped", len(res.Created), len(res.Skipped))
	}
	if res.Skipped[0].Reason != reasonStorageError {
		t.Fatalf("skip reason = %q", res.Skipped[0].Reason)
	}

	var logged int64
	s.db.Model(&models.ActivityLog{}).Where("user_id = ? AND action = ?", s.user.ID, models.ActionJobSaved).Count(&logged)
	if logged != 2 {
		t.Fatalf("job_saved entries = %d, want 2", logged)
	}
}
