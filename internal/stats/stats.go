// Package stats summarizes a user's tracked jobs and recent activity for
// the dashboard.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/justsurfingit/linkedin-agent/internal/models"
)

const (
	topCompaniesLimit   = 5
	recentActivityLimit = 10
)

type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

type Summary struct {
	TotalJobs         int                      `json:"total_jobs"`
	JobsByStatus      map[models.JobStatus]int `json:"jobs_by_status"`
	JobsApplied       int                      `json:"jobs_applied"`
	JobsInterviewing  int                      `json:"jobs_interviewing"`
	AverageMatchScore *float64                 `json:"average_match_score"`
	TopCompanies      []CompanyCount           `json:"top_companies"`
	RecentActivity    []models.ActivityLog     `json:"recent_activity"`
}

// Compute derives the dashboard summary. Every status gets a count, zero
// included. The average covers scored jobs only and is nil when none are
// scored. Company ties keep first-seen order.
func Compute(jobs []models.JobPost, activity []models.ActivityLog) Summary {
	sum := Summary{
		TotalJobs:      len(jobs),
		JobsByStatus:   make(map[models.JobStatus]int, len(models.JobStatuses)),
		TopCompanies:   []CompanyCount{},
		RecentActivity: []models.ActivityLog{},
	}
	for _, st := range models.JobStatuses {
		sum.JobsByStatus[st] = 0
	}

	var (
		scoreTotal int
		scored     int
		counts     = map[string]int{}
		order      []string
	)
	for _, j := range jobs {
		st := j.Status
		if st == "" {
			st = models.StatusNew
		}
		sum.JobsByStatus[st]++
		if j.MatchScore != nil {
			scoreTotal += *j.MatchScore
			scored++
		}
		name := strings.TrimSpace(j.Company)
		if name == "" {
			continue
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}
	sum.JobsApplied = sum.JobsByStatus[models.StatusApplied]
	sum.JobsInterviewing = sum.JobsByStatus[models.StatusInterviewing]

	if scored > 0 {
		avg := math.Round(float64(scoreTotal)/float64(scored)*10) / 10
		sum.AverageMatchScore = &avg
	}

	sort.SliceStable(order, func(a, b int) bool { return counts[order[a]] > counts[order[b]] })
	for i, name := range order {
		if i == topCompaniesLimit {
			break
		}
		sum.TopCompanies = append(sum.TopCompanies, CompanyCount{Company: name, Count: counts[name]})
	}

	recent := make([]models.ActivityLog, len(activity))
	copy(recent, activity)
	sort.SliceStable(recent, func(a, b int) bool { return recent[a].CreatedAt.After(recent[b].CreatedAt) })
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}
	sum.RecentActivity = append(sum.RecentActivity, recent...)
	return sum
}
