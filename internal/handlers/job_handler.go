package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/linkedin-agent/internal/auth"
	"github.com/justsurfingit/linkedin-agent/internal/dtos"
	"github.com/justsurfingit/linkedin-agent/internal/services"
)

// JobHandler serves the tracked-job endpoints. Every route runs behind
// auth.Middleware.
type JobHandler struct {
	Jobs        *services.JobService
	ActivityLog *services.ActivityLogger
	Analysis    *services.AnalysisService
}

func NewJobHandler(jobs *services.JobService, activity *services.ActivityLogger, analysis *services.AnalysisService) *JobHandler {
	return &JobHandler{Jobs: jobs, ActivityLog: activity, Analysis: analysis}
}

// SaveJobs is POST /jobs. It takes a scan batch and reports which jobs were
// created, updated or skipped.
func (h *JobHandler) SaveJobs(c *gin.Context) {
	var req dtos.SaveJobsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.Jobs.SaveJobs(c.Request.Context(), auth.CurrentUser(c).ID, req.Jobs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"created": res.Created,
		"updated": res.Updated,
		"skipped": res.Skipped,
	})
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.Jobs.List(c.Request.Context(), auth.CurrentUser(c).ID, c.Query("status"), c.Query("company"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(jobs), "jobs": jobs})
}

func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.Jobs.Get(c.Request.Context(), auth.CurrentUser(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	var req dtos.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	job, err := h.Jobs.Update(c.Request.Context(), auth.CurrentUser(c).ID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	if err := h.Jobs.Delete(c.Request.Context(), auth.CurrentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateStatus is PUT /jobs/status; the job is named by id or by URL.
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	var req dtos.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	job, err := h.Jobs.UpdateStatus(c.Request.Context(), auth.CurrentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job": job})
}

// ByURL lets the extension check whether the page it is on is tracked.
func (h *JobHandler) ByURL(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "url query parameter is required"})
		return
	}
	job, err := h.Jobs.FindByURL(c.Request.Context(), auth.CurrentUser(c).ID, url)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"found": false, "job": nil})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "job": job})
}

func (h *JobHandler) Stats(c *gin.Context) {
	summary, err := h.Jobs.Stats(c.Request.Context(), auth.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *JobHandler) Activity(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "limit must be a positive integer"})
		return
	}
	entries, err := h.ActivityLog.Recent(c.Request.Context(), auth.CurrentUser(c).ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(entries), "activity": entries})
}

// Analyze is POST /ai/analyze.
func (h *JobHandler) Analyze(c *gin.Context) {
	var req dtos.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	analysis, err := h.Analysis.Analyze(c.Request.Context(), auth.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analysis": analysis})
}
