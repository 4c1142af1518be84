package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/linkedin-agent/internal/dtos"
	"github.com/justsurfingit/linkedin-agent/internal/messaging"
	"github.com/justsurfingit/linkedin-agent/internal/services"
)

// MessageHandler serves sender profiles and connection-note generation.
// These routes are not tied to a job-tracker account.
type MessageHandler struct {
	Messages *services.MessageService
	Profiles *services.ProfileService
}

func NewMessageHandler(messages *services.MessageService, profiles *services.ProfileService) *MessageHandler {
	return &MessageHandler{Messages: messages, Profiles: profiles}
}

// UpsertProfile is POST /profiles, keyed by email.
func (h *MessageHandler) UpsertProfile(c *gin.Context) {
	var req dtos.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	profile, created, err := h.Profiles.Upsert(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	c.JSON(code, profile)
}

func (h *MessageHandler) GetProfile(c *gin.Context) {
	profile, err := h.Profiles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *MessageHandler) ProfileByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email query parameter is required"})
		return
	}
	profile, err := h.Profiles.ByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Generate is POST /generate-message. Once the request is valid it always
// answers 200; a provider failure yields the template note.
func (h *MessageHandler) Generate(c *gin.Context) {
	var req dtos.GenerateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sender, err := h.Profiles.Sender(c.Request.Context(), req.SenderFields)
	if err != nil {
		respondError(c, err)
		return
	}

	target := messaging.Target{Name: req.TargetName, Title: req.TargetTitle, Company: req.TargetCompany}
	tone := messaging.ParseTone(req.Tone)
	res := h.Messages.Generate(c.Request.Context(), sender, target, services.MessageOptions{
		Tone:    tone,
		Include: req.IncludeFlags.Include(),
	})

	h.recordUsage(c, req.UserProfileID, 1)
	c.JSON(http.StatusOK, gin.H{
		"message":  res.Message,
		"target":   res.Target,
		"tone":     tone,
		"fallback": res.Fallback,
	})
}

// GenerateBatch is POST /generate-messages/batch. Targets are processed in
// order and each row reports its own outcome.
func (h *MessageHandler) GenerateBatch(c *gin.Context) {
	var req dtos.BatchGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sender, err := h.Profiles.Sender(c.Request.Context(), req.SenderFields)
	if err != nil {
		respondError(c, err)
		return
	}

	results, successful := h.Messages.GenerateBatch(c.Request.Context(), sender, req.Targets, services.MessageOptions{
		Tone:    messaging.ParseTone(req.Tone),
		Include: req.IncludeFlags.Include(),
	})

	h.recordUsage(c, req.UserProfileID, len(req.Targets))
	c.JSON(http.StatusOK, gin.H{
		"results":    results,
		"total":      len(results),
		"successful": successful,
	})
}

// BulkConnections is POST /connections/bulk.
func (h *MessageHandler) BulkConnections(c *gin.Context) {
	var req dtos.BulkConnectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	records, err := h.Profiles.RecordConnections(c.Request.Context(), req.ProfileID, req.Requests)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(records), "records": records})
}

func (h *MessageHandler) Usage(c *gin.Context) {
	report, err := h.Profiles.Usage(c.Request.Context(), c.Param("profile_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// recordUsage never fails the request; the note has already been written.
func (h *MessageHandler) recordUsage(c *gin.Context, profileID string, n int) {
	if profileID == "" || n == 0 {
		return
	}
	if err := h.Profiles.RecordUsage(c.Request.Context(), profileID, n, 0); err != nil {
		log.Printf("⚠️ Error updating usage stats: %v", err)
	}
}
