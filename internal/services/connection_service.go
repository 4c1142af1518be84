package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/justsurfingit/linkedin-agent/internal/dtos"
	"github.com/justsurfingit/linkedin-agent/internal/models"
	"gorm.io/gorm"
)

// ConnectionService tracks outreach to hiring contacts.
type ConnectionService struct {
	DB       *gorm.DB
	Matcher  *MatcherService
	Activity *ActivityLogger

	now func() time.Time
}

func NewConnectionService(db *gorm.DB, matcher *MatcherService, activity *ActivityLogger) *ConnectionService {
	return &ConnectionService{DB: db, Matcher: matcher, Activity: activity, now: time.Now}
}

func (s *ConnectionService) List(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	out := []models.ConnectionRequest{}
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&out).Error
	return out, err
}

// Create logs a message. A job reference that matches nothing is not an
// error; the record is stored without a job link.
func (s *ConnectionService) Create(ctx context.Context, userID string, req dtos.ConnectionCreateRequest) (*models.ConnectionRequest, error) {
	msgType, err := models.ParseMessageType(req.MessageType)
	if err != nil {
		return nil, invalid(err.Error())
	}
	status := models.ConnPending
	if req.Status != "" {
		if status, err = models.ParseConnectionStatus(req.Status); err != nil {
			return nil, invalid(err.Error())
		}
	}

	conn := models.ConnectionRequest{
		UserID:               userID,
		RecipientName:        req.RecipientName,
		RecipientTitle:       req.RecipientTitle,
		RecipientLinkedInURL: req.RecipientLinkedInURL,
		MessageType:          msgType,
		Message:              req.Message,
		Status:               status,
	}
	if status != models.ConnPending {
		now := s.now()
		conn.SentAt = &now
	}

	if req.JobID != "" || req.LinkedInURL != "" {
		job, err := s.Matcher.FindJob(ctx, userID, req.JobID, req.LinkedInURL)
		switch {
		case err == nil:
			conn.JobID = &job.ID
		case errors.Is(err, ErrNotFound):
		default:
			return nil, err
		}
	}

	if err := s.DB.WithContext(ctx).Create(&conn).Error; err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}

	s.Activity.Log(ctx, userID, models.ActionMessageSent, map[string]any{
		"recipient": conn.RecipientName,
		"type":      conn.MessageType,
	}, conn.JobID)
	return &conn, nil
}

// UpdateStatus moves a connection forward. Moving backwards is rejected.
// The first transition out of pending stamps sent_at.
func (s *ConnectionService) UpdateStatus(ctx context.Context, userID, id, status string) (*models.ConnectionRequest, error) {
	next, err := models.ParseConnectionStatus(status)
	if err != nil {
		return nil, invalid(err.Error())
	}

	var conn models.ConnectionRequest
	err = s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if !conn.Status.CanAdvance(next) {
		return nil, invalid(fmt.Sprintf("cannot move connection from %s back to %s", conn.Status, next))
	}
	conn.Status = next
	if next != models.ConnPending && conn.SentAt == nil {
		now := s.now()
		conn.SentAt = &now
	}
	if err := s.DB.WithContext(ctx).Save(&conn).Error; err != nil {
		return nil, fmt.Errorf("update connection: %w", err)
	}
	return &conn, nil
}
