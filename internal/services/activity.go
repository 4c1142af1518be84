package services

import (
	"context"
	"log/slog"

	"github.com/justsurfingit/linkedin-agent/internal/events"
	"github.com/justsurfingit/linkedin-agent/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLogger appends audit entries and fans them out as events. Both
// steps are best effort: failures are logged, never returned.
type ActivityLogger struct {
	DB        *gorm.DB
	Publisher events.Publisher
}

func NewActivityLogger(db *gorm.DB, pub events.Publisher) *ActivityLogger {
	if pub == nil {
		pub = events.Nop{}
	}
	return &ActivityLogger{DB: db, Publisher: pub}
}

// Log records action for userID. jobID may be nil.
func (l *ActivityLogger) Log(ctx context.Context, userID string, action models.Action, details map[string]any, jobID *string) {
	entry := models.ActivityLog{
		UserID:  userID,
		Action:  action,
		Details: datatypes.JSONMap(details),
		JobID:   jobID,
	}
	if err := l.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		slog.Warn("activity log write failed", "action", action, "user", userID, "err", err)
		return
	}
	if err := l.Publisher.Publish(ctx, events.Channel(string(action)), entry); err != nil {
		slog.Warn("activity publish failed", "action", action, "err", err)
	}
}

// Recent returns the newest entries for userID, newest first.
func (l *ActivityLogger) Recent(ctx context.Context, userID string, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	out := []models.ActivityLog{}
	err := l.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
