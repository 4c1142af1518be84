package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/justsurfingit/linkedin-agent/internal/dtos"
	"github.com/justsurfingit/linkedin-agent/internal/models"
	"gorm.io/gorm"
)

// UserService manages job-tracker accounts. There are no passwords: the
// user id is handed out as the bearer token.
type UserService struct {
	DB       *gorm.DB
	Activity *ActivityLogger
}

func NewUserService(db *gorm.DB, activity *ActivityLogger) *UserService {
	return &UserService{DB: db, Activity: activity}
}

func (s *UserService) Register(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("user %s: %w", email, ErrConflict)
	}

	user := models.User{Email: email}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("user %s: %w", email, ErrConflict)
		}
		return nil, err
	}
	s.Activity.Log(ctx, user.ID, models.ActionUserRegistered, map[string]any{"email": email}, nil)
	return &user, nil
}

func (s *UserService) Login(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Activity.Log(ctx, user.ID, models.ActionUserLogin, nil, nil)
	return &user, nil
}

// ByToken resolves a bearer token. Anything that is not a UUID is rejected
// without touching the database.
func (s *UserService) ByToken(ctx context.Context, token string) (*models.User, error) {
	id, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, ErrNotFound
	}
	var user models.User
	err = s.DB.WithContext(ctx).Where("id = ?", id.String()).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateSettings(ctx context.Context, user *models.User, req dtos.SettingsRequest) (*models.User, error) {
	if req.TargetRole != nil {
		user.TargetRole = *req.TargetRole
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	s.Activity.Log(ctx, user.ID, models.ActionProfileUpdated, map[string]any{
		"target_role": user.TargetRole,
		"location":    user.Location,
	}, nil)
	return user, nil
}
