package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/justsurfingit/linkedin-agent/internal/dtos"
	"github.com/justsurfingit/linkedin-agent/internal/messaging"
	"github.com/justsurfingit/linkedin-agent/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileService owns message-generation profiles, the connections sent on
// their behalf, and daily usage counters.
type ProfileService struct {
	DB *gorm.DB

	now func() time.Time
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db, now: time.Now}
}

// Upsert stores req keyed by email. An existing profile is overwritten in
// place; created reports which case happened. The insert is ON CONFLICT DO
// NOTHING on email, so a concurrent first save for the same address lands
// on the update path instead of failing.
func (s *ProfileService) Upsert(ctx context.Context, req dtos.ProfileRequest) (profile *models.UserProfile, created bool, err error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, false, invalid("email is required")
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.UserProfile
		err := tx.Where("email = ?", email).Take(&p).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			p = models.UserProfile{Email: email}
			applyProfile(&p, req)
			r := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "email"}},
				DoNothing: true,
			}).Create(&p)
			if r.Error != nil {
				return r.Error
			}
			if r.RowsAffected > 0 {
				profile, created = &p, true
				return nil
			}
			p = models.UserProfile{}
			if err := tx.Where("email = ?", email).Take(&p).Error; err != nil {
				return err
			}
		default:
			return err
		}

		applyProfile(&p, req)
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		profile = &p
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("upsert profile: %w", err)
	}
	return profile, created, nil
}

func applyProfile(p *models.UserProfile, req dtos.ProfileRequest) {
	p.Name = req.Name
	p.CurrentTitle = req.CurrentTitle
	p.CurrentCompany = req.CurrentCompany
	p.ExperienceLevel = req.ExperienceLevel
	p.TargetRole = req.TargetRole
	p.TargetIndustry = req.TargetIndustry
	p.School = req.School
	p.Major = req.Major
	p.GraduationYear = req.GraduationYear
	p.Skills = req.Skills
	p.Bio = req.Bio
	p.ConnectionPurpose = req.ConnectionPurpose
}

func (s *ProfileService) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *ProfileService) ByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, invalid("email parameter required")
	}
	return s.first(ctx, "email = ?", email)
}

func (s *ProfileService) first(ctx context.Context, query string, arg any) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.DB.WithContext(ctx).Where(query, arg).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Sender resolves who a message is from: the stored profile when an id is
// given, else the inline fields.
func (s *ProfileService) Sender(ctx context.Context, f dtos.SenderFields) (messaging.Sender, error) {
	if f.UserProfileID == "" {
		return f.Sender(), nil
	}
	p, err := s.Get(ctx, f.UserProfileID)
	if err != nil {
		return messaging.Sender{}, err
	}
	return SenderFromProfile(p), nil
}

func SenderFromProfile(p *models.UserProfile) messaging.Sender {
	return messaging.Sender{
		Name:            p.Name,
		Title:           p.CurrentTitle,
		Company:         p.CurrentCompany,
		School:          p.School,
		Major:           p.Major,
		Email:           p.Email,
		ExperienceLevel: p.ExperienceLevel,
		Skills:          p.Skills,
		Purpose:         p.ConnectionPurpose,
	}
}

// RecordUsage adds to today's counters for a profile. The increment is a
// single upsert so concurrent requests do not lose counts.
func (s *ProfileService) RecordUsage(ctx context.Context, profileID string, messages, connections int) error {
	return s.recordUsage(s.DB.WithContext(ctx), profileID, messages, connections)
}

func (s *ProfileService) recordUsage(db *gorm.DB, profileID string, messages, connections int) error {
	row := models.UsageStats{
		UserProfileID:     profileID,
		Date:              s.now().UTC().Format(time.DateOnly),
		MessagesGenerated: messages,
		ConnectionsSent:   connections,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_profile_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"messages_generated": gorm.Expr("usage_stats.messages_generated + ?", messages),
			"connections_sent":   gorm.Expr("usage_stats.connections_sent + ?", connections),
		}),
	}).Create(&row).Error
}

type UsageTotals struct {
	MessagesGenerated int `json:"messages_generated"`
	ConnectionsSent   int `json:"connections_sent"`
}

type UsageReport struct {
	ProfileID  string              `json:"profile_id"`
	DailyStats []models.UsageStats `json:"daily_stats"`
	Totals     UsageTotals         `json:"totals"`
}

// Usage returns the last 30 days with activity, newest first, and their
// totals.
func (s *ProfileService) Usage(ctx context.Context, profileID string) (*UsageReport, error) {
	if _, err := s.Get(ctx, profileID); err != nil {
		return nil, err
	}
	rep := &UsageReport{ProfileID: profileID, DailyStats: []models.UsageStats{}}
	err := s.DB.WithContext(ctx).
		Where("user_profile_id = ?", profileID).
		Order("date desc").
		Limit(30).
		Find(&rep.DailyStats).Error
	if err != nil {
		return nil, err
	}
	for _, d := range rep.DailyStats {
		rep.Totals.MessagesGenerated += d.MessagesGenerated
		rep.Totals.ConnectionsSent += d.ConnectionsSent
	}
	return rep, nil
}

// RecordConnections stores the connection notes the extension sent. Rows
// without a target name are dropped. Today's connections_sent grows by the
// number stored.
func (s *ProfileService) RecordConnections(ctx context.Context, profileID string, inputs []dtos.SentConnectionInput) ([]models.SentConnection, error) {
	if _, err := s.Get(ctx, profileID); err != nil {
		return nil, err
	}

	records := []models.SentConnection{}
	for _, in := range inputs {
		if strings.TrimSpace(in.TargetName) == "" {
			continue
		}
		status := in.Status
		if status == "" {
			status = string(models.ConnPending)
		}
		records = append(records, models.SentConnection{
			UserProfileID:     profileID,
			TargetName:        in.TargetName,
			TargetTitle:       in.TargetTitle,
			TargetCompany:     in.TargetCompany,
			TargetLinkedInURL: in.TargetLinkedInURL,
			MessageSent:       in.MessageSent,
			Status:            status,
		})
	}
	if len(records) == 0 {
		return records, nil
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&records).Error; err != nil {
			return err
		}
		return s.recordUsage(tx, profileID, 0, len(records))
	})
	if err != nil {
		return nil, fmt.Errorf("record connections: %w", err)
	}
	return records, nil
}
