package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/justsurfingit/linkedin-agent/internal/database"
	"github.com/justsurfingit/linkedin-agent/internal/events"
	"github.com/justsurfingit/linkedin-agent/internal/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect("sqlite:" + filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type stack struct {
	db       *gorm.DB
	activity *ActivityLogger
	pub      *recordingPublisher
	matcher  *MatcherService
	jobs     *JobService
	user     *models.User
}

func newStack(t *testing.T) *stack {
	t.Helper()
	db := newTestDB(t)
	pub := &recordingPublisher{}
	activity := NewActivityLogger(db, pub)
	matcher := NewMatcherService(db)
	jobs := NewJobService(db, matcher, activity)
	user, err := NewUserService(db, activity).Register(context.Background(), "dev@example.com")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return &stack{db: db, activity: activity, pub: pub, matcher: matcher, jobs: jobs, user: user}
}

// fixedClock returns a clock that advances one minute per call.
func fixedClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	return nil
}

func (p *recordingPublisher) count(channel string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.channels {
		if c == channel {
			n++
		}
	}
	return n
}

var _ events.Publisher = (*recordingPublisher)(nil)

// stubCompleter answers from a queue of replies; an empty queue is an error.
type stubCompleter struct {
	mu       sync.Mutex
	replies  []string
	errs     map[string]error // keyed by a substring of the prompt
	requests []CompletionRequest
}

func (s *stubCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	for needle, err := range s.errs {
		if strings.Contains(req.Prompt, needle) {
			return "", err
		}
	}
	if len(s.replies) == 0 {
		return "", errors.New("no reply queued")
	}
	r := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return r, nil
}
