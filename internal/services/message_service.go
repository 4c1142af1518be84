package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/justsurfingit/linkedin-agent/internal/messaging"
	"github.com/justsurfingit/linkedin-agent/internal/seniority"
)

// MessageOptions are the generation knobs shared by single and batch calls.
type MessageOptions struct {
	Tone    messaging.Tone
	Include messaging.Include
}

// GeneratedMessage is the outcome for one target. Fallback is set when the
// provider failed and a template note was used; Err carries the reason.
type GeneratedMessage struct {
	Target   messaging.Target
	Message  string
	Fallback bool
	Err      error
}

// BatchItem is one row of a batch response.
type BatchItem struct {
	Target  messaging.Target `json:"target"`
	Message string           `json:"message"`
	Success bool             `json:"success"`
	Error   string           `json:"error,omitempty"`
}

// MessageService drafts connection notes through an injected Completer and
// falls back to a template whenever the provider cannot deliver.
type MessageService struct {
	LLM         Completer
	Rand        messaging.Rand
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

func NewMessageService(llm Completer, rnd messaging.Rand, timeout time.Duration, maxTokens int, temperature float64) *MessageService {
	return &MessageService{
		LLM:         llm,
		Rand:        rnd,
		Timeout:     timeout,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// Generate drafts one note. It never fails: provider errors are reported
// on the result and the message comes from the fallback template.
func (s *MessageService) Generate(ctx context.Context, sender messaging.Sender, target messaging.Target, opts MessageOptions) GeneratedMessage {
	out := GeneratedMessage{Target: target}
	rel := seniority.Relate(seniority.DetectUser(sender.ExperienceLevel, sender.Title), seniority.Detect(target.Title))

	if s.LLM != nil {
		system, prompt := messaging.BuildPrompt(sender, target, opts.Tone, opts.Include, s.Rand)
		raw, err := s.LLM.Complete(ctx, CompletionRequest{
			System:      system,
			Prompt:      prompt,
			MaxTokens:   s.MaxTokens,
			Temperature: s.Temperature,
			Timeout:     s.Timeout,
		})
		if err == nil {
			if msg := messaging.Finalize(raw); msg != "" {
				out.Message = msg
				return out
			}
			err = errEmptyMessage
		}
		slog.Warn("message generation failed, using fallback", "target", target.Name, "err", err)
		out.Err = err
	} else {
		out.Err = errNoProvider
	}

	out.Fallback = true
	out.Message = messaging.Fallback(sender, target, opts.Include, opts.Tone, rel, s.Rand)
	return out
}

// GenerateBatch drafts a note per target, one after another. A target with
// no name or a failed provider call only affects its own row.
func (s *MessageService) GenerateBatch(ctx context.Context, sender messaging.Sender, targets []messaging.Target, opts MessageOptions) ([]BatchItem, int) {
	items := make([]BatchItem, 0, len(targets))
	successful := 0
	for _, t := range targets {
		if t.Name == "" {
			items = append(items, BatchItem{Target: t, Error: "target name is required"})
			continue
		}
		res := s.Generate(ctx, sender, t, opts)
		item := BatchItem{Target: t, Message: res.Message, Success: !res.Fallback}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		if item.Success {
			successful++
		}
		items = append(items, item)
	}
	return items, successful
}

var (
	errEmptyMessage = errors.New("provider returned an empty message")
	errNoProvider   = errors.New("no language model configured")
)
