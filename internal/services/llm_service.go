package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/justsurfingit/linkedin-agent/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

var defaultModels = map[string]string{
	"groq":   "llama-3.3-70b-versatile",
	"openai": "gpt-4o-mini",
	"gemini": "gemini-2.5-flash",
}

// CompletionRequest is one call to a text generation backend.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Completer is the one capability the message and analysis code needs from
// a language model.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// LLMService adapts any langchaingo model to Completer.
type LLMService struct {
	Client llms.Model
	// InlineSystem folds the system instruction into the user prompt, for
	// backends without a system role.
	InlineSystem bool
	Attempts     int
	Backoff      time.Duration
}

// NewLLMService builds the client for the configured provider. Groq is
// reached through its OpenAI-compatible endpoint.
func NewLLMService(ctx context.Context, cfg *config.Config) (*LLMService, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured for LLM provider %q", cfg.LLMProvider)
	}
	model := cfg.LLMModel
	if model == "" {
		model = defaultModels[cfg.LLMProvider]
	}

	var (
		client llms.Model
		err    error
	)
	switch cfg.LLMProvider {
	case "gemini":
		client, err = googleai.New(ctx,
			googleai.WithAPIKey(apiKey),
			googleai.WithDefaultModel(model),
		)
	case "openai":
		client, err = openai.New(
			openai.WithToken(apiKey),
			openai.WithModel(model),
		)
	case "groq":
		client, err = openai.New(
			openai.WithToken(apiKey),
			openai.WithModel(model),
			openai.WithBaseURL(groqBaseURL),
		)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.LLMProvider, err)
	}

	log.Printf("🤖 LLM provider %s ready (model %s)", cfg.LLMProvider, model)
	return &LLMService{
		Client:       client,
		InlineSystem: cfg.LLMProvider == "gemini",
		Attempts:     2,
		Backoff:      500 * time.Millisecond,
	}, nil
}

// Complete sends req and returns the first choice. The whole call,
// retries included, is bounded by req.Timeout.
func (s *LLMService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var messages []llms.MessageContent
	switch {
	case req.System == "":
		messages = []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt)}
	case s.InlineSystem:
		messages = []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, req.System+"\n\n"+req.Prompt)}
	default:
		messages = []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, req.System),
			llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
		}
	}

	// zero is a valid temperature, so it is always sent
	opts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	var text string
	err := retry(ctx, s.Attempts, s.Backoff, func() error {
		resp, err := s.Client.GenerateContent(ctx, messages, opts...)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
			return errors.New("empty completion")
		}
		text = resp.Choices[0].Content
		return nil
	})
	return text, err
}

// retry executes a function with exponential backoff. It gives up early
// once ctx is done.
func retry(ctx context.Context, attempts int, sleep time.Duration, f func() error) error {
	for i := 1; ; i++ {
		err := f()
		if err == nil {
			return nil
		}
		if i >= attempts || ctx.Err() != nil {
			return fmt.Errorf("failed after %d attempts: %w", i, err)
		}

		log.Printf("⚠️ LLM Error: %v. Retrying in %v...", err, sleep)
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed after %d attempts: %w", i, err)
		case <-time.After(sleep):
		}
		sleep *= 2
	}
}
