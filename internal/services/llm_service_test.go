package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/justsurfingit/linkedin-agent/internal/config"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel records the messages it was sent and fails the first failN
// calls.
type fakeModel struct {
	failN    int
	calls    int
	messages []llms.MessageContent
	options  []llms.CallOption
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	m.messages = messages
	m.options = options
	if m.calls <= m.failN {
		return nil, errors.New("503 from provider")
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "hello"}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestCompleteRetriesOnce(t *testing.T) {
	model := &fakeModel{failN: 1}
	svc := &LLMService{Client: model, Attempts: 2, Backoff: time.Millisecond}

	text, err := svc.Complete(context.Background(), CompletionRequest{System: "be brief", Prompt: "hi", Timeout: time.Second})
	if err != nil || text != "hello" {
		t.Fatalf("Complete = %q, %v", text, err)
	}
	if model.calls != 2 {
		t.Fatalf("calls = %d", model.calls)
	}
	if len(model.messages) != 2 || model.messages[0].Role != llms.ChatMessageTypeSystem {
		t.Fatalf("system prompt should be its own message: %+v", model.messages)
	}
}

func TestCompleteGivesUp(t *testing.T) {
	model := &fakeModel{failN: 5}
	svc := &LLMService{Client: model, Attempts: 2, Backoff: time.Millisecond}
	if _, err := svc.Complete(context.Background(), CompletionRequest{Prompt: "hi"}); err == nil {
		t.Fatal("want error")
	}
	if model.calls != 2 {
		t.Fatalf("calls = %d, want 2", model.calls)
	}
}

func TestCompleteInlinesSystemPrompt(t *testing.T) {
	model := &fakeModel{}
	svc := &LLMService{Client: model, InlineSystem: true, Attempts: 1}
	if _, err := svc.Complete(context.Background(), CompletionRequest{System: "rules", Prompt: "ask"}); err != nil {
		t.Fatal(err)
	}
	if len(model.messages) != 1 || model.messages[0].Role != llms.ChatMessageTypeHuman {
		t.Fatalf("messages = %+v", model.messages)
	}
	if part, ok := model.messages[0].Parts[0].(llms.TextContent); !ok || part.Text != "rules\n\nask" {
		t.Fatalf("part = %+v", model.messages[0].Parts[0])
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("boom")
	})
	if err == nil || calls != 1 {
		t.Fatalf("calls=%d err=%v", calls, err)
	}
}

func TestNewLLMServiceNeedsKey(t *testing.T) {
	_, err := NewLLMService(context.Background(), &config.Config{LLMProvider: "groq"})
	if err == nil {
		t.Fatal("want error without an API key")
	}

	svc, err := NewLLMService(context.Background(), &config.Config{LLMProvider: "groq", GroqKey: "gsk_test"})
	if err != nil {
		t.Fatal(err)
	}
	if svc.InlineSystem || svc.Attempts != 2 {
		t.Fatalf("svc = %+v", svc)
	}
}

func TestCompleteSendsZeroTemperature(t *testing.T) {
	model := &fakeModel{}
	svc := &LLMService{Client: model, Attempts: 1}
	if _, err := svc.Complete(context.Background(), CompletionRequest{Prompt: "hi", Temperature: 0, MaxTokens: 50}); err != nil {
		t.Fatal(err)
	}

	opts := llms.CallOptions{Temperature: -1}
	for _, o := range model.options {
		o(&opts)
	}
	if opts.Temperature != 0 {
		t.Fatalf("temperature = %v, want an explicit 0", opts.Temperature)
	}
	if opts.MaxTokens != 50 {
		t.Fatalf("max tokens = %d", opts.MaxTokens)
	}
}
