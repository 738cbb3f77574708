package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"voicepad-be/internal/dto"
	"voicepad-be/pkg/llm"
	"voicepad-be/pkg/voice"
	"voicepad-be/pkg/voice/intent"

	"go.uber.org/zap"
)

// stubProvider returns one canned completion (or error) for every call.
type stubProvider struct {
	response string
	err      error
	calls    int
}

func (p *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.response, p.err
}

func (p *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	p.calls++
	return p.response, p.err
}

func newTestAiService(provider llm.LLMProvider) *aiService {
	now := func() time.Time {
		return time.Date(2025, time.June, 11, 10, 0, 0, 0, time.UTC) // a Wednesday
	}
	return &aiService{
		provider:     provider,
		providerName: "ollama",
		modelName:    "llama3",
		fallback:     intent.NewFallback(now),
		logger:       zap.NewNop(),
		now:          now,
	}
}

func TestSuggestDueDateUsesOracle(t *testing.T) {
	provider := &stubProvider{response: `{"suggestedDate": "2025-07-01"}`}
	s := newTestAiService(provider)

	res, err := s.SuggestDueDate(context.Background(), &dto.SuggestDueDateRequest{Title: "Write the quarterly report"})
	if err != nil {
		t.Fatalf("SuggestDueDate: %v", err)
	}
	if res.DueDate != "2025-07-01" || res.Source != "llm" {
		t.Errorf("got %q from %q, want 2025-07-01 from llm", res.DueDate, res.Source)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}
}

func TestSuggestDueDateRejectsNonDateFromOracle(t *testing.T) {
	provider := &stubProvider{response: `{"suggestedDate": "sometime soon"}`}
	s := newTestAiService(provider)

	res, err := s.SuggestDueDate(context.Background(), &dto.SuggestDueDateRequest{Title: "Pay rent by friday"})
	if err != nil {
		t.Fatalf("SuggestDueDate: %v", err)
	}
	if res.Source != "fallback" {
		t.Fatalf("Source = %q, want fallback", res.Source)
	}
	// The date phrase in the title still resolves locally.
	if res.DueDate != "2025-06-13" {
		t.Errorf("DueDate = %q, want 2025-06-13", res.DueDate)
	}
}

func TestSuggestDueDateHeuristicWhenProviderDown(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}
	s := newTestAiService(provider)

	res, err := s.SuggestDueDate(context.Background(), &dto.SuggestDueDateRequest{Title: "Urgent server patch"})
	if err != nil {
		t.Fatalf("SuggestDueDate: %v", err)
	}
	if res.DueDate != "2025-06-12" {
		t.Errorf("DueDate = %q, want tomorrow 2025-06-12 for an urgent task", res.DueDate)
	}
	if res.Source != "fallback" {
		t.Errorf("Source = %q, want fallback", res.Source)
	}
}

func TestRewriteNoteUsesOracle(t *testing.T) {
	provider := &stubProvider{response: `{"rewritten": "Meeting moved to Thursday at 2pm."}`}
	s := newTestAiService(provider)

	res, err := s.RewriteNote(context.Background(), &dto.RewriteNoteRequest{
		Content: "so um the meeting got moved, it's thursday now, 2pm I think",
		Tone:    "professional",
	})
	if err != nil {
		t.Fatalf("RewriteNote: %v", err)
	}
	if res.Rewritten != "Meeting moved to Thursday at 2pm." || res.Source != "llm" {
		t.Errorf("got %q from %q, want oracle rewrite from llm", res.Rewritten, res.Source)
	}
}

func TestRewriteNoteFallback(t *testing.T) {
	s := newTestAiService(nil)

	res, err := s.RewriteNote(context.Background(), &dto.RewriteNoteRequest{
		Content: "First point here. Second point here. A third point nobody reads.",
		Tone:    "concise",
	})
	if err != nil {
		t.Fatalf("RewriteNote: %v", err)
	}
	if res.Source != "fallback" {
		t.Fatalf("Source = %q, want fallback", res.Source)
	}
	if res.Rewritten != "First point here. Second point here." {
		t.Errorf("concise fallback = %q, want the first two sentences", res.Rewritten)
	}

	// Non-concise tones cannot be rewritten locally; the content comes back
	// with whitespace normalized.
	res, err = s.RewriteNote(context.Background(), &dto.RewriteNoteRequest{
		Content: "keep   this\n as is",
		Tone:    "friendly",
	})
	if err != nil {
		t.Fatalf("RewriteNote: %v", err)
	}
	if res.Rewritten != "keep this as is" {
		t.Errorf("friendly fallback = %q, want whitespace-normalized content", res.Rewritten)
	}
}

func TestBulkActionUsesOracleAndFiltersOps(t *testing.T) {
	provider := &stubProvider{response: `[
		{"type": "delete"},
		{"type": "toggle", "filter": {"overdue": true}},
		{"type": "update", "data": {"priority": "high"}}
	]`}
	s := newTestAiService(provider)

	res, err := s.BulkAction(context.Background(), &dto.BulkActionRequest{CommandText: "finish the overdue ones and bump the rest"})
	if err != nil {
		t.Fatalf("BulkAction: %v", err)
	}
	if res.Source != "llm" {
		t.Fatalf("Source = %q, want llm", res.Source)
	}
	if len(res.Operations) != 2 {
		t.Fatalf("got %d operations, want 2 (unknown op types dropped)", len(res.Operations))
	}
	if res.Operations[0].Type != "toggle" || res.Operations[0].Filter == nil || res.Operations[0].Filter.Overdue == nil || !*res.Operations[0].Filter.Overdue {
		t.Errorf("first op = %+v, want toggle scoped to overdue", res.Operations[0])
	}
	if res.Operations[1].Type != "update" || res.Operations[1].Data["priority"] != "high" {
		t.Errorf("second op = %+v, want priority update", res.Operations[1])
	}
}

func TestBulkActionFallback(t *testing.T) {
	provider := &stubProvider{response: "I could not interpret that command"}
	s := newTestAiService(provider)

	res, err := s.BulkAction(context.Background(), &dto.BulkActionRequest{CommandText: "mark all overdue tasks as done"})
	if err != nil {
		t.Fatalf("BulkAction: %v", err)
	}
	if res.Source != "fallback" {
		t.Fatalf("Source = %q, want fallback", res.Source)
	}
	if len(res.Operations) != 1 || res.Operations[0].Type != "toggle" {
		t.Fatalf("operations = %+v, want one toggle", res.Operations)
	}
	if res.Operations[0].Filter == nil || res.Operations[0].Filter.Overdue == nil || !*res.Operations[0].Filter.Overdue {
		t.Errorf("toggle op not scoped to overdue: %+v", res.Operations[0])
	}

	res, _ = s.BulkAction(context.Background(), &dto.BulkActionRequest{CommandText: "set everything to high priority"})
	if len(res.Operations) != 1 || res.Operations[0].Type != "update" {
		t.Fatalf("operations = %+v, want one update", res.Operations)
	}
	if res.Operations[0].Data["priority"] != voice.PriorityHigh {
		t.Errorf("priority = %v, want %q", res.Operations[0].Data["priority"], voice.PriorityHigh)
	}
}

func TestStatusProbesTheProvider(t *testing.T) {
	provider := &stubProvider{response: "Hello!"}
	s := newTestAiService(provider)

	res := s.Status(context.Background())
	if res.Status != "available" {
		t.Errorf("Status = %q, want available", res.Status)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (status must issue a live probe)", provider.calls)
	}
}

func TestStatusReportsDeadProvider(t *testing.T) {
	s := newTestAiService(&stubProvider{err: errors.New("dial tcp: connection refused")})

	res := s.Status(context.Background())
	if res.Status != "error" {
		t.Errorf("Status = %q, want error for an unreachable backend", res.Status)
	}
	if res.Message == "" {
		t.Error("Message is empty, want a human-readable explanation")
	}
}

func TestStatusReportsBadAPIKey(t *testing.T) {
	s := newTestAiService(&stubProvider{err: errors.New("status 401: invalid API key")})

	res := s.Status(context.Background())
	if res.Status != "unauthorized" {
		t.Errorf("Status = %q, want unauthorized", res.Status)
	}
}

func TestStatusWithoutProvider(t *testing.T) {
	s := newTestAiService(nil)

	res := s.Status(context.Background())
	if res.Status != "unavailable" {
		t.Errorf("Status = %q, want unavailable", res.Status)
	}
}
