package intent

import (
	"context"
	"errors"
	"testing"

	"voicepad-be/pkg/llm"
	"voicepad-be/pkg/voice"
)

// scriptedProvider returns canned responses in order, then repeats the last.
type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	i := p.calls
	p.calls++
	if i >= len(p.responses) {
		i = len(p.responses) - 1
	}
	var err error
	if i < len(p.errs) {
		err = p.errs[i]
	}
	return p.responses[i], err
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func TestResolverNilProviderUsesFallback(t *testing.T) {
	r := NewResolver(nil, nil, fixedNow)

	result := r.Resolve(context.Background(), "Go to tasks", voice.StateIdle, voice.ContextMetadata{})
	if result.Action != voice.ActionNavigate {
		t.Errorf("Action = %q, want %q", result.Action, voice.ActionNavigate)
	}
	if result.ParamString("url") != "/tasks" {
		t.Errorf("url = %q, want /tasks", result.ParamString("url"))
	}
}

func TestResolverValidOracleJSON(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"success": true, "message": "Going to notes.", "action": "navigate", "parameters": {"url": "/notes"}}`,
	}}
	r := NewResolver(provider, nil, fixedNow)

	result := r.Resolve(context.Background(), "take me to my notes", voice.StateIdle, voice.ContextMetadata{})
	if result.Action != voice.ActionNavigate {
		t.Fatalf("Action = %q, want %q", result.Action, voice.ActionNavigate)
	}
	if result.Message != "Going to notes." {
		t.Errorf("Message = %q", result.Message)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}
}

func TestResolverStripsMarkdownFences(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"Here you go:\n```json\n{\"success\": true, \"message\": \"Searching.\", \"action\": \"search\", \"parameters\": {\"query\": \"groceries\"}}\n```",
	}}
	r := NewResolver(provider, nil, fixedNow)

	result := r.Resolve(context.Background(), "search for groceries", voice.StateIdle, voice.ContextMetadata{})
	if result.Action != voice.ActionSearch {
		t.Errorf("Action = %q, want %q", result.Action, voice.ActionSearch)
	}
	if result.ParamString("query") != "groceries" {
		t.Errorf("query = %q, want groceries", result.ParamString("query"))
	}
}

func TestResolverRetriesOnceThenSucceeds(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{
			"not json at all",
			`{"success": true, "message": "Okay.", "action": "none"}`,
		},
	}
	r := NewResolver(provider, nil, fixedNow)

	result := r.Resolve(context.Background(), "hello", voice.StateIdle, voice.ContextMetadata{})
	if result.Action != voice.ActionNone {
		t.Errorf("Action = %q, want %q", result.Action, voice.ActionNone)
	}
	if provider.calls != 2 {
		t.Errorf("provider called %d times, want 2", provider.calls)
	}
}

func TestResolverFallsBackAfterRepeatedFailures(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{"", ""},
		errs:      []error{errors.New("timeout"), errors.New("timeout")},
	}
	r := NewResolver(provider, nil, fixedNow)

	result := r.Resolve(context.Background(), "Go to tasks", voice.StateIdle, voice.ContextMetadata{})
	if result.Action != voice.ActionNavigate {
		t.Errorf("fallback Action = %q, want %q", result.Action, voice.ActionNavigate)
	}
}

func TestResolverRejectsUnknownAction(t *testing.T) {
	// The schema validator rejects the action, both attempts fail, and the
	// deterministic parser answers instead.
	provider := &scriptedProvider{responses: []string{
		`{"success": true, "message": "Doing something.", "action": "self_destruct"}`,
	}}
	r := NewResolver(provider, nil, fixedNow)

	result := r.Resolve(context.Background(), "Search for groceries", voice.StateIdle, voice.ContextMetadata{})
	if result.Action != voice.ActionSearch {
		t.Errorf("Action = %q, want %q", result.Action, voice.ActionSearch)
	}
	if provider.calls != 2 {
		t.Errorf("provider called %d times, want 2", provider.calls)
	}
}

func TestResolverDemotesTaskWithoutTitle(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"success": true, "message": "Created.", "action": "create_task_finalized", "parameters": {"dueDate": "2025-06-13"}}`,
	}}
	r := NewResolver(provider, nil, fixedNow)

	result := r.Resolve(context.Background(), "make it due friday", voice.StateIdle, voice.ContextMetadata{})
	if result.Action != voice.ActionSetState {
		t.Fatalf("Action = %q, want %q", result.Action, voice.ActionSetState)
	}
	if result.ParamState() != voice.StateAwaitingTaskDetails {
		t.Errorf("state param = %q, want %q", result.ParamState(), voice.StateAwaitingTaskDetails)
	}
}

func TestResolverRepairsMissingDueDateFromTranscript(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"success": true, "message": "Created.", "action": "create_task_finalized", "parameters": {"title": "finish the report"}}`,
	}}
	r := NewResolver(provider, nil, fixedNow)

	result := r.Resolve(context.Background(), "create a task to finish the report by friday", voice.StateIdle, voice.ContextMetadata{})
	if result.Action != voice.ActionCreateTaskFinalized {
		t.Fatalf("Action = %q, want %q", result.Action, voice.ActionCreateTaskFinalized)
	}
	if result.ParamString("dueDate") != "2025-06-13" {
		t.Errorf("dueDate = %q, want 2025-06-13", result.ParamString("dueDate"))
	}
}

func TestResolverDemotesTaskWithoutAnyDate(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"success": true, "message": "Created.", "action": "create_task_finalized", "parameters": {"title": "finish the report"}}`,
	}}
	r := NewResolver(provider, nil, fixedNow)

	result := r.Resolve(context.Background(), "create a task to finish the report", voice.StateIdle, voice.ContextMetadata{})
	if result.Action != voice.ActionSetState {
		t.Fatalf("Action = %q, want %q", result.Action, voice.ActionSetState)
	}
	if result.ParamState() != voice.StateAwaitingTaskDetails {
		t.Errorf("state param = %q, want %q", result.ParamState(), voice.StateAwaitingTaskDetails)
	}
}

func TestResolverDemotesEmptyNote(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"success": true, "message": "Noted.", "action": "create_note_finalized", "parameters": {"title": "", "content": ""}}`,
	}}
	r := NewResolver(provider, nil, fixedNow)

	result := r.Resolve(context.Background(), "take a note", voice.StateIdle, voice.ContextMetadata{})
	if result.Action != voice.ActionSetState {
		t.Fatalf("Action = %q, want %q", result.Action, voice.ActionSetState)
	}
	if result.ParamState() != voice.StateAwaitingNoteContent {
		t.Errorf("state param = %q, want %q", result.ParamState(), voice.StateAwaitingNoteContent)
	}
}

func TestResolverRejectsUnknownTargetState(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"success": true, "message": "Switching.", "action": "set_state", "parameters": {"state": "awaiting_magic"}}`,
	}}
	r := NewResolver(provider, nil, fixedNow)

	result := r.Resolve(context.Background(), "Go to tasks", voice.StateIdle, voice.ContextMetadata{})
	// Fallback answers the navigation instead of entering an undefined state.
	if result.Action != voice.ActionNavigate {
		t.Errorf("Action = %q, want %q", result.Action, voice.ActionNavigate)
	}
}

func TestResolverDemotesSearchWithoutQuery(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"success": true, "message": "Searching.", "action": "search", "parameters": {}}`,
	}}
	r := NewResolver(provider, nil, fixedNow)

	result := r.Resolve(context.Background(), "search", voice.StateIdle, voice.ContextMetadata{})
	if result.Action != voice.ActionSetState {
		t.Fatalf("Action = %q, want %q", result.Action, voice.ActionSetState)
	}
	if result.ParamState() != voice.StateAwaitingSearchQuery {
		t.Errorf("state param = %q, want %q", result.ParamState(), voice.StateAwaitingSearchQuery)
	}
}

func TestResolverCachesIdenticalRequests(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"success": true, "message": "Going to notes.", "action": "navigate", "parameters": {"url": "/notes"}}`,
	}}
	r := NewResolver(provider, nil, fixedNow)
	meta := voice.ContextMetadata{CurrentPath: "/", Timestamp: "2025-06-11T10:30:00Z"}

	first := r.Resolve(context.Background(), "open my notes", voice.StateIdle, meta)
	second := r.Resolve(context.Background(), "open my notes", voice.StateIdle, meta)
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (second hit served from cache)", provider.calls)
	}
	if first.Action != second.Action || second.Action != voice.ActionNavigate {
		t.Errorf("cached result diverged: %q vs %q", first.Action, second.Action)
	}
}

func TestResolverCacheSurvivesTimestampDrift(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"success": true, "message": "Going to notes.", "action": "navigate", "parameters": {"url": "/notes"}}`,
	}}
	r := NewResolver(provider, nil, fixedNow)

	earlier := voice.ContextMetadata{CurrentPath: "/", Timestamp: "2025-06-11T10:30:00Z"}
	later := voice.ContextMetadata{CurrentPath: "/", Timestamp: "2025-06-11T10:30:07Z"}

	r.Resolve(context.Background(), "open my notes", voice.StateIdle, earlier)
	r.Resolve(context.Background(), "open my notes", voice.StateIdle, later)
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (timestamp must not bust the cache)", provider.calls)
	}

	// A different page is a different request.
	r.Resolve(context.Background(), "open my notes", voice.StateIdle,
		voice.ContextMetadata{CurrentPath: "/tasks", Timestamp: "2025-06-11T10:30:09Z"})
	if provider.calls != 2 {
		t.Errorf("provider called %d times, want 2 (page change must miss the cache)", provider.calls)
	}
}

func TestResolverNormalizesInvalidState(t *testing.T) {
	r := NewResolver(nil, nil, fixedNow)

	result := r.Resolve(context.Background(), "Go to tasks", voice.ConversationState("garbage"), voice.ContextMetadata{})
	if result.Action != voice.ActionNavigate {
		t.Errorf("Action = %q, want %q", result.Action, voice.ActionNavigate)
	}
}
