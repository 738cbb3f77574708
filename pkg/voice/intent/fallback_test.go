package intent

import (
	"testing"
	"time"

	"voicepad-be/pkg/voice"
)

// fixedNow pins the clock to Wednesday, 2025-06-11 for deterministic dates.
func fixedNow() time.Time {
	return time.Date(2025, 6, 11, 10, 30, 0, 0, time.UTC)
}

func TestIsCancellation(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       bool
	}{
		{name: "bare cancel", transcript: "Cancel", want: true},
		{name: "never mind", transcript: "never mind", want: true},
		{name: "nevermind one word", transcript: "nevermind", want: true},
		{name: "stop with punctuation", transcript: "Stop.", want: true},
		{name: "forget it with trailing words", transcript: "forget it please", want: true},
		{name: "cancel embedded mid-sentence", transcript: "please cancel that", want: false},
		{name: "prefix of longer word", transcript: "cancellation policy", want: false},
		{name: "ordinary command", transcript: "create a task", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCancellation(tt.transcript); got != tt.want {
				t.Errorf("IsCancellation(%q) = %v, want %v", tt.transcript, got, tt.want)
			}
		})
	}
}

func TestDetectPriority(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       string
	}{
		{name: "urgent is high", transcript: "urgent call with the client", want: voice.PriorityHigh},
		{name: "important is high", transcript: "this is important", want: voice.PriorityHigh},
		{name: "low", transcript: "low priority cleanup", want: voice.PriorityLow},
		{name: "high wins over low", transcript: "urgent but maybe later", want: voice.PriorityHigh},
		{name: "default medium", transcript: "buy groceries", want: voice.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectPriority(tt.transcript); got != tt.want {
				t.Errorf("DetectPriority(%q) = %q, want %q", tt.transcript, got, tt.want)
			}
		})
	}
}

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       string
	}{
		{name: "meeting is work", transcript: "prepare for the meeting", want: "Work"},
		{name: "doctor is health", transcript: "call the doctor tomorrow", want: "Health"},
		{name: "bill is finance", transcript: "pay the electricity bill", want: "Finance"},
		{name: "keyword with punctuation", transcript: "go to the gym!", want: "Health"},
		{name: "no category", transcript: "buy groceries", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCategory(tt.transcript); got != tt.want {
				t.Errorf("DetectCategory(%q) = %q, want %q", tt.transcript, got, tt.want)
			}
		})
	}
}

func TestFallbackParseTask(t *testing.T) {
	f := NewFallback(fixedNow)

	tests := []struct {
		name         string
		transcript   string
		wantTitle    string
		wantDueDate  string
		wantCategory string
		wantPriority string
	}{
		{
			name:         "full command",
			transcript:   "Create a task to finish the report by Friday",
			wantTitle:    "finish the report",
			wantDueDate:  "2025-06-13",
			wantCategory: "",
			wantPriority: voice.PriorityMedium,
		},
		{
			name:         "priority and category phrases stripped",
			transcript:   "add a task to prepare the client meeting tomorrow with high priority",
			wantTitle:    "prepare the client meeting",
			wantDueDate:  "2025-06-12",
			wantCategory: "Work",
			wantPriority: voice.PriorityHigh,
		},
		{
			name:         "remind me phrasing",
			transcript:   "remind me to pay the bill next week",
			wantTitle:    "pay the bill",
			wantDueDate:  "2025-06-18",
			wantCategory: "Finance",
			wantPriority: voice.PriorityMedium,
		},
		{
			name:         "bare continuation without trigger",
			transcript:   "buy groceries tomorrow",
			wantTitle:    "buy groceries",
			wantDueDate:  "2025-06-12",
			wantCategory: "",
			wantPriority: voice.PriorityMedium,
		},
		{
			name:         "no date",
			transcript:   "create a task called water the plants",
			wantTitle:    "water the plants",
			wantDueDate:  "",
			wantCategory: "",
			wantPriority: voice.PriorityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.ParseTask(tt.transcript)
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.DueDate != tt.wantDueDate {
				t.Errorf("DueDate = %q, want %q", got.DueDate, tt.wantDueDate)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Priority != tt.wantPriority {
				t.Errorf("Priority = %q, want %q", got.Priority, tt.wantPriority)
			}
		})
	}
}

func TestFallbackResolve(t *testing.T) {
	f := NewFallback(fixedNow)

	tests := []struct {
		name        string
		transcript  string
		state       voice.ConversationState
		wantAction  string
		wantParams  map[string]interface{}
		wantSuccess bool
	}{
		{
			name:        "navigation to tasks",
			transcript:  "Go to tasks",
			state:       voice.StateIdle,
			wantAction:  voice.ActionNavigate,
			wantParams:  map[string]interface{}{"url": "/tasks"},
			wantSuccess: true,
		},
		{
			name:        "navigation via open",
			transcript:  "open the calendar",
			state:       voice.StateIdle,
			wantAction:  voice.ActionNavigate,
			wantParams:  map[string]interface{}{"url": "/calendar"},
			wantSuccess: true,
		},
		{
			name:        "search with query",
			transcript:  "Search for groceries",
			state:       voice.StateIdle,
			wantAction:  voice.ActionSearch,
			wantParams:  map[string]interface{}{"query": "groceries"},
			wantSuccess: true,
		},
		{
			name:        "find phrasing",
			transcript:  "find my meeting summaries",
			state:       voice.StateIdle,
			wantAction:  voice.ActionSearch,
			wantParams:  map[string]interface{}{"query": "my meeting summaries"},
			wantSuccess: true,
		},
		{
			name:        "full task command finalizes",
			transcript:  "Create a task to finish the report by Friday",
			state:       voice.StateIdle,
			wantAction:  voice.ActionCreateTaskFinalized,
			wantSuccess: true,
		},
		{
			name:        "bare task trigger asks for details",
			transcript:  "Create a task",
			state:       voice.StateIdle,
			wantAction:  voice.ActionSetState,
			wantParams:  map[string]interface{}{"state": string(voice.StateAwaitingTaskDetails)},
			wantSuccess: true,
		},
		{
			name:        "task continuation finalizes",
			transcript:  "Finish the report by Friday",
			state:       voice.StateAwaitingTaskDetails,
			wantAction:  voice.ActionCreateTaskFinalized,
			wantSuccess: true,
		},
		{
			name:        "task continuation without date asks for date",
			transcript:  "Finish the report",
			state:       voice.StateAwaitingTaskDetails,
			wantAction:  voice.ActionSetState,
			wantParams:  map[string]interface{}{"state": string(voice.StateAwaitingTaskDetails)},
			wantSuccess: true,
		},
		{
			name:        "date only continuation asks for title",
			transcript:  "tomorrow",
			state:       voice.StateAwaitingTaskDetails,
			wantAction:  voice.ActionSetState,
			wantParams:  map[string]interface{}{"state": string(voice.StateAwaitingTaskDetails)},
			wantSuccess: true,
		},
		{
			name:        "note command with content finalizes",
			transcript:  "Take a note about the team meeting",
			state:       voice.StateIdle,
			wantAction:  voice.ActionCreateNoteFinalized,
			wantSuccess: true,
		},
		{
			name:        "bare note trigger asks for content",
			transcript:  "Take a note",
			state:       voice.StateIdle,
			wantAction:  voice.ActionSetState,
			wantParams:  map[string]interface{}{"state": string(voice.StateAwaitingNoteContent)},
			wantSuccess: true,
		},
		{
			name:        "note continuation finalizes",
			transcript:  "The deadline moved to Friday",
			state:       voice.StateAwaitingNoteContent,
			wantAction:  voice.ActionCreateNoteFinalized,
			wantSuccess: true,
		},
		{
			name:        "search continuation uses whole transcript",
			transcript:  "high priority work tasks",
			state:       voice.StateAwaitingSearchQuery,
			wantAction:  voice.ActionSearch,
			wantParams:  map[string]interface{}{"query": "high priority work tasks"},
			wantSuccess: true,
		},
		{
			name:        "cancellation resets from awaiting state",
			transcript:  "never mind",
			state:       voice.StateAwaitingTaskDetails,
			wantAction:  voice.ActionResetState,
			wantSuccess: true,
		},
		{
			name:        "unrecognized input",
			transcript:  "hello there",
			state:       voice.StateIdle,
			wantAction:  voice.ActionNone,
			wantSuccess: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Resolve(tt.transcript, tt.state)
			if got == nil {
				t.Fatal("Resolve returned nil")
			}
			if got.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", got.Success, tt.wantSuccess)
			}
			if got.Action != tt.wantAction {
				t.Errorf("Action = %q, want %q", got.Action, tt.wantAction)
			}
			for key, want := range tt.wantParams {
				if got.Parameters[key] != want {
					t.Errorf("Parameters[%q] = %v, want %v", key, got.Parameters[key], want)
				}
			}
			if got.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestFallbackResolveTaskParameters(t *testing.T) {
	f := NewFallback(fixedNow)

	result := f.Resolve("Create a task to finish the report by Friday", voice.StateIdle)
	if result.Action != voice.ActionCreateTaskFinalized {
		t.Fatalf("Action = %q, want %q", result.Action, voice.ActionCreateTaskFinalized)
	}

	task := result.TaskParams()
	if task.Title != "finish the report" {
		t.Errorf("title = %q, want %q", task.Title, "finish the report")
	}
	if task.DueDate != "2025-06-13" {
		t.Errorf("dueDate = %q, want %q", task.DueDate, "2025-06-13")
	}
	if task.Priority != voice.PriorityMedium {
		t.Errorf("priority = %q, want %q", task.Priority, voice.PriorityMedium)
	}
}

func TestFallbackResolveNoteParameters(t *testing.T) {
	f := NewFallback(fixedNow)

	result := f.Resolve("Take a note about the team meeting", voice.StateIdle)
	if result.Action != voice.ActionCreateNoteFinalized {
		t.Fatalf("Action = %q, want %q", result.Action, voice.ActionCreateNoteFinalized)
	}

	note := result.NoteParams()
	if note.Content != "the team meeting" {
		t.Errorf("content = %q, want %q", note.Content, "the team meeting")
	}
	if note.Title == "" {
		t.Error("title is empty")
	}
}
