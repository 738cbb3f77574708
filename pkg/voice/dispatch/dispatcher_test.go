package dispatch

import (
	"context"
	"testing"

	"voicepad-be/pkg/voice"
)

type fakeSpeaker struct {
	spoken  []string
	stopped int
}

func (s *fakeSpeaker) Speak(text string) { s.spoken = append(s.spoken, text) }
func (s *fakeSpeaker) Stop()             { s.stopped++ }

type fakeNavigator struct {
	navigated []string
	searched  []string
}

func (n *fakeNavigator) Navigate(url string) { n.navigated = append(n.navigated, url) }
func (n *fakeNavigator) Search(query string) { n.searched = append(n.searched, query) }

func TestMailboxStageAndConsume(t *testing.T) {
	m := NewMailbox()

	task, note, dialog := m.Consume()
	if task != nil || note != nil || dialog != DialogNone {
		t.Fatal("fresh mailbox is not empty")
	}

	m.StageTask(voice.ParsedTask{Title: "finish the report", DueDate: "2025-06-13"})
	task, note, dialog = m.Consume()
	if task == nil || task.Title != "finish the report" {
		t.Fatalf("consumed task = %+v, want finish the report", task)
	}
	if note != nil || dialog != DialogTask {
		t.Errorf("note = %+v, dialog = %q, want nil task dialog", note, dialog)
	}

	// Consume clears the slot.
	task, _, dialog = m.Consume()
	if task != nil || dialog != DialogNone {
		t.Error("mailbox not cleared after consume")
	}
}

func TestMailboxLastWriteWins(t *testing.T) {
	m := NewMailbox()

	m.StageTask(voice.ParsedTask{Title: "first"})
	m.StageNote(voice.ParsedNote{Title: "second", Content: "note body"})

	task, note, dialog := m.Consume()
	if task != nil {
		t.Errorf("stale task survived: %+v", task)
	}
	if note == nil || note.Title != "second" {
		t.Errorf("note = %+v, want second", note)
	}
	if dialog != DialogNote {
		t.Errorf("dialog = %q, want %q", dialog, DialogNote)
	}
}

func TestMailboxPeekDoesNotClear(t *testing.T) {
	m := NewMailbox()
	m.StageNote(voice.ParsedNote{Title: "keep me"})

	_, note, _ := m.Peek()
	if note == nil {
		t.Fatal("peek returned nothing")
	}
	_, note, _ = m.Peek()
	if note == nil {
		t.Error("peek cleared the slot")
	}
}

func TestDispatchNavigate(t *testing.T) {
	speaker := &fakeSpeaker{}
	navigator := &fakeNavigator{}
	d := NewDispatcher(NewMailbox(), speaker, navigator, nil, nil)

	ok := d.Dispatch(context.Background(), "go to tasks", &voice.CommandResult{
		Success:    true,
		Message:    "Going to tasks.",
		Action:     voice.ActionNavigate,
		Parameters: map[string]interface{}{"url": "/tasks"},
	})
	if !ok {
		t.Fatal("dispatch suppressed a first-time transcript")
	}
	if len(navigator.navigated) != 1 || navigator.navigated[0] != "/tasks" {
		t.Errorf("navigated = %v, want [/tasks]", navigator.navigated)
	}
	if len(speaker.spoken) != 1 || speaker.spoken[0] != "Going to tasks." {
		t.Errorf("spoken = %v", speaker.spoken)
	}
}

func TestDispatchSearch(t *testing.T) {
	navigator := &fakeNavigator{}
	d := NewDispatcher(NewMailbox(), &fakeSpeaker{}, navigator, nil, nil)

	d.Dispatch(context.Background(), "search for groceries", &voice.CommandResult{
		Success:    true,
		Message:    "Searching for groceries.",
		Action:     voice.ActionSearch,
		Parameters: map[string]interface{}{"query": "groceries"},
	})
	if len(navigator.searched) != 1 || navigator.searched[0] != "groceries" {
		t.Errorf("searched = %v, want [groceries]", navigator.searched)
	}
}

func TestDispatchStagesTask(t *testing.T) {
	mailbox := NewMailbox()
	d := NewDispatcher(mailbox, &fakeSpeaker{}, &fakeNavigator{}, nil, nil)

	d.Dispatch(context.Background(), "create a task to finish the report by friday", &voice.CommandResult{
		Success: true,
		Message: "Created a task.",
		Action:  voice.ActionCreateTaskFinalized,
		Parameters: map[string]interface{}{
			"title":    "finish the report",
			"dueDate":  "2025-06-13",
			"priority": "medium",
		},
	})

	task, _, dialog := mailbox.Consume()
	if dialog != DialogTask {
		t.Fatalf("dialog = %q, want %q", dialog, DialogTask)
	}
	if task.Title != "finish the report" || task.DueDate != "2025-06-13" {
		t.Errorf("staged task = %+v", task)
	}
}

func TestDispatchStagesNote(t *testing.T) {
	mailbox := NewMailbox()
	d := NewDispatcher(mailbox, &fakeSpeaker{}, &fakeNavigator{}, nil, nil)

	d.Dispatch(context.Background(), "take a note about the meeting", &voice.CommandResult{
		Success: true,
		Message: "Noted.",
		Action:  voice.ActionCreateNoteFinalized,
		Parameters: map[string]interface{}{
			"title":   "the meeting",
			"content": "the meeting",
		},
	})

	_, note, dialog := mailbox.Consume()
	if dialog != DialogNote {
		t.Fatalf("dialog = %q, want %q", dialog, DialogNote)
	}
	if note.Content != "the meeting" {
		t.Errorf("staged note = %+v", note)
	}
}

func TestDispatchSuppressesConsecutiveDuplicate(t *testing.T) {
	speaker := &fakeSpeaker{}
	d := NewDispatcher(NewMailbox(), speaker, &fakeNavigator{}, nil, nil)
	result := &voice.CommandResult{Success: true, Message: "ok", Action: voice.ActionNone}

	if !d.Dispatch(context.Background(), "same words", result) {
		t.Fatal("first dispatch suppressed")
	}
	if d.Dispatch(context.Background(), "same words", result) {
		t.Error("duplicate transcript was not suppressed")
	}
	if !d.Dispatch(context.Background(), "different words", result) {
		t.Error("distinct transcript was suppressed")
	}
	// Same transcript again after an intervening one dispatches normally.
	if !d.Dispatch(context.Background(), "same words", result) {
		t.Error("non-consecutive repeat was suppressed")
	}
	if len(speaker.spoken) != 3 {
		t.Errorf("spoken %d times, want 3", len(speaker.spoken))
	}
}

func TestDispatchResetDedupe(t *testing.T) {
	d := NewDispatcher(NewMailbox(), &fakeSpeaker{}, &fakeNavigator{}, nil, nil)
	result := &voice.CommandResult{Success: true, Message: "ok", Action: voice.ActionNone}

	d.Dispatch(context.Background(), "same words", result)
	d.ResetDedupe()
	if !d.Dispatch(context.Background(), "same words", result) {
		t.Error("dispatch suppressed after dedupe reset")
	}
}

func TestDispatchNilResult(t *testing.T) {
	d := NewDispatcher(NewMailbox(), &fakeSpeaker{}, &fakeNavigator{}, nil, nil)
	if d.Dispatch(context.Background(), "anything", nil) {
		t.Error("nil result dispatched")
	}
}
