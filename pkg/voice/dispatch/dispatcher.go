// Package dispatch translates finalized command results into effects on the
// surrounding application: staging mailboxes, navigation signals and speech.
package dispatch

import (
	"context"
	"sync"
	"time"

	"voicepad-be/pkg/events"
	"voicepad-be/pkg/voice"

	"go.uber.org/zap"
)

// Speaker is the audio feedback sink. Stop halts in-progress speech.
type Speaker interface {
	Speak(text string)
	Stop()
}

// Navigator receives navigation requests for the UI surface to execute.
type Navigator interface {
	Navigate(url string)
	Search(query string)
}

// EventPublisher is the subset of the NATS publisher the dispatcher needs.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// DialogKind names which creation dialog the UI should open.
type DialogKind string

const (
	DialogNone DialogKind = ""
	DialogTask DialogKind = "task"
	DialogNote DialogKind = "note"
)

// Mailbox is the single-slot staging handoff between the engine and the UI.
// Single writer (the dispatcher), single reader (the UI surface); a new
// staging overwrites an unconsumed prior one, and the reader clears on
// consumption.
type Mailbox struct {
	mu            sync.Mutex
	pendingTask   *voice.ParsedTask
	pendingNote   *voice.ParsedNote
	triggerDialog DialogKind
}

func NewMailbox() *Mailbox {
	return &Mailbox{}
}

func (m *Mailbox) StageTask(task voice.ParsedTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingTask = &task
	m.pendingNote = nil
	m.triggerDialog = DialogTask
}

func (m *Mailbox) StageNote(note voice.ParsedNote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingNote = &note
	m.pendingTask = nil
	m.triggerDialog = DialogNote
}

// Consume returns the staged record and clears the slot.
func (m *Mailbox) Consume() (*voice.ParsedTask, *voice.ParsedNote, DialogKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, note, dialog := m.pendingTask, m.pendingNote, m.triggerDialog
	m.pendingTask = nil
	m.pendingNote = nil
	m.triggerDialog = DialogNone
	return task, note, dialog
}

// Peek reads without clearing, for status surfaces.
func (m *Mailbox) Peek() (*voice.ParsedTask, *voice.ParsedNote, DialogKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingTask, m.pendingNote, m.triggerDialog
}

// Dispatcher executes the effect for a finalized CommandResult. Dispatch is
// idempotent per distinct transcript: the same final transcript is not
// dispatched twice in a row.
type Dispatcher struct {
	mailbox   *Mailbox
	speaker   Speaker
	navigator Navigator
	publisher EventPublisher
	logger    *zap.Logger

	mu             sync.Mutex
	lastTranscript string
}

func NewDispatcher(mailbox *Mailbox, speaker Speaker, navigator Navigator, publisher EventPublisher, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		mailbox:   mailbox,
		speaker:   speaker,
		navigator: navigator,
		publisher: publisher,
		logger:    logger,
	}
}

// Dispatch applies the result's effect and speaks its message. Returns false
// when the transcript was a duplicate of the previous dispatch and was
// suppressed.
func (d *Dispatcher) Dispatch(ctx context.Context, transcript string, result *voice.CommandResult) bool {
	if result == nil {
		return false
	}

	d.mu.Lock()
	if transcript != "" && transcript == d.lastTranscript {
		d.mu.Unlock()
		d.logger.Debug("suppressing duplicate dispatch", zap.String("transcript", transcript))
		return false
	}
	d.lastTranscript = transcript
	d.mu.Unlock()

	switch result.Action {
	case voice.ActionNavigate:
		if url := result.ParamString("url"); url != "" && d.navigator != nil {
			d.navigator.Navigate(url)
			d.publishEvent(ctx, "VOICE_NAVIGATE", map[string]interface{}{"url": url})
		}
	case voice.ActionSearch:
		if query := result.ParamString("query"); query != "" && d.navigator != nil {
			d.navigator.Search(query)
			d.publishEvent(ctx, "VOICE_SEARCH", map[string]interface{}{"query": query})
		}
	case voice.ActionCreateTaskFinalized:
		task := result.TaskParams()
		d.mailbox.StageTask(task)
		d.publishEvent(ctx, "VOICE_TASK_STAGED", map[string]interface{}{
			"title":    task.Title,
			"due_date": task.DueDate,
		})
	case voice.ActionCreateNoteFinalized:
		note := result.NoteParams()
		d.mailbox.StageNote(note)
		d.publishEvent(ctx, "VOICE_NOTE_STAGED", map[string]interface{}{
			"title": note.Title,
		})
	case voice.ActionSetState, voice.ActionResetState, voice.ActionNone, "":
		// No effect beyond the state transition; message is spoken below.
	}

	if d.speaker != nil && result.Message != "" {
		d.speaker.Speak(result.Message)
	}
	return true
}

// ResetDedupe clears the duplicate-transcript guard, e.g. on deactivation.
func (d *Dispatcher) ResetDedupe() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastTranscript = ""
}

// publishEvent is auxiliary: failures are logged, never propagated.
func (d *Dispatcher) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if d.publisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := d.publisher.Publish(ctx, evt); err != nil {
		d.logger.Warn("failed to publish dispatch event",
			zap.String("event", eventType), zap.Error(err))
	}
}
