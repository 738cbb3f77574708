// Package engine wires the intent resolver, conversation state machine and
// command dispatcher into the per-session voice command loop: debounced
// transcript finalization, single-flight resolution and assistant lifecycle.
package engine

import (
	"context"
	"sync"
	"time"

	"voicepad-be/pkg/voice"
	"voicepad-be/pkg/voice/dispatch"
	"voicepad-be/pkg/voice/state"

	"go.uber.org/zap"
)

// Resolver is the intent resolution boundary. It must never return nil.
type Resolver interface {
	Resolve(ctx context.Context, transcript string, st voice.ConversationState, meta voice.ContextMetadata) *voice.CommandResult
}

// Snapshot is the engine state observable by UI surfaces.
type Snapshot struct {
	Active         bool                    `json:"active"`
	Processing     bool                    `json:"processing"`
	State          voice.ConversationState `json:"conversation_state"`
	LastTranscript string                  `json:"last_transcript"`
	LastResult     *voice.CommandResult    `json:"last_result,omitempty"`
}

// Config carries the engine's injected collaborators. Mailbox, Speaker and
// Navigator are handed in explicitly rather than reached through any ambient
// context.
type Config struct {
	Resolver   Resolver
	Dispatcher *dispatch.Dispatcher
	Speaker    dispatch.Speaker
	Logger     *zap.Logger

	// Debounce is how long a transcript must stay unchanged before it is
	// treated as final. Defaults to 1500ms.
	Debounce time.Duration

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time

	// OnResult, when set, observes every dispatched result (the websocket
	// layer pushes these to the client).
	OnResult func(Snapshot)
}

const defaultDebounce = 1500 * time.Millisecond

// Engine runs one assistant session. All processing is synchronous except
// the resolver call; at most one resolver call is outstanding at a time.
type Engine struct {
	resolver   Resolver
	machine    *state.Machine
	dispatcher *dispatch.Dispatcher
	speaker    dispatch.Speaker
	logger     *zap.Logger
	debounce   time.Duration
	now        func() time.Time
	onResult   func(Snapshot)

	mu          sync.Mutex
	cond        *sync.Cond
	active      bool
	convState   voice.ConversationState
	processing  bool
	currentPath string
	transcript  string
	timer       *time.Timer
	queuedFinal string
	hasQueued   bool
	lastResult  *voice.CommandResult
	lastFinal   string

	// generation invalidates in-flight resolver results after deactivation.
	generation uint64
}

func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	e := &Engine{
		resolver:    cfg.Resolver,
		machine:     state.NewMachine(logger),
		dispatcher:  cfg.Dispatcher,
		speaker:     cfg.Speaker,
		logger:      logger,
		debounce:    debounce,
		now:         now,
		onResult:    cfg.OnResult,
		convState:   voice.StateIdle,
		currentPath: "/",
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// Activate turns the assistant on and greets the user.
func (e *Engine) Activate() {
	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return
	}
	e.active = true
	e.convState = voice.StateIdle
	e.generation++
	e.mu.Unlock()

	if e.speaker != nil {
		e.speaker.Speak("Voice assistant activated. How can I help you?")
	}
}

// Deactivate turns the assistant off: pending speech is aborted, any
// transcript still in the debounce window is discarded, and the result of an
// in-flight resolver call (if any) will be dropped on arrival.
func (e *Engine) Deactivate() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	e.active = false
	e.convState = voice.StateIdle
	e.transcript = ""
	e.hasQueued = false
	e.queuedFinal = ""
	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()

	if e.dispatcher != nil {
		e.dispatcher.ResetDedupe()
	}
	if e.speaker != nil {
		e.speaker.Stop()
		e.speaker.Speak("Voice assistant deactivated.")
	}
}

// SetCurrentPath records the page the UI is on, for context-sensitive
// interpretation ("search here", "show this page").
func (e *Engine) SetCurrentPath(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if path != "" {
		e.currentPath = path
	}
}

// UpdateTranscript feeds an interim (still changing) transcript. Each update
// restarts the debounce window; the transcript is submitted to the resolver
// only once it has been stable for the full window.
func (e *Engine) UpdateTranscript(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active || text == "" {
		return
	}
	e.transcript = text
	gen := e.generation
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, func() {
		e.debounceFired(gen, text)
	})
}

// SubmitFinal bypasses the debounce window for transcripts the source has
// already marked final (e.g. the REST command endpoint).
func (e *Engine) SubmitFinal(text string) {
	e.mu.Lock()
	if !e.active || text == "" {
		e.mu.Unlock()
		return
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.transcript = ""
	e.mu.Unlock()
	e.submit(text)
}

// Command resolves a final transcript synchronously and returns the
// resulting snapshot. This is the REST entry point; websocket transcripts go
// through UpdateTranscript/SubmitFinal instead. If a resolver call is
// already in flight, Command waits for it, preserving submission order.
func (e *Engine) Command(text string) Snapshot {
	e.mu.Lock()
	if !e.active || text == "" {
		e.mu.Unlock()
		return e.Snapshot()
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.transcript = ""
	for e.processing {
		e.cond.Wait()
		if !e.active {
			e.mu.Unlock()
			return e.Snapshot()
		}
	}
	e.processing = true
	st := e.convState
	gen := e.generation
	meta := voice.ContextMetadata{
		CurrentPath: e.currentPath,
		Timestamp:   e.now().Format(time.RFC3339),
	}
	e.mu.Unlock()

	e.resolveAndDispatch(gen, text, st, meta)
	return e.Snapshot()
}

// NotifyTranscriptError surfaces a speech-capture failure as a spoken apology
// without touching the conversation state, so the user can retry the same
// pending question.
func (e *Engine) NotifyTranscriptError(err error) {
	e.logger.Warn("transcript source error", zap.Error(err))
	if e.speaker != nil {
		e.speaker.Speak("I'm having trouble hearing you. Please try again.")
	}
}

// Snapshot returns the observable engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Active:         e.active,
		Processing:     e.processing,
		State:          e.convState,
		LastTranscript: e.lastFinal,
		LastResult:     e.lastResult,
	}
}

// State returns the current conversation state.
func (e *Engine) State() voice.ConversationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.convState
}

func (e *Engine) debounceFired(gen uint64, text string) {
	e.mu.Lock()
	if !e.active || gen != e.generation || e.transcript != text {
		e.mu.Unlock()
		return
	}
	e.transcript = ""
	e.mu.Unlock()
	e.submit(text)
}

// submit enforces the single-flight discipline: while a resolver call is
// outstanding, the newest final transcript is queued and processed after the
// call returns; it never triggers a second concurrent call.
func (e *Engine) submit(text string) {
	e.mu.Lock()
	if e.processing {
		e.queuedFinal = text
		e.hasQueued = true
		e.mu.Unlock()
		return
	}
	e.processing = true
	st := e.convState
	gen := e.generation
	meta := voice.ContextMetadata{
		CurrentPath: e.currentPath,
		Timestamp:   e.now().Format(time.RFC3339),
	}
	e.mu.Unlock()

	go e.resolveAndDispatch(gen, text, st, meta)
}

func (e *Engine) resolveAndDispatch(gen uint64, text string, st voice.ConversationState, meta voice.ContextMetadata) {
	defer func() {
		if r := recover(); r != nil {
			// Fail-safe: never let an internal error leave the conversation
			// stuck or escape to the hosting surface.
			e.logger.Error("voice engine panic recovered", zap.Any("panic", r))
			e.mu.Lock()
			e.convState = voice.StateIdle
			e.processing = false
			e.cond.Broadcast()
			e.mu.Unlock()
			if e.speaker != nil {
				e.speaker.Speak("I encountered an error processing your command. Please try again.")
			}
		}
	}()

	result := e.resolver.Resolve(context.Background(), text, st, meta)

	e.mu.Lock()
	if gen != e.generation {
		// Assistant was deactivated while the call was in flight.
		e.processing = false
		e.cond.Broadcast()
		e.mu.Unlock()
		e.logger.Debug("discarding stale resolver result", zap.String("transcript", text))
		return
	}
	e.convState = e.machine.Step(st, text, result)
	e.lastResult = result
	e.lastFinal = text
	snapshot := Snapshot{
		Active:         e.active,
		Processing:     false,
		State:          e.convState,
		LastTranscript: text,
		LastResult:     result,
	}
	e.mu.Unlock()

	if e.dispatcher != nil {
		e.dispatcher.Dispatch(context.Background(), text, result)
	}
	if e.onResult != nil {
		e.onResult(snapshot)
	}

	e.mu.Lock()
	e.processing = false
	e.cond.Broadcast()
	queued, hasQueued := e.queuedFinal, e.hasQueued
	e.queuedFinal = ""
	e.hasQueued = false
	e.mu.Unlock()

	if hasQueued && queued != text {
		e.submit(queued)
	}
}
