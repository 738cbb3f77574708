package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"voicepad-be/pkg/voice"
	"voicepad-be/pkg/voice/dispatch"
)

type stubResolver struct {
	mu    sync.Mutex
	calls []string
	block chan struct{} // when non-nil, Resolve waits on it before returning
}

func (r *stubResolver) Resolve(ctx context.Context, transcript string, st voice.ConversationState, meta voice.ContextMetadata) *voice.CommandResult {
	r.mu.Lock()
	r.calls = append(r.calls, transcript)
	r.mu.Unlock()
	if r.block != nil {
		<-r.block
	}
	return &voice.CommandResult{Success: true, Message: "ok: " + transcript, Action: voice.ActionNone}
}

func (r *stubResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *stubResolver) callList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

type recordingSpeaker struct {
	mu     sync.Mutex
	spoken []string
}

func (s *recordingSpeaker) Speak(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
}

func (s *recordingSpeaker) Stop() {}

func (s *recordingSpeaker) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.spoken) == 0 {
		return ""
	}
	return s.spoken[len(s.spoken)-1]
}

type noopNavigator struct{}

func (noopNavigator) Navigate(string) {}
func (noopNavigator) Search(string)   {}

func newTestEngine(resolver Resolver, debounce time.Duration) (*Engine, *recordingSpeaker) {
	speaker := &recordingSpeaker{}
	dispatcher := dispatch.NewDispatcher(dispatch.NewMailbox(), speaker, noopNavigator{}, nil, nil)
	eng := New(Config{
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Speaker:    speaker,
		Debounce:   debounce,
	})
	return eng, speaker
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestEngineActivateDeactivate(t *testing.T) {
	resolver := &stubResolver{}
	eng, speaker := newTestEngine(resolver, 10*time.Millisecond)

	if eng.Snapshot().Active {
		t.Fatal("engine active before Activate")
	}

	eng.Activate()
	if !eng.Snapshot().Active {
		t.Fatal("engine not active after Activate")
	}
	if speaker.last() == "" {
		t.Error("no greeting spoken on activation")
	}

	// Idempotent: a second Activate does not greet again.
	spokenBefore := len(speaker.spoken)
	eng.Activate()
	if len(speaker.spoken) != spokenBefore {
		t.Error("repeated Activate spoke again")
	}

	eng.Deactivate()
	snap := eng.Snapshot()
	if snap.Active {
		t.Error("engine still active after Deactivate")
	}
	if snap.State != voice.StateIdle {
		t.Errorf("state = %q, want idle", snap.State)
	}
}

func TestEngineIgnoresInputWhileInactive(t *testing.T) {
	resolver := &stubResolver{}
	eng, _ := newTestEngine(resolver, 10*time.Millisecond)

	eng.UpdateTranscript("go to tasks")
	eng.SubmitFinal("go to tasks")
	snap := eng.Command("go to tasks")

	time.Sleep(50 * time.Millisecond)
	if resolver.callCount() != 0 {
		t.Errorf("resolver called %d times while inactive, want 0", resolver.callCount())
	}
	if snap.Active || snap.LastResult != nil {
		t.Errorf("snapshot = %+v, want inactive empty", snap)
	}
}

func TestEngineDebounceSubmitsLatestOnce(t *testing.T) {
	resolver := &stubResolver{}
	eng, _ := newTestEngine(resolver, 30*time.Millisecond)
	eng.Activate()

	// Each interim update restarts the window; only the last survives it.
	eng.UpdateTranscript("go to")
	time.Sleep(10 * time.Millisecond)
	eng.UpdateTranscript("go to tas")
	time.Sleep(10 * time.Millisecond)
	eng.UpdateTranscript("go to tasks")

	waitFor(t, func() bool { return resolver.callCount() == 1 }, "debounced transcript never resolved")
	time.Sleep(60 * time.Millisecond)

	calls := resolver.callList()
	if len(calls) != 1 || calls[0] != "go to tasks" {
		t.Errorf("resolver calls = %v, want [go to tasks]", calls)
	}
	waitFor(t, func() bool { return eng.Snapshot().LastTranscript == "go to tasks" },
		"snapshot never recorded the final transcript")
}

func TestEngineSubmitFinalBypassesDebounce(t *testing.T) {
	resolver := &stubResolver{}
	eng, _ := newTestEngine(resolver, time.Hour)
	eng.Activate()

	eng.SubmitFinal("go to tasks")
	waitFor(t, func() bool { return resolver.callCount() == 1 }, "final transcript never resolved")
}

func TestEngineSingleFlightQueuesNewest(t *testing.T) {
	resolver := &stubResolver{block: make(chan struct{})}
	eng, _ := newTestEngine(resolver, 10*time.Millisecond)
	eng.Activate()

	eng.SubmitFinal("first command")
	waitFor(t, func() bool { return resolver.callCount() == 1 }, "first submission never started")

	// Both arrive while the first call is in flight; only the newest is kept.
	eng.SubmitFinal("second command")
	eng.SubmitFinal("third command")
	close(resolver.block)

	waitFor(t, func() bool { return resolver.callCount() == 2 }, "queued transcript never replayed")
	time.Sleep(50 * time.Millisecond)

	calls := resolver.callList()
	if len(calls) != 2 || calls[0] != "first command" || calls[1] != "third command" {
		t.Errorf("resolver calls = %v, want [first command, third command]", calls)
	}
}

func TestEngineDeactivationDiscardsInFlightResult(t *testing.T) {
	resolver := &stubResolver{block: make(chan struct{})}
	eng, _ := newTestEngine(resolver, 10*time.Millisecond)
	eng.Activate()

	eng.SubmitFinal("go to tasks")
	waitFor(t, func() bool { return resolver.callCount() == 1 }, "submission never started")

	eng.Deactivate()
	close(resolver.block)
	time.Sleep(50 * time.Millisecond)

	snap := eng.Snapshot()
	if snap.LastResult != nil {
		t.Errorf("stale resolver result was applied: %+v", snap.LastResult)
	}
	if snap.Processing {
		t.Error("engine stuck in processing after discard")
	}
}

func TestEngineCommandSynchronous(t *testing.T) {
	resolver := &stubResolver{}
	eng, _ := newTestEngine(resolver, time.Hour)
	eng.Activate()

	snap := eng.Command("go to tasks")
	if resolver.callCount() != 1 {
		t.Fatalf("resolver called %d times, want 1", resolver.callCount())
	}
	if snap.LastResult == nil || snap.LastResult.Message != "ok: go to tasks" {
		t.Errorf("snapshot result = %+v", snap.LastResult)
	}
	if snap.LastTranscript != "go to tasks" {
		t.Errorf("LastTranscript = %q", snap.LastTranscript)
	}
	if snap.Processing {
		t.Error("snapshot still marked processing")
	}
}

func TestEngineCommandWaitsForInFlightResolution(t *testing.T) {
	resolver := &stubResolver{block: make(chan struct{})}
	eng, _ := newTestEngine(resolver, 10*time.Millisecond)
	eng.Activate()

	eng.SubmitFinal("first command")
	waitFor(t, func() bool { return resolver.callCount() == 1 }, "first submission never started")

	time.AfterFunc(30*time.Millisecond, func() { close(resolver.block) })

	snap := eng.Command("second command")
	calls := resolver.callList()
	if len(calls) != 2 || calls[0] != "first command" || calls[1] != "second command" {
		t.Errorf("resolver calls = %v, want [first command, second command]", calls)
	}
	if snap.LastTranscript != "second command" {
		t.Errorf("LastTranscript = %q, want second command", snap.LastTranscript)
	}
}

func TestEngineCancelsDebounceOnDeactivate(t *testing.T) {
	resolver := &stubResolver{}
	eng, _ := newTestEngine(resolver, 30*time.Millisecond)
	eng.Activate()

	eng.UpdateTranscript("go to tasks")
	eng.Deactivate()
	time.Sleep(60 * time.Millisecond)

	if resolver.callCount() != 0 {
		t.Errorf("resolver called %d times after deactivation, want 0", resolver.callCount())
	}
}

type panickingResolver struct{}

func (panickingResolver) Resolve(ctx context.Context, transcript string, st voice.ConversationState, meta voice.ContextMetadata) *voice.CommandResult {
	panic("resolver blew up")
}

func TestEngineRecoversFromResolverPanic(t *testing.T) {
	eng, speaker := newTestEngine(panickingResolver{}, 10*time.Millisecond)
	eng.Activate()

	eng.SubmitFinal("go to tasks")
	waitFor(t, func() bool { return !eng.Snapshot().Processing && speaker.last() != "" },
		"engine never settled after panic")

	snap := eng.Snapshot()
	if snap.State != voice.StateIdle {
		t.Errorf("state = %q, want idle after panic recovery", snap.State)
	}

	// The engine keeps accepting input afterwards.
	snap = eng.Command("still alive")
	if !snap.Active {
		t.Error("engine inactive after panic recovery")
	}
}

func TestEngineOnResultObserver(t *testing.T) {
	resolver := &stubResolver{}
	speaker := &recordingSpeaker{}
	dispatcher := dispatch.NewDispatcher(dispatch.NewMailbox(), speaker, noopNavigator{}, nil, nil)

	var mu sync.Mutex
	var seen []Snapshot
	eng := New(Config{
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Speaker:    speaker,
		Debounce:   10 * time.Millisecond,
		OnResult: func(s Snapshot) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		},
	})
	eng.Activate()

	eng.SubmitFinal("go to tasks")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, "observer never notified")

	mu.Lock()
	defer mu.Unlock()
	if seen[0].LastTranscript != "go to tasks" || seen[0].LastResult == nil {
		t.Errorf("observed snapshot = %+v", seen[0])
	}
}
