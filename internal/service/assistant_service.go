package service

import (
	"context"
	"time"

	"voicepad-be/internal/dto"
	"voicepad-be/internal/repository/memory"
	"voicepad-be/pkg/voice"
	"voicepad-be/pkg/voice/dispatch"
	"voicepad-be/pkg/voice/engine"

	"go.uber.org/zap"
)

// SessionNotifier pushes assistant output frames to a connected client.
// Implemented by the websocket hub; a session with no live connection drops
// frames silently.
type SessionNotifier interface {
	Push(sessionID string, payload interface{})
}

type IAssistantService interface {
	Activate(sessionID, currentPath string) *dto.SessionStateResponse
	Deactivate(sessionID string)
	Command(ctx context.Context, req *dto.VoiceCommandRequest) (*dto.VoiceCommandResponse, error)
	HandleTranscript(sessionID, text string, final bool)
	SetPath(sessionID, path string)
	TranscriptError(sessionID, message string)
	Pending(sessionID string) *dto.PendingDialogResponse
	State(sessionID string) *dto.SessionStateResponse
}

type assistantService struct {
	sessions       *memory.AssistantSessionRepository
	resolver       engine.Resolver
	notifier       SessionNotifier
	eventPublisher dispatch.EventPublisher
	logger         *zap.Logger
	debounce       time.Duration
}

func NewAssistantService(
	sessions *memory.AssistantSessionRepository,
	resolver engine.Resolver,
	notifier SessionNotifier,
	eventPublisher dispatch.EventPublisher,
	logger *zap.Logger,
	debounce time.Duration,
) IAssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &assistantService{
		sessions:       sessions,
		resolver:       resolver,
		notifier:       notifier,
		eventPublisher: eventPublisher,
		logger:         logger,
		debounce:       debounce,
	}
}

// session returns the live session, creating engine and mailbox on first use.
func (s *assistantService) session(sessionID string) *memory.AssistantSession {
	if sess, ok := s.sessions.Get(sessionID); ok {
		s.sessions.Touch(sessionID)
		return sess
	}

	mailbox := dispatch.NewMailbox()
	speaker := &sessionSpeaker{sessionID: sessionID, notifier: s.notifier}
	navigator := &sessionNavigator{sessionID: sessionID, notifier: s.notifier}
	dispatcher := dispatch.NewDispatcher(mailbox, speaker, navigator, s.eventPublisher, s.logger)

	sess := &memory.AssistantSession{
		ID:      sessionID,
		Mailbox: mailbox,
	}
	sess.Engine = engine.New(engine.Config{
		Resolver:   s.resolver,
		Dispatcher: dispatcher,
		Speaker:    speaker,
		Logger:     s.logger.With(zap.String("session", sessionID)),
		Debounce:   s.debounce,
		OnResult: func(snap engine.Snapshot) {
			if s.notifier != nil {
				s.notifier.Push(sessionID, map[string]interface{}{
					"type":     "response",
					"snapshot": snap,
				})
			}
		},
	})
	s.sessions.Save(sess)
	return sess
}

func (s *assistantService) Activate(sessionID, currentPath string) *dto.SessionStateResponse {
	sess := s.session(sessionID)
	sess.Engine.SetCurrentPath(currentPath)
	sess.Engine.Activate()
	return s.stateResponse(sessionID, sess)
}

func (s *assistantService) Deactivate(sessionID string) {
	if sess, ok := s.sessions.Get(sessionID); ok {
		sess.Engine.Deactivate()
	}
}

func (s *assistantService) Command(ctx context.Context, req *dto.VoiceCommandRequest) (*dto.VoiceCommandResponse, error) {
	sess := s.session(req.SessionId)
	sess.Engine.SetCurrentPath(req.Context.CurrentPath)
	sess.Engine.Activate() // idempotent; a REST command implies an active assistant

	snap := sess.Engine.Command(req.Command)
	return dto.NewVoiceCommandResponse(snap.LastResult, snap.State), nil
}

func (s *assistantService) HandleTranscript(sessionID, text string, final bool) {
	sess := s.session(sessionID)
	if final {
		sess.Engine.SubmitFinal(text)
		return
	}
	sess.Engine.UpdateTranscript(text)
}

func (s *assistantService) SetPath(sessionID, path string) {
	sess := s.session(sessionID)
	sess.Engine.SetCurrentPath(path)
}

func (s *assistantService) TranscriptError(sessionID, message string) {
	sess := s.session(sessionID)
	sess.Engine.NotifyTranscriptError(errTranscript(message))
}

func (s *assistantService) Pending(sessionID string) *dto.PendingDialogResponse {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return &dto.PendingDialogResponse{}
	}
	task, note, kind := sess.Mailbox.Consume()
	return &dto.PendingDialogResponse{
		Kind: string(kind),
		Task: task,
		Note: note,
	}
}

func (s *assistantService) State(sessionID string) *dto.SessionStateResponse {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return &dto.SessionStateResponse{
			SessionId: sessionID,
			State:     string(voice.StateIdle),
		}
	}
	return s.stateResponse(sessionID, sess)
}

func (s *assistantService) stateResponse(sessionID string, sess *memory.AssistantSession) *dto.SessionStateResponse {
	snap := sess.Engine.Snapshot()
	return &dto.SessionStateResponse{
		SessionId:  sessionID,
		Active:     snap.Active,
		State:      string(snap.State),
		Transcript: snap.LastTranscript,
		Processing: snap.Processing,
	}
}

type errTranscript string

func (e errTranscript) Error() string { return string(e) }

// sessionSpeaker forwards spoken feedback to the client as websocket frames;
// the browser's speech synthesis does the actual speaking.
type sessionSpeaker struct {
	sessionID string
	notifier  SessionNotifier
}

func (s *sessionSpeaker) Speak(text string) {
	if s.notifier != nil {
		s.notifier.Push(s.sessionID, map[string]interface{}{"type": "speak", "text": text})
	}
}

func (s *sessionSpeaker) Stop() {
	if s.notifier != nil {
		s.notifier.Push(s.sessionID, map[string]interface{}{"type": "speak_stop"})
	}
}

type sessionNavigator struct {
	sessionID string
	notifier  SessionNotifier
}

func (n *sessionNavigator) Navigate(url string) {
	if n.notifier != nil {
		n.notifier.Push(n.sessionID, map[string]interface{}{"type": "navigate", "path": url})
	}
}

func (n *sessionNavigator) Search(query string) {
	if n.notifier != nil {
		n.notifier.Push(n.sessionID, map[string]interface{}{"type": "search", "query": query})
	}
}
