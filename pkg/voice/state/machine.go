// Package state owns the conversation state value and its transitions.
package state

import (
	"voicepad-be/pkg/voice"
	"voicepad-be/pkg/voice/intent"

	"go.uber.org/zap"
)

// Machine applies resolver output to the single conversation state. It is
// the only component allowed to mutate the state; the resolver receives a
// read-only snapshot per call.
type Machine struct {
	logger *zap.Logger
}

func NewMachine(logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{logger: logger}
}

// Apply is the pure transition function (state, result) -> newState. It is
// total: every result leaves the machine in a defined state.
func Apply(current voice.ConversationState, result *voice.CommandResult) voice.ConversationState {
	if !current.IsValid() {
		current = voice.StateIdle
	}
	if result == nil {
		return current
	}

	switch result.Action {
	case voice.ActionSetState:
		if next := result.ParamState(); next.IsValid() {
			return next
		}
		// An unknown target state never leaves the machine undefined.
		return current
	case voice.ActionResetState,
		voice.ActionCreateTaskFinalized,
		voice.ActionCreateNoteFinalized,
		voice.ActionNavigate,
		voice.ActionSearch:
		return voice.StateIdle
	case voice.ActionNone, "":
		return current
	}
	return current
}

// Step runs the cancellation safety net and then the transition. The
// cancellation check is owned here, not by the resolver: a cancel phrase
// forces idle from any awaiting state regardless of resolver output.
func (m *Machine) Step(current voice.ConversationState, transcript string, result *voice.CommandResult) voice.ConversationState {
	if current != voice.StateIdle && intent.IsCancellation(transcript) {
		m.logger.Info("conversation cancelled by phrase",
			zap.String("from", string(current)))
		return voice.StateIdle
	}

	next := Apply(current, result)
	if next != current {
		m.logger.Info("conversation state transition",
			zap.String("from", string(current)),
			zap.String("to", string(next)),
			zap.String("action", actionOf(result)))
	}
	return next
}

func actionOf(result *voice.CommandResult) string {
	if result == nil {
		return ""
	}
	return result.Action
}
