package dto

import "voicepad-be/pkg/voice"

// VoiceCommandContext mirrors what the client knows at utterance time.
type VoiceCommandContext struct {
	CurrentPath string `json:"current_path"`
	Timestamp   int64  `json:"timestamp"`
}

type VoiceCommandRequest struct {
	SessionId string              `json:"session_id" validate:"required"`
	Command   string              `json:"command" validate:"required"`
	Context   VoiceCommandContext `json:"context"`
}

type VoiceCommandResponse struct {
	Success     bool                   `json:"success"`
	Message     string                 `json:"message"`
	Action      string                 `json:"action,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	Suggestions []string               `json:"suggestions,omitempty"`
	State       string                 `json:"state"`
}

func NewVoiceCommandResponse(result *voice.CommandResult, state voice.ConversationState) *VoiceCommandResponse {
	if result == nil {
		return &VoiceCommandResponse{State: string(state)}
	}
	return &VoiceCommandResponse{
		Success:     result.Success,
		Message:     result.Message,
		Action:      result.Action,
		Parameters:  result.Parameters,
		Suggestions: result.Suggestions,
		State:       string(state),
	}
}

// PendingDialogResponse is what GET /pending returns: the staged task or note
// draft waiting for the frontend dialog, if any.
type PendingDialogResponse struct {
	Kind string            `json:"kind,omitempty"` // "task" | "note" | ""
	Task *voice.ParsedTask `json:"task,omitempty"`
	Note *voice.ParsedNote `json:"note,omitempty"`
}

type SessionStateResponse struct {
	SessionId  string `json:"session_id"`
	Active     bool   `json:"active"`
	State      string `json:"state"`
	Transcript string `json:"transcript"`
	Processing bool   `json:"processing"`
}
