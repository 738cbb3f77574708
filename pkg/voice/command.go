package voice

// ConversationState is the multi-turn assistant state. Exactly one value
// exists per active session; only the state machine mutates it.
type ConversationState string

const (
	StateIdle                ConversationState = "idle"
	StateAwaitingTaskDetails ConversationState = "awaiting_task_details"
	StateAwaitingNoteContent ConversationState = "awaiting_note_content"
	StateAwaitingSearchQuery ConversationState = "awaiting_search_query"
)

// IsValid reports whether s is a member of the state enumeration.
func (s ConversationState) IsValid() bool {
	switch s {
	case StateIdle, StateAwaitingTaskDetails, StateAwaitingNoteContent, StateAwaitingSearchQuery:
		return true
	}
	return false
}

// Action constants for CommandResult.Action
const (
	ActionNavigate            = "navigate"
	ActionSearch              = "search"
	ActionSetState            = "set_state"
	ActionResetState          = "reset_state"
	ActionCreateTaskFinalized = "create_task_finalized"
	ActionCreateNoteFinalized = "create_note_finalized"
	ActionNone                = "none"
)

// Priority constants for ParsedTask.Priority
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ParsedTask is the staging record for a finalized task-creation command.
// DueDate is a normalized YYYY-MM-DD string (or empty if unresolved).
type ParsedTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// ParsedNote is the staging record for a finalized note-creation command.
type ParsedNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    string `json:"tags"`
}

// CommandResult is the structured output of the intent resolver, consumed by
// the state machine and dispatcher, and returned verbatim to UI surfaces.
type CommandResult struct {
	Success     bool                   `json:"success"`
	Message     string                 `json:"message"`
	Action      string                 `json:"action,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	Suggestions []string               `json:"suggestions,omitempty"`
}

// ContextMetadata travels with every resolve call so the oracle can bias
// interpretation (e.g. "show this page" while on /tasks).
type ContextMetadata struct {
	CurrentPath string `json:"currentPath"`
	Timestamp   string `json:"timestamp"`
}

// ParamState reads parameters.state as a ConversationState, or "" if absent.
func (r *CommandResult) ParamState() ConversationState {
	if r == nil || r.Parameters == nil {
		return ""
	}
	if s, ok := r.Parameters["state"].(string); ok {
		return ConversationState(s)
	}
	return ""
}

// ParamString reads a string parameter, or "" if absent or not a string.
func (r *CommandResult) ParamString(key string) string {
	if r == nil || r.Parameters == nil {
		return ""
	}
	if s, ok := r.Parameters[key].(string); ok {
		return s
	}
	return ""
}

// TaskParams converts the parameters payload of a create_task_finalized
// result into a ParsedTask. Priority defaults to medium.
func (r *CommandResult) TaskParams() ParsedTask {
	task := ParsedTask{
		Title:       r.ParamString("title"),
		Description: r.ParamString("description"),
		DueDate:     r.ParamString("dueDate"),
		Category:    r.ParamString("category"),
		Priority:    r.ParamString("priority"),
	}
	if task.Priority == "" {
		task.Priority = PriorityMedium
	}
	return task
}

// NoteParams converts the parameters payload of a create_note_finalized
// result into a ParsedNote.
func (r *CommandResult) NoteParams() ParsedNote {
	return ParsedNote{
		Title:   r.ParamString("title"),
		Content: r.ParamString("content"),
		Tags:    r.ParamString("tags"),
	}
}

// TaskParameters builds the parameters map for a finalized task.
func TaskParameters(t ParsedTask) map[string]interface{} {
	return map[string]interface{}{
		"title":       t.Title,
		"description": t.Description,
		"dueDate":     t.DueDate,
		"category":    t.Category,
		"priority":    t.Priority,
	}
}

// NoteParameters builds the parameters map for a finalized note.
func NoteParameters(n ParsedNote) map[string]interface{} {
	return map[string]interface{}{
		"title":   n.Title,
		"content": n.Content,
		"tags":    n.Tags,
	}
}
