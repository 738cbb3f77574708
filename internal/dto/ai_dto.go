package dto

// AI helper endpoints: stateless parse/suggest operations the frontend uses
// outside the conversational flow.

type ParseTaskRequest struct {
	Transcript string `json:"transcript" validate:"required"`
}

type ParseTaskResponse struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Source      string `json:"source"` // "llm" | "fallback"
}

type ParseNoteRequest struct {
	Transcript string `json:"transcript" validate:"required"`
}

type ParseNoteResponse struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Source  string   `json:"source"`
}

type SuggestDueDateRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

type SuggestDueDateResponse struct {
	DueDate string `json:"due_date"`
	Source  string `json:"source"`
}

type SummarizeNoteRequest struct {
	Content string `json:"content" validate:"required"`
}

type SummarizeNoteResponse struct {
	Summary string `json:"summary"`
	Source  string `json:"source"`
}

type SearchSuggestionsRequest struct {
	Query      string   `json:"query" validate:"required"`
	TaskTitles []string `json:"task_titles"`
	NoteTitles []string `json:"note_titles"`
}

type SearchSuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type RewriteNoteRequest struct {
	Content string `json:"content" validate:"required"`
	Tone    string `json:"tone" validate:"required,oneof=concise professional friendly"`
}

type RewriteNoteResponse struct {
	Rewritten string `json:"rewritten"`
	Source    string `json:"source"`
}

type BulkActionRequest struct {
	CommandText string `json:"command_text" validate:"required"`
}

type BulkActionFilter struct {
	Overdue *bool `json:"overdue,omitempty"`
}

// BulkActionOp is one operation the caller applies to its task list. Type is
// "update" or "toggle"; Data carries the fields an update writes.
type BulkActionOp struct {
	Type   string                 `json:"type"`
	Filter *BulkActionFilter      `json:"filter,omitempty"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

type BulkActionResponse struct {
	Operations []BulkActionOp `json:"operations"`
	Source     string         `json:"source"`
}

type AiStatusResponse struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Status   string `json:"status"` // available | unauthorized | error | unavailable
	Message  string `json:"message"`
}
