package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Category    string   `json:"category"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Tags        []string `json:"tags"`
}

type CreateTaskResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowTaskResponse struct {
	Id          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     string     `json:"due_date,omitempty"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Completed   bool       `json:"completed"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type UpdateTaskRequest struct {
	Id          uuid.UUID
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Category    string   `json:"category"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Completed   bool     `json:"completed"`
	Tags        []string `json:"tags"`
}

type UpdateTaskResponse struct {
	Id uuid.UUID `json:"id"`
}

// ListTasksQuery carries the optional query-string filters for GET /tasks.
type ListTasksQuery struct {
	Search    string
	Category  string
	Priority  string
	Completed *bool
	DueBefore string
	Limit     int
	Offset    int
}
