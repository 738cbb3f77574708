package service

import (
	"context"
	"fmt"
	"time"

	"voicepad-be/internal/dto"
	"voicepad-be/internal/entity"
	"voicepad-be/internal/repository/specification"
	"voicepad-be/internal/repository/unitofwork"
	"voicepad-be/pkg/events"
	pktNats "voicepad-be/pkg/nats"
	"voicepad-be/pkg/voice"

	"github.com/google/uuid"
)

type ITaskService interface {
	Create(ctx context.Context, req *dto.CreateTaskRequest) (*dto.CreateTaskResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowTaskResponse, error)
	List(ctx context.Context, query *dto.ListTasksQuery) ([]*dto.ShowTaskResponse, error)
	Update(ctx context.Context, req *dto.UpdateTaskRequest) (*dto.UpdateTaskResponse, error)
	ToggleComplete(ctx context.Context, id uuid.UUID) (*dto.ShowTaskResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type taskService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewTaskService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
) ITaskService {
	return &taskService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (c *taskService) Create(ctx context.Context, req *dto.CreateTaskRequest) (*dto.CreateTaskResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date %q: %w", req.DueDate, err)
		}
		dueDate = &parsed
	}

	priority := req.Priority
	if priority == "" {
		priority = voice.PriorityMedium
	}

	task := entity.Task{
		Id:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Category:    req.Category,
		Priority:    priority,
		Tags:        req.Tags,
		CreatedAt:   time.Now(),
	}

	if err := uow.TaskRepository().Create(ctx, &task); err != nil {
		return nil, err
	}

	// Notification is auxiliary; a publish failure must not fail the request.
	if c.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "TASK_CREATED",
			Data: map[string]interface{}{
				"title":   task.Title,
				"task_id": task.Id,
			},
			OccurredAt: time.Now(),
		}
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish TASK_CREATED event: %v\n", err)
		}
	}

	return &dto.CreateTaskResponse{
		Id: task.Id,
	}, nil
}

func (c *taskService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowTaskResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	task, err := uow.TaskRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil // Not found
	}
	return taskToResponse(task), nil
}

func (c *taskService) List(ctx context.Context, query *dto.ListTasksQuery) ([]*dto.ShowTaskResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{}
	if query.Search != "" {
		specs = append(specs, specification.TaskSearchQuery{Query: query.Search})
	}
	if query.Category != "" {
		specs = append(specs, specification.ByCategory{Category: query.Category})
	}
	if query.Priority != "" {
		specs = append(specs, specification.ByPriority{Priority: query.Priority})
	}
	if query.Completed != nil {
		specs = append(specs, specification.ByCompleted{Completed: *query.Completed})
	}
	if query.DueBefore != "" {
		if parsed, err := time.Parse("2006-01-02", query.DueBefore); err == nil {
			specs = append(specs, specification.DueBefore{Date: parsed})
		}
	}
	specs = append(specs, specification.OrderBy{Field: "created_at", Desc: true})
	if query.Limit > 0 {
		specs = append(specs, specification.Pagination{Limit: query.Limit, Offset: query.Offset})
	}

	tasks, err := uow.TaskRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ShowTaskResponse, len(tasks))
	for i, t := range tasks {
		res[i] = taskToResponse(t)
	}
	return res, nil
}

func (c *taskService) Update(ctx context.Context, req *dto.UpdateTaskRequest) (*dto.UpdateTaskResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	task, err := uow.TaskRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date %q: %w", req.DueDate, err)
		}
		dueDate = &parsed
	}

	now := time.Now()
	task.Title = req.Title
	task.Description = req.Description
	task.DueDate = dueDate
	task.Category = req.Category
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	task.Completed = req.Completed
	task.Tags = req.Tags
	task.UpdatedAt = &now

	if err := uow.TaskRepository().Update(ctx, task); err != nil {
		return nil, err
	}

	return &dto.UpdateTaskResponse{
		Id: task.Id,
	}, nil
}

func (c *taskService) ToggleComplete(ctx context.Context, id uuid.UUID) (*dto.ShowTaskResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	task, err := uow.TaskRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}

	now := time.Now()
	task.Completed = !task.Completed
	task.UpdatedAt = &now

	if err := uow.TaskRepository().Update(ctx, task); err != nil {
		return nil, err
	}

	return taskToResponse(task), nil
}

func (c *taskService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	task, err := uow.TaskRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}

	return uow.TaskRepository().Delete(ctx, id)
}

func taskToResponse(t *entity.Task) *dto.ShowTaskResponse {
	dueDate := ""
	if t.DueDate != nil {
		dueDate = t.DueDate.Format("2006-01-02")
	}
	return &dto.ShowTaskResponse{
		Id:          t.Id,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     dueDate,
		Category:    t.Category,
		Priority:    t.Priority,
		Completed:   t.Completed,
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
