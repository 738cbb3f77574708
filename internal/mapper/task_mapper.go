package mapper

import (
	"time"

	"voicepad-be/internal/entity"
	"voicepad-be/internal/model"

	"gorm.io/gorm"
)

type TaskMapper struct{}

func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

func (m *TaskMapper) ToEntity(t *model.Task) *entity.Task {
	if t == nil {
		return nil
	}

	var deletedAt *time.Time
	if t.DeletedAt.Valid {
		ts := t.DeletedAt.Time
		deletedAt = &ts
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		ts := t.UpdatedAt
		updatedAt = &ts
	}

	return &entity.Task{
		Id:          t.Id,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Category:    t.Category,
		Priority:    t.Priority,
		Completed:   t.Completed,
		Tags:        tagsFromJSON(t.Tags),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   t.DeletedAt.Valid,
	}
}

func (m *TaskMapper) ToModel(t *entity.Task) *model.Task {
	if t == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if t.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *t.DeletedAt, Valid: true}
	} else if t.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	return &model.Task{
		Id:          t.Id,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Category:    t.Category,
		Priority:    t.Priority,
		Completed:   t.Completed,
		Tags:        tagsToJSON(t.Tags),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *TaskMapper) ToEntities(tasks []*model.Task) []*entity.Task {
	entities := make([]*entity.Task, len(tasks))
	for i, t := range tasks {
		entities[i] = m.ToEntity(t)
	}
	return entities
}

func (m *TaskMapper) ToModels(tasks []*entity.Task) []*model.Task {
	models := make([]*model.Task, len(tasks))
	for i, t := range tasks {
		models[i] = m.ToModel(t)
	}
	return models
}
