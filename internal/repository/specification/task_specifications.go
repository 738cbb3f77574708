package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category ILIKE ?", s.Category)
}

type ByPriority struct {
	Priority string
}

func (s ByPriority) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("priority = ?", s.Priority)
}

type ByCompleted struct {
	Completed bool
}

func (s ByCompleted) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("completed = ?", s.Completed)
}

type DueOn struct {
	Date time.Time
}

func (s DueOn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("due_date = ?", s.Date.Format("2006-01-02"))
}

type DueBefore struct {
	Date time.Time
}

func (s DueBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("due_date < ?", s.Date.Format("2006-01-02"))
}
