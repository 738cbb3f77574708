package specification

import "gorm.io/gorm"

// NoteSearchQuery filters notes by title or content
type NoteSearchQuery struct {
	Query string
}

func (s NoteSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	// ILIKE for Postgres (case insensitive)
	return db.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
}

// TaskSearchQuery filters tasks by title or description
type TaskSearchQuery struct {
	Query string
}

func (s TaskSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	return db.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
}
