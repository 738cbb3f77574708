package specification

import "gorm.io/gorm"

type ByTitle struct {
	Title string
}

func (s ByTitle) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title = ?", s.Title)
}

// ByNoteTitle filters notes by partial title match (case-insensitive)
type ByNoteTitle struct {
	Title string
}

func (s ByNoteTitle) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Title + "%"
	return db.Where("title ILIKE ?", pattern)
}

// HasTag filters rows whose jsonb tags array contains the given tag
type HasTag struct {
	Tag string
}

func (s HasTag) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tags @> ?", `["`+s.Tag+`"]`)
}
