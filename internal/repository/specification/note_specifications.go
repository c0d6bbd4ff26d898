package specification

import (
	"gorm.io/gorm"
)

// NotDeleted excludes soft-deleted notes. Deletion is a workflow flag, not
// a gorm.DeletedAt, so default discovery filters it explicitly.
type NotDeleted struct{}

func (s NotDeleted) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

// OnlyDeleted restricts to soft-deleted notes (restore flows).
type OnlyDeleted struct{}

func (s OnlyDeleted) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NOT NULL")
}

// NotArchived hides archived notes from default discovery.
type NotArchived struct{}

func (s NotArchived) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("archived = ?", false)
}

// CreatedBy filters notes by their original author.
type CreatedBy struct {
	UserID string
}

func (s CreatedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_by = ?", s.UserID)
}

// HasApprovedVersion restricts to notes with a published baseline.
type HasApprovedVersion struct{}

func (s HasApprovedVersion) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("approved_version_id IS NOT NULL")
}
