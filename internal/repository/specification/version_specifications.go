package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByNoteID scopes versions to one note.
type ByNoteID struct {
	NoteID uuid.UUID
}

func (s ByNoteID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("note_id = ?", s.NoteID)
}

// ByNoteIDs scopes versions to a set of notes.
type ByNoteIDs struct {
	NoteIDs []uuid.UUID
}

func (s ByNoteIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("note_id IN ?", s.NoteIDs)
}

// InStates filters versions by workflow state.
type InStates struct {
	States []string
}

func (s InStates) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("state IN ?", s.States)
}

// OrderByVersionIndex returns the per-note ledger in index order.
type OrderByVersionIndex struct {
	Desc bool
}

func (s OrderByVersionIndex) Apply(db *gorm.DB) *gorm.DB {
	if s.Desc {
		return db.Order("version_index DESC")
	}
	return db.Order("version_index ASC")
}
