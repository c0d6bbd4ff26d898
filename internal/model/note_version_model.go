package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NoteVersion struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	NoteId        uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_note_version_index,priority:1"`
	VersionIndex  int            `gorm:"not null;uniqueIndex:idx_note_version_index,priority:2"`
	Title         string         `gorm:"type:varchar(255);not null"`
	Content       string         `gorm:"type:text"`
	Tags          datatypes.JSON `gorm:"type:jsonb"`
	State         string         `gorm:"type:varchar(32);not null;index"`
	CreatedBy     string         `gorm:"type:varchar(255);not null;index"`
	SubmittedBy   *string        `gorm:"type:varchar(255)"`
	ReviewedBy    *string        `gorm:"type:varchar(255)"`
	ReviewComment *string        `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (NoteVersion) TableName() string {
	return "note_versions"
}
