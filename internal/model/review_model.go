package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Review struct {
	Id                  uuid.UUID      `gorm:"type:uuid;primaryKey"`
	NoteId              uuid.UUID      `gorm:"type:uuid;not null;index"`
	DraftVersionId      *uuid.UUID     `gorm:"type:uuid;index"`
	BaseVersionId       *uuid.UUID     `gorm:"type:uuid"`
	Kind                string         `gorm:"type:varchar(16);not null;default:'edit'"`
	Title               string         `gorm:"type:varchar(255);not null"`
	Description         *string        `gorm:"type:text"`
	CreatedBy           string         `gorm:"type:varchar(255);not null;index"`
	ReviewerIds         datatypes.JSON `gorm:"type:jsonb"`
	Status              string         `gorm:"type:varchar(32);not null;index"`
	ApprovalsCount      int            `gorm:"not null;default:0"`
	ChangeRequestsCount int            `gorm:"not null;default:0"`
	MergeVersionId      *uuid.UUID     `gorm:"type:uuid"`
	MergedBy            *string        `gorm:"type:varchar(255)"`
	MergedAt            *time.Time
	ClosedAt            *time.Time
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

func (Review) TableName() string {
	return "reviews"
}
