package model

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Title             string     `gorm:"type:varchar(255);not null"`
	ApprovedVersionId *uuid.UUID `gorm:"type:uuid"`
	DraftVersionId    *uuid.UUID `gorm:"type:uuid"`
	Archived          bool       `gorm:"not null;default:false"`
	Upvotes           int        `gorm:"not null;default:0"`
	Downvotes         int        `gorm:"not null;default:0"`
	CreatedBy         string     `gorm:"type:varchar(255);not null;index"`
	CommittedBy       *string    `gorm:"type:varchar(255)"`
	DeletedAt         *time.Time `gorm:"index"`
	DeletedBy         *string    `gorm:"type:varchar(255)"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime"`
	LockVersion       int        `gorm:"not null;default:0"`
}

func (Note) TableName() string {
	return "notes"
}
