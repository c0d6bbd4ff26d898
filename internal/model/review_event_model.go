package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ReviewEvent struct {
	// Seq is the insertion-order tiebreaker for events written within the
	// same timestamp.
	Seq       int64          `gorm:"primaryKey;autoIncrement"`
	Id        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	ReviewId  uuid.UUID      `gorm:"type:uuid;not null;index"`
	EventType string         `gorm:"type:varchar(32);not null"`
	AuthorId  string         `gorm:"type:varchar(255);not null"`
	Message   *string        `gorm:"type:text"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (ReviewEvent) TableName() string {
	return "review_events"
}
