package model

import (
	"time"

	"github.com/google/uuid"
)

type ReviewDecision struct {
	ReviewId  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    string    `gorm:"type:varchar(255);primaryKey"`
	Decision  string    `gorm:"type:varchar(32);not null"`
	Comment   *string   `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ReviewDecision) TableName() string {
	return "review_decisions"
}
