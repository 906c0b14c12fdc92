package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FollowEdge is a directed follow relationship. Self-follows are rejected in
// the service before anything is written.
type FollowEdge struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	FollowerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follower_followee" json:"follower_id"`
	FolloweeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follower_followee" json:"followee_id"`
}

func (FollowEdge) TableName() string {
	return "follow_edges"
}

func (e *FollowEdge) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
