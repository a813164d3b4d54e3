package model

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeCollection is a named partition of passages (one per source corpus).
type KnowledgeCollection struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (KnowledgeCollection) TableName() string {
	return "knowledge_collections"
}
