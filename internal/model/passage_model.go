package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Passage struct {
	Id           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CollectionId uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_passage_collection_external"`
	ExternalId   string            `gorm:"type:varchar(255);not null;uniqueIndex:idx_passage_collection_external"`
	Content      string            `gorm:"type:text;not null"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`
	// Unsized so providers with different dimensions can share the table.
	// Searches are exact scans; an HNSW index needs a fixed dimension.
	Embedding pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (Passage) TableName() string {
	return "passages"
}

// ScoredPassage is a search row: the passage plus its cosine distance to the query.
type ScoredPassage struct {
	Passage
	Distance float64
}
