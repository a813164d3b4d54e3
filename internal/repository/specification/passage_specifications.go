package specification

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ByCollectionId struct {
	CollectionId uuid.UUID
}

func (s ByCollectionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("collection_id = ?", s.CollectionId)
}

type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

// NearestTo selects the cosine distance to Vector as "distance" and orders by it.
type NearestTo struct {
	Vector []float32
}

func (s NearestTo) Apply(db *gorm.DB) *gorm.DB {
	v := pgvector.NewVector(s.Vector)
	return db.
		Select("passages.*, embedding <=> ? AS distance", v).
		Order("distance ASC")
}

type Limit struct {
	N int
}

func (s Limit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.N)
}

// OrderBy sorts on a column name supplied by code, never by request input.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}
