// Package vectorstore is the nearest-neighbor service the retriever queries.
// A Manager embeds text and delegates vector work to a Backend (pgvector in
// production, memory for tests and local runs).
package vectorstore

import (
	"context"
	"errors"
)

var (
	ErrLengthMismatch = errors.New("texts, metadatas and ids must have the same length")
	ErrEmptyName      = errors.New("collection name is empty")
	ErrNoCollection   = errors.New("collection does not exist")
)

// Passage is one nearest-neighbor hit. Lower Score means closer.
type Passage struct {
	ID               string
	Content          string
	Metadata         map[string]string
	Score            float64
	SourceCollection string
}

// Record is a passage ready to be written, vector included.
type Record struct {
	ID       string
	Content  string
	Metadata map[string]string
	Vector   []float32
}

// Collection is the handle a Backend hands out for a named partition.
type Collection struct {
	ID   string
	Name string
}

// Searcher is the query contract consumed by the retriever.
type Searcher interface {
	Query(ctx context.Context, collection, query string, k int) ([]Passage, error)
}

// Store adds the ingestion side.
type Store interface {
	Searcher
	AddDocuments(ctx context.Context, collection string, texts []string, metadatas []map[string]string, ids []string) error
	Count(ctx context.Context, collection string) int
}

// Backend is the storage engine behind a Manager.
type Backend interface {
	EnsureCollection(ctx context.Context, name string) (*Collection, error)
	// FindCollection looks name up without creating it. It returns
	// ErrNoCollection when the collection was never written.
	FindCollection(ctx context.Context, name string) (*Collection, error)
	Search(ctx context.Context, c *Collection, vector []float32, k int) ([]Passage, error)
	Upsert(ctx context.Context, c *Collection, records []Record) error
	Count(ctx context.Context, c *Collection) (int64, error)
}
