package contract

import (
	"context"

	"mindcare-rag-be/internal/model"
	"mindcare-rag-be/internal/repository/specification"
	"mindcare-rag-be/pkg/vectorstore"
)

// PassageRepository is the pgvector backend behind the vector store.
type PassageRepository interface {
	vectorstore.Backend
	ListCollections(ctx context.Context, specs ...specification.Specification) ([]*model.KnowledgeCollection, error)
}
