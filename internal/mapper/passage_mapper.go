package mapper

import (
	"fmt"

	"mindcare-rag-be/internal/model"
	"mindcare-rag-be/pkg/vectorstore"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type PassageMapper struct{}

func NewPassageMapper() *PassageMapper {
	return &PassageMapper{}
}

func (m *PassageMapper) ToModel(collectionId uuid.UUID, r vectorstore.Record) *model.Passage {
	meta := datatypes.JSONMap{}
	for k, v := range r.Metadata {
		meta[k] = v
	}

	return &model.Passage{
		CollectionId: collectionId,
		ExternalId:   r.ID,
		Content:      r.Content,
		Metadata:     meta,
		Embedding:    pgvector.NewVector(r.Vector),
	}
}

func (m *PassageMapper) ToModels(collectionId uuid.UUID, records []vectorstore.Record) []*model.Passage {
	models := make([]*model.Passage, len(records))
	for i, r := range records {
		models[i] = m.ToModel(collectionId, r)
	}
	return models
}

// ToPassage flattens a search row. JSON metadata values that are not strings
// (numbers, arrays) are rendered with fmt.
func (m *PassageMapper) ToPassage(row *model.ScoredPassage) vectorstore.Passage {
	meta := make(map[string]string, len(row.Metadata))
	for k, v := range row.Metadata {
		switch val := v.(type) {
		case string:
			meta[k] = val
		case nil:
			meta[k] = ""
		default:
			meta[k] = fmt.Sprint(val)
		}
	}

	return vectorstore.Passage{
		ID:       row.ExternalId,
		Content:  row.Content,
		Metadata: meta,
		Score:    row.Distance,
	}
}

func (m *PassageMapper) ToPassages(rows []*model.ScoredPassage) []vectorstore.Passage {
	passages := make([]vectorstore.Passage, len(rows))
	for i, row := range rows {
		passages[i] = m.ToPassage(row)
	}
	return passages
}

func (m *PassageMapper) ToCollection(c *model.KnowledgeCollection) *vectorstore.Collection {
	if c == nil {
		return nil
	}
	return &vectorstore.Collection{ID: c.Id.String(), Name: c.Name}
}
