package implementation

import (
	"context"
	"errors"
	"fmt"

	"mindcare-rag-be/internal/mapper"
	"mindcare-rag-be/internal/model"
	"mindcare-rag-be/internal/repository/contract"
	"mindcare-rag-be/internal/repository/specification"
	"mindcare-rag-be/pkg/vectorstore"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PassageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PassageMapper
}

func NewPassageRepository(db *gorm.DB) contract.PassageRepository {
	return &PassageRepositoryImpl{
		db:     db,
		mapper: mapper.NewPassageMapper(),
	}
}

func (r *PassageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PassageRepositoryImpl) EnsureCollection(ctx context.Context, name string) (*vectorstore.Collection, error) {
	if name == "" {
		return nil, vectorstore.ErrEmptyName
	}

	m := model.KnowledgeCollection{Name: name}
	err := r.db.WithContext(ctx).
		Where(model.KnowledgeCollection{Name: name}).
		FirstOrCreate(&m).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToCollection(&m), nil
}

func (r *PassageRepositoryImpl) FindCollection(ctx context.Context, name string) (*vectorstore.Collection, error) {
	if name == "" {
		return nil, vectorstore.ErrEmptyName
	}

	var m model.KnowledgeCollection
	err := r.applySpecifications(r.db.WithContext(ctx), specification.ByName{Name: name}).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, vectorstore.ErrNoCollection
	}
	if err != nil {
		return nil, err
	}
	return r.mapper.ToCollection(&m), nil
}

func (r *PassageRepositoryImpl) Upsert(ctx context.Context, c *vectorstore.Collection, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	collectionId, err := uuid.Parse(c.ID)
	if err != nil {
		return fmt.Errorf("collection %s has invalid id: %w", c.Name, err)
	}

	models := r.mapper.ToModels(collectionId, records)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "metadata", "embedding", "updated_at"}),
		}).
		Create(&models).Error
}

func (r *PassageRepositoryImpl) Search(ctx context.Context, c *vectorstore.Collection, vector []float32, k int) ([]vectorstore.Passage, error) {
	if k <= 0 {
		return []vectorstore.Passage{}, nil
	}

	collectionId, err := uuid.Parse(c.ID)
	if err != nil {
		return nil, fmt.Errorf("collection %s has invalid id: %w", c.Name, err)
	}

	var rows []*model.ScoredPassage
	query := r.applySpecifications(
		r.db.WithContext(ctx).Table(model.Passage{}.TableName()),
		specification.ByCollectionId{CollectionId: collectionId},
		specification.NearestTo{Vector: vector},
		specification.Limit{N: k},
	)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToPassages(rows), nil
}

func (r *PassageRepositoryImpl) Count(ctx context.Context, c *vectorstore.Collection) (int64, error) {
	collectionId, err := uuid.Parse(c.ID)
	if err != nil {
		return 0, fmt.Errorf("collection %s has invalid id: %w", c.Name, err)
	}

	var count int64
	err = r.applySpecifications(r.db.WithContext(ctx).Model(&model.Passage{}),
		specification.ByCollectionId{CollectionId: collectionId},
	).Count(&count).Error
	return count, err
}

func (r *PassageRepositoryImpl) ListCollections(ctx context.Context, specs ...specification.Specification) ([]*model.KnowledgeCollection, error) {
	var models []*model.KnowledgeCollection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}
