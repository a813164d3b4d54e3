package contract

import (
	"context"

	"mindcare-rag-be/internal/entity"
)

// ChatSessionRepository stores sessions in memory or in Redis.
// Get returns (nil, nil) for unknown ids.
type ChatSessionRepository interface {
	Get(ctx context.Context, id string) (*entity.ChatSession, error)
	Save(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.ChatSession, error)
}
