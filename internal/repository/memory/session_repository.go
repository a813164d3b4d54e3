package memory

import (
	"context"
	"sort"
	"time"

	"mindcare-rag-be/internal/entity"
	"mindcare-rag-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

var _ contract.ChatSessionRepository = &SessionRepository{}

// NewSessionRepository keeps sessions for ttl after their last save.
// ttl <= 0 keeps them until deleted.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 10 * time.Minute
		if ttl < cleanup {
			cleanup = ttl
		}
	}
	return &SessionRepository{
		cache: cache.New(expiration, cleanup),
	}
}

func (r *SessionRepository) Save(_ context.Context, session *entity.ChatSession) error {
	r.cache.Set(session.Id, session.Clone(), cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(_ context.Context, id string) (*entity.ChatSession, error) {
	if x, found := r.cache.Get(id); found {
		return x.(*entity.ChatSession).Clone(), nil
	}
	return nil, nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

// List returns live sessions, oldest first.
func (r *SessionRepository) List(_ context.Context) ([]*entity.ChatSession, error) {
	items := r.cache.Items()
	sessions := make([]*entity.ChatSession, 0, len(items))
	for _, item := range items {
		sessions = append(sessions, item.Object.(*entity.ChatSession).Clone())
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].Id < sessions[j].Id
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}
