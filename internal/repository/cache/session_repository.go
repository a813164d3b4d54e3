package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"mindcare-rag-be/internal/entity"
	"mindcare-rag-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "mindcare:session:"
	sessionIndexKey  = "mindcare:sessions"
)

// SessionRepository keeps sessions as JSON strings plus a set of live ids.
type SessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ contract.ChatSessionRepository = &SessionRepository{}

func NewSessionRepository(rdb *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl < 0 {
		ttl = 0
	}
	return &SessionRepository{rdb: rdb, ttl: ttl}
}

type storedMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type storedExchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

type storedSession struct {
	Id           string           `json:"id"`
	Messages     []storedMessage  `json:"messages"`
	History      []storedExchange `json:"history"`
	FirstMessage bool             `json:"first_message"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func key(id string) string {
	return sessionKeyPrefix + id
}

func (r *SessionRepository) Save(ctx context.Context, session *entity.ChatSession) error {
	data, err := json.Marshal(toStored(session))
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.Id, err)
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key(session.Id), data, r.ttl)
		pipe.SAdd(ctx, sessionIndexKey, session.Id)
		return nil
	})
	return err
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*entity.ChatSession, error) {
	data, err := r.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return fromStored(&stored), nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key(id))
		pipe.SRem(ctx, sessionIndexKey, id)
		return nil
	})
	return err
}

// List reads every indexed session and prunes ids whose key has expired.
func (r *SessionRepository) List(ctx context.Context) ([]*entity.ChatSession, error) {
	ids, err := r.rdb.SMembers(ctx, sessionIndexKey).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*entity.ChatSession, 0, len(ids))
	var expired []interface{}
	for _, id := range ids {
		s, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if s == nil {
			expired = append(expired, id)
			continue
		}
		sessions = append(sessions, s)
	}

	if len(expired) > 0 {
		r.rdb.SRem(ctx, sessionIndexKey, expired...)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func toStored(s *entity.ChatSession) *storedSession {
	out := &storedSession{
		Id:           s.Id,
		Messages:     make([]storedMessage, len(s.Messages)),
		History:      make([]storedExchange, len(s.History)),
		FirstMessage: s.FirstMessage,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	for i, m := range s.Messages {
		out.Messages[i] = storedMessage{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp}
	}
	for i, ex := range s.History {
		out.History[i] = storedExchange{User: ex.User, Assistant: ex.Assistant}
	}
	return out
}

func fromStored(s *storedSession) *entity.ChatSession {
	out := &entity.ChatSession{
		Id:           s.Id,
		Messages:     make([]entity.ChatMessage, len(s.Messages)),
		History:      make([]entity.ChatExchange, len(s.History)),
		FirstMessage: s.FirstMessage,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	for i, m := range s.Messages {
		out.Messages[i] = entity.ChatMessage{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp}
	}
	for i, ex := range s.History {
		out.History[i] = entity.ChatExchange{User: ex.User, Assistant: ex.Assistant}
	}
	return out
}
