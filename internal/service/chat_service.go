package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mindcare-rag-be/internal/constant"
	"mindcare-rag-be/internal/dto"
	"mindcare-rag-be/internal/entity"
	"mindcare-rag-be/internal/metrics"
	"mindcare-rag-be/internal/pkg/logger"
	"mindcare-rag-be/internal/repository/contract"
	"mindcare-rag-be/pkg/events"
	"mindcare-rag-be/pkg/rag/pipeline"

	"github.com/google/uuid"
)

const (
	chatModule = "ChatService"

	sessionIdLength = 8
	eventTimeout    = 2 * time.Second
)

var ErrSessionNotFound = errors.New("session not found")

// SessionNotifier is told when a session is cleared so live sockets can react.
type SessionNotifier interface {
	NotifySessionCleared(sessionId string)
}

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	GetSession(ctx context.Context, id string) (*dto.SessionResponse, error)
	ClearSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context) ([]dto.SessionSummaryResponse, error)
}

type chatService struct {
	pipeline  *pipeline.Pipeline
	repo      contract.ChatSessionRepository
	publisher events.Publisher
	notifier  SessionNotifier
	logger    logger.ILogger
	metrics   *metrics.Metrics
	locks     *keyedMutex
	now       func() time.Time
}

// NewChatService wires the chat flow. publisher and notifier may be nil.
func NewChatService(
	p *pipeline.Pipeline,
	repo contract.ChatSessionRepository,
	publisher events.Publisher,
	notifier SessionNotifier,
	log logger.ILogger,
	m *metrics.Metrics,
) IChatService {
	if m == nil {
		m = metrics.NewNop()
	}
	return &chatService{
		pipeline:  p,
		repo:      repo,
		publisher: publisher,
		notifier:  notifier,
		logger:    log,
		metrics:   m,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	session, created, unlock, err := s.getOrCreate(ctx, req.SessionId)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session.Messages = append(session.Messages, entity.ChatMessage{
		Role:      constant.ChatMessageRoleUser,
		Content:   req.Message,
		Timestamp: s.now(),
	})

	conv := pipeline.RestoreConversation(toExchanges(session.History), session.FirstMessage)
	result := s.pipeline.Process(ctx, conv, req.Message)

	session.Messages = append(session.Messages, entity.ChatMessage{
		Role:      constant.ChatMessageRoleAssistant,
		Content:   result.Response,
		Timestamp: s.now(),
	})
	session.History = fromExchanges(conv.History())
	session.FirstMessage = conv.IsFirstMessage()
	session.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session %s: %w", session.Id, err)
	}
	if created {
		s.metrics.ActiveSessions.Inc()
		s.logger.Info(chatModule, "Session created", map[string]interface{}{"session_id": session.Id})
	}

	s.publishExchange(ctx, session.Id, result)

	res := &dto.ChatResponse{
		Response:  result.Response,
		SessionId: session.Id,
		Intent:    result.Intent.String(),
		IsCrisis:  result.IsCrisis,
		Sources:   make([]dto.SourceResponse, 0, len(result.Sources)),
	}
	for _, src := range result.Sources {
		res.Sources = append(res.Sources, dto.SourceResponse{Source: src.Source, Title: src.Title})
	}
	if result.FirstMessage {
		res.Disclaimer = constant.Disclaimer
	}
	return res, nil
}

// getOrCreate returns the session for id, or a fresh one when id is empty or
// unknown, locked for the caller. created reports a session that is not yet
// stored.
func (s *chatService) getOrCreate(ctx context.Context, id string) (session *entity.ChatSession, created bool, unlock func(), err error) {
	if id != "" {
		unlock = s.locks.Lock(id)
		session, err = s.repo.Get(ctx, id)
		if err != nil {
			unlock()
			return nil, false, nil, fmt.Errorf("load session %s: %w", id, err)
		}
		if session != nil {
			return session, false, unlock, nil
		}
		unlock()
	}

	for {
		newId := uuid.New().String()[:sessionIdLength]
		unlock = s.locks.Lock(newId)
		existing, err := s.repo.Get(ctx, newId)
		if err != nil {
			unlock()
			return nil, false, nil, fmt.Errorf("load session %s: %w", newId, err)
		}
		if existing != nil {
			unlock()
			continue
		}
		return entity.NewChatSession(newId, s.now()), true, unlock, nil
	}
}

func (s *chatService) GetSession(ctx context.Context, id string) (*dto.SessionResponse, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	res := &dto.SessionResponse{
		Id:        session.Id,
		Messages:  make([]dto.MessageResponse, 0, len(session.Messages)),
		CreatedAt: session.CreatedAt,
	}
	for _, m := range session.Messages {
		res.Messages = append(res.Messages, dto.MessageResponse{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp})
	}
	return res, nil
}

// ClearSession empties the transcript and resets the conversation. Unknown
// ids are not an error.
func (s *chatService) ClearSession(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load session %s: %w", id, err)
	}
	if session == nil {
		return nil
	}

	session.Clear(s.now())
	if err := s.repo.Save(ctx, session); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}

	if s.notifier != nil {
		s.notifier.NotifySessionCleared(id)
	}
	s.publish(ctx, events.NewSessionCleared(id))
	s.logger.Info(chatModule, "Session cleared", map[string]interface{}{"session_id": id})
	return nil
}

func (s *chatService) ListSessions(ctx context.Context) ([]dto.SessionSummaryResponse, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	s.metrics.ActiveSessions.Set(float64(len(sessions)))

	res := make([]dto.SessionSummaryResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, dto.SessionSummaryResponse{
			Id:           session.Id,
			MessageCount: len(session.Messages),
			CreatedAt:    session.CreatedAt,
		})
	}
	return res, nil
}

func (s *chatService) publishExchange(ctx context.Context, sessionId string, result pipeline.Result) {
	if result.IsCrisis {
		s.publish(ctx, events.NewCrisisDetected(sessionId))
	}
	s.publish(ctx, events.NewChatExchange(sessionId, result.Intent.String(), result.IsCrisis, len(result.Sources)))
}

// publish is best effort: failures are logged and the request goes on.
func (s *chatService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(chatModule, "Failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func toExchanges(history []entity.ChatExchange) []pipeline.Exchange {
	out := make([]pipeline.Exchange, len(history))
	for i, ex := range history {
		out[i] = pipeline.Exchange{User: ex.User, Assistant: ex.Assistant}
	}
	return out
}

func fromExchanges(history []pipeline.Exchange) []entity.ChatExchange {
	out := make([]entity.ChatExchange, len(history))
	for i, ex := range history {
		out[i] = entity.ChatExchange{User: ex.User, Assistant: ex.Assistant}
	}
	return out
}
