package service

import (
	"context"

	"mindcare-rag-be/internal/pkg/logger"
	"mindcare-rag-be/pkg/events"
)

const crisisAuditDurable = "crisis-audit"

type ICrisisAuditService interface {
	Start(ctx context.Context) error
}

// crisisAuditService writes every CRISIS_DETECTED event to a dedicated audit
// log so crisis traffic can be reviewed apart from application logs.
type crisisAuditService struct {
	subscriber events.Subscriber
	audit      logger.ILogger
}

func NewCrisisAuditService(subscriber events.Subscriber, audit logger.ILogger) ICrisisAuditService {
	return &crisisAuditService{subscriber: subscriber, audit: audit}
}

func (s *crisisAuditService) Start(ctx context.Context) error {
	return s.subscriber.Subscribe(ctx, events.TypeCrisisDetected, crisisAuditDurable, s.handle)
}

func (s *crisisAuditService) handle(_ context.Context, event events.Event) error {
	details := map[string]interface{}{
		"occurred_at": event.Timestamp(),
	}
	for k, v := range event.Payload() {
		details[k] = v
	}
	s.audit.Warn("CrisisAudit", "Crisis response served", details)
	return nil
}
