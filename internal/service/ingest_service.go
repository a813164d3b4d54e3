package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mindcare-rag-be/internal/dto"
	"mindcare-rag-be/internal/pkg/logger"
	"mindcare-rag-be/pkg/vectorstore"
)

const ingestModule = "IngestService"

var ErrIngestIncomplete = errors.New("some documents were not stored")

// IngestFailureCounter reports documents per collection that were consumed
// but could not be stored.
type IngestFailureCounter interface {
	Failed(collection string) int
}

type IIngestService interface {
	// Ingest queues docs for collection in batches and returns how many
	// batches were published. With a failure counter it also returns
	// ErrIngestIncomplete when the consumer dropped any of them.
	Ingest(ctx context.Context, collection string, docs []dto.IngestDocument) (int, error)
}

type ingestService struct {
	publisher IPublisherService
	failures  IngestFailureCounter
	batchSize int
	logger    logger.ILogger
}

// NewIngestService publishes batches on publisher. failures may be nil when
// the consumer runs elsewhere; the publisher must then not wait for acks to
// report storage failures.
func NewIngestService(publisher IPublisherService, failures IngestFailureCounter, log logger.ILogger) IIngestService {
	return &ingestService{
		publisher: publisher,
		failures:  failures,
		batchSize: vectorstore.DefaultBatchSize,
		logger:    log,
	}
}

func (s *ingestService) Ingest(ctx context.Context, collection string, docs []dto.IngestDocument) (int, error) {
	if collection == "" {
		return 0, vectorstore.ErrEmptyName
	}

	failedBefore := s.failedCount(collection)

	batches := 0
	for start := 0; start < len(docs); start += s.batchSize {
		end := min(start+s.batchSize, len(docs))
		payload, err := json.Marshal(dto.IngestBatchMessage{
			Collection: collection,
			Documents:  docs[start:end],
		})
		if err != nil {
			return batches, err
		}

		if err := s.publisher.Publish(ctx, payload); err != nil {
			return batches, fmt.Errorf("publish batch %d of %s: %w", batches, collection, err)
		}
		batches++
	}

	if dropped := s.failedCount(collection) - failedBefore; dropped > 0 {
		s.logger.Error(ingestModule, "Documents not stored", map[string]interface{}{
			"collection": collection,
			"documents":  len(docs),
			"dropped":    dropped,
		})
		return batches, fmt.Errorf("%s: %d of %d documents: %w", collection, dropped, len(docs), ErrIngestIncomplete)
	}

	s.logger.Info(ingestModule, "Documents queued", map[string]interface{}{
		"collection": collection,
		"documents":  len(docs),
		"batches":    batches,
	})
	return batches, nil
}

func (s *ingestService) failedCount(collection string) int {
	if s.failures == nil {
		return 0
	}
	return s.failures.Failed(collection)
}
