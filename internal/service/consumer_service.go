package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"mindcare-rag-be/internal/dto"
	"mindcare-rag-be/internal/metrics"
	"mindcare-rag-be/internal/pkg/logger"
	"mindcare-rag-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	consumerModule = "IngestConsumer"

	maxStoreAttempts = 3
)

type IConsumerService interface {
	IngestFailureCounter
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	store     vectorstore.Store
	logger    logger.ILogger
	metrics   *metrics.Metrics
	backoff   time.Duration

	mu     sync.Mutex
	failed map[string]int
}

// NewConsumerService embeds and stores the batches published on topicName.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	store vectorstore.Store,
	log logger.ILogger,
	m *metrics.Metrics,
) IConsumerService {
	if m == nil {
		m = metrics.NewNop()
	}
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		store:     store,
		logger:    log,
		metrics:   m,
		backoff:   500 * time.Millisecond,
		failed:    map[string]int{},
	}
}

// Failed returns how many documents of collection were dropped since start.
func (cs *consumerService) Failed(collection string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.failed[collection]
}

func (cs *consumerService) recordFailure(collection string, documents int) {
	cs.mu.Lock()
	cs.failed[collection] += documents
	cs.mu.Unlock()
	cs.metrics.IngestFailuresTotal.WithLabelValues(collection).Add(float64(documents))
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: a batch that still fails after retries is
// recorded before the ack, so a publisher blocked on the ack sees it in Failed.
// A rerun of the ingest upserts it.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.IngestBatchMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal batch", map[string]interface{}{"error": err.Error()})
		return
	}
	if len(payload.Documents) == 0 {
		return
	}

	texts := make([]string, len(payload.Documents))
	metadatas := make([]map[string]string, len(payload.Documents))
	ids := make([]string, len(payload.Documents))
	for i, doc := range payload.Documents {
		texts[i] = doc.Text
		metadatas[i] = doc.Metadata
		ids[i] = doc.Id
	}

	var err error
	for attempt := 1; attempt <= maxStoreAttempts; attempt++ {
		if err = cs.store.AddDocuments(ctx, payload.Collection, texts, metadatas, ids); err == nil {
			break
		}
		cs.logger.Warn(consumerModule, "Store attempt failed", map[string]interface{}{
			"collection": payload.Collection,
			"attempt":    attempt,
			"error":      err.Error(),
		})
		if attempt < maxStoreAttempts {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				attempt = maxStoreAttempts
			case <-time.After(cs.backoff * time.Duration(attempt)):
			}
		}
	}

	if err != nil {
		cs.recordFailure(payload.Collection, len(texts))
		cs.logger.Error(consumerModule, "Batch dropped", map[string]interface{}{
			"collection": payload.Collection,
			"documents":  len(texts),
			"error":      err.Error(),
		})
		return
	}

	cs.metrics.IngestedChunksTotal.WithLabelValues(payload.Collection).Add(float64(len(texts)))
	cs.logger.Info(consumerModule, "Batch stored", map[string]interface{}{
		"collection": payload.Collection,
		"documents":  len(texts),
	})
}
