package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"mindcare-rag-be/internal/dto"
	"mindcare-rag-be/internal/metrics"
	"mindcare-rag-be/internal/pkg/logger"
	"mindcare-rag-be/pkg/vectorstore"
	"mindcare-rag-be/pkg/vectorstore/vectorstoretest"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *capturePublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func docs(n int) []dto.IngestDocument {
	out := make([]dto.IngestDocument, n)
	for i := range out {
		out[i] = dto.IngestDocument{Id: fmt.Sprintf("doc_%d", i), Text: "text"}
	}
	return out
}

func TestIngestService_Batches(t *testing.T) {
	tests := []struct {
		name    string
		docs    int
		batches int
	}{
		{name: "empty", docs: 0, batches: 0},
		{name: "single partial batch", docs: 3, batches: 1},
		{name: "exact batch", docs: vectorstore.DefaultBatchSize, batches: 1},
		{name: "spills over", docs: vectorstore.DefaultBatchSize*2 + 1, batches: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &capturePublisher{}
			svc := NewIngestService(pub, nil, logger.NewNopLogger())

			n, err := svc.Ingest(context.Background(), "cbt_bible", docs(tt.docs))
			require.NoError(t, err)
			assert.Equal(t, tt.batches, n)
			require.Len(t, pub.payloads, tt.batches)

			total := 0
			for _, p := range pub.payloads {
				var msg dto.IngestBatchMessage
				require.NoError(t, json.Unmarshal(p, &msg))
				assert.Equal(t, "cbt_bible", msg.Collection)
				total += len(msg.Documents)
			}
			assert.Equal(t, tt.docs, total)
		})
	}
}

func TestIngestService_Errors(t *testing.T) {
	svc := NewIngestService(&capturePublisher{}, nil, logger.NewNopLogger())
	_, err := svc.Ingest(context.Background(), "", docs(1))
	assert.ErrorIs(t, err, vectorstore.ErrEmptyName)

	failing := NewIngestService(&capturePublisher{err: errors.New("closed")}, nil, logger.NewNopLogger())
	_, err = failing.Ingest(context.Background(), "cbt_bible", docs(1))
	assert.Error(t, err)
}

func TestConsumerService_StoresPublishedBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	defer pubSub.Close()

	log := logger.NewNopLogger()
	m := metrics.NewNop()
	store := vectorstore.NewManager(vectorstore.NewMemoryBackend(), &vectorstoretest.HashEmbedder{}, log)

	consumer := NewConsumerService(pubSub, "ingest", store, log, m)
	require.NoError(t, consumer.Consume(ctx))

	ingest := NewIngestService(NewPublisherService("ingest", pubSub), consumer, log)
	input := []dto.IngestDocument{
		{Id: "counseling_0", Text: "User: I feel low\n\nCounselor: Tell me more", Metadata: map[string]string{"source": "counseling"}},
		{Id: "counseling_1", Text: "User: I can't sleep\n\nCounselor: Let's look at your evenings"},
	}
	_, err := ingest.Ingest(ctx, CounselingCollection, input)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return store.Count(ctx, CounselingCollection) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.IngestedChunksTotal.WithLabelValues(CounselingCollection)))
}

func TestConsumerService_CountsFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	defer pubSub.Close()

	log := logger.NewNopLogger()
	m := metrics.NewNop()
	store := vectorstore.NewManager(vectorstore.NewMemoryBackend(), &vectorstoretest.HashEmbedder{Err: errors.New("quota")}, log)

	consumer := NewConsumerService(pubSub, "ingest", store, log, m).(*consumerService)
	consumer.backoff = time.Millisecond
	require.NoError(t, consumer.Consume(ctx))

	ingest := NewIngestService(NewPublisherService("ingest", pubSub), consumer, log)
	batches, err := ingest.Ingest(ctx, "dbt_manual", docs(3))
	require.ErrorIs(t, err, ErrIngestIncomplete)
	assert.Equal(t, 1, batches)
	assert.Contains(t, err.Error(), "3 of 3 documents")

	assert.Equal(t, 3, consumer.Failed("dbt_manual"))
	assert.Zero(t, consumer.Failed(CounselingCollection))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.IngestFailuresTotal.WithLabelValues("dbt_manual")))
	assert.Zero(t, store.Count(ctx, "dbt_manual"))
}

func TestIngestService_ReportsOnlyNewFailures(t *testing.T) {
	counter := &stubFailureCounter{failed: map[string]int{"cbt_bible": 5}}
	pub := &countingPublisher{onPublish: func() {}}
	svc := NewIngestService(pub, counter, logger.NewNopLogger())

	_, err := svc.Ingest(context.Background(), "cbt_bible", docs(2))
	require.NoError(t, err)

	pub.onPublish = func() { counter.add("cbt_bible", 1) }
	_, err = svc.Ingest(context.Background(), "cbt_bible", docs(2))
	require.ErrorIs(t, err, ErrIngestIncomplete)
	assert.Contains(t, err.Error(), "1 of 2 documents")
}

type stubFailureCounter struct {
	mu     sync.Mutex
	failed map[string]int
}

func (c *stubFailureCounter) Failed(collection string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed[collection]
}

func (c *stubFailureCounter) add(collection string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed[collection] += n
}

type countingPublisher struct {
	onPublish func()
}

func (p *countingPublisher) Publish(_ context.Context, _ []byte) error {
	p.onPublish()
	return nil
}

func TestLoadTextSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dbt_manual"), 0o755))

	para := strings.Repeat("Notice the urge and name it. ", 30)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dbt_manual", "skills.txt"), []byte(para), 0o644))

	out, err := LoadTextSources(dir, "dbt_manual")
	require.NoError(t, err)
	require.Greater(t, len(out), 1)

	for i, d := range out {
		assert.LessOrEqual(t, len([]rune(d.Text)), 500)
		assert.Equal(t, "dbt_manual", d.Metadata["source"])
		assert.Equal(t, "skills", d.Metadata["title"])
		assert.Equal(t, fmt.Sprintf("dbt_manual_%d", i), d.Id)
		assert.Equal(t, strconv.Itoa(i), d.Metadata["chunk_idx"])
	}

	missing, err := LoadTextSources(dir, "act_simple")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestLoadNIMHArticles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gad.txt"), []byte("TITLE: GAD\nWorry that persists."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sleep.txt"), []byte("Sleep matters."), 0o644))

	metaPath := filepath.Join(dir, "meta.json")
	require.NoError(t, os.WriteFile(metaPath, []byte(`[
		{"filename": "gad.txt", "title": "Generalized Anxiety Disorder", "topic": "anxiety",
		 "tags": {"disorders": ["Anxiety", "Stress"]}}
	]`), 0o644))

	tests := []struct {
		name      string
		meta      string
		wantTitle string
		wantTags  string
	}{
		{name: "with metadata", meta: metaPath, wantTitle: "Generalized Anxiety Disorder", wantTags: "Anxiety, Stress"},
		{name: "metadata file missing", meta: filepath.Join(dir, "absent.json"), wantTitle: "gad", wantTags: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := LoadNIMHArticles(dir, tt.meta)
			require.NoError(t, err)
			require.Len(t, out, 2)

			assert.Equal(t, "nimh_gad", out[0].Id)
			assert.Equal(t, "TITLE: GAD\nWorry that persists.", out[0].Text)
			assert.Equal(t, tt.wantTitle, out[0].Metadata["title"])
			assert.Equal(t, tt.wantTags, out[0].Metadata["disorders"])
			assert.Equal(t, "nimh", out[0].Metadata["source"])
			assert.Equal(t, "sleep", out[1].Metadata["title"])
		})
	}

	t.Run("bad metadata", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
		_, err := LoadNIMHArticles(dir, bad)
		assert.Error(t, err)
	})
}

func TestLoadNIMHArticles_WindowsLongArticles(t *testing.T) {
	dir := t.TempDir()
	long := strings.TrimSpace(strings.Repeat("Worry can feel constant. ", 1500))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "long.txt"), []byte(long), 0o644))

	out, err := LoadNIMHArticles(dir, "")
	require.NoError(t, err)
	require.Greater(t, len(out), 1)

	for i, d := range out {
		assert.Equal(t, fmt.Sprintf("nimh_long_%d", i), d.Id)
		assert.Equal(t, strconv.Itoa(i), d.Metadata["chunk_idx"])
		assert.Equal(t, "long", d.Metadata["title"])
		assert.NotEmpty(t, d.Text)
	}
	assert.True(t, strings.HasPrefix(long, out[0].Text))
	assert.True(t, strings.HasSuffix(long, out[len(out)-1].Text))
}

func TestReadCounselingCSV(t *testing.T) {
	input := "Context,Response\n" +
		"\"I feel, well, sad\",It sounds heavy\n" +
		",missing context\n" +
		"Can't focus,\"Let's break it down\"\n"

	out, err := ReadCounselingCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "counseling_0", out[0].Id)
	assert.Equal(t, "User: I feel, well, sad\n\nCounselor: It sounds heavy", out[0].Text)
	assert.Equal(t, "counseling_2", out[1].Id)
	assert.Equal(t, "2", out[1].Metadata["idx"])

	_, err = ReadCounselingCSV(strings.NewReader("Question,Answer\na,b\n"))
	assert.Error(t, err)
}

func TestChunkConfigFor(t *testing.T) {
	assert.Equal(t, ChunkConfig{Size: 1500, Overlap: 200, Strategy: ChunkRecursive}, ChunkConfigFor("cbt_bible"))
	assert.Equal(t, ChunkFullDocument, ChunkConfigFor(NIMHCollection).Strategy)
	assert.Equal(t, defaultChunkConfig, ChunkConfigFor("unknown"))
	assert.Equal(t, []string{"act_simple", "cbt_bible", "dbt_manual", "mind_over_mood"}, BookCollections())
}
