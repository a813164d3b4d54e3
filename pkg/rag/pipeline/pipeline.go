// Package pipeline answers one user message: crisis check, routing,
// retrieval, prompt assembly and generation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mindcare-rag-be/internal/constant"
	"mindcare-rag-be/internal/metrics"
	"mindcare-rag-be/internal/pkg/logger"
	"mindcare-rag-be/pkg/llm"
	"mindcare-rag-be/pkg/rag/format"
	"mindcare-rag-be/pkg/rag/intent"
	"mindcare-rag-be/pkg/rag/prompt"
	"mindcare-rag-be/pkg/rag/retriever"
	"mindcare-rag-be/pkg/rag/router"
	"mindcare-rag-be/pkg/rag/safety"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	moduleName = "pipeline"

	maxContextPassages = 4
	maxExamplePassages = 2
	maxSources         = 3
	maxErrorRunes      = 50

	generationTemperature = 0.7
)

var ErrNoProvider = errors.New("pipeline needs a generation provider")

// Source names a passage that informed a reply.
type Source struct {
	Source string `json:"source"`
	Title  string `json:"title"`
}

type Result struct {
	Response string
	Intent   intent.Intent
	Sources  []Source
	IsCrisis bool
	// FirstMessage is set on the first non-crisis reply of a conversation.
	FirstMessage bool
	// Classification tells which strategy decided the intent. Zero on crisis.
	Classification intent.Classification
}

// Dependencies are the collaborators of a Pipeline. Safety, Formatter and
// Builder get defaults when nil; Router, Retriever and LLM are required.
type Dependencies struct {
	Safety    *safety.Filter
	Router    *router.Router
	Retriever *retriever.Retriever
	Formatter *format.Formatter
	Builder   *prompt.Builder
	LLM       llm.LLMProvider
	Logger    logger.ILogger
	Metrics   *metrics.Metrics
}

// Pipeline is shared by every session; per-session state lives in Conversation.
type Pipeline struct {
	safety      *safety.Filter
	router      *router.Router
	retriever   *retriever.Retriever
	formatter   *format.Formatter
	builder     *prompt.Builder
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

func New(d Dependencies) (*Pipeline, error) {
	if d.LLM == nil {
		return nil, ErrNoProvider
	}
	if d.Router == nil || d.Retriever == nil {
		return nil, errors.New("pipeline needs a router and a retriever")
	}

	p := &Pipeline{
		safety:      d.Safety,
		router:      d.Router,
		retriever:   d.Retriever,
		formatter:   d.Formatter,
		builder:     d.Builder,
		llmProvider: d.LLM,
		logger:      d.Logger,
		metrics:     d.Metrics,
		tracer:      otel.Tracer("mindcare-rag-be/pipeline"),
	}
	if p.safety == nil {
		p.safety = safety.NewFilter(nil, "")
	}
	if p.formatter == nil {
		p.formatter = format.NewFormatter(d.Retriever.Config().MaxContextTokens)
	}
	if p.builder == nil {
		p.builder = prompt.NewBuilder("")
	}
	if p.logger == nil {
		p.logger = logger.NewNopLogger()
	}
	if p.metrics == nil {
		p.metrics = metrics.NewNop()
	}
	return p, nil
}

// Process answers message within conv. It never fails: a generation error
// becomes an apologetic reply that is still stored in the history.
func (p *Pipeline) Process(ctx context.Context, conv *Conversation, message string) Result {
	ctx, span := p.tracer.Start(ctx, "pipeline.process")
	defer span.End()

	start := time.Now()
	defer func() { p.metrics.PipelineDuration.Observe(time.Since(start).Seconds()) }()

	conv.mu.Lock()
	defer conv.mu.Unlock()

	if isCrisis, reply := p.safety.CheckCrisis(message); isCrisis {
		p.metrics.CrisisDetectionsTotal.Inc()
		p.metrics.ChatRequestsTotal.WithLabelValues(intent.Crisis.String()).Inc()
		span.SetAttributes(
			attribute.String("intent", intent.Crisis.String()),
			attribute.Bool("crisis", true),
		)
		p.logger.Warn(moduleName, "Crisis language detected", nil)

		return Result{
			Response: reply,
			Intent:   intent.Crisis,
			Sources:  []Source{},
			IsCrisis: true,
		}
	}

	classification := p.router.RouteDetailed(ctx, message)
	collections := p.router.Table().Collections(classification.Intent)
	if classification.Fallback {
		p.metrics.ClassificationFallback.Inc()
	}
	p.metrics.ChatRequestsTotal.WithLabelValues(classification.Intent.String()).Inc()
	span.SetAttributes(
		attribute.String("intent", classification.Intent.String()),
		attribute.String("intent.strategy", classification.Strategy),
		attribute.Bool("crisis", false),
		attribute.StringSlice("collections", collections),
	)

	retrieved := p.retriever.RetrieveWithExamples(ctx, message, collections)

	promptText := p.builder.Build(prompt.Input{
		Context:  p.formatter.FormatContext(head(retrieved.Context, maxContextPassages)),
		Examples: p.formatter.FormatExamples(head(retrieved.Examples, maxExamplePassages)),
		History:  conv.history,
		Query:    message,
	})

	reply, err := p.llmProvider.Generate(ctx, promptText, llm.WithTemperature(generationTemperature))
	if err != nil {
		p.metrics.GenerationFailures.Inc()
		span.RecordError(err)
		p.logger.Error(moduleName, "Generation failed", map[string]interface{}{
			"intent": classification.Intent.String(),
			"error":  err,
		})
		reply = fmt.Sprintf(constant.GenerationFailureReply, truncate(err.Error(), maxErrorRunes))
	}

	conv.history = append(conv.history, Exchange{User: message, Assistant: reply})

	sources := make([]Source, 0, maxSources)
	for _, passage := range head(retrieved.Context, maxSources) {
		sources = append(sources, Source{
			Source: passage.SourceCollection,
			Title:  passage.Metadata["title"],
		})
	}

	first := conv.firstMessage
	conv.firstMessage = false

	p.logger.Info(moduleName, "Message processed", map[string]interface{}{
		"intent":      classification.Intent.String(),
		"strategy":    classification.Strategy,
		"collections": collections,
		"context":     len(retrieved.Context),
		"examples":    len(retrieved.Examples),
	})

	return Result{
		Response:       reply,
		Intent:         classification.Intent,
		Sources:        sources,
		IsCrisis:       false,
		FirstMessage:   first,
		Classification: classification,
	}
}

// Chat returns only the reply text.
func (p *Pipeline) Chat(ctx context.Context, conv *Conversation, message string) string {
	return p.Process(ctx, conv, message).Response
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
