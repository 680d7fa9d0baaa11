package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"geekqa/internal/contextutil"
	"geekqa/internal/llm"
	"geekqa/internal/metrics"
	"geekqa/internal/retrieval"
)

// Orchestrator drives one question through retrieval, composition and generation.
// It holds only immutable collaborators and is safe for concurrent use.
type Orchestrator struct {
	retriever Retriever
	composer  Composer
	generator Generator
	opts      Options
}

var _ Answerer = (*Orchestrator)(nil)

// NewOrchestrator creates an Orchestrator. All collaborators are required.
func NewOrchestrator(retriever Retriever, composer Composer, generator Generator, opts Options) (*Orchestrator, error) {
	if retriever == nil || composer == nil || generator == nil {
		return nil, fmt.Errorf("retriever, composer and generator are required")
	}
	if opts.RetrievalTimeout < 0 || opts.GenerationTimeout < 0 {
		return nil, fmt.Errorf("stage timeouts must not be negative")
	}
	return &Orchestrator{
		retriever: retriever,
		composer:  composer,
		generator: generator,
		opts:      opts,
	}, nil
}

// run carries one request through the stages.
type run struct {
	logger *slog.Logger
	stage  Stage
	start  time.Time
}

func (r *run) enter(ctx context.Context, stage Stage) {
	r.logger.DebugContext(ctx, "qa stage transition", "from", r.stage, "to", stage)
	r.stage = stage
	r.start = time.Now()
}

func (r *run) done(result string) {
	metrics.QAStageDuration.WithLabelValues(string(r.stage), result).Observe(time.Since(r.start).Seconds())
}

func (r *run) fail(ctx context.Context, reason Reason, err error) error {
	if r.stage != StageReceived {
		r.done("error")
	}
	qaErr := &Error{Stage: r.stage, Reason: reason, Err: err}

	attrs := []any{"stage", r.stage, "reason", reason, "error", err}
	if reason == ReasonConfiguration {
		r.logger.ErrorContext(ctx, "qa request failed", attrs...)
	} else {
		r.logger.WarnContext(ctx, "qa request failed", attrs...)
	}

	r.logger.DebugContext(ctx, "qa stage transition", "from", r.stage, "to", StageFailed)
	r.stage = StageFailed
	metrics.QARequestsTotal.WithLabelValues(string(reason)).Inc()
	return qaErr
}

// AnswerQuestion answers question or returns an *Error naming the failed stage and reason.
// Cancellation of ctx is passed to the collaborators; whether an in-flight remote call
// is aborted server-side depends on the backend.
func (o *Orchestrator) AnswerQuestion(ctx context.Context, question string) (Answer, error) {
	r := &run{logger: contextutil.LoggerFromContext(ctx), stage: StageReceived}

	if strings.TrimSpace(question) == "" {
		return Answer{}, r.fail(ctx, ReasonInvalidInput, errors.New("question must not be empty"))
	}

	r.enter(ctx, StageRetrieving)
	chunks, err := o.retrieve(ctx, question)
	if err != nil {
		reason := ReasonRetrievalUnavailable
		if errors.Is(err, retrieval.ErrInvalidQuestion) {
			reason = ReasonInvalidInput
		}
		return Answer{}, r.fail(ctx, reason, err)
	}
	r.done("ok")
	metrics.QARetrievedChunks.Observe(float64(len(chunks)))
	r.logger.DebugContext(ctx, "retrieval completed", "chunks", len(chunks))

	r.enter(ctx, StageComposing)
	prompt, err := o.composer.Compose(chunks, question)
	if err != nil {
		return Answer{}, r.fail(ctx, ReasonConfiguration, err)
	}
	r.done("ok")

	r.enter(ctx, StageGenerating)
	answer, err := o.generate(ctx, prompt)
	if err != nil {
		reason := ReasonGenerationUnavailable
		if errors.Is(err, llm.ErrGenerationTimeout) || errors.Is(err, context.DeadlineExceeded) {
			reason = ReasonGenerationTimeout
		}
		return Answer{}, r.fail(ctx, reason, err)
	}
	r.done("ok")

	r.enter(ctx, StageCompleted)
	metrics.QARequestsTotal.WithLabelValues(string(StageCompleted)).Inc()
	r.logger.InfoContext(ctx, "qa request completed", "chunks", len(chunks), "answer_length", len(answer.Text))
	return answer, nil
}

func (o *Orchestrator) retrieve(ctx context.Context, question string) ([]DocumentChunk, error) {
	if o.opts.RetrievalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.RetrievalTimeout)
		defer cancel()
	}
	return o.retriever.Retrieve(ctx, question)
}

func (o *Orchestrator) generate(ctx context.Context, prompt string) (Answer, error) {
	if o.opts.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.GenerationTimeout)
		defer cancel()
	}
	return o.generator.Generate(ctx, prompt)
}
