// Package rag answers questions by retrieving documents, composing a prompt and generating with a model.
package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_rag.go -package=mocks geekqa/internal/rag Retriever,Composer,Generator,Answerer

import (
	"context"
	"time"

	"geekqa/internal/llm"
	"geekqa/internal/retrieval"
)

// DocumentChunk is one retrieved passage.
type DocumentChunk = retrieval.DocumentChunk

// Answer is the model output returned to the caller.
type Answer = llm.Answer

// Retriever fetches the passages relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]DocumentChunk, error)
}

// Composer renders the prompt from retrieved passages and the question.
type Composer interface {
	Compose(chunks []DocumentChunk, question string) (string, error)
}

// Generator produces an answer from a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Answer, error)
}

// Answerer answers a single question.
type Answerer interface {
	AnswerQuestion(ctx context.Context, question string) (Answer, error)
}

// Options bounds the network stages. A zero duration leaves the stage bounded only by ctx.
type Options struct {
	RetrievalTimeout  time.Duration
	GenerationTimeout time.Duration
}
