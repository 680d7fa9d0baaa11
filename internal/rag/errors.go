package rag

import (
	"errors"
	"fmt"
)

// Stage is a step of the question-answering state machine.
type Stage string

// Pipeline stages, in order. StageFailed is terminal for any error.
const (
	StageReceived   Stage = "received"
	StageRetrieving Stage = "retrieving"
	StageComposing  Stage = "composing"
	StageGenerating Stage = "generating"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// Reason classifies why a question could not be answered.
type Reason string

const (
	ReasonInvalidInput          Reason = "invalid_input"
	ReasonRetrievalUnavailable  Reason = "retrieval_unavailable"
	ReasonGenerationUnavailable Reason = "generation_unavailable"
	ReasonGenerationTimeout     Reason = "generation_timeout"
	ReasonConfiguration         Reason = "configuration_error"
)

// Sentinels matched by Error.Is, one per Reason.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrRetrievalUnavailable  = errors.New("retrieval unavailable")
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrGenerationTimeout     = errors.New("generation timed out")
	ErrConfiguration         = errors.New("configuration error")
)

var reasonSentinels = map[Reason]error{
	ReasonInvalidInput:          ErrInvalidInput,
	ReasonRetrievalUnavailable:  ErrRetrievalUnavailable,
	ReasonGenerationUnavailable: ErrGenerationUnavailable,
	ReasonGenerationTimeout:     ErrGenerationTimeout,
	ReasonConfiguration:         ErrConfiguration,
}

// Error is returned by AnswerQuestion for every failure.
type Error struct {
	// Stage is where the pipeline was when it failed.
	Stage  Stage
	Reason Reason
	// Err is the collaborator error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed: %s", e.Stage, e.Reason)
	}
	return fmt.Sprintf("%s failed: %s: %v", e.Stage, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's Reason.
func (e *Error) Is(target error) bool {
	sentinel, ok := reasonSentinels[e.Reason]
	return ok && target == sentinel
}

// Retryable reports whether the caller may retry the same question unchanged.
func (r Reason) Retryable() bool {
	switch r {
	case ReasonRetrievalUnavailable, ReasonGenerationUnavailable, ReasonGenerationTimeout:
		return true
	default:
		return false
	}
}

// ReasonOf returns the Reason carried by err, or "" if err is not an *Error.
func ReasonOf(err error) Reason {
	var qaErr *Error
	if errors.As(err, &qaErr) {
		return qaErr.Reason
	}
	return ""
}
