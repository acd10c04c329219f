// Package llm exposes the language-model completion capability behind a
// narrow interface so pipeline stages can be tested without network calls.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Completer is a one-shot free-text completion capability. Implementations
// may be slow (seconds) and may fail; callers must tolerate both.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// FailureKind classifies a completion failure so callers can pattern-match
// instead of inspecting sentinel strings.
type FailureKind string

const (
	FailureTimeout        FailureKind = "timeout"
	FailureMalformedInput FailureKind = "malformed_input"
	FailureUpstream       FailureKind = "upstream_error"
)

// CallError is a typed completion failure.
type CallError struct {
	Kind FailureKind
	Err  error
}

func (e *CallError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("model call failed: %s", e.Kind)
	}
	return fmt.Sprintf("model call failed (%s): %v", e.Kind, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from err, defaulting to upstream_error.
func KindOf(err error) FailureKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return FailureUpstream
}

func classify(ctx context.Context, err error) *CallError {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &CallError{Kind: FailureTimeout, Err: err}
	default:
		return &CallError{Kind: FailureUpstream, Err: err}
	}
}

func validatePrompt(prompt string) *CallError {
	if strings.TrimSpace(prompt) == "" {
		return &CallError{Kind: FailureMalformedInput, Err: errors.New("empty prompt")}
	}
	return nil
}
