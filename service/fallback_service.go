package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tieubaoca/docchat-be/types"
)

// ChatModel is one completion backend candidate.
type ChatModel interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is the payload sent to each candidate unchanged.
type CompletionRequest struct {
	Messages    []types.Message
	MaxTokens   int
	Temperature float32
}

// TerminalPolicy decides what happens when every candidate has failed.
type TerminalPolicy int

const (
	// TerminalError propagates the last candidate's error.
	TerminalError TerminalPolicy = iota
	// TerminalEmpty swallows the failure and returns an empty result,
	// for features where a missing answer is acceptable.
	TerminalEmpty
)

// FallbackInvoker tries an ordered list of candidate models, each with its
// own timeout, and returns the first well-formed response. A failed
// candidate is never retried; the next one is tried instead.
type FallbackInvoker struct {
	models []ChatModel
	log    *logrus.Entry
}

func NewFallbackInvoker(models []ChatModel) *FallbackInvoker {
	return &FallbackInvoker{
		models: models,
		log:    logrus.WithField("component", "fallback_invoker"),
	}
}

type completionResult struct {
	content string
	err     error
}

// Invoke runs the fallback sequence. perAttemptTimeout bounds each
// candidate independently; the race is explicit because inference
// endpoints can hang past any transport-level timeout on cold start.
func (f *FallbackInvoker) Invoke(ctx context.Context, req CompletionRequest, perAttemptTimeout time.Duration, policy TerminalPolicy) (string, error) {
	if len(f.models) == 0 {
		return f.terminal(fmt.Errorf("no candidate models configured"), policy)
	}

	var lastErr error
	for _, model := range f.models {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		content, err := f.attempt(ctx, model, req, perAttemptTimeout)
		if err == nil {
			return content, nil
		}
		lastErr = err
		f.log.WithField("model", model.Name()).Warnf("candidate failed, trying next: %v", err)
	}

	return f.terminal(lastErr, policy)
}

func (f *FallbackInvoker) attempt(ctx context.Context, model ChatModel, req CompletionRequest, timeout time.Duration) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultChan := make(chan completionResult, 1)
	go func() {
		content, err := model.Complete(attemptCtx, req)
		resultChan <- completionResult{content: content, err: err}
	}()

	select {
	case result := <-resultChan:
		if result.err != nil {
			return "", result.err
		}
		if result.content == "" {
			return "", fmt.Errorf("model %s returned an empty response", model.Name())
		}
		return result.content, nil
	case <-attemptCtx.Done():
		return "", fmt.Errorf("model %s timed out after %s: %w", model.Name(), timeout, attemptCtx.Err())
	}
}

func (f *FallbackInvoker) terminal(lastErr error, policy TerminalPolicy) (string, error) {
	if policy == TerminalEmpty {
		f.log.Warnf("all candidates failed, returning empty result: %v", lastErr)
		return "", nil
	}
	return "", fmt.Errorf("%w: %v", types.ErrAllModelsFailed, lastErr)
}
