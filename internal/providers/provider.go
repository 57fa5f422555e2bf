package providers

import (
	"context"
	"fmt"

	"github.com/dshills/diffgate/internal/engine"
)

// ReviewRequest contains the deferred tasks sent to an external reviewer.
type ReviewRequest struct {
	Tasks     []engine.LLMTask
	MaxTokens int
}

// ReviewResponse contains the raw response from a reviewer. Content is
// expected to be a JSON array of finding objects; the engine normalizer
// handles anything malformed.
type ReviewResponse struct {
	Content    string
	TokensUsed int
}

// Reviewer is the external review abstraction.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error)
	Name() string
}

// New creates a reviewer by name.
func New(provider string) (Reviewer, error) {
	switch provider {
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

const maxReviewRetries = 3

// CollectFindings runs the tasks through a reviewer, retrying rate-limited
// calls with backoff, and parses the raw response into normalized findings.
// Responses that fail to parse yield no findings rather than an error.
func CollectFindings(ctx context.Context, r Reviewer, tasks []engine.LLMTask) ([]engine.Finding, error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	var resp ReviewResponse
	err := retryWithBackoff(ctx, maxReviewRetries, func() error {
		var reviewErr error
		resp, reviewErr = r.Review(ctx, ReviewRequest{Tasks: tasks})
		return reviewErr
	})
	if err != nil {
		return nil, fmt.Errorf("reviewer %s: %w", r.Name(), err)
	}
	return engine.ParseRawFindings([]byte(resp.Content)), nil
}
