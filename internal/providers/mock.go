package providers

import (
	"context"
	"encoding/json"
	"fmt"
)

// Mock is a deterministic reviewer for tests and dry runs. It echoes each
// task back as an info finding without calling any external service.
type Mock struct {
	// Err, when set, is returned from Review to simulate failures.
	Err error
}

// NewMock creates a mock reviewer.
func NewMock() *Mock {
	return &Mock{}
}

// Name returns the provider name.
func (m *Mock) Name() string { return "mock" }

// Review converts each task into a canned finding object.
func (m *Mock) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	if m.Err != nil {
		return ReviewResponse{}, m.Err
	}
	if err := ctx.Err(); err != nil {
		return ReviewResponse{}, err
	}
	raw := make([]map[string]any, 0, len(req.Tasks))
	for _, task := range req.Tasks {
		raw = append(raw, map[string]any{
			"rule":     task.RuleID,
			"area":     "review",
			"severity": "info",
			"file":     task.File,
			"locator":  task.Locator,
			"finding":  []string{fmt.Sprintf("mock review of %s %s", task.File, task.Locator)},
			"why":      "Deferred rule evaluated by mock reviewer.",
		})
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return ReviewResponse{}, fmt.Errorf("marshaling mock response: %w", err)
	}
	return ReviewResponse{Content: string(data)}, nil
}
