package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/diffgate/internal/engine"
)

func sampleTasks() []engine.LLMTask {
	return []engine.LLMTask{
		{RuleID: "design.single-responsibility", File: "a.ts", Locator: "L3", Snippet: "class God {"},
		{RuleID: "design.single-responsibility", File: "b.ts", Locator: "L7", Snippet: "class Other {"},
	}
}

func TestNew(t *testing.T) {
	r, err := New("mock")
	if err != nil {
		t.Fatal(err)
	}
	if r.Name() != "mock" {
		t.Errorf("Name() = %q", r.Name())
	}
	if _, err := New("anthropic"); err == nil {
		t.Error("unknown provider should error")
	}
}

func TestMockReview(t *testing.T) {
	resp, err := NewMock().Review(context.Background(), ReviewRequest{Tasks: sampleTasks()})
	if err != nil {
		t.Fatal(err)
	}
	raw := engine.ParseRawFindings([]byte(resp.Content))
	if len(raw) != 2 {
		t.Fatalf("got %d raw findings, want 2", len(raw))
	}
}

func TestMockReview_Deterministic(t *testing.T) {
	a, err := NewMock().Review(context.Background(), ReviewRequest{Tasks: sampleTasks()})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewMock().Review(context.Background(), ReviewRequest{Tasks: sampleTasks()})
	if err != nil {
		t.Fatal(err)
	}
	if a.Content != b.Content {
		t.Error("mock responses must be byte-identical across runs")
	}
}

func TestCollectFindings(t *testing.T) {
	findings, err := CollectFindings(context.Background(), NewMock(), sampleTasks())
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(findings))
	}
	for _, f := range findings {
		if f.Severity != engine.SeverityInfo {
			t.Errorf("mock finding severity = %q, want info", f.Severity)
		}
		if f.Fingerprint == "" {
			t.Error("normalized finding must carry a fingerprint")
		}
	}
}

func TestCollectFindings_NoTasks(t *testing.T) {
	findings, err := CollectFindings(context.Background(), NewMock(), nil)
	if err != nil || findings != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", findings, err)
	}
}

// scriptedReviewer returns the errors in errs in order, then content.
type scriptedReviewer struct {
	content string
	errs    []error
	calls   int
}

func (s *scriptedReviewer) Name() string { return "scripted" }

func (s *scriptedReviewer) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	idx := s.calls
	s.calls++
	if idx < len(s.errs) && s.errs[idx] != nil {
		return ReviewResponse{}, s.errs[idx]
	}
	return ReviewResponse{Content: s.content}, nil
}

func TestCollectFindings_NormalizesReviewerContent(t *testing.T) {
	r := &scriptedReviewer{content: `[{"rule":"x.y","file":"a.ts","locator":"L1","severity":"blocker"}]`}
	findings, err := CollectFindings(context.Background(), r, sampleTasks())
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if findings[0].Severity != engine.SeverityMinor {
		t.Errorf("unrecognized severity should coerce to minor, got %q", findings[0].Severity)
	}
	if findings[0].Fingerprint == "" {
		t.Error("missing fingerprint must be filled in")
	}
}

func TestCollectFindings_AuthErrorNotRetried(t *testing.T) {
	r := &scriptedReviewer{errs: []error{&authError{message: "bad key"}}}
	_, err := CollectFindings(context.Background(), r, sampleTasks())
	if !IsAuthError(err) {
		t.Errorf("err = %v, want auth error through the wrap", err)
	}
	if r.calls != 1 {
		t.Errorf("auth errors must not be retried, got %d calls", r.calls)
	}
}

func TestCollectFindings_RateLimitHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMock()
	m.Err = &rateLimitError{}
	if _, err := CollectFindings(ctx, m, sampleTasks()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled from the retry loop", err)
	}
}

func TestCollectFindings_ReviewerError(t *testing.T) {
	m := NewMock()
	m.Err = errors.New("boom")
	if _, err := CollectFindings(context.Background(), m, sampleTasks()); err == nil {
		t.Error("reviewer error should propagate")
	}
}

func TestRetryWithBackoff_NoRetryOnAuthError(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), 3, func() error {
		calls++
		return &authError{message: "bad key"}
	})
	if !IsAuthError(err) {
		t.Errorf("err = %v, want auth error", err)
	}
	if calls != 1 {
		t.Errorf("auth errors must not be retried, got %d calls", calls)
	}
}

func TestRetryWithBackoff_RetriesRateLimit(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), 2, func() error {
		calls++
		if calls < 2 {
			return &rateLimitError{}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if calls != 2 {
		t.Errorf("got %d calls, want 2", calls)
	}
}

func TestRetryWithBackoff_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retryWithBackoff(ctx, 3, func() error {
		return &rateLimitError{}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
