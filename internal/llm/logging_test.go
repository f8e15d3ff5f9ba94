package llm

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/parlo/internal/store"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func (r *recordingRepo) QueryLLMEvents(context.Context, store.QueryOpts) ([]store.LLMEvent, error) {
	return nil, nil
}
func (r *recordingRepo) GetLLMEvent(context.Context, int64) (*store.LLMEvent, error) { return nil, nil }
func (r *recordingRepo) LLMUsageByPurpose(context.Context) ([]store.UsageStat, error) {
	return nil, nil
}
func (r *recordingRepo) LLMUsageByModel(context.Context) ([]store.ModelUsage, error) {
	return nil, nil
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{Content: []byte("Hallo!"), Usage: Usage{InputTokens: 12, OutputTokens: 3}})
	p := WithLogging(mock, "mock", repo, slog.New(slog.DiscardHandler))

	ctx := WithPurpose(context.Background(), PurposeConversation)
	_, err := p.Generate(ctx, Request{System: "tutor", Messages: []Message{{Role: RoleUser, Content: "Hallo"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if e.Provider != "mock" || e.Purpose != "conversation" || !e.Success {
		t.Fatalf("unexpected event %+v", e)
	}
	if e.InputTokens != 12 || e.OutputTokens != 3 || e.ResponseBody != "Hallo!" {
		t.Fatalf("unexpected usage or body %+v", e)
	}
	if !strings.Contains(e.RequestBody, "[system]\ntutor") || !strings.Contains(e.RequestBody, "[user]\nHallo") {
		t.Fatalf("request body not serialized: %q", e.RequestBody)
	}
}

func TestLoggingProvider_RecordsFailureAndLogs(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}})
	p := WithLogging(mock, "openai", repo, logger)

	_, err := p.Generate(WithPurpose(context.Background(), PurposeSummary), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected the provider error to pass through, got %v", err)
	}

	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Fatalf("unexpected events %+v", repo.events)
	}
	out := buf.String()
	if !strings.Contains(out, "llm request failed") || !strings.Contains(out, "purpose=summary") {
		t.Fatalf("missing failure log: %s", out)
	}
	if !strings.Contains(out, "failed to record LLM request event") {
		t.Fatalf("missing repo failure log: %s", out)
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		return &Response{}, nil
	}
}

func (slowProvider) ModelID() string { return "slow" }

func TestTimeoutProvider(t *testing.T) {
	p := WithTimeout(slowProvider{}, 20*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped deadline error, got %v", err)
	}

	if WithTimeout(slowProvider{}, 0) != (slowProvider{}) {
		t.Fatal("zero timeout should return the provider unchanged")
	}
}
