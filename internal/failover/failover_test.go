package failover

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/kwheeler/lifegit/internal/completion"
	"github.com/kwheeler/lifegit/internal/models"
	"github.com/kwheeler/lifegit/internal/planner"
)

// timeoutErr implements net.Error for network classification tests.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"rate limited", &completion.APIError{StatusCode: http.StatusTooManyRequests}, ClassRateLimited},
		{"unauthorized", &completion.APIError{StatusCode: http.StatusUnauthorized}, ClassUnauthorized},
		{"forbidden", &completion.APIError{StatusCode: http.StatusForbidden}, ClassUnauthorized},
		{"server error", &completion.APIError{StatusCode: http.StatusBadGateway}, ClassServerError},
		{"timeout", timeoutErr{}, ClassNetwork},
		{"wrapped timeout", fmt.Errorf("completion: request: %w", timeoutErr{}), ClassNetwork},
		{"parse", fmt.Errorf("%w: bad token", planner.ErrParse), ClassParsing},
		{"plan invalid", fmt.Errorf("%w: no tasks", planner.ErrPlanInvalid), ClassPlanInvalid},
		{"unknown transport", errors.New("connection reset"), ClassNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClass_Retryable(t *testing.T) {
	retryable := []Class{ClassNetwork, ClassRateLimited, ClassServerError}
	for _, c := range retryable {
		if !c.Retryable() {
			t.Errorf("%s should be retryable", c)
		}
	}
	final := []Class{ClassUnauthorized, ClassParsing, ClassPlanInvalid}
	for _, c := range final {
		if c.Retryable() {
			t.Errorf("%s should not be retryable", c)
		}
	}
}

// recordingPolicy returns a Policy whose waits are recorded, not slept.
func recordingPolicy(maxRetries int, delays *[]time.Duration) *Policy {
	p := NewPolicy(maxRetries, time.Second)
	p.wait = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return p
}

func TestRun_BackoffSequence(t *testing.T) {
	var delays []time.Duration
	p := recordingPolicy(3, &delays)

	calls := 0
	_, err := p.Run(context.Background(), func(context.Context) (*models.TaskPlan, error) {
		calls++
		return nil, timeoutErr{}
	})
	if err == nil {
		t.Fatal("Run() should fail after exhausting retries")
	}
	// Initial attempt plus three retries.
	if calls != 4 {
		t.Errorf("attempts = %d, want 4", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestDelay_Sequence(t *testing.T) {
	p := NewPolicy(4, time.Second)
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for i, w := range want {
		if got := p.delay(i + 1); got != w {
			t.Errorf("delay(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestRun_SucceedsAfterTransientFailures(t *testing.T) {
	var delays []time.Duration
	p := recordingPolicy(3, &delays)

	calls := 0
	plan, err := p.Run(context.Background(), func(context.Context) (*models.TaskPlan, error) {
		calls++
		if calls < 3 {
			return nil, &completion.APIError{StatusCode: http.StatusServiceUnavailable}
		}
		return &models.TaskPlan{ID: "pl-ok"}, nil
	})
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}
	if plan.ID != "pl-ok" {
		t.Errorf("plan ID = %q", plan.ID)
	}
	if calls != 3 {
		t.Errorf("attempts = %d, want 3", calls)
	}
}

func TestRun_NonRetryableStopsImmediately(t *testing.T) {
	var delays []time.Duration
	p := recordingPolicy(3, &delays)

	calls := 0
	_, err := p.Run(context.Background(), func(context.Context) (*models.TaskPlan, error) {
		calls++
		return nil, fmt.Errorf("%w: garbage", planner.ErrParse)
	})
	if err == nil {
		t.Fatal("Run() should surface non-retryable failures")
	}
	if calls != 1 {
		t.Errorf("attempts = %d, want 1 for non-retryable error", calls)
	}
	if len(delays) != 0 {
		t.Errorf("no backoff expected, got %v", delays)
	}
	if !errors.Is(err, planner.ErrParse) {
		t.Errorf("error %v should still wrap ErrParse", err)
	}
}

func TestRun_CancelledDuringBackoff(t *testing.T) {
	p := NewPolicy(3, time.Second)
	p.wait = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	calls := 0
	_, err := p.Run(context.Background(), func(context.Context) (*models.TaskPlan, error) {
		calls++
		return nil, timeoutErr{}
	})
	if err == nil {
		t.Fatal("Run() should fail when backoff is cancelled")
	}
	if calls != 1 {
		t.Errorf("attempts = %d, want 1 after cancellation", calls)
	}
}

func TestRunOrFallback_ExhaustedYieldsManualPlan(t *testing.T) {
	var delays []time.Duration
	p := recordingPolicy(3, &delays)

	plan := p.RunOrFallback(context.Background(), planner.Goal{Title: "Learn X"},
		func(context.Context) (*models.TaskPlan, error) {
			return nil, timeoutErr{}
		})
	if plan == nil {
		t.Fatal("RunOrFallback() must always return a plan")
	}
	if plan.IsAIGenerated {
		t.Error("fallback plan must not be marked AI-generated")
	}
	if plan.TotalDuration != models.ManualDuration {
		t.Errorf("fallback duration = %q, want %q", plan.TotalDuration, models.ManualDuration)
	}
}

func TestRunOrFallback_SuccessKeepsAIPlan(t *testing.T) {
	p := NewPolicy(3, time.Second)
	plan := p.RunOrFallback(context.Background(), planner.Goal{Title: "Learn X"},
		func(context.Context) (*models.TaskPlan, error) {
			return &models.TaskPlan{ID: "pl-ai", IsAIGenerated: true}, nil
		})
	if plan.ID != "pl-ai" || !plan.IsAIGenerated {
		t.Errorf("expected the AI plan back, got %+v", plan)
	}
}

func TestFallback_Deterministic(t *testing.T) {
	a := Fallback(planner.Goal{Title: "Learn X"})
	b := Fallback(planner.Goal{Title: "Learn X"})

	if len(a.Items) != 1 || len(b.Items) != 1 {
		t.Fatalf("fallback plans should carry one starter task, got %d and %d", len(a.Items), len(b.Items))
	}
	if a.Items[0].Title != b.Items[0].Title {
		t.Errorf("fallback task titles differ: %q vs %q", a.Items[0].Title, b.Items[0].Title)
	}
	if a.Items[0].Title == "" || a.Items[0].Description == "" {
		t.Error("fallback task must have title and description")
	}
	if a.Items[0].IsAIGenerated {
		t.Error("fallback task must not be marked AI-generated")
	}
}
