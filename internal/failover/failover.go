// Package failover classifies plan-generation failures, retries the
// transient ones with exponential backoff, and builds the manual fallback
// plan when AI generation cannot succeed.
package failover

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/kwheeler/lifegit/internal/completion"
	"github.com/kwheeler/lifegit/internal/models"
	"github.com/kwheeler/lifegit/internal/planner"
)

// Class is the failure classification of a plan-generation error.
type Class string

const (
	ClassNetwork      Class = "network"
	ClassRateLimited  Class = "rate_limited"
	ClassServerError  Class = "server_error"
	ClassUnauthorized Class = "unauthorized"
	ClassParsing      Class = "parsing"
	ClassPlanInvalid  Class = "plan_invalid"
)

// Retryable reports whether a failure class is worth another attempt.
func (c Class) Retryable() bool {
	switch c {
	case ClassNetwork, ClassRateLimited, ClassServerError:
		return true
	}
	return false
}

// Classify maps an error from the generation pipeline onto a Class.
// Transport-level failures that carry no HTTP status are treated as network
// errors, which keeps them retryable.
func Classify(err error) Class {
	if errors.Is(err, planner.ErrParse) {
		return ClassParsing
	}
	if errors.Is(err, planner.ErrPlanInvalid) {
		return ClassPlanInvalid
	}
	var apiErr *completion.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return ClassRateLimited
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return ClassUnauthorized
		default:
			return ClassServerError
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassNetwork
	}
	return ClassNetwork
}

const (
	defaultMaxRetries = 3
	defaultBase       = time.Second
)

// Policy retries transient plan-generation failures with exponential
// backoff. The retry counter is per Run call; a fresh invocation always
// starts from zero.
type Policy struct {
	MaxRetries int
	Base       time.Duration

	// wait blocks for d or until ctx is done. Tests swap it out to record
	// delays without sleeping.
	wait func(ctx context.Context, d time.Duration) error
}

// NewPolicy creates a Policy; zero values fall back to 3 retries and a
// one-second base delay.
func NewPolicy(maxRetries int, base time.Duration) *Policy {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if base <= 0 {
		base = defaultBase
	}
	return &Policy{MaxRetries: maxRetries, Base: base, wait: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// delay returns the backoff before the given 1-based retry:
// base × 2^(retry−1), so 1s, 2s, 4s with the defaults.
func (p *Policy) delay(retry int) time.Duration {
	return p.Base << (retry - 1)
}

// Run invokes attempt until it succeeds, a non-retryable failure occurs, or
// MaxRetries retries are exhausted (so up to MaxRetries+1 calls in total).
// The last error stays wrapped so callers can classify it again.
func (p *Policy) Run(ctx context.Context, attempt func(context.Context) (*models.TaskPlan, error)) (*models.TaskPlan, error) {
	var lastErr error
	for retry := 0; ; retry++ {
		plan, err := attempt(ctx)
		if err == nil {
			return plan, nil
		}
		lastErr = err

		class := Classify(err)
		if !class.Retryable() {
			return nil, fmt.Errorf("failover: %s failure: %w", class, err)
		}
		if retry == p.MaxRetries {
			break
		}

		log.Printf("failover: attempt %d failed (%s), retry %d/%d in %s",
			retry+1, class, retry+1, p.MaxRetries, p.delay(retry+1))
		if waitErr := p.wait(ctx, p.delay(retry+1)); waitErr != nil {
			return nil, fmt.Errorf("failover: cancelled during backoff: %w", lastErr)
		}
	}
	return nil, fmt.Errorf("failover: %d retries exhausted: %w", p.MaxRetries, lastErr)
}

// RunOrFallback runs the attempt with retries and, when generation cannot
// succeed, absorbs the failure into the deterministic manual fallback plan.
// It never returns an error: branch creation must not fail because of AI.
func (p *Policy) RunOrFallback(ctx context.Context, goal planner.Goal, attempt func(context.Context) (*models.TaskPlan, error)) *models.TaskPlan {
	plan, err := p.Run(ctx, attempt)
	if err == nil {
		return plan
	}
	log.Printf("failover: installing manual fallback plan for %q: %v", goal.Title, err)
	return Fallback(goal)
}

// Fallback builds the manual plan installed when AI generation is
// unavailable or invalid. It is deterministic apart from row IDs and can
// not fail: ID generation only errs when the OS entropy source is broken,
// and then empty IDs still yield a usable in-memory plan for the caller to
// persist with its own IDs.
func Fallback(goal planner.Goal) *models.TaskPlan {
	planID, _ := models.NewID(models.PrefixPlan)
	taskID, _ := models.NewID(models.PrefixTask)
	now := time.Now()

	return &models.TaskPlan{
		ID:            planID,
		TotalDuration: models.ManualDuration,
		IsAIGenerated: false,
		CreatedAt:     now,
		Items: []models.TaskItem{
			{
				ID:                taskID,
				PlanID:            planID,
				Title:             fmt.Sprintf("Outline first steps for %q", goal.Title),
				Description:       "AI planning was unavailable. Break this goal into your own tasks and add them to the plan.",
				EstimatedDuration: 30,
				TimeScope:         models.ScopeDaily,
				OrderIndex:        1,
				IsAIGenerated:     false,
				CreatedAt:         now,
			},
		},
	}
}
