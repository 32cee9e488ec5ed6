// Package planner converts goals into validated task plans using a
// text-completion collaborator.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/kwheeler/lifegit/internal/completion"
	"github.com/kwheeler/lifegit/internal/models"
)

// Sentinel errors for the two non-retryable failure classes of plan
// generation. Both wrap detail via fmt.Errorf at the raising site.
var (
	// ErrParse means the completion response did not decode against the
	// expected schema.
	ErrParse = errors.New("planner: response is not a valid plan document")

	// ErrPlanInvalid means the decoded plan violated a content rule.
	ErrPlanInvalid = errors.New("planner: plan failed validation")
)

// Goal describes what the user wants a plan for.
type Goal struct {
	Title       string
	Description string
	Timeframe   string // optional hint, e.g. "3 months"
}

// Generator builds task plans for goals. It issues exactly one completion
// request per Generate call; retries are the caller's concern.
type Generator struct {
	client      completion.Client
	model       string
	temperature float64
	maxTokens   int
}

// New creates a Generator backed by the given completion client.
func New(client completion.Client, model string, temperature float64, maxTokens int) *Generator {
	return &Generator{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Generate produces a validated, AI-generated task plan for the goal.
// Failures are either transport/API errors from the completion client,
// ErrParse, or ErrPlanInvalid.
func (g *Generator) Generate(ctx context.Context, goal Goal) (*models.TaskPlan, error) {
	user, err := renderUserPrompt(goal)
	if err != nil {
		return nil, err
	}

	raw, err := g.client.Complete(ctx, completion.Request{
		System:      systemPrompt,
		User:        user,
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	resp, err := decodeResponse(raw)
	if err != nil {
		return nil, err
	}
	if errs := validateResponse(resp); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrPlanInvalid, strings.Join(errs, "; "))
	}
	return buildPlan(resp)
}

// buildPlan converts a validated response into a TaskPlan with fresh IDs.
// Tasks keep their response order for equal order indexes (stable sort).
func buildPlan(resp *planResponse) (*models.TaskPlan, error) {
	planID, err := models.NewID(models.PrefixPlan)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	plan := &models.TaskPlan{
		ID:            planID,
		TotalDuration: resp.TotalDuration,
		IsAIGenerated: true,
		CreatedAt:     now,
	}

	tasks := make([]taskResponse, len(resp.Tasks))
	copy(tasks, resp.Tasks)
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].OrderIndex < tasks[j].OrderIndex
	})

	for _, task := range tasks {
		id, err := models.NewID(models.PrefixTask)
		if err != nil {
			return nil, err
		}
		plan.Items = append(plan.Items, models.TaskItem{
			ID:                id,
			PlanID:            planID,
			Title:             task.Title,
			Description:       task.Description,
			EstimatedDuration: task.EstimatedDuration,
			TimeScope:         normalizeScope(task.TimeScope),
			OrderIndex:        task.OrderIndex,
			IsAIGenerated:     true,
			ExecutionTips:     task.Tips,
			CreatedAt:         now,
		})
	}
	return plan, nil
}

// normalizeScope maps a response time scope onto a known value. Unknown
// scopes degrade to daily rather than failing the whole plan.
func normalizeScope(scope string) string {
	switch strings.ToLower(strings.TrimSpace(scope)) {
	case models.ScopeDaily:
		return models.ScopeDaily
	case models.ScopeWeekly:
		return models.ScopeWeekly
	case models.ScopeMonthly:
		return models.ScopeMonthly
	default:
		if scope != "" {
			log.Printf("planner: unknown time scope %q, defaulting to daily", scope)
		}
		return models.ScopeDaily
	}
}
