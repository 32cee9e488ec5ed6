package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kwheeler/lifegit/internal/completion"
	"github.com/kwheeler/lifegit/internal/models"
)

// stubClient returns a canned response or error and records calls.
type stubClient struct {
	response string
	err      error
	calls    int
	lastReq  completion.Request
}

func (s *stubClient) Complete(_ context.Context, req completion.Request) (string, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

const validResponse = `{
  "totalDuration": "2 weeks",
  "tasks": [
    {"title": "warm up", "description": "stretch", "timeScope": "daily", "estimatedDuration": 10, "orderIndex": 2},
    {"title": "read basics", "description": "chapter 1", "timeScope": "weekly", "estimatedDuration": 60, "orderIndex": 1}
  ]
}`

func TestGenerate_OrdersByOrderIndex(t *testing.T) {
	client := &stubClient{response: validResponse}
	gen := New(client, "gpt-4o-mini", 0.7, 1024)

	plan, err := gen.Generate(context.Background(), Goal{Title: "Learn Go", Description: "weekend project"})
	if err != nil {
		t.Fatalf("Generate(): %v", err)
	}
	if client.calls != 1 {
		t.Errorf("completion calls = %d, want exactly 1", client.calls)
	}
	if !plan.IsAIGenerated {
		t.Error("plan should be marked AI-generated")
	}
	if plan.TotalDuration != "2 weeks" {
		t.Errorf("totalDuration = %q", plan.TotalDuration)
	}
	if len(plan.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(plan.Items))
	}
	if plan.Items[0].Title != "read basics" || plan.Items[1].Title != "warm up" {
		t.Errorf("items not ordered by orderIndex: %q, %q", plan.Items[0].Title, plan.Items[1].Title)
	}
	for _, item := range plan.Items {
		if !item.IsAIGenerated {
			t.Errorf("item %q should be marked AI-generated", item.Title)
		}
		if item.PlanID != plan.ID {
			t.Errorf("item %q not linked to plan", item.Title)
		}
	}
}

func TestGenerate_UnicodeDurationAndSingleTask(t *testing.T) {
	client := &stubClient{response: `{"totalDuration":"2周","tasks":[{"title":"t","description":"d","timeScope":"daily","estimatedDuration":60,"orderIndex":1}]}`}
	gen := New(client, "m", 0, 0)

	plan, err := gen.Generate(context.Background(), Goal{Title: "练习"})
	if err != nil {
		t.Fatalf("Generate(): %v", err)
	}
	if len(plan.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(plan.Items))
	}
	if plan.TotalDuration != "2周" {
		t.Errorf("totalDuration = %q, want 2周", plan.TotalDuration)
	}
	if plan.Items[0].EstimatedDuration != 60 {
		t.Errorf("estimatedDuration = %d, want 60", plan.Items[0].EstimatedDuration)
	}
	if plan.Items[0].TimeScope != models.ScopeDaily {
		t.Errorf("timeScope = %q, want daily", plan.Items[0].TimeScope)
	}
}

func TestGenerate_FencedResponse(t *testing.T) {
	client := &stubClient{response: "Here is your plan:\n```json\n" + validResponse + "\n```\nGood luck!"}
	gen := New(client, "m", 0, 0)

	plan, err := gen.Generate(context.Background(), Goal{Title: "Learn Go"})
	if err != nil {
		t.Fatalf("Generate() with fenced response: %v", err)
	}
	if len(plan.Items) != 2 {
		t.Errorf("items = %d, want 2", len(plan.Items))
	}
}

func TestGenerate_EmptyTasksIsValidationError(t *testing.T) {
	client := &stubClient{response: `{"totalDuration":"1 week","tasks":[]}`}
	gen := New(client, "m", 0, 0)

	_, err := gen.Generate(context.Background(), Goal{Title: "Learn Go"})
	if !errors.Is(err, ErrPlanInvalid) {
		t.Fatalf("Generate() error = %v, want ErrPlanInvalid", err)
	}
	if !strings.Contains(err.Error(), "at least one task is required") {
		t.Errorf("error %q should name the missing-tasks rule", err)
	}
}

func TestGenerate_NotJSONIsParseError(t *testing.T) {
	client := &stubClient{response: "I could not produce a plan, sorry."}
	gen := New(client, "m", 0, 0)

	_, err := gen.Generate(context.Background(), Goal{Title: "Learn Go"})
	if !errors.Is(err, ErrParse) {
		t.Fatalf("Generate() error = %v, want ErrParse", err)
	}
}

func TestGenerate_ClientErrorPassesThrough(t *testing.T) {
	apiErr := &completion.APIError{StatusCode: 500}
	client := &stubClient{err: apiErr}
	gen := New(client, "m", 0, 0)

	_, err := gen.Generate(context.Background(), Goal{Title: "Learn Go"})
	var got *completion.APIError
	if !errors.As(err, &got) {
		t.Fatalf("Generate() error = %v, want *completion.APIError", err)
	}
}

func TestGenerate_PromptMentionsGoal(t *testing.T) {
	client := &stubClient{response: validResponse}
	gen := New(client, "gpt-4o-mini", 0.7, 1024)

	_, err := gen.Generate(context.Background(), Goal{
		Title:       "Run a marathon",
		Description: "first one",
		Timeframe:   "6 months",
	})
	if err != nil {
		t.Fatalf("Generate(): %v", err)
	}
	for _, want := range []string{"Run a marathon", "first one", "6 months"} {
		if !strings.Contains(client.lastReq.User, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
	if client.lastReq.System == "" {
		t.Error("system prompt not set")
	}
	if client.lastReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", client.lastReq.Model)
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		resp    planResponse
		wantErr string
	}{
		{
			name:    "missing duration",
			resp:    planResponse{Tasks: []taskResponse{{Title: "t", Description: "d", EstimatedDuration: 5}}},
			wantErr: "totalDuration is required",
		},
		{
			name:    "empty title",
			resp:    planResponse{TotalDuration: "1w", Tasks: []taskResponse{{Description: "d", EstimatedDuration: 5}}},
			wantErr: "title is required",
		},
		{
			name:    "empty description",
			resp:    planResponse{TotalDuration: "1w", Tasks: []taskResponse{{Title: "t", EstimatedDuration: 5}}},
			wantErr: "description is required",
		},
		{
			name:    "zero duration",
			resp:    planResponse{TotalDuration: "1w", Tasks: []taskResponse{{Title: "t", Description: "d"}}},
			wantErr: "estimatedDuration must be positive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateResponse(&tt.resp)
			if len(errs) == 0 {
				t.Fatal("validateResponse() found no violations")
			}
			if !strings.Contains(strings.Join(errs, "; "), tt.wantErr) {
				t.Errorf("violations %v missing %q", errs, tt.wantErr)
			}
		})
	}
}

func TestNormalizeScope(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"daily", models.ScopeDaily},
		{"Weekly", models.ScopeWeekly},
		{" MONTHLY ", models.ScopeMonthly},
		{"fortnightly", models.ScopeDaily},
		{"", models.ScopeDaily},
	}
	for _, tt := range tests {
		if got := normalizeScope(tt.in); got != tt.want {
			t.Errorf("normalizeScope(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence without tag", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", "Sure!\n{\"a\":1}\nDone.", `{"a":1}`},
		{"no object", "no json here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
