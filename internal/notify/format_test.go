package notify

import (
	"strings"
	"testing"

	"github.com/kwheeler/lifegit/internal/branch"
	"github.com/kwheeler/lifegit/internal/models"
)

func TestFormatBranchEvent(t *testing.T) {
	tests := []struct {
		eventType    string
		wantTitle    string
		wantSeverity string
		wantColor    string
	}{
		{branch.EventCreated, "created", "info", ColorInfo},
		{branch.EventCompleted, "completed", "success", ColorSuccess},
		{branch.EventAbandoned, "abandoned", "warning", ColorWarning},
		{branch.EventReactivated, "reactivated", "info", ColorInfo},
		{branch.EventMerged, "merged into master", "success", ColorSuccess},
		{branch.EventPlanRegenerated, "got a new plan", "info", ColorInfo},
	}
	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			ev := branch.Event{
				Type:   tt.eventType,
				Branch: models.Branch{ID: "br-abc12", Name: "Learn Go", Status: models.StatusActive},
			}
			got := FormatBranchEvent(ev)
			if !strings.Contains(got.Title, "Learn Go") || !strings.Contains(got.Title, tt.wantTitle) {
				t.Errorf("title = %q, want name and %q", got.Title, tt.wantTitle)
			}
			if got.Severity != tt.wantSeverity {
				t.Errorf("severity = %q, want %q", got.Severity, tt.wantSeverity)
			}
			if got.Color != tt.wantColor {
				t.Errorf("color = %q, want %q", got.Color, tt.wantColor)
			}
		})
	}
}

func TestFormatBranchEvent_Fields(t *testing.T) {
	ev := branch.Event{
		Type: branch.EventMerged,
		Branch: models.Branch{
			ID:        "br-abc12",
			Name:      "Learn Go",
			Status:    models.StatusCompleted,
			Timeframe: "3 months",
		},
		Detail: "4 achievements merged into master",
	}
	got := FormatBranchEvent(ev)

	if !strings.Contains(got.Body, "4 achievements") {
		t.Errorf("body = %q, want detail line", got.Body)
	}

	want := map[string]string{
		"Branch":    "br-abc12",
		"Status":    models.StatusCompleted,
		"Timeframe": "3 months",
	}
	for _, f := range got.Fields {
		if v, ok := want[f.Name]; ok {
			if f.Value != v {
				t.Errorf("field %s = %q, want %q", f.Name, f.Value, v)
			}
			delete(want, f.Name)
		}
	}
	for name := range want {
		t.Errorf("missing field %s", name)
	}
}

func TestSeverityColor_Default(t *testing.T) {
	if got := severityColor("bogus"); got != ColorInfo {
		t.Errorf("severityColor(bogus) = %q, want info color", got)
	}
}
