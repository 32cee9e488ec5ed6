package notify

import (
	"fmt"
	"strings"

	"github.com/kwheeler/lifegit/internal/branch"
)

// eventVerb returns a human-friendly verb for a lifecycle event type.
func eventVerb(eventType string) string {
	switch eventType {
	case branch.EventCreated:
		return "created"
	case branch.EventCompleted:
		return "completed"
	case branch.EventAbandoned:
		return "abandoned"
	case branch.EventReactivated:
		return "reactivated"
	case branch.EventMerged:
		return "merged into master"
	case branch.EventPlanRegenerated:
		return "got a new plan"
	default:
		return eventType
	}
}

// eventSeverity returns the display severity for a lifecycle event type.
func eventSeverity(eventType string) string {
	switch eventType {
	case branch.EventCompleted, branch.EventMerged:
		return "success"
	case branch.EventAbandoned:
		return "warning"
	default:
		return "info"
	}
}

// FormatBranchEvent formats a lifecycle event for chat display.
func FormatBranchEvent(ev branch.Event) FormattedEvent {
	verb := eventVerb(ev.Type)
	severity := eventSeverity(ev.Type)

	title := fmt.Sprintf("Branch %q %s", ev.Branch.Name, verb)

	var bodyParts []string
	if ev.Branch.Description != "" {
		bodyParts = append(bodyParts, ev.Branch.Description)
	}
	if ev.Detail != "" {
		bodyParts = append(bodyParts, ev.Detail)
	}
	body := strings.Join(bodyParts, "\n")

	fields := []Field{
		{Name: "Branch", Value: ev.Branch.ID, Short: true},
		{Name: "Status", Value: ev.Branch.Status, Short: true},
	}
	if ev.Branch.Timeframe != "" {
		fields = append(fields, Field{Name: "Timeframe", Value: ev.Branch.Timeframe, Short: true})
	}

	return FormattedEvent{
		Title:    title,
		Body:     body,
		Severity: severity,
		Color:    severityColor(severity),
		Fields:   fields,
	}
}
