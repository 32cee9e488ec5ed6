package planner

import (
	"bytes"
	"fmt"
	"text/template"
)

// systemPrompt instructs the model to answer with a single JSON plan.
const systemPrompt = `You are a goal-planning assistant. The user models personal goals as
branches of a life timeline and wants a concrete task plan for one goal.

Respond with a single JSON object and nothing else. No prose, no markdown
fences. The object MUST conform to this schema:

{
  "totalDuration": string,          // human-readable overall estimate, e.g. "6 weeks"
  "tasks": [
    {
      "title": string,              // short imperative title
      "description": string,        // what to do and how to know it is done
      "timeScope": string,          // "daily", "weekly", or "monthly"
      "estimatedDuration": number,  // minutes per occurrence, > 0
      "orderIndex": number,         // 1-based execution order
      "tips": string                // optional execution tips, may be omitted
    }
  ]
}

Rules:
- 3 to 8 tasks; every task needs a non-empty title and description.
- Order tasks so early ones unblock later ones (orderIndex ascending).
- Estimates are honest minutes, not aspirational zeros.`

// userPromptTemplate renders the goal into the user message.
const userPromptTemplate = `Create a task plan for this goal.

Goal: {{ .Title }}
{{- if .Description }}
Details: {{ .Description }}
{{- end }}
{{- if .Timeframe }}
Target timeframe: {{ .Timeframe }}
{{- end }}

Output the JSON object now.`

var userTmpl = template.Must(template.New("goal").Parse(userPromptTemplate))

// renderUserPrompt generates the user message for a goal.
func renderUserPrompt(goal Goal) (string, error) {
	var buf bytes.Buffer
	if err := userTmpl.Execute(&buf, goal); err != nil {
		return "", fmt.Errorf("planner: render prompt: %w", err)
	}
	return buf.String(), nil
}
