package planner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// planResponse is the expected JSON shape of a completion response.
type planResponse struct {
	TotalDuration string         `json:"totalDuration"`
	Tasks         []taskResponse `json:"tasks"`
}

type taskResponse struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	TimeScope         string `json:"timeScope"`
	EstimatedDuration int    `json:"estimatedDuration"`
	OrderIndex        int    `json:"orderIndex"`
	Tips              string `json:"tips"`
}

// fenceRegex matches a fenced code block, optionally tagged as json.
var fenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.+?)\\n?```")

// extractJSON strips code fences and surrounding prose from a raw model
// response, returning the JSON object text. Models often wrap the object in
// fences or lead with a sentence despite instructions.
func extractJSON(raw string) string {
	if m := fenceRegex.FindStringSubmatch(raw); len(m) > 1 {
		raw = m[1]
	}
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(raw[start : end+1])
}

// decodeResponse extracts and strictly decodes a plan response.
func decodeResponse(raw string) (*planResponse, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrParse)
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.DisallowUnknownFields()

	var resp planResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &resp, nil
}

// validateResponse checks a decoded plan against the content rules.
// Returns a list of violations (empty if valid).
func validateResponse(resp *planResponse) []string {
	var errs []string

	if strings.TrimSpace(resp.TotalDuration) == "" {
		errs = append(errs, "totalDuration is required")
	}
	if len(resp.Tasks) == 0 {
		errs = append(errs, "at least one task is required")
	}
	for i, task := range resp.Tasks {
		if strings.TrimSpace(task.Title) == "" {
			errs = append(errs, fmt.Sprintf("tasks[%d]: title is required", i))
		}
		if strings.TrimSpace(task.Description) == "" {
			errs = append(errs, fmt.Sprintf("tasks[%d] (%s): description is required", i, task.Title))
		}
		if task.EstimatedDuration <= 0 {
			errs = append(errs, fmt.Sprintf("tasks[%d] (%s): estimatedDuration must be positive, got %d",
				i, task.Title, task.EstimatedDuration))
		}
	}
	return errs
}
