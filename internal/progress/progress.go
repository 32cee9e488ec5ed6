// Package progress derives completion metrics from task plans.
package progress

import "github.com/kwheeler/lifegit/internal/models"

// Ratio returns the fraction of completed tasks in a plan, in [0.0, 1.0].
// A nil plan or a plan with no tasks reports 0.0.
func Ratio(plan *models.TaskPlan) float64 {
	if plan == nil || len(plan.Items) == 0 {
		return 0.0
	}
	done := 0
	for _, item := range plan.Items {
		if item.IsCompleted {
			done++
		}
	}
	return float64(done) / float64(len(plan.Items))
}

// Completed returns the number of completed tasks in a plan.
func Completed(plan *models.TaskPlan) int {
	if plan == nil {
		return 0
	}
	done := 0
	for _, item := range plan.Items {
		if item.IsCompleted {
			done++
		}
	}
	return done
}

// RemainingMinutes sums the estimated duration of incomplete tasks.
func RemainingMinutes(plan *models.TaskPlan) int {
	if plan == nil {
		return 0
	}
	total := 0
	for _, item := range plan.Items {
		if !item.IsCompleted {
			total += item.EstimatedDuration
		}
	}
	return total
}
