package branch

import (
	"github.com/kwheeler/lifegit/internal/ledger"
	"github.com/kwheeler/lifegit/internal/progress"
)

// Stats summarizes a branch for presentation layers.
type Stats struct {
	CommitCount      int64   `json:"commit_count"`
	TotalTasks       int     `json:"total_tasks"`
	CompletedTasks   int     `json:"completed_tasks"`
	Progress         float64 `json:"progress"`
	RemainingMinutes int     `json:"remaining_minutes"`
}

// Statistics computes read-only statistics for a branch from its commit
// ledger and task plan.
func (m *Manager) Statistics(id string) (*Stats, error) {
	b, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	commits, err := ledger.Count(m.db, id)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		CommitCount:      commits,
		Progress:         progress.Ratio(b.Plan),
		CompletedTasks:   progress.Completed(b.Plan),
		RemainingMinutes: progress.RemainingMinutes(b.Plan),
	}
	if b.Plan != nil {
		stats.TotalTasks = len(b.Plan.Items)
	}
	return stats, nil
}
