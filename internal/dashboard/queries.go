package dashboard

import (
	"time"

	"gorm.io/gorm"

	"github.com/kwheeler/lifegit/internal/ledger"
	"github.com/kwheeler/lifegit/internal/models"
	"github.com/kwheeler/lifegit/internal/progress"
)

// BranchRow holds branch data for list responses.
type BranchRow struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Timeframe string     `json:"timeframe,omitempty"`
	Progress  float64    `json:"progress"`
	Tasks     int        `json:"tasks"`
	TasksDone int        `json:"tasks_done"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
}

// BranchSummary returns branches ordered oldest first, optionally filtered
// by status.
func BranchSummary(db *gorm.DB, status string) ([]BranchRow, error) {
	q := db.Preload("Plan.Items").Preload("Plan")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var branches []models.Branch
	if err := q.Order("created_at ASC").Find(&branches).Error; err != nil {
		return nil, err
	}

	rows := make([]BranchRow, len(branches))
	for i, b := range branches {
		rows[i] = BranchRow{
			ID:        b.ID,
			Name:      b.Name,
			Status:    b.Status,
			Timeframe: b.Timeframe,
			Progress:  progress.Ratio(b.Plan),
			CreatedAt: b.CreatedAt,
			MergedAt:  b.MergedAt,
		}
		if b.Plan != nil {
			rows[i].Tasks = len(b.Plan.Items)
			rows[i].TasksDone = progress.Completed(b.Plan)
		}
	}
	return rows, nil
}

// BranchDetail holds a single branch with its plan for detail responses.
type BranchDetail struct {
	BranchRow
	Description string     `json:"description,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	AbandonedAt *time.Time `json:"abandoned_at,omitempty"`
	Plan        *PlanView  `json:"plan,omitempty"`
}

// PlanView holds a task plan for JSON responses.
type PlanView struct {
	ID             string     `json:"id"`
	TotalDuration  string     `json:"total_duration"`
	IsAIGenerated  bool       `json:"is_ai_generated"`
	LastModifiedAt *time.Time `json:"last_modified_at,omitempty"`
	Items          []TaskView `json:"items"`
}

// TaskView holds a task item for JSON responses.
type TaskView struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	EstimatedDuration int        `json:"estimated_duration"`
	TimeScope         string     `json:"time_scope"`
	OrderIndex        int        `json:"order_index"`
	IsCompleted       bool       `json:"is_completed"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	ExecutionTips     string     `json:"execution_tips,omitempty"`
}

// FetchBranch returns a single branch with its plan and ordered tasks.
func FetchBranch(db *gorm.DB, id string) (*BranchDetail, error) {
	var b models.Branch
	err := db.
		Preload("Plan.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, created_at ASC")
		}).
		Preload("Plan").
		Where("id = ?", id).First(&b).Error
	if err != nil {
		return nil, err
	}

	detail := &BranchDetail{
		BranchRow: BranchRow{
			ID:        b.ID,
			Name:      b.Name,
			Status:    b.Status,
			Timeframe: b.Timeframe,
			Progress:  progress.Ratio(b.Plan),
			CreatedAt: b.CreatedAt,
			MergedAt:  b.MergedAt,
		},
		Description: b.Description,
		CompletedAt: b.CompletedAt,
		AbandonedAt: b.AbandonedAt,
	}
	if b.Plan != nil {
		detail.Tasks = len(b.Plan.Items)
		detail.TasksDone = progress.Completed(b.Plan)
		detail.Plan = planView(b.Plan)
	}
	return detail, nil
}

func planView(plan *models.TaskPlan) *PlanView {
	view := &PlanView{
		ID:             plan.ID,
		TotalDuration:  plan.TotalDuration,
		IsAIGenerated:  plan.IsAIGenerated,
		LastModifiedAt: plan.LastModifiedAt,
		Items:          make([]TaskView, len(plan.Items)),
	}
	for i, item := range plan.Items {
		view.Items[i] = TaskView{
			ID:                item.ID,
			Title:             item.Title,
			Description:       item.Description,
			EstimatedDuration: item.EstimatedDuration,
			TimeScope:         item.TimeScope,
			OrderIndex:        item.OrderIndex,
			IsCompleted:       item.IsCompleted,
			CompletedAt:       item.CompletedAt,
			ExecutionTips:     item.ExecutionTips,
		}
	}
	return view
}

// CommitRow holds a ledger commit for JSON responses.
type CommitRow struct {
	ID            uint      `json:"id"`
	Message       string    `json:"message"`
	Type          string    `json:"type"`
	RelatedTaskID *string   `json:"related_task_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// FetchCommits returns a branch's commit history, oldest first.
func FetchCommits(db *gorm.DB, branchID string) ([]CommitRow, error) {
	commits, err := ledger.History(db, branchID)
	if err != nil {
		return nil, err
	}
	rows := make([]CommitRow, len(commits))
	for i, c := range commits {
		rows[i] = CommitRow{
			ID:            c.ID,
			Message:       c.Message,
			Type:          c.Type,
			RelatedTaskID: c.RelatedTaskID,
			Timestamp:     c.Timestamp,
		}
	}
	return rows, nil
}

// StatsView holds branch statistics for JSON responses.
type StatsView struct {
	CommitCount      int64   `json:"commit_count"`
	TotalTasks       int     `json:"total_tasks"`
	CompletedTasks   int     `json:"completed_tasks"`
	Progress         float64 `json:"progress"`
	RemainingMinutes int     `json:"remaining_minutes"`
}

// FetchStats computes statistics for a branch.
func FetchStats(db *gorm.DB, branchID string) (*StatsView, error) {
	var b models.Branch
	err := db.Preload("Plan.Items").Preload("Plan").
		Where("id = ?", branchID).First(&b).Error
	if err != nil {
		return nil, err
	}

	commits, err := ledger.Count(db, branchID)
	if err != nil {
		return nil, err
	}

	stats := &StatsView{
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
