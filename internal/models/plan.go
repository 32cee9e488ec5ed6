package models

import "time"

// Time scopes for task items.
const (
	ScopeDaily   = "daily"
	ScopeWeekly  = "weekly"
	ScopeMonthly = "monthly"
)

// ManualDuration is the sentinel TotalDuration for plans built without AI.
const ManualDuration = "manual"

// TaskPlan is the ordered set of task items for a branch. A branch owns at
// most one plan at a time; regeneration replaces the whole plan atomically.
type TaskPlan struct {
	ID             string `gorm:"primaryKey;size:32"`
	BranchID       string `gorm:"size:32;uniqueIndex"`
	TotalDuration  string `gorm:"size:64"`
	IsAIGenerated  bool   `gorm:"default:false"`
	CreatedAt      time.Time
	LastModifiedAt *time.Time

	Items []TaskItem `gorm:"foreignKey:PlanID"`
}

// TaskItem is a single step in a task plan.
type TaskItem struct {
	ID                string `gorm:"primaryKey;size:32"`
	PlanID            string `gorm:"size:32;index"`
	Title             string `gorm:"not null"`
	Description       string `gorm:"type:text"`
	EstimatedDuration int    // minutes
	TimeScope         string `gorm:"size:16;default:daily"`
	OrderIndex        int
	IsCompleted       bool `gorm:"default:false"`
	CompletedAt       *time.Time
	IsAIGenerated     bool   `gorm:"default:false"`
	ExecutionTips     string `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
