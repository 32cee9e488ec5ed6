package models

import "time"

// Branch statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
	StatusMaster    = "master"
)

// Branch is a goal tracked as an independent timeline. Exactly one branch
// per database carries the master status; it is the merge target for
// completed branches and never completes, abandons, or merges itself.
type Branch struct {
	ID          string `gorm:"primaryKey;size:32"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:16;default:active;index"`
	Timeframe   string `gorm:"size:64"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	AbandonedAt *time.Time
	MergedAt    *time.Time

	Plan    *TaskPlan `gorm:"foreignKey:BranchID"`
	Commits []Commit  `gorm:"foreignKey:BranchID"`
}

// IsMaster reports whether this branch is the master timeline.
func (b *Branch) IsMaster() bool {
	return b.Status == StatusMaster
}

// Merged reports whether this branch has been merged into master.
func (b *Branch) Merged() bool {
	return b.MergedAt != nil
}
