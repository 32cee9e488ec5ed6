package models

import "time"

// Commit types. Milestone commits are reserved for lifecycle events
// (branch completion, merge into master).
const (
	CommitTaskComplete = "task_complete"
	CommitLearning     = "learning"
	CommitReflection   = "reflection"
	CommitMilestone    = "milestone"
)

// Commit is an immutable, timestamped progress entry on a branch. Rows are
// append-only: the core never updates or deletes a commit once written.
// The auto-increment ID doubles as the insertion-order tiebreak when two
// commits share a timestamp.
type Commit struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	BranchID      string    `gorm:"size:32;index"`
	Message       string    `gorm:"type:text;not null"`
	Type          string    `gorm:"size:16;default:reflection"`
	RelatedTaskID *string   `gorm:"size:32"`
	Timestamp     time.Time `gorm:"index"`
}

// ValidCommitType reports whether t is one of the known commit types.
func ValidCommitType(t string) bool {
	switch t {
	case CommitTaskComplete, CommitLearning, CommitReflection, CommitMilestone:
		return true
	}
	return false
}
