// Package ledger provides the append-only commit log for branches.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kwheeler/lifegit/internal/models"
	"gorm.io/gorm"
)

// ErrEmptyMessage is returned when a commit is appended without a message.
var ErrEmptyMessage = errors.New("ledger: commit message is required")

// Append validates and persists a commit. The stored row (with its assigned
// ID) is returned. Commits are never updated or deleted after this point.
func Append(db *gorm.DB, commit *models.Commit) (*models.Commit, error) {
	if commit == nil {
		return nil, fmt.Errorf("ledger: commit is required")
	}
	if strings.TrimSpace(commit.Message) == "" {
		return nil, ErrEmptyMessage
	}
	if commit.BranchID == "" {
		return nil, fmt.Errorf("ledger: branch ID is required")
	}
	if commit.Type == "" {
		commit.Type = models.CommitReflection
	}
	if !models.ValidCommitType(commit.Type) {
		return nil, fmt.Errorf("ledger: unknown commit type %q", commit.Type)
	}
	if commit.Timestamp.IsZero() {
		commit.Timestamp = time.Now()
	}

	if err := db.Create(commit).Error; err != nil {
		return nil, fmt.Errorf("ledger: append to %s: %w", commit.BranchID, err)
	}
	return commit, nil
}

// History returns a branch's commits in timestamp order, oldest first.
// Equal timestamps fall back to insertion order. Presentation layers that
// want newest-first reverse the slice themselves.
func History(db *gorm.DB, branchID string) ([]models.Commit, error) {
	var commits []models.Commit
	if err := db.Where("branch_id = ?", branchID).
		Order("timestamp ASC, id ASC").
		Find(&commits).Error; err != nil {
		return nil, fmt.Errorf("ledger: history of %s: %w", branchID, err)
	}
	return commits, nil
}

// Count returns the number of commits on a branch.
func Count(db *gorm.DB, branchID string) (int64, error) {
	var count int64
	if err := db.Model(&models.Commit{}).
		Where("branch_id = ?", branchID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("ledger: count for %s: %w", branchID, err)
	}
	return count, nil
}
