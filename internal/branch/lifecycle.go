package branch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kwheeler/lifegit/internal/ledger"
	"github.com/kwheeler/lifegit/internal/models"
	"github.com/kwheeler/lifegit/internal/progress"
	"gorm.io/gorm"
)

// transition applies a status update guarded by the expected current
// status. The WHERE clause re-checks the status so two concurrent calls on
// the same branch cannot both apply; zero rows affected means the branch
// moved after it was read.
func transition(tx *gorm.DB, id, from string, updates map[string]interface{}) error {
	res := tx.Model(&models.Branch{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: branch %s is no longer %s", ErrInvalidState, id, from)
	}
	return nil
}

// markMerged sets merged_at, guarded so a branch can only be merged once
// and only while completed.
func markMerged(tx *gorm.DB, id string, now time.Time) error {
	res := tx.Model(&models.Branch{}).
		Where("id = ? AND status = ? AND merged_at IS NULL", id, models.StatusCompleted).
		Update("merged_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: branch %s was already merged or is no longer completed", ErrInvalidState, id)
	}
	return nil
}

// Complete transitions an active branch to completed and records a
// milestone commit naming the branch. The status change and the commit are
// written in one transaction: if either fails, neither happens.
func (m *Manager) Complete(ctx context.Context, id string) (*models.Branch, error) {
	b, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if !canTransition(b.Status, models.StatusCompleted) {
		return nil, fmt.Errorf("%w: cannot complete branch in status %q", ErrInvalidState, b.Status)
	}

	now := time.Now()
	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := transition(tx, id, b.Status, map[string]interface{}{
			"status":       models.StatusCompleted,
			"completed_at": now,
		}); err != nil {
			return err
		}
		_, err := ledger.Append(tx, &models.Commit{
			BranchID:  id,
			Message:   fmt.Sprintf("Completed branch %q", b.Name),
			Type:      models.CommitMilestone,
			Timestamp: now,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			return nil, err
		}
		return nil, repoErr(fmt.Sprintf("complete %s", id), err)
	}

	b.Status = models.StatusCompleted
	b.CompletedAt = &now
	m.publish(ctx, Event{Type: EventCompleted, Branch: *b})
	return b, nil
}

// Abandon transitions an active branch to abandoned.
func (m *Manager) Abandon(ctx context.Context, id string) (*models.Branch, error) {
	b, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if b.IsMaster() {
		return nil, fmt.Errorf("%w: master branch cannot be abandoned", ErrInvalidState)
	}
	if !canTransition(b.Status, models.StatusAbandoned) {
		return nil, fmt.Errorf("%w: cannot abandon branch in status %q", ErrInvalidState, b.Status)
	}

	now := time.Now()
	if err := transition(m.db, id, b.Status, map[string]interface{}{
		"status":       models.StatusAbandoned,
		"abandoned_at": now,
	}); err != nil {
		if errors.Is(err, ErrInvalidState) {
			return nil, err
		}
		return nil, repoErr(fmt.Sprintf("abandon %s", id), err)
	}

	b.Status = models.StatusAbandoned
	b.AbandonedAt = &now
	m.publish(ctx, Event{Type: EventAbandoned, Branch: *b})
	return b, nil
}

// Reactivate returns an abandoned branch to active and clears the
// abandonment timestamp.
func (m *Manager) Reactivate(ctx context.Context, id string) (*models.Branch, error) {
	b, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if !canTransition(b.Status, models.StatusActive) {
		return nil, fmt.Errorf("%w: cannot reactivate branch in status %q", ErrInvalidState, b.Status)
	}

	if err := transition(m.db, id, b.Status, map[string]interface{}{
		"status":       models.StatusActive,
		"abandoned_at": nil,
	}); err != nil {
		if errors.Is(err, ErrInvalidState) {
			return nil, err
		}
		return nil, repoErr(fmt.Sprintf("reactivate %s", id), err)
	}

	b.Status = models.StatusActive
	b.AbandonedAt = nil
	m.publish(ctx, Event{Type: EventReactivated, Branch: *b})
	return b, nil
}

// Merge records a completed branch on the master timeline. It appends a
// milestone commit to master naming the source branch and its achievement
// count, then marks the source merged in the same transaction.
// Merging twice is an invalid state: merged_at is already set.
func (m *Manager) Merge(ctx context.Context, id string) (*models.Branch, error) {
	b, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if b.IsMaster() {
		return nil, fmt.Errorf("%w: master branch cannot be merged", ErrInvalidState)
	}
	if b.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: only completed branches can be merged, status is %q", ErrInvalidState, b.Status)
	}
	if b.Merged() {
		return nil, fmt.Errorf("%w: branch %s was already merged", ErrInvalidState, id)
	}

	master, err := m.Master()
	if err != nil {
		return nil, err
	}

	achievements := progress.Completed(b.Plan)
	now := time.Now()
	err = m.db.Transaction(func(tx *gorm.DB) error {
		_, err := ledger.Append(tx, &models.Commit{
			BranchID:  master.ID,
			Message:   fmt.Sprintf("Merged branch %q (%d achievements)", b.Name, achievements),
			Type:      models.CommitMilestone,
			Timestamp: now,
		})
		if err != nil {
			return err
		}
		return markMerged(tx, id, now)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			return nil, err
		}
		return nil, repoErr(fmt.Sprintf("merge %s", id), err)
	}

	b.MergedAt = &now
	m.publish(ctx, Event{Type: EventMerged, Branch: *b,
		Detail: fmt.Sprintf("%d achievements merged into master", achievements)})
	return b, nil
}
