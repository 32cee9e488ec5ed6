package branch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kwheeler/lifegit/internal/ledger"
	"github.com/kwheeler/lifegit/internal/models"
	"github.com/kwheeler/lifegit/internal/planner"
	"gorm.io/gorm"
)

// RegeneratePlan replaces a branch's plan with a freshly generated one.
// Unlike creation there is no manual fallback: the stored plan is the safe
// fallback, so any generation failure surfaces to the caller and the old
// plan stays untouched. Replacement is a single transaction; a cancelled or
// failed regeneration never leaves a half-written plan behind.
//
// The whole plan is replaced, including tasks the user added by hand.
func (m *Manager) RegeneratePlan(ctx context.Context, id string) (*models.TaskPlan, error) {
	b, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if b.Plan == nil {
		return nil, fmt.Errorf("%w: branch %s has no plan to regenerate", ErrNoTaskPlan, id)
	}
	old := b.Plan

	goal := planner.Goal{Title: b.Name, Description: b.Description, Timeframe: b.Timeframe}
	plan, err := m.policy.Run(ctx, func(ctx context.Context) (*models.TaskPlan, error) {
		return m.gen.Generate(ctx, goal)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	plan.BranchID = id
	plan.LastModifiedAt = &now
	for i := range plan.Items {
		plan.Items[i].PlanID = plan.ID
	}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", old.ID).Delete(&models.TaskItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.TaskPlan{}, "id = ?", old.ID).Error; err != nil {
			return err
		}
		return insertPlan(tx, plan)
	})
	if err != nil {
		return nil, repoErr(fmt.Sprintf("replace plan for %s", id), err)
	}

	m.publish(ctx, Event{Type: EventPlanRegenerated, Branch: *b, Detail: planSummary(plan)})
	return plan, nil
}

// insertPlan writes a plan and its items as plain inserts. Items never go
// through gorm's association upsert: a generated task ID that collides with
// an existing row must fail the transaction, not re-parent that row into
// the new plan.
func insertPlan(tx *gorm.DB, plan *models.TaskPlan) error {
	if err := tx.Omit("Items").Create(plan).Error; err != nil {
		return err
	}
	if len(plan.Items) == 0 {
		return nil
	}
	return tx.Create(&plan.Items).Error
}

// SetTaskDone marks a task item complete or incomplete. Completing a task
// also appends a task_complete commit referencing it, in the same
// transaction as the toggle.
func (m *Manager) SetTaskDone(ctx context.Context, taskID string, done bool) (*models.TaskItem, error) {
	var item models.TaskItem
	if err := m.db.Where("id = ?", taskID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %s", ErrNotFound, taskID)
		}
		return nil, repoErr(fmt.Sprintf("get task %s", taskID), err)
	}
	if item.IsCompleted == done {
		return &item, nil
	}

	var plan models.TaskPlan
	if err := m.db.Where("id = ?", item.PlanID).First(&plan).Error; err != nil {
		return nil, repoErr(fmt.Sprintf("get plan for task %s", taskID), err)
	}

	now := time.Now()
	err := m.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"is_completed": done}
		if done {
			updates["completed_at"] = now
		} else {
			updates["completed_at"] = nil
		}
		if err := tx.Model(&models.TaskItem{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
			return err
		}
		if !done {
			return nil
		}
		_, err := ledger.Append(tx, &models.Commit{
			BranchID:      plan.BranchID,
			Message:       fmt.Sprintf("Completed task %q", item.Title),
			Type:          models.CommitTaskComplete,
			RelatedTaskID: &item.ID,
			Timestamp:     now,
		})
		return err
	})
	if err != nil {
		return nil, repoErr(fmt.Sprintf("toggle task %s", taskID), err)
	}

	item.IsCompleted = done
	if done {
		item.CompletedAt = &now
	} else {
		item.CompletedAt = nil
	}
	return &item, nil
}
