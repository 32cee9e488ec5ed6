// Package branch owns the goal-branch lifecycle: creation, completion,
// abandonment, reactivation, merge into master, and plan regeneration.
package branch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kwheeler/lifegit/internal/failover"
	"github.com/kwheeler/lifegit/internal/models"
	"github.com/kwheeler/lifegit/internal/planner"
	"gorm.io/gorm"
)

// Typed failures surfaced by lifecycle operations.
var (
	// ErrValidation marks bad user input (empty or over-length name).
	ErrValidation = errors.New("branch: validation failed")

	// ErrInvalidState marks an illegal lifecycle transition.
	ErrInvalidState = errors.New("branch: invalid state for operation")

	// ErrMasterNotFound is returned when a merge target is missing.
	ErrMasterNotFound = errors.New("branch: master branch not found")

	// ErrNoTaskPlan is returned when regeneration finds no plan to replace.
	ErrNoTaskPlan = errors.New("branch: no task plan")

	// ErrNotFound is returned when a branch ID does not exist.
	ErrNotFound = errors.New("branch: not found")

	// ErrRepository wraps persistence failures.
	ErrRepository = errors.New("branch: repository failure")
)

// MaxNameLength is the policy limit on branch names.
const MaxNameLength = 100

// ValidTransitions maps each status to its valid next statuses. Merging is
// an orthogonal flag on completed branches, not a status, and the master
// branch has no transitions at all.
var ValidTransitions = map[string][]string{
	models.StatusActive:    {models.StatusCompleted, models.StatusAbandoned},
	models.StatusAbandoned: {models.StatusActive},
	models.StatusCompleted: {},
	models.StatusMaster:    {},
}

// canTransition checks whether a status transition is allowed.
func canTransition(from, to string) bool {
	for _, v := range ValidTransitions[from] {
		if v == to {
			return true
		}
	}
	return false
}

// PlanGenerator produces a validated task plan for a goal. Satisfied by
// *planner.Generator.
type PlanGenerator interface {
	Generate(ctx context.Context, goal planner.Goal) (*models.TaskPlan, error)
}

// Event describes a lifecycle change for subscribers (notifications,
// digests). The core publishes events after the transaction commits and
// never blocks on them.
type Event struct {
	Type      string // created, completed, abandoned, reactivated, merged, plan_regenerated
	Branch    models.Branch
	Detail    string
	Timestamp time.Time
}

// Event types.
const (
	EventCreated         = "created"
	EventCompleted       = "completed"
	EventAbandoned       = "abandoned"
	EventReactivated     = "reactivated"
	EventMerged          = "merged"
	EventPlanRegenerated = "plan_regenerated"
)

// EventSink receives lifecycle events. Implementations must be fast or
// buffer internally; sinks are called synchronously after commit.
type EventSink interface {
	BranchEvent(ctx context.Context, ev Event)
}

// Manager orchestrates branch lifecycle operations. It holds no mutable
// state of its own; concurrent calls for different branches share only the
// database handle.
type Manager struct {
	db     *gorm.DB
	gen    PlanGenerator
	policy *failover.Policy
	sink   EventSink
}

// NewManager creates a Manager. policy may be nil, in which case the
// default retry policy is used; sink may be nil to disable events.
func NewManager(db *gorm.DB, gen PlanGenerator, policy *failover.Policy, sink EventSink) *Manager {
	if policy == nil {
		policy = failover.NewPolicy(0, 0)
	}
	return &Manager{db: db, gen: gen, policy: policy, sink: sink}
}

// publish sends an event to the sink, if any.
func (m *Manager) publish(ctx context.Context, ev Event) {
	if m.sink == nil {
		return
	}
	ev.Timestamp = time.Now()
	m.sink.BranchEvent(ctx, ev)
}

// repoErr wraps a persistence failure so callers can match ErrRepository
// while keeping the driver error in the chain.
func repoErr(op string, err error) error {
	return fmt.Errorf("branch: %s: %w: %w", op, ErrRepository, err)
}

// CreateOpts holds parameters for creating a new goal branch.
type CreateOpts struct {
	Name        string
	Description string
	Timeframe   string // optional hint for the planner, e.g. "3 months"
}

// Create builds a new active branch and synchronously generates its task
// plan. AI failures never fail creation: the failure policy retries
// transient errors and falls back to the manual plan. Only a persistence
// failure aborts, and then nothing is left behind.
func (m *Manager) Create(ctx context.Context, opts CreateOpts) (*models.Branch, error) {
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len([]rune(name)) > MaxNameLength {
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrValidation, MaxNameLength)
	}

	id, err := models.NewID(models.PrefixBranch)
	if err != nil {
		return nil, err
	}

	goal := planner.Goal{Title: name, Description: opts.Description, Timeframe: opts.Timeframe}
	plan := m.policy.RunOrFallback(ctx, goal, func(ctx context.Context) (*models.TaskPlan, error) {
		return m.gen.Generate(ctx, goal)
	})
	plan.BranchID = id
	for i := range plan.Items {
		plan.Items[i].PlanID = plan.ID
	}

	b := models.Branch{
		ID:          id,
		Name:        name,
		Description: opts.Description,
		Status:      models.StatusActive,
		Timeframe:   opts.Timeframe,
		CreatedAt:   time.Now(),
		Plan:        plan,
	}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Plan").Create(&b).Error; err != nil {
			return err
		}
		return insertPlan(tx, plan)
	})
	if err != nil {
		return nil, repoErr(fmt.Sprintf("create %q", name), err)
	}

	m.publish(ctx, Event{Type: EventCreated, Branch: b, Detail: planSummary(plan)})
	return &b, nil
}

func planSummary(plan *models.TaskPlan) string {
	kind := "manual plan"
	if plan.IsAIGenerated {
		kind = "AI plan"
	}
	return fmt.Sprintf("%s with %d tasks (%s)", kind, len(plan.Items), plan.TotalDuration)
}

// Get retrieves a branch by ID with its plan and ordered tasks preloaded.
func (m *Manager) Get(id string) (*models.Branch, error) {
	var b models.Branch
	err := m.db.
		Preload("Plan.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, created_at ASC")
		}).
		Preload("Plan").
		Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, repoErr(fmt.Sprintf("get %s", id), err)
	}
	return &b, nil
}

// Master returns the master branch.
func (m *Manager) Master() (*models.Branch, error) {
	var master models.Branch
	err := m.db.Where("status = ?", models.StatusMaster).First(&master).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMasterNotFound
		}
		return nil, repoErr("find master", err)
	}
	return &master, nil
}

// List returns branches, optionally filtered by status, oldest first.
func (m *Manager) List(status string) ([]models.Branch, error) {
	q := m.db.Preload("Plan.Items").Preload("Plan")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var branches []models.Branch
	if err := q.Order("created_at ASC").Find(&branches).Error; err != nil {
		return nil, repoErr("list", err)
	}
	return branches, nil
}

// Delete removes a branch together with its plan, tasks, and commits.
// The master branch cannot be deleted.
func (m *Manager) Delete(id string) error {
	b, err := m.Get(id)
	if err != nil {
		return err
	}
	if b.IsMaster() {
		return fmt.Errorf("%w: master branch cannot be deleted", ErrInvalidState)
	}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		if b.Plan != nil {
			if err := tx.Where("plan_id = ?", b.Plan.ID).Delete(&models.TaskItem{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.TaskPlan{}, "id = ?", b.Plan.ID).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("branch_id = ?", id).Delete(&models.Commit{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Branch{}, "id = ?", id).Error
	})
	if err != nil {
		return repoErr(fmt.Sprintf("delete %s", id), err)
	}

	log.Printf("branch: deleted %s (%s)", id, b.Name)
	return nil
}
