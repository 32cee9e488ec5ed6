// Package digest builds scheduled activity summaries over branches and
// their commit ledgers.
package digest

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kwheeler/lifegit/internal/models"
	"github.com/kwheeler/lifegit/internal/notify"
)

// DailyReport holds computed metrics for a 24-hour period.
type DailyReport struct {
	PeriodStart       time.Time
	PeriodEnd         time.Time
	BranchesCreated   int
	BranchesCompleted int
	BranchesMerged    int
	TasksCompleted    int
	CommitCount       int
	ActiveBranches    int
	Breakdown         []BranchDigest
}

// WeeklyReport holds computed metrics for a 7-day period.
type WeeklyReport struct {
	PeriodStart    time.Time
	PeriodEnd      time.Time
	BranchesClosed int // completed + abandoned
	BranchesMerged int
	TasksCompleted int
	CommitCount    int
	BusiestBranch  string
	BusiestCommits int
	Breakdown      []BranchDigest
}

// BranchDigest holds per-branch activity for a digest period.
type BranchDigest struct {
	Name      string
	Commits   int
	TasksDone int
}

// BuildDaily summarizes the last 24 hours. Returns nil when there was no
// activity, suppressing the digest.
func BuildDaily(db *gorm.DB) (*notify.FormattedEvent, error) {
	now := time.Now()
	since := now.Add(-24 * time.Hour)

	report, err := buildDailyReport(db, since, now)
	if err != nil {
		return nil, fmt.Errorf("digest: daily: %w", err)
	}

	if report.BranchesCreated == 0 && report.BranchesCompleted == 0 &&
		report.BranchesMerged == 0 && report.TasksCompleted == 0 && report.CommitCount == 0 {
		return nil, nil
	}

	formatted := FormatDaily(report)
	return &formatted, nil
}

// BuildWeekly summarizes the last 7 days. Returns nil when there was no
// activity, suppressing the digest.
func BuildWeekly(db *gorm.DB) (*notify.FormattedEvent, error) {
	now := time.Now()
	since := now.Add(-7 * 24 * time.Hour)

	report, err := buildWeeklyReport(db, since, now)
	if err != nil {
		return nil, fmt.Errorf("digest: weekly: %w", err)
	}

	if report.BranchesClosed == 0 && report.BranchesMerged == 0 &&
		report.TasksCompleted == 0 && report.CommitCount == 0 {
		return nil, nil
	}

	formatted := FormatWeekly(report)
	return &formatted, nil
}

func buildDailyReport(db *gorm.DB, since, until time.Time) (*DailyReport, error) {
	report := &DailyReport{
		PeriodStart: since,
		PeriodEnd:   until,
	}

	var created int64
	if err := db.Model(&models.Branch{}).
		Where("status != ? AND created_at >= ? AND created_at < ?", models.StatusMaster, since, until).
		Count(&created).Error; err != nil {
		return nil, err
	}
	report.BranchesCreated = int(created)

	var completed int64
	db.Model(&models.Branch{}).
		Where("completed_at >= ? AND completed_at < ?", since, until).
		Count(&completed)
	report.BranchesCompleted = int(completed)

	var merged int64
	db.Model(&models.Branch{}).
		Where("merged_at >= ? AND merged_at < ?", since, until).
		Count(&merged)
	report.BranchesMerged = int(merged)

	var tasksDone int64
	db.Model(&models.TaskItem{}).
		Where("is_completed = ? AND completed_at >= ? AND completed_at < ?", true, since, until).
		Count(&tasksDone)
	report.TasksCompleted = int(tasksDone)

	var commits int64
	db.Model(&models.Commit{}).
		Where("timestamp >= ? AND timestamp < ?", since, until).
		Count(&commits)
	report.CommitCount = int(commits)

	var active int64
	db.Model(&models.Branch{}).
		Where("status = ?", models.StatusActive).
		Count(&active)
	report.ActiveBranches = int(active)

	report.Breakdown = buildBreakdown(db, since, until)
	return report, nil
}

func buildWeeklyReport(db *gorm.DB, since, until time.Time) (*WeeklyReport, error) {
	report := &WeeklyReport{
		PeriodStart: since,
		PeriodEnd:   until,
	}

	var completed int64
	if err := db.Model(&models.Branch{}).
		Where("completed_at >= ? AND completed_at < ?", since, until).
		Count(&completed).Error; err != nil {
		return nil, err
	}
	var abandoned int64
	db.Model(&models.Branch{}).
		Where("abandoned_at >= ? AND abandoned_at < ?", since, until).
		Count(&abandoned)
	report.BranchesClosed = int(completed + abandoned)

	var merged int64
	db.Model(&models.Branch{}).
		Where("merged_at >= ? AND merged_at < ?", since, until).
		Count(&merged)
	report.BranchesMerged = int(merged)

	var tasksDone int64
	db.Model(&models.TaskItem{}).
		Where("is_completed = ? AND completed_at >= ? AND completed_at < ?", true, since, until).
		Count(&tasksDone)
	report.TasksCompleted = int(tasksDone)

	var commits int64
	db.Model(&models.Commit{}).
		Where("timestamp >= ? AND timestamp < ?", since, until).
		Count(&commits)
	report.CommitCount = int(commits)

	report.Breakdown = buildBreakdown(db, since, until)
	for _, bd := range report.Breakdown {
		if bd.Commits > report.BusiestCommits {
			report.BusiestBranch = bd.Name
			report.BusiestCommits = bd.Commits
		}
	}
	return report, nil
}

// buildBreakdown computes per-branch activity for the period. Branches with
// no commits in the period are omitted.
func buildBreakdown(db *gorm.DB, since, until time.Time) []BranchDigest {
	var branches []models.Branch
	db.Where("status != ?", models.StatusMaster).Order("created_at ASC").Find(&branches)

	var breakdown []BranchDigest
	for _, b := range branches {
		var commits int64
		db.Model(&models.Commit{}).
			Where("branch_id = ? AND timestamp >= ? AND timestamp < ?", b.ID, since, until).
			Count(&commits)
		if commits == 0 {
			continue
		}

		var tasksDone int64
		db.Model(&models.Commit{}).
			Where("branch_id = ? AND type = ? AND timestamp >= ? AND timestamp < ?",
				b.ID, models.CommitTaskComplete, since, until).
			Count(&tasksDone)

		breakdown = append(breakdown, BranchDigest{
			Name:      b.Name,
			Commits:   int(commits),
			TasksDone: int(tasksDone),
		})
	}
	return breakdown
}

// FormatDaily formats a daily digest report for chat delivery.
func FormatDaily(report *DailyReport) notify.FormattedEvent {
	var bodyLines []string
	bodyLines = append(bodyLines, fmt.Sprintf("**Period**: %s – %s",
		report.PeriodStart.Format("Jan 2 15:04"),
		report.PeriodEnd.Format("Jan 2 15:04")))
	bodyLines = append(bodyLines, fmt.Sprintf("**Branches**: %d created, %d completed, %d merged",
		report.BranchesCreated, report.BranchesCompleted, report.BranchesMerged))
	if report.TasksCompleted > 0 {
		bodyLines = append(bodyLines, fmt.Sprintf("**Tasks done**: %d", report.TasksCompleted))
	}
	if report.CommitCount > 0 {
		bodyLines = append(bodyLines, fmt.Sprintf("**Commits**: %d", report.CommitCount))
	}
	bodyLines = append(bodyLines, fmt.Sprintf("**Active branches**: %d", report.ActiveBranches))
	bodyLines = append(bodyLines, formatBreakdown(report.Breakdown)...)

	fields := []notify.Field{
		{Name: "Created", Value: fmt.Sprintf("%d", report.BranchesCreated), Short: true},
		{Name: "Completed", Value: fmt.Sprintf("%d", report.BranchesCompleted), Short: true},
		{Name: "Merged", Value: fmt.Sprintf("%d", report.BranchesMerged), Short: true},
		{Name: "Active", Value: fmt.Sprintf("%d", report.ActiveBranches), Short: true},
	}
	if report.TasksCompleted > 0 {
		fields = append(fields, notify.Field{Name: "Tasks", Value: fmt.Sprintf("%d", report.TasksCompleted), Short: true})
	}

	return notify.FormattedEvent{
		Title:    "Daily Digest",
		Body:     strings.Join(bodyLines, "\n"),
		Severity: "info",
		Color:    notify.ColorInfo,
		Fields:   fields,
	}
}

// FormatWeekly formats a weekly digest report for chat delivery.
func FormatWeekly(report *WeeklyReport) notify.FormattedEvent {
	var bodyLines []string
	bodyLines = append(bodyLines, fmt.Sprintf("**Period**: %s – %s",
		report.PeriodStart.Format("Jan 2"),
		report.PeriodEnd.Format("Jan 2")))
	bodyLines = append(bodyLines, fmt.Sprintf("**Branches closed**: %d (%d merged)",
		report.BranchesClosed, report.BranchesMerged))
	if report.TasksCompleted > 0 {
		bodyLines = append(bodyLines, fmt.Sprintf("**Tasks done**: %d", report.TasksCompleted))
	}
	if report.CommitCount > 0 {
		bodyLines = append(bodyLines, fmt.Sprintf("**Commits**: %d", report.CommitCount))
	}
	if report.BusiestBranch != "" {
		bodyLines = append(bodyLines, fmt.Sprintf("**Busiest branch**: %s (%d commits)",
			report.BusiestBranch, report.BusiestCommits))
	}
	bodyLines = append(bodyLines, formatBreakdown(report.Breakdown)...)

	fields := []notify.Field{
		{Name: "Closed", Value: fmt.Sprintf("%d", report.BranchesClosed), Short: true},
		{Name: "Merged", Value: fmt.Sprintf("%d", report.BranchesMerged), Short: true},
	}
	if report.TasksCompleted > 0 {
		fields = append(fields, notify.Field{Name: "Tasks", Value: fmt.Sprintf("%d", report.TasksCompleted), Short: true})
	}

	return notify.FormattedEvent{
		Title:    "Weekly Digest",
		Body:     strings.Join(bodyLines, "\n"),
		Severity: "info",
		Color:    notify.ColorInfo,
		Fields:   fields,
	}
}

func formatBreakdown(breakdown []BranchDigest) []string {
	if len(breakdown) == 0 {
		return nil
	}
	lines := []string{"", "**Per Branch**:"}
	for _, bd := range breakdown {
		line := fmt.Sprintf("  %s: %d commits", bd.Name, bd.Commits)
		if bd.TasksDone > 0 {
			line += fmt.Sprintf(" (%d tasks done)", bd.TasksDone)
		}
		lines = append(lines, line)
	}
	return lines
}
