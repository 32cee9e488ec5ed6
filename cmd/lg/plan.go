package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kwheeler/lifegit/internal/progress"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Task plan commands",
	}

	cmd.AddCommand(newPlanShowCmd())
	cmd.AddCommand(newPlanRegenerateCmd())
	cmd.AddCommand(newPlanDoneCmd())
	return cmd
}

func newPlanShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <branch-id>",
		Short: "Show a branch's task plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	return cmd
}

func runPlanShow(cmd *cobra.Command, configPath, branchID string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	mgr := newManager(cfg, gormDB, nil)

	b, err := mgr.Get(branchID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if b.Plan == nil {
		fmt.Fprintf(out, "%s has no task plan.\n", b.Name)
		return nil
	}

	kind := "manual"
	if b.Plan.IsAIGenerated {
		kind = "AI-generated"
	}
	fmt.Fprintf(out, "Plan for %s: %s, %s %s\n",
		b.Name, b.Plan.TotalDuration, kind, progressBar(progress.Ratio(b.Plan)))
	for _, item := range b.Plan.Items {
		mark := " "
		if item.IsCompleted {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] %d. %s (%dmin, %s) %s\n",
			mark, item.OrderIndex, item.Title, item.EstimatedDuration, item.TimeScope, item.ID)
		if item.Description != "" {
			fmt.Fprintf(out, "         %s\n", item.Description)
		}
		if item.ExecutionTips != "" {
			fmt.Fprintf(out, "         Tip: %s\n", item.ExecutionTips)
		}
	}
	return nil
}

func newPlanRegenerateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "regenerate <branch-id>",
		Short: "Replace a branch's plan with a freshly generated one",
		Long: `Generates a new task plan for the branch and replaces the current one,
including any tasks you added by hand. If generation fails the current
plan is left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanRegenerate(cmd, configPath, args[0])
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	return cmd
}

func runPlanRegenerate(cmd *cobra.Command, configPath, branchID string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	mgr := newManager(cfg, gormDB, nil)

	plan, err := mgr.RegeneratePlan(cmd.Context(), branchID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Regenerated plan: %d tasks, %s\n",
		len(plan.Items), plan.TotalDuration)
	return nil
}

func newPlanDoneCmd() *cobra.Command {
	var (
		configPath string
		undo       bool
	)

	cmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task complete (or undo with --undo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanDone(cmd, configPath, args[0], !undo)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	cmd.Flags().BoolVar(&undo, "undo", false, "mark the task incomplete instead")
	return cmd
}

func runPlanDone(cmd *cobra.Command, configPath, taskID string, done bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	mgr := newManager(cfg, gormDB, nil)

	item, err := mgr.SetTaskDone(cmd.Context(), taskID, done)
	if err != nil {
		return err
	}

	if done {
		fmt.Fprintf(cmd.OutOrStdout(), "Done: %s\n", item.Title)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Reopened: %s\n", item.Title)
	}
	return nil
}
