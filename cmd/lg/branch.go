package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kwheeler/lifegit/internal/branch"
	"github.com/kwheeler/lifegit/internal/models"
	"github.com/kwheeler/lifegit/internal/progress"
)

func newBranchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "Goal branch management commands",
	}

	cmd.AddCommand(newBranchCreateCmd())
	cmd.AddCommand(newBranchListCmd())
	cmd.AddCommand(newBranchShowCmd())
	cmd.AddCommand(newBranchCompleteCmd())
	cmd.AddCommand(newBranchAbandonCmd())
	cmd.AddCommand(newBranchReactivateCmd())
	cmd.AddCommand(newBranchMergeCmd())
	cmd.AddCommand(newBranchDeleteCmd())
	return cmd
}

func newBranchCreateCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		description string
		timeframe   string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new goal branch",
		Long: `Creates a new goal branch and generates its task plan. When the AI
endpoint is unreachable the branch still gets a manual starter plan.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBranchCreate(cmd, configPath, branch.CreateOpts{
				Name:        name,
				Description: description,
				Timeframe:   timeframe,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	cmd.Flags().StringVar(&name, "name", "", "goal name (required)")
	cmd.Flags().StringVar(&description, "description", "", "what achieving this goal looks like")
	cmd.Flags().StringVar(&timeframe, "timeframe", "", "intended timeframe, e.g. \"3 months\"")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runBranchCreate(cmd *cobra.Command, configPath string, opts branch.CreateOpts) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	mgr := newManager(cfg, gormDB, nil)

	b, err := mgr.Create(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created branch %s (%s)\n", b.ID, b.Name)
	if b.Plan != nil {
		kind := "manual"
		if b.Plan.IsAIGenerated {
			kind = "AI-generated"
		}
		fmt.Fprintf(out, "Plan: %d tasks, %s (%s)\n", len(b.Plan.Items), b.Plan.TotalDuration, kind)
	}
	return nil
}

func newBranchListCmd() *cobra.Command {
	var (
		configPath string
		status     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goal branches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBranchList(cmd, configPath, status)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (active, completed, abandoned)")
	return cmd
}

func runBranchList(cmd *cobra.Command, configPath, status string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	mgr := newManager(cfg, gormDB, nil)

	branches, err := mgr.List(status)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(branches) == 0 {
		fmt.Fprintln(out, "No branches found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, " \tID\tNAME\tSTATUS\tPROGRESS\tCREATED")
	for _, b := range branches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			statusGlyph(b.Status), b.ID, b.Name, b.Status,
			progressBar(progress.Ratio(b.Plan)),
			b.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func newBranchShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <branch-id>",
		Short: "Show a branch with its plan and recent commits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBranchShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	return cmd
}

func runBranchShow(cmd *cobra.Command, configPath, id string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	mgr := newManager(cfg, gormDB, nil)

	b, err := mgr.Get(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s (%s)\n", statusGlyph(b.Status), b.Name, b.ID)
	fmt.Fprintf(out, "Status: %s", b.Status)
	if b.Merged() {
		fmt.Fprintf(out, " (merged %s)", b.MergedAt.Format("2006-01-02"))
	}
	fmt.Fprintln(out)
	if b.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", b.Description)
	}
	if b.Timeframe != "" {
		fmt.Fprintf(out, "Timeframe: %s\n", b.Timeframe)
	}
	fmt.Fprintf(out, "Created: %s\n", b.CreatedAt.Format(time.RFC1123))

	if b.Plan == nil {
		fmt.Fprintln(out, "\nNo task plan.")
		return nil
	}

	fmt.Fprintf(out, "\nPlan (%s) %s\n", b.Plan.TotalDuration, progressBar(progress.Ratio(b.Plan)))
	for _, item := range b.Plan.Items {
		mark := " "
		if item.IsCompleted {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] %d. %s (%dmin, %s) %s\n",
			mark, item.OrderIndex, item.Title, item.EstimatedDuration, item.TimeScope, item.ID)
	}
	remaining := progress.RemainingMinutes(b.Plan)
	if remaining > 0 {
		fmt.Fprintf(out, "Remaining: %d minutes\n", remaining)
	}
	return nil
}

// transitionRunner is a lifecycle operation shared by the transition commands.
type transitionRunner func(mgr *branch.Manager, cmd *cobra.Command, id string) (*models.Branch, error)

func newTransitionCmd(use, short, doneVerb string, run transitionRunner) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   use + " <branch-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			notifier, err := newNotifier(cfg)
			if err != nil {
				return err
			}
			var sink branch.EventSink
			if notifier != nil {
				notifier.Connect(cmd.Context())
				defer notifier.Close()
				sink = notifier
			}
			mgr := newManager(cfg, gormDB, sink)

			b, err := run(mgr, cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s branch %s (%s)\n", doneVerb, b.ID, b.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	return cmd
}

func newBranchCompleteCmd() *cobra.Command {
	return newTransitionCmd("complete", "Mark a goal branch completed", "Completed",
		func(mgr *branch.Manager, cmd *cobra.Command, id string) (*models.Branch, error) {
			return mgr.Complete(cmd.Context(), id)
		})
}

func newBranchAbandonCmd() *cobra.Command {
	return newTransitionCmd("abandon", "Abandon a goal branch", "Abandoned",
		func(mgr *branch.Manager, cmd *cobra.Command, id string) (*models.Branch, error) {
			return mgr.Abandon(cmd.Context(), id)
		})
}

func newBranchReactivateCmd() *cobra.Command {
	return newTransitionCmd("reactivate", "Reactivate an abandoned goal branch", "Reactivated",
		func(mgr *branch.Manager, cmd *cobra.Command, id string) (*models.Branch, error) {
			return mgr.Reactivate(cmd.Context(), id)
		})
}

func newBranchMergeCmd() *cobra.Command {
	return newTransitionCmd("merge", "Merge a completed branch into master", "Merged",
		func(mgr *branch.Manager, cmd *cobra.Command, id string) (*models.Branch, error) {
			return mgr.Merge(cmd.Context(), id)
		})
}

func newBranchDeleteCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "delete <branch-id>",
		Short: "Delete a branch and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			mgr := newManager(cfg, gormDB, nil)

			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Refusing to delete %s without --yes\n", args[0])
				return nil
			}
			if err := mgr.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted branch %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
