package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats <branch-id>",
		Short: "Show progress statistics for a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	return cmd
}

func runStats(cmd *cobra.Command, configPath, branchID string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	mgr := newManager(cfg, gormDB, nil)

	b, err := mgr.Get(branchID)
	if err != nil {
		return err
	}
	stats, err := mgr.Statistics(b.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", b.Name, progressBar(stats.Progress))
	fmt.Fprintf(out, "Tasks: %d/%d done\n", stats.CompletedTasks, stats.TotalTasks)
	fmt.Fprintf(out, "Commits: %d\n", stats.CommitCount)
	fmt.Fprintf(out, "Remaining effort: %d minutes\n", stats.RemainingMinutes)
	return nil
}
