package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kwheeler/lifegit/internal/ledger"
	"github.com/kwheeler/lifegit/internal/models"
)

// manualCommitTypes are the commit types a user can record directly. The
// milestone type is reserved for lifecycle operations.
var manualCommitTypes = []string{models.CommitTaskComplete, models.CommitLearning, models.CommitReflection}

func newCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit ledger commands",
	}

	cmd.AddCommand(newCommitAddCmd())
	cmd.AddCommand(newCommitLogCmd())
	return cmd
}

func newCommitAddCmd() *cobra.Command {
	var (
		configPath string
		branchID   string
		message    string
		commitType string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a progress commit on a branch",
		Long: fmt.Sprintf("Appends a commit to a branch's ledger. Valid types: %s. Milestone commits are written by lifecycle operations and cannot be added by hand.",
			strings.Join(manualCommitTypes, ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommitAdd(cmd, configPath, branchID, message, commitType)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	cmd.Flags().StringVar(&branchID, "branch", "", "branch ID (required)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message (required)")
	cmd.Flags().StringVar(&commitType, "type", models.CommitReflection, "commit type")
	cmd.MarkFlagRequired("branch")
	cmd.MarkFlagRequired("message")
	return cmd
}

func runCommitAdd(cmd *cobra.Command, configPath, branchID, message, commitType string) error {
	if commitType == models.CommitMilestone {
		return fmt.Errorf("commit type %q is reserved for lifecycle events (complete, merge)", models.CommitMilestone)
	}

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	mgr := newManager(cfg, gormDB, nil)

	// Resolve the branch first for a friendly error.
	b, err := mgr.Get(branchID)
	if err != nil {
		return err
	}

	commit, err := ledger.Append(gormDB, &models.Commit{
		BranchID: b.ID,
		Message:  message,
		Type:     commitType,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Committed [%s] %s on %s\n", commit.Type, commit.Message, b.Name)
	return nil
}

func newCommitLogCmd() *cobra.Command {
	var (
		configPath string
		branchID   string
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show a branch's commit history, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommitLog(cmd, configPath, branchID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	cmd.Flags().StringVar(&branchID, "branch", "", "branch ID (required)")
	cmd.MarkFlagRequired("branch")
	return cmd
}

func runCommitLog(cmd *cobra.Command, configPath, branchID string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	mgr := newManager(cfg, gormDB, nil)

	b, err := mgr.Get(branchID)
	if err != nil {
		return err
	}

	commits, err := ledger.History(gormDB, b.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(commits) == 0 {
		fmt.Fprintf(out, "No commits on %s yet.\n", b.Name)
		return nil
	}

	for _, c := range commits {
		fmt.Fprintf(out, "%s  [%s]  %s\n",
			c.Timestamp.Format("2006-01-02 15:04"), c.Type, c.Message)
	}
	return nil
}
