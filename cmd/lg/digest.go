package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/kwheeler/lifegit/internal/digest"
	"github.com/kwheeler/lifegit/internal/notify"
)

func newDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Build and send activity digests",
	}

	cmd.AddCommand(newDigestKindCmd("daily", "Summarize the last 24 hours", digest.BuildDaily))
	cmd.AddCommand(newDigestKindCmd("weekly", "Summarize the last 7 days", digest.BuildWeekly))
	return cmd
}

func newDigestKindCmd(kind, short string, build func(*gorm.DB) (*notify.FormattedEvent, error)) *cobra.Command {
	var (
		configPath string
		send       bool
	)

	cmd := &cobra.Command{
		Use:   kind,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd, configPath, build, send)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	cmd.Flags().BoolVar(&send, "send", false, "send to configured chat platforms instead of printing")
	return cmd
}

func runDigest(cmd *cobra.Command, configPath string, build func(*gorm.DB) (*notify.FormattedEvent, error), send bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	event, err := build(gormDB)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if event == nil {
		fmt.Fprintln(out, "No activity in the period, nothing to report.")
		return nil
	}

	if !send {
		fmt.Fprintf(out, "%s\n\n%s\n", event.Title, event.Body)
		return nil
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}
	if notifier == nil {
		return fmt.Errorf("no chat platform configured (set notify.slack or notify.discord)")
	}
	notifier.Connect(cmd.Context())
	defer notifier.Close()

	notifier.Broadcast(cmd.Context(), notify.OutboundMessage{
		Events: []notify.FormattedEvent{*event},
	})
	fmt.Fprintf(out, "Sent %s\n", event.Title)
	return nil
}
