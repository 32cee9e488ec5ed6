package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kwheeler/lifegit/internal/dashboard"
	"github.com/kwheeler/lifegit/internal/digest"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the read-only dashboard API",
		Long: `Serves branches, plans, commits, and stats as JSON. Also runs the
digest scheduler when digests are configured, pushing summaries to the
configured chat platforms.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Serve.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	// Digest scheduler runs alongside the API when chat platforms are
	// configured.
	if cfg.Digest.Daily != "" || cfg.Digest.Weekly != "" {
		notifier, err := newNotifier(cfg)
		if err != nil {
			return err
		}
		if notifier != nil {
			notifier.Connect(ctx)
			defer notifier.Close()
			go digest.NewScheduler(gormDB, cfg.Digest, notifier).Run(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Digest scheduler running")
		}
	}

	return dashboard.Start(ctx, dashboard.StartOpts{
		DB:   gormDB,
		Port: port,
		Out:  cmd.OutOrStdout(),
	})
}
