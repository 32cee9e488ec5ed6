package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/kwheeler/lifegit/internal/config"
	"github.com/kwheeler/lifegit/internal/db"
)

func newInitCmd() *cobra.Command {
	var (
		configPath string
		profile    string
		driver     string
		dbPath     string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize LifeGit",
		Long: `Writes a config file, creates the database schema, and seeds the
master branch for your profile. Prompts for an AI API key when run
interactively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, configPath, profile, driver, dbPath, force)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to LifeGit config file")
	cmd.Flags().StringVar(&profile, "profile", "default", "profile name")
	cmd.Flags().StringVar(&driver, "driver", "sqlite", "storage driver (sqlite, mysql)")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "sqlite database file (default lifegit.db)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func runInit(cmd *cobra.Command, configPath, profile, driver, dbPath string, force bool) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	cfg := &config.Config{Profile: profile}
	cfg.Storage.Driver = driver
	cfg.Storage.Path = dbPath

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(out, "Wrote config to %s\n", configPath)

	// Re-parse so defaults and validation apply.
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := promptAPIKey(cmd, cfg, configPath); err != nil {
		return err
	}

	gormDB, err := db.Connect(cfg.Storage)
	if err != nil {
		return fmt.Errorf("connect storage: %w", err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	master, err := db.EnsureMaster(gormDB, cfg.Profile)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Master branch ready (%s)\n", master.ID)

	fmt.Fprintln(out, "\nLifeGit initialized. Create your first goal with:")
	fmt.Fprintln(out, "  lg branch create --name \"Learn something new\"")
	return nil
}

// promptAPIKey reads an AI API key without echo when running on a terminal
// and stores it in the config file. Skipped when stdin is not a terminal;
// the env var named by api_key_env still works either way.
func promptAPIKey(cmd *cobra.Command, cfg *config.Config, configPath string) error {
	out := cmd.OutOrStdout()

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fmt.Fprintf(out, "Set %s in your environment to enable AI plan generation.\n", cfg.AI.APIKeyEnv)
		return nil
	}

	fmt.Fprintf(out, "AI API key (enter to skip): ")
	key, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil || len(key) == 0 {
		fmt.Fprintf(out, "Skipped. Set %s in your environment to enable AI plan generation.\n", cfg.AI.APIKeyEnv)
		return nil
	}

	cfg.AI.APIKeyValue = string(key)
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(out, "API key stored in %s\n", configPath)
	return nil
}
