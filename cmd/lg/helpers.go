package main

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kwheeler/lifegit/internal/branch"
	"github.com/kwheeler/lifegit/internal/completion"
	"github.com/kwheeler/lifegit/internal/config"
	"github.com/kwheeler/lifegit/internal/db"
	"github.com/kwheeler/lifegit/internal/failover"
	"github.com/kwheeler/lifegit/internal/models"
	"github.com/kwheeler/lifegit/internal/notify"
	"github.com/kwheeler/lifegit/internal/notify/discord"
	"github.com/kwheeler/lifegit/internal/notify/slack"
	"github.com/kwheeler/lifegit/internal/planner"
)

const defaultConfigPath = "lifegit.yaml"

func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("connect storage: %w", err)
	}

	return cfg, gormDB, nil
}

// newManager wires a branch.Manager from config: completion client, plan
// generator, and retry policy. The sink may be nil.
func newManager(cfg *config.Config, gormDB *gorm.DB, sink branch.EventSink) *branch.Manager {
	client := completion.NewHTTPClient(cfg.AI.BaseURL, cfg.AI.APIKey())
	gen := planner.New(client, cfg.AI.Model, cfg.AI.Temperature, cfg.AI.MaxTokens)
	policy := failover.NewPolicy(cfg.AI.MaxRetries, cfg.AI.Backoff())
	return branch.NewManager(gormDB, gen, policy, sink)
}

// newNotifier builds a Notifier from configured chat platforms. Returns nil
// when no platform is configured.
func newNotifier(cfg *config.Config) (*notify.Notifier, error) {
	var adapters []notify.Adapter

	if cfg.Notify.Slack.BotToken != "" {
		a, err := slack.New(slack.AdapterOpts{
			BotToken:  cfg.Notify.Slack.BotToken,
			ChannelID: cfg.Notify.Slack.Channel,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	if cfg.Notify.Discord.BotToken != "" {
		a, err := discord.New(discord.AdapterOpts{
			BotToken:  cfg.Notify.Discord.BotToken,
			ChannelID: cfg.Notify.Discord.Channel,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}

	if len(adapters) == 0 {
		return nil, nil
	}
	return notify.NewNotifier(adapters...), nil
}

// progressBar renders a fixed-width text progress bar, e.g. [=====-----] 50%.
func progressBar(ratio float64) string {
	const width = 10
	filled := int(ratio*width + 0.5)
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %.0f%%",
		strings.Repeat("=", filled),
		strings.Repeat("-", width-filled),
		ratio*100)
}

// statusGlyph returns a one-character marker for a branch status.
func statusGlyph(status string) string {
	switch status {
	case models.StatusActive:
		return "*"
	case models.StatusCompleted:
		return "+"
	case models.StatusAbandoned:
		return "x"
	case models.StatusMaster:
		return "M"
	default:
		return "?"
	}
}
