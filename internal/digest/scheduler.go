package digest

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/kwheeler/lifegit/internal/config"
	"github.com/kwheeler/lifegit/internal/notify"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// Sender delivers a digest to chat platforms. Satisfied by *notify.Notifier.
type Sender interface {
	Broadcast(ctx context.Context, msg notify.OutboundMessage)
}

// Scheduler fires daily and weekly digests on cron schedules. An empty cron
// expression disables the corresponding digest.
type Scheduler struct {
	db     *gorm.DB
	cfg    config.DigestConfig
	sender Sender
}

// NewScheduler creates a Scheduler.
func NewScheduler(db *gorm.DB, cfg config.DigestConfig, sender Sender) *Scheduler {
	return &Scheduler{db: db, cfg: cfg, sender: sender}
}

// Run blocks until the context is cancelled, firing digests as their cron
// schedules come due. It returns immediately if neither digest is enabled.
func (s *Scheduler) Run(ctx context.Context) {
	var dailyTimer, weeklyTimer *time.Timer
	if s.cfg.Daily != "" {
		if d := nextCronDuration(s.cfg.Daily); d > 0 {
			dailyTimer = time.NewTimer(d)
		}
	}
	if s.cfg.Weekly != "" {
		if d := nextCronDuration(s.cfg.Weekly); d > 0 {
			weeklyTimer = time.NewTimer(d)
		}
	}
	if dailyTimer == nil && weeklyTimer == nil {
		return
	}

	defer func() {
		if dailyTimer != nil {
			dailyTimer.Stop()
		}
		if weeklyTimer != nil {
			weeklyTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timerChan(dailyTimer):
			s.fire(ctx, "daily")
			if d := nextCronDuration(s.cfg.Daily); d > 0 {
				dailyTimer.Reset(d)
			}
		case <-timerChan(weeklyTimer):
			s.fire(ctx, "weekly")
			if d := nextCronDuration(s.cfg.Weekly); d > 0 {
				weeklyTimer.Reset(d)
			}
		}
	}
}

// fire builds and sends a single digest (daily or weekly).
func (s *Scheduler) fire(ctx context.Context, kind string) {
	var event *notify.FormattedEvent
	var err error

	switch kind {
	case "daily":
		event, err = BuildDaily(s.db)
	case "weekly":
		event, err = BuildWeekly(s.db)
	}
	if err != nil {
		log.Printf("digest: %s: %v", kind, err)
		return
	}
	if event == nil {
		// No activity, suppress.
		return
	}

	s.sender.Broadcast(ctx, notify.OutboundMessage{Events: []notify.FormattedEvent{*event}})
}

// timerChan returns the timer's channel, or nil if the timer is nil.
// A nil channel blocks forever in select, which is the desired behavior
// when a digest type is not enabled.
func timerChan(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}
