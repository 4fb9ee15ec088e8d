// Package jobs runs the periodic maintenance the interactive surface never
// triggers on its own: sweeping expired invites and logging an economy
// snapshot for the dashboard.
package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ashmount/ClanBot/internal/models"
	"github.com/ashmount/ClanBot/internal/repositories"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

// Runner owns the cron schedule.
type Runner struct {
	cron *cron.Cron
	db   *gorm.DB
	log  *logger.Logger
}

func NewRunner(db *gorm.DB, log *logger.Logger) *Runner {
	return &Runner{
		cron: cron.New(),
		db:   db,
		log:  log,
	}
}

// Start registers the schedule and launches it. Invites expire after five
// minutes, so a minutely sweep keeps the table from accumulating dead rows;
// acceptance already rejects expired codes on its own.
func (r *Runner) Start() error {
	if _, err := r.cron.AddFunc("* * * * *", r.sweepExpiredInvites); err != nil {
		return err
	}
	if _, err := r.cron.AddFunc("@daily", r.economySnapshot); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the schedule and waits for running jobs to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Runner) sweepExpiredInvites() {
	swept, err := repositories.NewClanRepository(r.db).DeleteExpiredInvites(time.Now())
	if err != nil {
		r.log.Error("expired invite sweep failed", zap.Error(err))
		return
	}
	if swept > 0 {
		r.log.Info("swept expired clan invites", zap.Int64("count", swept))
	}
}

func (r *Runner) economySnapshot() {
	wallets := repositories.NewWalletRepository(r.db)
	count, err := wallets.Count()
	if err != nil {
		r.log.Error("economy snapshot failed", zap.Error(err))
		return
	}
	total, err := wallets.TotalGold(models.CurrencyGold)
	if err != nil {
		r.log.Error("economy snapshot failed", zap.Error(err))
		return
	}
	r.log.Info("economy snapshot", zap.Int64("wallets", count), zap.Int64("total_gold", total))
}
