package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/parth-ai/parth/internal/coach"
	"github.com/parth-ai/parth/internal/courier"
	"github.com/parth-ai/parth/internal/store"
)

// JobEvaluateAccount is the job name for one proactive evaluation.
const JobEvaluateAccount = "evaluate_account"

// EvaluateArgs is the payload of an evaluate_account job.
type EvaluateArgs struct {
	AccountID uint `json:"account_id"`
}

// cronParser uses standard 5-field cron expressions (minute, hour, dom,
// month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler owns the two cron triggers: evaluation ticks that fan out
// into queued jobs, and sweep ticks that deliver due scheduled messages
// inline.
type Scheduler struct {
	db       *gorm.DB
	courier  courier.Courier
	cron     *cron.Cron
	evalSpec string
	sweep    string
	period   time.Duration
}

// SchedulerOpts holds parameters for creating a Scheduler.
type SchedulerOpts struct {
	DB           *gorm.DB
	Courier      courier.Courier
	EvaluateCron string        // default "0 */2 * * *"
	SweepCron    string        // default "*/10 * * * *"
	EvalPeriod   time.Duration // dedup bucket width, default 2h
}

// NewScheduler creates the cron runtime. Specs are validated eagerly so
// a bad config fails at startup, not at first tick.
func NewScheduler(opts SchedulerOpts) (*Scheduler, error) {
	evalSpec := opts.EvaluateCron
	if evalSpec == "" {
		evalSpec = "0 */2 * * *"
	}
	sweepSpec := opts.SweepCron
	if sweepSpec == "" {
		sweepSpec = "*/10 * * * *"
	}
	period := opts.EvalPeriod
	if period <= 0 {
		period = 2 * time.Hour
	}
	for _, spec := range []string{evalSpec, sweepSpec} {
		if _, err := cronParser.Parse(spec); err != nil {
			return nil, fmt.Errorf("queue: cron spec %q: %w", spec, err)
		}
	}
	return &Scheduler{
		db:       opts.DB,
		courier:  opts.Courier,
		cron:     cron.New(cron.WithParser(cronParser)),
		evalSpec: evalSpec,
		sweep:    sweepSpec,
		period:   period,
	}, nil
}

// Start registers the triggers and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.evalSpec, func() { s.EvaluateTick(time.Now().UTC()) }); err != nil {
		return fmt.Errorf("queue: add evaluate trigger: %w", err)
	}
	if _, err := s.cron.AddFunc(s.sweep, func() { s.SweepTick(ctx, time.Now().UTC()) }); err != nil {
		return fmt.Errorf("queue: add sweep trigger: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for running triggers to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// EvaluateTick enqueues one evaluate_account job per active account with
// at least one active goal. The dedup key buckets the tick time so a
// re-fired or doubly-delivered tick in the same bucket enqueues nothing.
func (s *Scheduler) EvaluateTick(now time.Time) {
	accounts, err := store.ActiveAccountsWithActiveGoals(s.db)
	if err != nil {
		log.Printf("queue: evaluate tick: %v", err)
		return
	}

	bucket := now.Truncate(s.period).Format(time.RFC3339)
	enqueued := 0
	for _, acct := range accounts {
		key := fmt.Sprintf("evaluate:%d:%s", acct.ID, bucket)
		job, err := Enqueue(s.db, JobEvaluateAccount, EvaluateArgs{AccountID: acct.ID}, key)
		if err != nil {
			log.Printf("queue: enqueue evaluate for account %d: %v", acct.ID, err)
			continue
		}
		if job != nil {
			enqueued++
		}
	}
	log.Printf("queue: evaluate tick: %d accounts, %d jobs enqueued", len(accounts), enqueued)
}

// SweepTick delivers due scheduled messages inline; the sweep is already
// idempotent so it needs no queue round trip.
func (s *Scheduler) SweepTick(ctx context.Context, now time.Time) {
	sent, failed, err := coach.Sweep(ctx, s.db, s.courier, now)
	if err != nil {
		log.Printf("queue: sweep tick: %v", err)
		return
	}
	if sent > 0 || failed > 0 {
		log.Printf("queue: sweep tick: %d sent, %d failed", sent, failed)
	}
}
