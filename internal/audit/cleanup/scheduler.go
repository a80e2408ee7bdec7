package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"offboard/internal/platform/redis"
)

// lockName coordinates the purge across replicas so only one runs per tick.
const lockName = "audit-cleanup"

// lockTTL must outlive the longest plausible purge.
const lockTTL = 30 * time.Minute

// Scheduler runs the purger on a cron schedule. With a redis client, the
// pass is guarded by a cross-replica lock; without one, every tick runs
// locally.
type Scheduler struct {
	purger *Purger
	redis  *redis.Client
	logger *slog.Logger
	cron   *cron.Cron
}

func NewScheduler(purger *Purger, redisClient *redis.Client, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		purger: purger,
		redis:  redisClient,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start registers the schedule and launches the cron loop.
func (s *Scheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, s.tick)
	if err != nil {
		return fmt.Errorf("register cleanup schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	s.logger.Info("retention scheduler started", "schedule", schedule)
	return nil
}

// Stop halts the cron loop and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), lockTTL)
	defer cancel()

	acquired, release, err := s.redis.TryLock(ctx, lockName, lockTTL)
	if err != nil {
		s.logger.Error("cleanup lock acquisition failed", "error", err)
		return
	}
	if !acquired {
		s.logger.Debug("cleanup already running on another replica")
		return
	}
	defer release()

	if _, _, err := s.purger.Run(ctx); err != nil {
		s.logger.Error("retention pass reported failures", "error", err)
	}
}
