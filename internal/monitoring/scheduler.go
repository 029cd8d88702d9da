package monitoring

import (
	"fmt"
	"time"

	"github.com/isdelr/storefront/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs housekeeping jobs on cron expressions.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a scheduler with no jobs.
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Add registers fn under a standard cron expression or descriptor such as
// "@hourly".
func (s *Scheduler) Add(name, spec string, fn func() error) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := fn(); err != nil {
			log.Error().Err(err).Str("job", name).Msg("Scheduled job failed")
			return
		}
		log.Debug().Str("job", name).Dur("elapsed", time.Since(start)).Msg("Scheduled job finished")
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	return nil
}

// Run starts the scheduler in its own goroutine.
func (s *Scheduler) Run() {
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("Starting background scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped background scheduler")
}

// PruneRevokedTokens returns a job that drops expired revocations.
func PruneRevokedTokens(tokens services.TokenServiceProvider) func() error {
	return func() error {
		n, err := tokens.PruneExpired(time.Now())
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info().Int64("pruned", n).Msg("Pruned expired revoked tokens")
		}
		return nil
	}
}
