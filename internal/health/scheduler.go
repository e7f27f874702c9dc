package health

import (
	"fmt"

	"gatewaymon/internal/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler drives periodic collection cycles. Each organization is sampled
// by its own cron entry; cycles for different organizations run in parallel,
// while the alert engine serializes per-organization work internally.
type Scheduler struct {
	sampler *Sampler
	cron    *cron.Cron
	orgs    []string
}

func NewScheduler(sampler *Sampler, orgs []string) *Scheduler {
	return &Scheduler{
		sampler: sampler,
		cron:    cron.New(cron.WithSeconds()),
		orgs:    orgs,
	}
}

// Start registers the sampling jobs and starts the cron loop.
func (s *Scheduler) Start(intervalSeconds int) error {
	spec := fmt.Sprintf("@every %ds", intervalSeconds)

	for _, org := range s.orgs {
		orgID := org
		if _, err := s.cron.AddFunc(spec, func() {
			if _, err := s.sampler.Sample(orgID); err != nil {
				logger.Error("collection cycle failed",
					zap.String("organization_id", orgID), zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("failed to schedule sampling for %s: %w", orgID, err)
		}
	}

	s.cron.Start()
	logger.Info("health sampling scheduled",
		zap.Int("interval_seconds", intervalSeconds),
		zap.Int("organizations", len(s.orgs)))
	return nil
}

// AddJob registers an additional periodic job, such as SLA period evaluation.
func (s *Scheduler) AddJob(spec string, job func()) error {
	_, err := s.cron.AddFunc(spec, job)
	return err
}

// Stop halts the cron loop; running jobs complete.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
