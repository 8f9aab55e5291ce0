package jobs

import (
	"motorent-backend/internal/config"
	"motorent-backend/internal/logger"
	"motorent-backend/internal/repository"
	"motorent-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs.
type JobRunner struct {
	reservationRepo repository.ReservationRepository
	vendorRepo      repository.VendorRepository
	dispatcher      service.Dispatcher
	config          *config.Config
}

// NewJobRunner creates a new job runner with all dependencies.
func NewJobRunner(
	reservationRepo repository.ReservationRepository,
	vendorRepo repository.VendorRepository,
	dispatcher service.Dispatcher,
	cfg *config.Config,
) *JobRunner {
	return &JobRunner{
		reservationRepo: reservationRepo,
		vendorRepo:      vendorRepo,
		dispatcher:      dispatcher,
		config:          cfg,
	}
}

// Config exposes the loaded configuration to the scheduler.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllJobs runs every job once, for manual execution from the
// cronjob binary.
func (jr *JobRunner) RunAllJobs() {
	jr.ExpireStalePendingReservations()
	jr.SendPickupReminders()
}
