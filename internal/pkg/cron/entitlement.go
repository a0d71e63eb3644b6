package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
)

type EntitlementJobs struct {
	entitlementService leave.EntitlementService
	interval           time.Duration
	now                func() time.Time
}

func NewEntitlementJobs(entitlementService leave.EntitlementService, interval time.Duration) *EntitlementJobs {
	return &EntitlementJobs{
		entitlementService: entitlementService,
		interval:           interval,
		now:                time.Now,
	}
}

func (j *EntitlementJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("provision_yearly_entitlements", j.interval, j.ProvisionCurrentYear)
}

// ProvisionCurrentYear makes sure every candidate has an entitlement row for
// the current calendar year.
func (j *EntitlementJobs) ProvisionCurrentYear(ctx context.Context) error {
	year := j.now().Year()

	count, err := j.entitlementService.ProvisionYear(ctx, year)
	if err != nil {
		return fmt.Errorf("provision entitlements for %d: %w", year, err)
	}

	slog.Info("Cron: entitlements provisioned", "year", year, "candidates", count)
	return nil
}
