// Package jobs contains implementations of scheduled jobs for the Dojo
// Community Hub.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dojo-hub/dojo-community-hub/internal/application/query"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/notification"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
	"github.com/dojo-hub/dojo-community-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY DIGEST JOB
// ══════════════════════════════════════════════════════════════════════════════

// CityLister provides the list of cities the school operates in.
type CityLister interface {
	ListCityIDs(ctx context.Context) ([]shared.CityID, error)
}

// DailyDigestJob broadcasts each city's resolved class day every
// morning. A city with no classes still gets a digest: a rest-day
// message beats silence that reads like an outage.
type DailyDigestJob struct {
	cities     CityLister
	calendar   *query.CalendarQuery
	dispatcher notification.Dispatcher
	logger     *slog.Logger
	config     DailyDigestConfig
}

// DailyDigestConfig contains configuration for the daily digest job.
type DailyDigestConfig struct {
	// Enabled turns the digest broadcast on.
	Enabled bool

	// Concurrency is the number of city digests to send in parallel.
	Concurrency int

	// Timeout is the maximum duration for the job.
	Timeout time.Duration
}

// DefaultDailyDigestConfig returns sensible defaults.
func DefaultDailyDigestConfig() DailyDigestConfig {
	return DailyDigestConfig{
		Enabled:     true,
		Concurrency: 4,
		Timeout:     2 * time.Minute,
	}
}

// NewDailyDigestJob creates a new daily digest job.
func NewDailyDigestJob(
	cities CityLister,
	calendar *query.CalendarQuery,
	dispatcher notification.Dispatcher,
	logger *slog.Logger,
	config DailyDigestConfig,
) *DailyDigestJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}

	return &DailyDigestJob{
		cities:     cities,
		calendar:   calendar,
		dispatcher: dispatcher,
		logger:     logger,
		config:     config,
	}
}

// Name returns the job name.
func (j *DailyDigestJob) Name() string {
	return "daily_digest"
}

// Description returns a human-readable description.
func (j *DailyDigestJob) Description() string {
	return "Broadcasts each city's resolved class day"
}

// Run executes the daily digest job.
func (j *DailyDigestJob) Run(ctx context.Context) error {
	if !j.config.Enabled {
		j.logger.Info("daily digest is disabled")
		return nil
	}

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	today, err := shared.NewISODate(timeutil.FormatDateStr(timeutil.Now()))
	if err != nil {
		return fmt.Errorf("daily_digest: today: %w", err)
	}

	cityIDs, err := j.cities.ListCityIDs(ctx)
	if err != nil {
		return fmt.Errorf("daily_digest: list cities: %w", err)
	}
	if len(cityIDs) == 0 {
		j.logger.Info("no cities registered, skipping digest")
		return nil
	}

	var (
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, j.config.Concurrency)
		mu        sync.Mutex
		sent      int
		failed    int
	)

	for _, cityID := range cityIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(city shared.CityID) {
			defer wg.Done()
			defer func() { <-semaphore }()

			err := j.sendCityDigest(ctx, city, today)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				j.logger.Error("failed to send city digest",
					"city_id", city,
					"date", today,
					"error", err,
				)
			} else {
				sent++
			}
		}(cityID)
	}

	wg.Wait()

	j.logger.Info("daily_digest job completed",
		"date", today,
		"cities", len(cityIDs),
		"sent", sent,
		"failed", failed,
	)

	return nil
}

// sendCityDigest resolves one city's day and broadcasts it.
func (j *DailyDigestJob) sendCityDigest(ctx context.Context, cityID shared.CityID, date shared.ISODate) error {
	occurrences, err := j.calendar.Day(ctx, cityID, date)
	if err != nil {
		return fmt.Errorf("resolve day: %w", err)
	}

	msg := notification.DailyDigest(cityID, date, occurrences)
	if err := j.dispatcher.NotifyCity(ctx, msg); err != nil {
		return fmt.Errorf("broadcast: %w", err)
	}
	return nil
}
