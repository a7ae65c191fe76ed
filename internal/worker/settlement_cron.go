package worker

// settlement_cron.go
// Background goroutine that runs the daily settlement sweep (missed
// settlement penalties for yesterday) and, on the first run of a new month,
// regenerates last month's performance snapshots. Both jobs are idempotent:
// penalties are guarded per (user, store, date) and locked snapshots are
// never rewritten, so the ticker can fire as often as it likes.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const cronTickInterval = 10 * time.Minute

// SweepFuncs are the scheduled entry points, wired in cmd/server.
type SweepFuncs struct {
	// MissedSettlements penalizes managers of stores with no settlement row
	// for the given business date.
	MissedSettlements func(ctx context.Context, date time.Time) (int, error)
	// MonthlySnapshot regenerates the performance snapshot for a month.
	MonthlySnapshot func(ctx context.Context, year, month int) error
}

// StartSettlementCron launches the sweep ticker. The sweep for a business
// date fires once the server clock passes cronHour on the following day.
func StartSettlementCron(ctx context.Context, cronHour int, fns SweepFuncs) {
	go func() {
		ticker := time.NewTicker(cronTickInterval)
		defer ticker.Stop()

		log.Info().Int("hour", cronHour).Msg("settlement_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("settlement_cron: shutting down")
				return
			case <-ticker.C:
				runSweep(ctx, cronHour, fns)
			}
		}
	}()
}

func runSweep(ctx context.Context, cronHour int, fns SweepFuncs) {
	now := time.Now()
	if now.Hour() < cronHour {
		return
	}

	yesterday := now.AddDate(0, 0, -1)
	date := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC)

	if fns.MissedSettlements != nil {
		if n, err := fns.MissedSettlements(ctx, date); err != nil {
			log.Error().Err(err).Msg("settlement_cron: missed settlement sweep failed")
		} else if n > 0 {
			log.Info().Int("penalties", n).Str("date", date.Format("2006-01-02")).Msg("settlement_cron: sweep complete")
		}
	}

	// On the first days of a month, keep refreshing last month's snapshot so
	// late variance resolutions are folded in until the admin locks it.
	if fns.MonthlySnapshot != nil && now.Day() <= 5 {
		prev := now.AddDate(0, -1, 0)
		if err := fns.MonthlySnapshot(ctx, prev.Year(), int(prev.Month())); err != nil {
			log.Error().Err(err).Msg("settlement_cron: monthly snapshot failed")
		}
	}
}
