package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/olist-etl/internal/analytics"
	"github.com/angelmondragon/olist-etl/pkg/logger"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (*Outcome, error)
}

// RefreshParams configure a Refresher.
type RefreshParams struct {
	Runner    Runner
	Publisher analytics.Service
	Logger    *logger.Logger
	Interval  time.Duration
}

// Refresher publishes pipeline results, rerunning the pipeline on a fixed
// cadence when Interval is positive.
type Refresher struct {
	runner    Runner
	publisher analytics.Service
	logg      *logger.Logger
	interval  time.Duration
}

func NewRefresher(params RefreshParams) (*Refresher, error) {
	if params.Runner == nil {
		return nil, errors.New("runner required")
	}
	if params.Publisher == nil {
		return nil, errors.New("publisher required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &Refresher{
		runner:    params.Runner,
		publisher: params.Publisher,
		logg:      params.Logger,
		interval:  params.Interval,
	}, nil
}

// Run performs the first cycle immediately. Without an interval it returns
// that cycle's error; otherwise it keeps refreshing until ctx is canceled. A
// failed refresh keeps the previously published results.
func (r *Refresher) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	err := r.runCycle(ctx)
	if r.interval <= 0 {
		return err
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logg.Info(ctx, "refresher context canceled")
			return ctx.Err()
		case <-ticker.C:
			_ = r.runCycle(ctx)
		}
	}
}

func (r *Refresher) runCycle(ctx context.Context) error {
	outcome, err := r.runner.Run(ctx)
	if err != nil {
		r.logg.Error(ctx, "pipeline refresh failed", err)
		return err
	}
	r.publisher.Publish(outcome.Results)
	r.logg.Info(r.logg.WithField(ctx, "run_id", outcome.RunID), "results published")
	return nil
}
