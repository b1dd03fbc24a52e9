package worker

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/olist-etl/internal/analytics/query"
	"github.com/angelmondragon/olist-etl/internal/analytics/types"
	"github.com/angelmondragon/olist-etl/internal/extract"
	"github.com/angelmondragon/olist-etl/pkg/enums"
	"github.com/angelmondragon/olist-etl/pkg/logger"
	"github.com/angelmondragon/olist-etl/pkg/metrics"
)

// ServiceParams configure the transform runner.
type ServiceParams struct {
	Logger   *logger.Logger
	Metrics  *metrics.TransformMetrics
	Parallel bool
	// Queries overrides the catalog order; defaults to every query name.
	Queries []enums.QueryName
}

// Service runs the transform catalog over one set of sources.
type Service struct {
	logg     *logger.Logger
	metrics  *metrics.TransformMetrics
	parallel bool
	queries  []enums.QueryName
	lookup   func(enums.QueryName) (query.Transform, error)
}

// NewService builds a transform runner.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	queries := params.Queries
	if len(queries) == 0 {
		queries = enums.QueryNames()
	}
	for _, name := range queries {
		if !name.IsValid() {
			return nil, errors.New("unknown query " + string(name))
		}
	}
	return &Service{
		logg:     params.Logger,
		metrics:  params.Metrics,
		parallel: params.Parallel,
		queries:  queries,
		lookup:   query.Lookup,
	}, nil
}

// RunAll executes every configured transform and stops at the first failure.
// Parallel and serial runs produce identical results.
func (s *Service) RunAll(ctx context.Context, sources *extract.Sources) (*Results, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	s.logg.Info(ctx, "transforms starting")

	tables := make([]types.Table, len(s.queries))
	if s.parallel {
		group, groupCtx := errgroup.WithContext(ctx)
		for i, name := range s.queries {
			i, name := i, name
			group.Go(func() error {
				table, err := s.runTransform(groupCtx, name, sources)
				if err != nil {
					return err
				}
				tables[i] = table
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, name := range s.queries {
			table, err := s.runTransform(ctx, name, sources)
			if err != nil {
				return nil, err
			}
			tables[i] = table
		}
	}

	results := NewResults()
	for _, table := range tables {
		if err := results.Put(table); err != nil {
			return nil, err
		}
	}
	doneCtx := s.logg.WithFields(ctx, map[string]any{
		"duration_ms": time.Since(start).Milliseconds(),
		"results":     results.Len(),
	})
	s.logg.Info(doneCtx, "transforms completed")
	return results, nil
}

func (s *Service) runTransform(ctx context.Context, name enums.QueryName, sources *extract.Sources) (types.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runCtx := s.logg.WithTransform(ctx, string(name))
	transform, err := s.lookup(name)
	if err != nil {
		s.logg.Error(runCtx, "transform lookup failed", err)
		s.metrics.IncFailure(string(name))
		return nil, err
	}

	s.logg.Debug(runCtx, "transform start")
	started := time.Now()
	table, err := transform(sources)
	duration := time.Since(started)
	s.metrics.ObserveDuration(string(name), duration)
	runCtx = s.logg.WithField(runCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(runCtx, "transform failed", err)
		s.metrics.IncFailure(string(name))
		return nil, err
	}
	runCtx = s.logg.WithField(runCtx, "rows", table.Len())
	s.logg.Info(runCtx, "transform completed")
	s.metrics.IncSuccess(string(name))
	s.metrics.SetRows(string(name), table.Len())
	return table, nil
}
