package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/olist-etl/internal/analytics/worker"
	"github.com/angelmondragon/olist-etl/internal/analytics/writer"
	"github.com/angelmondragon/olist-etl/internal/extract"
	"github.com/angelmondragon/olist-etl/internal/warehouse"
	"github.com/angelmondragon/olist-etl/pkg/config"
	"github.com/angelmondragon/olist-etl/pkg/db"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
	"github.com/angelmondragon/olist-etl/pkg/holidays"
	"github.com/angelmondragon/olist-etl/pkg/logger"
	"github.com/angelmondragon/olist-etl/pkg/metrics"
)

// Params wire a pipeline. DB is required when the config reads sources from
// the database or loads the warehouse. Holidays defaults to the configured
// remote calendar and Registry to a private registry. Lock, when set, is held
// around warehouse loads; a run that cannot take it skips the load.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Holidays extract.HolidayFetcher
	Registry *prometheus.Registry
	Lock     Lock
}

// Outcome describes one finished run.
type Outcome struct {
	RunID    string
	Results  *worker.Results
	Loaded   map[string]int
	Files    []string
	Duration time.Duration
}

// Pipeline runs extract, optional warehouse load, the transform catalog and
// the configured exports.
type Pipeline struct {
	cfg      *config.Config
	logg     *logger.Logger
	db       *db.Client
	registry *prometheus.Registry
	lock     Lock
	extract  *extract.Service
	runner   *worker.Service
	writer   *writer.Writer
}

func New(params Params) (*Pipeline, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	cfg := params.Config
	if cfg.NeedsDB() && params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required for this configuration")
	}

	fetcher := params.Holidays
	if fetcher == nil {
		fetcher = holidays.NewClient(
			holidays.WithBaseURL(cfg.Holidays.BaseURL),
			holidays.WithCountry(cfg.Holidays.Country),
			holidays.WithTimeout(cfg.Holidays.Timeout),
		)
	}
	registry := params.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	runner, err := worker.NewService(worker.ServiceParams{
		Logger:   params.Logger,
		Metrics:  metrics.NewTransformMetrics(registry),
		Parallel: cfg.Pipeline.Parallel,
	})
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:      cfg,
		logg:     params.Logger,
		db:       params.DB,
		registry: registry,
		lock:     params.Lock,
		extract:  extract.NewService(params.Logger, fetcher),
		runner:   runner,
		writer:   writer.New(params.Logger),
	}, nil
}

// Registry exposes the metrics collected by runs of this pipeline.
func (p *Pipeline) Registry() *prometheus.Registry {
	return p.registry
}

// Run executes one pipeline run. Any failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	started := time.Now()
	outcome := &Outcome{RunID: uuid.NewString()}
	ctx = p.logg.WithRunID(ctx, outcome.RunID)
	p.logg.Info(p.logg.WithField(ctx, "source", p.cfg.Sources.Kind), "pipeline run starting")

	sources, err := p.extractSources(ctx)
	if err != nil {
		return nil, err
	}

	if p.cfg.Pipeline.LoadWarehouse {
		loaded, err := p.loadWarehouse(ctx, sources)
		if err != nil {
			return nil, err
		}
		outcome.Loaded = loaded
	}

	results, err := p.runner.RunAll(ctx, sources)
	if err != nil {
		return nil, err
	}
	outcome.Results = results

	files, err := p.export(ctx, results)
	if err != nil {
		return nil, err
	}
	outcome.Files = files

	if path := p.cfg.Pipeline.MetricsFile; path != "" {
		if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write metrics file")
		}
		outcome.Files = append(outcome.Files, path)
	}

	outcome.Duration = time.Since(started)
	doneCtx := p.logg.WithFields(ctx, map[string]any{
		"duration_ms": outcome.Duration.Milliseconds(),
		"results":     results.Len(),
		"files":       len(outcome.Files),
	})
	p.logg.Info(doneCtx, "pipeline run completed")
	return outcome, nil
}

func (p *Pipeline) extractSources(ctx context.Context) (*extract.Sources, error) {
	if !p.cfg.Sources.IsCSV() {
		return p.extract.ExtractDatabase(ctx, p.db.DB())
	}
	return p.extract.Extract(ctx, extract.Params{
		CSVDir:      p.cfg.Sources.CSVDir,
		Tables:      p.cfg.Sources.Tables,
		HolidayYear: p.cfg.Holidays.Year,
	})
}

func (p *Pipeline) loadWarehouse(ctx context.Context, sources *extract.Sources) (map[string]int, error) {
	if p.lock != nil {
		acquired, err := p.lock.Acquire(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire warehouse lock")
		}
		if !acquired {
			p.logg.Warn(ctx, "warehouse load skipped; lock held by another run")
			return nil, nil
		}
		defer func() {
			if err := p.lock.Release(ctx); err != nil {
				p.logg.Error(ctx, "release warehouse lock", err)
			}
		}()
	}

	loader, err := warehouse.NewLoader(warehouse.LoaderParams{DB: p.db, Logger: p.logg})
	if err != nil {
		return nil, err
	}
	if p.cfg.DB.IsSQLite() && p.cfg.Pipeline.AutoMigrate {
		if err := loader.AutoMigrate(ctx); err != nil {
			return nil, err
		}
	}
	return loader.Load(ctx, sources)
}

func (p *Pipeline) export(ctx context.Context, results *worker.Results) ([]string, error) {
	var files []string
	if dir := p.cfg.Pipeline.OutputDir; dir != "" {
		jsonFiles, err := p.writer.WriteJSON(ctx, dir, results)
		if err != nil {
			return nil, err
		}
		csvFiles, err := p.writer.WriteCSV(ctx, dir, results)
		if err != nil {
			return nil, err
		}
		files = append(files, jsonFiles...)
		files = append(files, csvFiles...)
	}
	if path := p.cfg.Pipeline.OutputWorkbook; path != "" {
		if err := p.writer.WriteWorkbook(ctx, path, results); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}
