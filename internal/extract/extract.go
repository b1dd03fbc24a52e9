package extract

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/olist-etl/pkg/db/models"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
	"github.com/angelmondragon/olist-etl/pkg/logger"
)

// HolidayFetcher downloads one year of public holidays.
type HolidayFetcher interface {
	Fetch(ctx context.Context, year string) ([]models.Holiday, error)
}

// Params configures a csv extraction.
type Params struct {
	CSVDir      string
	Tables      map[string]string
	HolidayYear string
}

// Service assembles the sources of a pipeline run.
type Service struct {
	logg     *logger.Logger
	holidays HolidayFetcher
}

func NewService(logg *logger.Logger, fetcher HolidayFetcher) *Service {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{logg: logg, holidays: fetcher}
}

// Extract loads the csv tables and the holiday calendar of the configured
// year. Holidays fetched remotely replace any public_holidays csv.
func (s *Service) Extract(ctx context.Context, params Params) (*Sources, error) {
	sources, err := s.LoadCSV(ctx, params.CSVDir, params.Tables)
	if err != nil {
		return nil, err
	}

	if s.holidays == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "holiday fetcher not configured")
	}
	holidayCtx := s.logg.WithFields(ctx, map[string]any{"table": models.TableHolidays, "year": params.HolidayYear})
	fetched, err := s.holidays.Fetch(ctx, params.HolidayYear)
	if err != nil {
		s.logg.Error(holidayCtx, "holiday fetch failed", err)
		return nil, err
	}
	sources.Holidays = fetched
	sources.Mark(models.TableHolidays)
	s.logg.Info(s.logg.WithField(holidayCtx, "rows", len(fetched)), "holidays fetched")

	return s.finish(ctx, sources)
}

// ExtractDatabase loads every source table from the relational store.
func (s *Service) ExtractDatabase(ctx context.Context, conn *gorm.DB) (*Sources, error) {
	sources, err := s.LoadDatabase(ctx, conn)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, sources)
}

func (s *Service) finish(ctx context.Context, sources *Sources) (*Sources, error) {
	sources.Holidays = uniqueHolidays(sources.Holidays)
	if err := sources.Validate(); err != nil {
		s.logg.Error(ctx, "source validation failed", err)
		return nil, err
	}
	return sources, nil
}

func uniqueHolidays(in []models.Holiday) []models.Holiday {
	if len(in) == 0 {
		return in
	}
	out := make([]models.Holiday, 0, len(in))
	seen := make(map[int64]struct{}, len(in))
	for _, h := range in {
		key := h.Date.Unix()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
	}
	return out
}
