package warehouse

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/olist-etl/internal/extract"
	"github.com/angelmondragon/olist-etl/pkg/db"
	"github.com/angelmondragon/olist-etl/pkg/db/models"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
	"github.com/angelmondragon/olist-etl/pkg/logger"
)

const defaultBatchSize = 500

type LoaderParams struct {
	DB        *db.Client
	Logger    *logger.Logger
	BatchSize int
}

// Loader copies extracted sources into the relational warehouse.
type Loader struct {
	db        *db.Client
	repo      *Repository
	logg      *logger.Logger
	batchSize int
}

func NewLoader(params LoaderParams) (*Loader, error) {
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Loader{
		db:        params.DB,
		repo:      NewRepository(params.DB.DB()),
		logg:      params.Logger,
		batchSize: batchSize,
	}, nil
}

// AutoMigrate creates missing warehouse tables from the models. Goose
// migrations remain the schema of record outside local sqlite runs.
func (l *Loader) AutoMigrate(ctx context.Context) error {
	if err := l.db.DB().WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "auto migrate warehouse")
	}
	return nil
}

type tableLoad struct {
	table string
	model any
	rows  any
	count int
}

func loadsFor(s *extract.Sources) []tableLoad {
	return []tableLoad{
		{models.TableCustomers, &models.Customer{}, s.Customers, len(s.Customers)},
		{models.TableOrders, &models.Order{}, s.Orders, len(s.Orders)},
		{models.TableOrderItems, &models.OrderItem{}, s.Items, len(s.Items)},
		{models.TableProducts, &models.Product{}, s.Products, len(s.Products)},
		{models.TableTranslations, &models.CategoryTranslation{}, s.Translations, len(s.Translations)},
		{models.TableHolidays, &models.Holiday{}, s.Holidays, len(s.Holidays)},
	}
}

// Load replaces the warehouse rows of every loaded source table inside one
// transaction and returns the row count written per table. Tables the
// sources never loaded are left untouched.
func (l *Loader) Load(ctx context.Context, sources *extract.Sources) (map[string]int, error) {
	if sources == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sources are required")
	}
	written := map[string]int{}
	err := l.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, load := range loadsFor(sources) {
			if !sources.Has(load.table) {
				continue
			}
			if err := l.repo.ReplaceWithTx(tx, load.model, load.rows, load.count, l.batchSize); err != nil {
				return loadError(load.table, err)
			}
			written[load.table] = load.count
			tableCtx := l.logg.WithFields(ctx, map[string]any{"table": load.table, "rows": load.count})
			l.logg.Debug(tableCtx, "warehouse table replaced")
		}
		return nil
	})
	if err != nil {
		l.logg.Error(ctx, "warehouse load failed", err)
		return nil, err
	}
	l.logg.Info(l.logg.WithField(ctx, "tables", len(written)), "warehouse loaded")
	return written, nil
}

func loadError(table string, err error) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("duplicate key in %s", table)).
			WithDetails(map[string]any{"table": table})
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("write table %s", table))
}
