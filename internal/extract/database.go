package extract

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/olist-etl/pkg/db/models"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
)

// LoadDatabase reads the typed tables from the relational store. Tables that
// do not exist are left unmarked so Validate can name them.
func (s *Service) LoadDatabase(ctx context.Context, conn *gorm.DB) (*Sources, error) {
	if conn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database connection required")
	}
	sources := NewSources()
	conn = conn.WithContext(ctx)

	loaders := []struct {
		table string
		order string
		dest  any
	}{
		{models.TableOrders, "order_id", &sources.Orders},
		{models.TableOrderItems, "order_id, order_item_id", &sources.Items},
		{models.TableProducts, "product_id", &sources.Products},
		{models.TableCustomers, "customer_id", &sources.Customers},
		{models.TableTranslations, "product_category_name", &sources.Translations},
		{models.TableHolidays, "date", &sources.Holidays},
	}

	for _, l := range loaders {
		tableCtx := s.logg.WithTable(ctx, l.table)
		if !conn.Migrator().HasTable(l.table) {
			s.logg.Warn(tableCtx, "source table not found in database")
			continue
		}
		columnTypes, err := conn.Migrator().ColumnTypes(l.table)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeSourceLoad, err, fmt.Sprintf("inspect table %s", l.table))
		}
		if err := conn.Table(l.table).Order(l.order).Find(l.dest).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeSourceLoad, err, fmt.Sprintf("read table %s", l.table))
		}
		columns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			columns = append(columns, ct.Name())
		}
		sources.MarkColumns(l.table, columns...)
		s.logg.Info(s.logg.WithField(tableCtx, "rows", sources.Count(l.table)), "database table loaded")
	}

	return sources, nil
}
