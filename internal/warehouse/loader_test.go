package warehouse

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/olist-etl/internal/extract"
	"github.com/angelmondragon/olist-etl/pkg/db"
	"github.com/angelmondragon/olist-etl/pkg/db/models"
	"github.com/angelmondragon/olist-etl/pkg/enums"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
	"github.com/angelmondragon/olist-etl/pkg/logger"
	"github.com/angelmondragon/olist-etl/pkg/migrate"
)

func newTestLoader(t *testing.T) (*Loader, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	loader, err := NewLoader(LoaderParams{DB: db.NewFromGorm(conn), Logger: logger.Nop(), BatchSize: 2})
	require.NoError(t, err)
	return loader, conn
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleSources() *extract.Sources {
	delivered := day(2017, 1, 20)
	weight := 400.0
	s := extract.NewSources()
	s.Orders = []models.Order{
		{OrderID: "o1", CustomerID: "c1", Status: enums.OrderStatusDelivered, PurchaseTimestamp: day(2017, 1, 10), DeliveredCustomerDate: &delivered},
		{OrderID: "o2", CustomerID: "c2", Status: enums.OrderStatusCanceled, PurchaseTimestamp: day(2017, 2, 1), CustomerState: "RJ"},
		{OrderID: "o3", CustomerID: "c1", Status: enums.OrderStatusShipped, PurchaseTimestamp: day(2017, 3, 1)},
	}
	s.Items = []models.OrderItem{
		{OrderID: "o1", ItemSeq: 1, ProductID: "p1", Price: decimal.RequireFromString("19.90"), FreightValue: decimal.RequireFromString("3.10")},
		{OrderID: "o1", ItemSeq: 2, ProductID: "p1", Price: decimal.RequireFromString("19.90"), FreightValue: decimal.RequireFromString("3.10")},
	}
	s.Products = []models.Product{{ProductID: "p1", CategoryName: "cama_mesa_banho", WeightG: &weight}}
	s.Customers = []models.Customer{
		{CustomerID: "c1", CustomerUniqueID: "u1", State: "SP"},
		{CustomerID: "c2", CustomerUniqueID: "u2", State: "RJ"},
	}
	s.Holidays = []models.Holiday{{Date: day(2017, 1, 1), Name: "New Year's Day", CountryCode: "BR", Global: true}}
	s.Mark(models.TableOrders, models.TableOrderItems, models.TableProducts, models.TableCustomers, models.TableHolidays)
	return s
}

func TestNewLoaderValidatesParams(t *testing.T) {
	_, err := NewLoader(LoaderParams{Logger: logger.Nop()})
	require.Error(t, err)

	loader, conn := newTestLoader(t)
	_, err = NewLoader(LoaderParams{DB: db.NewFromGorm(conn)})
	require.Error(t, err)
	assert.Equal(t, 2, loader.batchSize)
}

func TestLoadRoundTripsThroughDatabaseSource(t *testing.T) {
	loader, conn := newTestLoader(t)
	ctx := context.Background()
	require.NoError(t, loader.AutoMigrate(ctx))

	written, err := loader.Load(ctx, sampleSources())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		models.TableCustomers:  2,
		models.TableOrders:     3,
		models.TableOrderItems: 2,
		models.TableProducts:   1,
		models.TableHolidays:   1,
	}, written)

	sources, err := extract.NewService(logger.Nop(), nil).ExtractDatabase(ctx, conn)
	require.NoError(t, err)
	require.Len(t, sources.Orders, 3)
	require.Len(t, sources.Items, 2)
	assert.True(t, decimal.RequireFromString("19.90").Equal(sources.Items[0].Price))
	assert.Equal(t, "SP", sources.StateOf(&sources.Orders[0]))
	assert.True(t, sources.Has(models.TableTranslations))
	assert.Empty(t, sources.Translations)
}

func TestLoadReplacesExistingRows(t *testing.T) {
	loader, conn := newTestLoader(t)
	ctx := context.Background()
	require.NoError(t, loader.AutoMigrate(ctx))

	_, err := loader.Load(ctx, sampleSources())
	require.NoError(t, err)

	smaller := sampleSources()
	smaller.Orders = smaller.Orders[:1]
	_, err = loader.Load(ctx, smaller)
	require.NoError(t, err)

	n, err := loader.repo.Count(conn, &models.Order{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = loader.repo.Count(nil, &models.OrderItem{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestLoadDuplicateKeyRollsBack(t *testing.T) {
	loader, conn := newTestLoader(t)
	ctx := context.Background()
	require.NoError(t, loader.AutoMigrate(ctx))

	_, err := loader.Load(ctx, sampleSources())
	require.NoError(t, err)

	broken := sampleSources()
	broken.Items = append(broken.Items, broken.Items[0])
	_, err = loader.Load(ctx, broken)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	n, err := loader.repo.Count(conn, &models.OrderItem{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestLoadAgainstGooseSchema(t *testing.T) {
	loader, conn := newTestLoader(t)
	ctx := context.Background()
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, migrate.Run(ctx, sqlDB, "sqlite3", "../../pkg/migrate/migrations", "up"))

	written, err := loader.Load(ctx, sampleSources())
	require.NoError(t, err)
	assert.Equal(t, 3, written[models.TableOrders])

	var states []string
	require.NoError(t, conn.Model(&models.Customer{}).Order("customer_id").Pluck("customer_state", &states).Error)
	assert.Equal(t, []string{"SP", "RJ"}, states)
}

func TestLoadRequiresSources(t *testing.T) {
	loader, _ := newTestLoader(t)
	_, err := loader.Load(context.Background(), nil)
	require.Error(t, err)
}
