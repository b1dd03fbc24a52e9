package extract

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/angelmondragon/olist-etl/pkg/db/models"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
)

// RequiredTables must be loaded before the transform catalog can run.
var RequiredTables = []string{
	models.TableOrders,
	models.TableOrderItems,
	models.TableProducts,
	models.TableHolidays,
}

// Sources holds the typed input tables of one pipeline run. It is read-only
// once extraction finished and safe for concurrent readers.
type Sources struct {
	Orders       []models.Order
	Items        []models.OrderItem
	Products     []models.Product
	Customers    []models.Customer
	Translations []models.CategoryTranslation
	Holidays     []models.Holiday

	// loaded maps a table to the columns its source carried; a nil set means
	// the table was built from typed rows and carries every column.
	loaded map[string]map[string]struct{}

	indexOnce     sync.Once
	ordersByID    map[string]*models.Order
	productsByID  map[string]*models.Product
	stateByCust   map[string]string
	categoryNames map[string]string
}

func NewSources() *Sources {
	return &Sources{loaded: map[string]map[string]struct{}{}}
}

// Mark records tables as loaded with every column, even when they hold no
// rows. Tables already marked keep their column set.
func (s *Sources) Mark(tables ...string) {
	if s.loaded == nil {
		s.loaded = map[string]map[string]struct{}{}
	}
	for _, table := range tables {
		if _, ok := s.loaded[table]; !ok {
			s.loaded[table] = nil
		}
	}
}

// MarkColumns records table as loaded with exactly columns present.
func (s *Sources) MarkColumns(table string, columns ...string) {
	if s.loaded == nil {
		s.loaded = map[string]map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		set[col] = struct{}{}
	}
	s.loaded[table] = set
}

// HasColumn reports whether table was loaded and carried column.
func (s *Sources) HasColumn(table, column string) bool {
	if s == nil {
		return false
	}
	cols, ok := s.loaded[table]
	if !ok {
		return false
	}
	if cols == nil {
		return true
	}
	_, ok = cols[column]
	return ok
}

// Has reports whether table was loaded.
func (s *Sources) Has(table string) bool {
	if s == nil {
		return false
	}
	_, ok := s.loaded[table]
	return ok
}

// Tables lists the loaded table names, sorted.
func (s *Sources) Tables() []string {
	names := make([]string, 0, len(s.loaded))
	for name := range s.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of rows of a table.
func (s *Sources) Count(table string) int {
	switch table {
	case models.TableOrders:
		return len(s.Orders)
	case models.TableOrderItems:
		return len(s.Items)
	case models.TableProducts:
		return len(s.Products)
	case models.TableCustomers:
		return len(s.Customers)
	case models.TableTranslations:
		return len(s.Translations)
	case models.TableHolidays:
		return len(s.Holidays)
	default:
		return 0
	}
}

// Require returns a SCHEMA_ERROR naming every table that was not loaded.
func (s *Sources) Require(tables ...string) error {
	var errs error
	for _, table := range tables {
		if !s.Has(table) {
			errs = multierr.Append(errs, fmt.Errorf("table %s not loaded", table))
		}
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeSchema, errs, "required source tables missing")
	}
	return nil
}

// RequireColumns returns a SCHEMA_ERROR naming every column of table its
// source did not carry. The table itself must be loaded.
func (s *Sources) RequireColumns(table string, columns ...string) error {
	if err := s.Require(table); err != nil {
		return err
	}
	var missing []string
	for _, col := range columns {
		if !s.HasColumn(table, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeSchema, fmt.Sprintf("table %s is missing columns %s", table, strings.Join(missing, ", "))).
			WithDetails(map[string]any{"table": table, "missing": missing})
	}
	return nil
}

// RequireCustomerState checks that StateOf can resolve a state: either the
// orders carry customer_state or a customers table with states joins on
// customer_id.
func (s *Sources) RequireCustomerState() error {
	if s.HasColumn(models.TableOrders, "customer_state") {
		return nil
	}
	if s.HasColumn(models.TableOrders, "customer_id") && s.HasColumn(models.TableCustomers, "customer_state") {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeSchema, "customer_state unavailable: orders carry no customer_state and no customers table is loaded").
		WithDetails(map[string]any{"table": models.TableOrders, "missing": []string{"customer_state"}})
}

// Validate checks that every table of the transform catalog is present.
func (s *Sources) Validate() error {
	return s.Require(RequiredTables...)
}

func (s *Sources) buildIndex() {
	s.indexOnce.Do(func() {
		s.ordersByID = make(map[string]*models.Order, len(s.Orders))
		for i := range s.Orders {
			s.ordersByID[s.Orders[i].OrderID] = &s.Orders[i]
		}
		s.productsByID = make(map[string]*models.Product, len(s.Products))
		for i := range s.Products {
			s.productsByID[s.Products[i].ProductID] = &s.Products[i]
		}
		s.stateByCust = make(map[string]string, len(s.Customers))
		for _, c := range s.Customers {
			s.stateByCust[c.CustomerID] = c.State
		}
		s.categoryNames = make(map[string]string, len(s.Translations))
		for _, t := range s.Translations {
			if t.CategoryNameEnglish != "" {
				s.categoryNames[t.CategoryName] = t.CategoryNameEnglish
			}
		}
	})
}

// Order finds an order by id.
func (s *Sources) Order(orderID string) (*models.Order, bool) {
	s.buildIndex()
	o, ok := s.ordersByID[orderID]
	return o, ok
}

// Product finds a product by id.
func (s *Sources) Product(productID string) (*models.Product, bool) {
	s.buildIndex()
	p, ok := s.productsByID[productID]
	return p, ok
}

// StateOf returns the customer state of an order, falling back to the
// customers table when the orders export carries none.
func (s *Sources) StateOf(o *models.Order) string {
	if o.CustomerState != "" {
		return o.CustomerState
	}
	s.buildIndex()
	return s.stateByCust[o.CustomerID]
}

// CategoryOf returns the english category name of a product when a
// translation is loaded, the source name otherwise.
func (s *Sources) CategoryOf(p *models.Product) string {
	s.buildIndex()
	if english, ok := s.categoryNames[p.CategoryName]; ok {
		return english
	}
	return p.CategoryName
}
