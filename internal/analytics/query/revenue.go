package query

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/olist-etl/internal/analytics"
	"github.com/angelmondragon/olist-etl/internal/analytics/types"
	"github.com/angelmondragon/olist-etl/internal/extract"
	"github.com/angelmondragon/olist-etl/pkg/db/models"
	"github.com/angelmondragon/olist-etl/pkg/enums"
	pkgtypes "github.com/angelmondragon/olist-etl/pkg/types"
)

// topCategoriesLimit caps both category rankings.
const topCategoriesLimit = 10

var (
	revenueByMonthYearColumns = []string{"month", "Year2016", "Year2017", "Year2018"}
	revenuePerStateColumns    = []string{"customer_state", "Revenue"}
	leastCategoriesColumns    = []string{"Category", "Revenue"}
	topCategoriesColumns      = []string{"Category", "Revenue", "Num_order"}
)

// Revenue of an item is price + freight_value throughout the catalog.

// RevenueByMonthYear sums the revenue of delivered orders by purchase month,
// one column per year. It yields twelve rows once any revenue exists.
func RevenueByMonthYear(s *extract.Sources) (*types.Result[types.MonthlyRevenueRow], error) {
	name := enums.QueryRevenueByMonthYear
	if err := requireInputs(s, name,
		columnsOf(models.TableOrders, "order_id", "order_status", "order_purchase_timestamp"),
		columnsOf(models.TableOrderItems, "order_id", "price", "freight_value"),
	); err != nil {
		return nil, err
	}

	const years = lastReportYear - firstReportYear + 1
	var grid [12][years]decimal.Decimal
	found := false

	for i := range s.Items {
		item := &s.Items[i]
		order, ok := s.Order(item.OrderID)
		if !ok || !order.IsDelivered() {
			continue
		}
		year := order.PurchaseTimestamp.Year()
		if year < firstReportYear || year > lastReportYear {
			continue
		}
		cell := &grid[order.PurchaseTimestamp.Month()-1][year-firstReportYear]
		*cell = cell.Add(item.Revenue())
		found = true
	}

	if !found {
		return types.NewResult[types.MonthlyRevenueRow](name, revenueByMonthYearColumns, nil), nil
	}

	rows := make([]types.MonthlyRevenueRow, 0, 12)
	for m := 0; m < 12; m++ {
		rows = append(rows, types.MonthlyRevenueRow{
			Month:    analytics.MonthLabel(time.Month(m + 1)),
			Year2016: pkgtypes.NewMoney(grid[m][0]),
			Year2017: pkgtypes.NewMoney(grid[m][1]),
			Year2018: pkgtypes.NewMoney(grid[m][2]),
		})
	}
	return types.NewResult(name, revenueByMonthYearColumns, rows), nil
}

// RevenuePerState sums the revenue of delivered orders by customer state,
// highest first.
func RevenuePerState(s *extract.Sources) (*types.Result[types.StateRevenueRow], error) {
	name := enums.QueryRevenuePerState
	if err := requireInputs(s, name,
		columnsOf(models.TableOrders, "order_id", "order_status"),
		columnsOf(models.TableOrderItems, "order_id", "price", "freight_value"),
	); err != nil {
		return nil, err
	}
	if err := requireState(s, name); err != nil {
		return nil, err
	}

	byState := map[string]decimal.Decimal{}
	for i := range s.Items {
		item := &s.Items[i]
		order, ok := s.Order(item.OrderID)
		if !ok || !order.IsDelivered() {
			continue
		}
		state := s.StateOf(order)
		if state == "" {
			continue
		}
		byState[state] = byState[state].Add(item.Revenue())
	}

	rows := make([]types.StateRevenueRow, 0, len(byState))
	for state, revenue := range byState {
		rows = append(rows, types.StateRevenueRow{CustomerState: state, Revenue: pkgtypes.NewMoney(revenue)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Revenue.Cmp(rows[j].Revenue.Decimal); c != 0 {
			return c > 0
		}
		return rows[i].CustomerState < rows[j].CustomerState
	})

	return types.NewResult(name, revenuePerStateColumns, rows), nil
}

type categoryRevenue struct {
	category string
	revenue  decimal.Decimal
	orders   map[string]struct{}
}

// categoryRevenues joins items with products and sums revenue per category,
// across every order status. Items without product or category are dropped.
func categoryRevenues(s *extract.Sources) []*categoryRevenue {
	byCategory := map[string]*categoryRevenue{}
	for i := range s.Items {
		item := &s.Items[i]
		product, ok := s.Product(item.ProductID)
		if !ok {
			continue
		}
		category := s.CategoryOf(product)
		if category == "" {
			continue
		}
		c, ok := byCategory[category]
		if !ok {
			c = &categoryRevenue{category: category, orders: map[string]struct{}{}}
			byCategory[category] = c
		}
		c.revenue = c.revenue.Add(item.Revenue())
		c.orders[item.OrderID] = struct{}{}
	}

	out := make([]*categoryRevenue, 0, len(byCategory))
	for _, c := range byCategory {
		out = append(out, c)
	}
	return out
}

func rankCategories(categories []*categoryRevenue, descending bool) []*categoryRevenue {
	sort.Slice(categories, func(i, j int) bool {
		if c := categories[i].revenue.Cmp(categories[j].revenue); c != 0 {
			if descending {
				return c > 0
			}
			return c < 0
		}
		return categories[i].category < categories[j].category
	})
	if len(categories) > topCategoriesLimit {
		categories = categories[:topCategoriesLimit]
	}
	return categories
}

// Top10RevenueCategories ranks the ten categories with the highest revenue.
// Ties are broken by category name.
func Top10RevenueCategories(s *extract.Sources) (*types.Result[types.TopCategoryRow], error) {
	name := enums.QueryTop10RevenueCategories
	if err := requireInputs(s, name,
		columnsOf(models.TableOrderItems, "order_id", "product_id", "price", "freight_value"),
		columnsOf(models.TableProducts, "product_id", "product_category_name"),
	); err != nil {
		return nil, err
	}

	ranked := rankCategories(categoryRevenues(s), true)
	rows := make([]types.TopCategoryRow, 0, len(ranked))
	for _, c := range ranked {
		rows = append(rows, types.TopCategoryRow{
			Category: c.category,
			Revenue:  pkgtypes.NewMoney(c.revenue),
			NumOrder: int64(len(c.orders)),
		})
	}
	return types.NewResult(name, topCategoriesColumns, rows), nil
}

// Top10LeastRevenueCategories ranks the ten categories with the lowest revenue.
func Top10LeastRevenueCategories(s *extract.Sources) (*types.Result[types.CategoryRevenueRow], error) {
	name := enums.QueryTop10LeastRevenueCategories
	if err := requireInputs(s, name,
		columnsOf(models.TableOrderItems, "order_id", "product_id", "price", "freight_value"),
		columnsOf(models.TableProducts, "product_id", "product_category_name"),
	); err != nil {
		return nil, err
	}

	ranked := rankCategories(categoryRevenues(s), false)
	rows := make([]types.CategoryRevenueRow, 0, len(ranked))
	for _, c := range ranked {
		rows = append(rows, types.CategoryRevenueRow{
			Category: c.category,
			Revenue:  pkgtypes.NewMoney(c.revenue),
		})
	}
	return types.NewResult(name, leastCategoriesColumns, rows), nil
}
