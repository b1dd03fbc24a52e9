package query

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/olist-etl/internal/analytics"
	"github.com/angelmondragon/olist-etl/internal/analytics/types"
	"github.com/angelmondragon/olist-etl/internal/extract"
	"github.com/angelmondragon/olist-etl/pkg/db/models"
	"github.com/angelmondragon/olist-etl/pkg/enums"
	pkgtypes "github.com/angelmondragon/olist-etl/pkg/types"
)

// holidayYear is the year covered by the daily orders series.
const holidayYear = 2017

var (
	orderStatusColumns   = []string{"order_status", "Amount"}
	ordersPerDayColumns  = []string{"date", "order_count", "holiday"}
	freightWeightColumns = []string{"order_id", "freight_value", "product_weight_g"}
)

// GlobalAmountOrderStatus counts orders per status, unknown statuses included.
func GlobalAmountOrderStatus(s *extract.Sources) (*types.Result[types.StatusAmountRow], error) {
	name := enums.QueryGlobalAmountOrderStatus
	if err := requireInputs(s, name, columnsOf(models.TableOrders, "order_status")); err != nil {
		return nil, err
	}

	counts := map[string]int64{}
	for i := range s.Orders {
		counts[s.Orders[i].Status.String()]++
	}

	rows := make([]types.StatusAmountRow, 0, len(counts))
	for status, amount := range counts {
		rows = append(rows, types.StatusAmountRow{OrderStatus: status, Amount: amount})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].OrderStatus < rows[j].OrderStatus })

	return types.NewResult(name, orderStatusColumns, rows), nil
}

// OrdersPerDayAndHolidays2017 counts 2017 purchases per calendar day and flags
// days found in the holiday calendar. Days without orders are not emitted.
func OrdersPerDayAndHolidays2017(s *extract.Sources) (*types.Result[types.DailyOrdersRow], error) {
	name := enums.QueryOrdersPerDayAndHolidays2017
	if err := requireInputs(s, name,
		columnsOf(models.TableOrders, "order_purchase_timestamp"),
		columnsOf(models.TableHolidays, "date"),
	); err != nil {
		return nil, err
	}

	holidays := make(map[int64]struct{}, len(s.Holidays))
	for _, h := range s.Holidays {
		holidays[analytics.EpochMillis(h.Date)] = struct{}{}
	}

	perDay := map[int64]int64{}
	for i := range s.Orders {
		ts := s.Orders[i].PurchaseTimestamp
		if ts.Year() != holidayYear {
			continue
		}
		perDay[analytics.EpochMillis(ts)]++
	}

	rows := make([]types.DailyOrdersRow, 0, len(perDay))
	for day, count := range perDay {
		_, holiday := holidays[day]
		rows = append(rows, types.DailyOrdersRow{Date: day, OrderCount: count, Holiday: holiday})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })

	return types.NewResult(name, ordersPerDayColumns, rows), nil
}

// FreightValueWeightRelationship joins orders, items and products, keeps
// delivered orders and sums freight_value and product_weight_g per order.
// Unmatched rows drop out of the join silently.
func FreightValueWeightRelationship(s *extract.Sources) (*types.Result[types.FreightWeightRow], error) {
	name := enums.QueryFreightValueWeightRelationship
	if err := requireInputs(s, name,
		columnsOf(models.TableOrders, "order_id", "order_status"),
		columnsOf(models.TableOrderItems, "order_id", "product_id", "freight_value"),
		columnsOf(models.TableProducts, "product_id", "product_weight_g"),
	); err != nil {
		return nil, err
	}

	type acc struct {
		freight decimal.Decimal
		weight  float64
	}
	byOrder := map[string]*acc{}
	for i := range s.Items {
		item := &s.Items[i]
		order, ok := s.Order(item.OrderID)
		if !ok || !order.IsDelivered() {
			continue
		}
		product, ok := s.Product(item.ProductID)
		if !ok {
			continue
		}
		a, ok := byOrder[item.OrderID]
		if !ok {
			a = &acc{}
			byOrder[item.OrderID] = a
		}
		a.freight = a.freight.Add(item.FreightValue)
		if product.WeightG != nil {
			a.weight += *product.WeightG
		}
	}

	rows := make([]types.FreightWeightRow, 0, len(byOrder))
	for orderID, a := range byOrder {
		rows = append(rows, types.FreightWeightRow{
			OrderID:        orderID,
			FreightValue:   pkgtypes.NewMoney(a.freight),
			ProductWeightG: a.weight,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].OrderID < rows[j].OrderID })

	return types.NewResult(name, freightWeightColumns, rows), nil
}
