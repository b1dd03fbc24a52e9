package query

import (
	"sort"
	"time"

	"github.com/angelmondragon/olist-etl/internal/analytics"
	"github.com/angelmondragon/olist-etl/internal/analytics/types"
	"github.com/angelmondragon/olist-etl/internal/extract"
	"github.com/angelmondragon/olist-etl/pkg/db/models"
	"github.com/angelmondragon/olist-etl/pkg/enums"
)

var (
	deliveryDifferenceColumns = []string{"State", "Delivery_Difference"}
	deliveryTimeColumns       = []string{
		"month",
		"Year2016_real_time", "Year2017_real_time", "Year2018_real_time",
		"Year2016_estimated_time", "Year2017_estimated_time", "Year2018_estimated_time",
	}
)

// DeliveryDateDifference averages, per customer state, the calendar days
// between actual and estimated delivery of delivered orders. Negative values
// mean early deliveries. The mean is truncated toward zero.
//
//	SELECT customer_state AS State,
//	  CAST(AVG(JULIANDAY(DATE(delivered)) - JULIANDAY(DATE(estimated))) AS INTEGER) AS Delivery_Difference
//	FROM olist_orders WHERE order_status = 'delivered' AND delivered IS NOT NULL
//	GROUP BY State ORDER BY Delivery_Difference, State
func DeliveryDateDifference(s *extract.Sources) (*types.Result[types.DeliveryDifferenceRow], error) {
	name := enums.QueryDeliveryDateDifference
	if err := requireInputs(s, name,
		columnsOf(models.TableOrders, "order_status", "order_delivered_customer_date", "order_estimated_delivery_date"),
	); err != nil {
		return nil, err
	}
	if err := requireState(s, name); err != nil {
		return nil, err
	}

	type acc struct{ sum, n int64 }
	byState := map[string]*acc{}
	for i := range s.Orders {
		o := &s.Orders[i]
		if !o.IsDelivered() || o.DeliveredCustomerDate == nil || o.EstimatedDeliveryDate == nil {
			continue
		}
		state := s.StateOf(o)
		if state == "" {
			continue
		}
		a, ok := byState[state]
		if !ok {
			a = &acc{}
			byState[state] = a
		}
		a.sum += analytics.CalendarDaysBetween(*o.EstimatedDeliveryDate, *o.DeliveredCustomerDate)
		a.n++
	}

	rows := make([]types.DeliveryDifferenceRow, 0, len(byState))
	for state, a := range byState {
		rows = append(rows, types.DeliveryDifferenceRow{State: state, DeliveryDifference: a.sum / a.n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DeliveryDifference != rows[j].DeliveryDifference {
			return rows[i].DeliveryDifference < rows[j].DeliveryDifference
		}
		return rows[i].State < rows[j].State
	})

	return types.NewResult(name, deliveryDifferenceColumns, rows), nil
}

// RealVsEstimatedDeliveredTime compares, per purchase month and year, the mean
// days from purchase to delivery with the mean days from purchase to the
// estimated date. Cells without delivered orders are nil.
func RealVsEstimatedDeliveredTime(s *extract.Sources) (*types.Result[types.DeliveryTimeRow], error) {
	name := enums.QueryRealVsEstimatedDeliveredTime
	if err := requireInputs(s, name,
		columnsOf(models.TableOrders, "order_status", "order_purchase_timestamp", "order_delivered_customer_date", "order_estimated_delivery_date"),
	); err != nil {
		return nil, err
	}

	const years = lastReportYear - firstReportYear + 1
	type acc struct {
		realDays, estimatedDays float64
		n                       int
	}
	var grid [12][years]acc
	found := false

	for i := range s.Orders {
		o := &s.Orders[i]
		if !o.IsDelivered() || o.DeliveredCustomerDate == nil || o.EstimatedDeliveryDate == nil {
			continue
		}
		year := o.PurchaseTimestamp.Year()
		if year < firstReportYear || year > lastReportYear {
			continue
		}
		cell := &grid[o.PurchaseTimestamp.Month()-1][year-firstReportYear]
		cell.realDays += analytics.DaysBetween(o.PurchaseTimestamp, *o.DeliveredCustomerDate)
		cell.estimatedDays += analytics.DaysBetween(o.PurchaseTimestamp, *o.EstimatedDeliveryDate)
		cell.n++
		found = true
	}

	if !found {
		return types.NewResult[types.DeliveryTimeRow](name, deliveryTimeColumns, nil), nil
	}

	mean := func(sum float64, n int) *float64 {
		if n == 0 {
			return nil
		}
		v := sum / float64(n)
		return &v
	}

	rows := make([]types.DeliveryTimeRow, 0, 12)
	for m := 0; m < 12; m++ {
		cells := grid[m]
		rows = append(rows, types.DeliveryTimeRow{
			Month:                 analytics.MonthLabel(time.Month(m + 1)),
			Year2016RealTime:      mean(cells[0].realDays, cells[0].n),
			Year2017RealTime:      mean(cells[1].realDays, cells[1].n),
			Year2018RealTime:      mean(cells[2].realDays, cells[2].n),
			Year2016EstimatedTime: mean(cells[0].estimatedDays, cells[0].n),
			Year2017EstimatedTime: mean(cells[1].estimatedDays, cells[1].n),
			Year2018EstimatedTime: mean(cells[2].estimatedDays, cells[2].n),
		})
	}

	return types.NewResult(name, deliveryTimeColumns, rows), nil
}
