package types

import (
	pkgtypes "github.com/angelmondragon/olist-etl/pkg/types"
)

// DeliveryDifferenceRow is the mean gap in days between actual and estimated
// delivery of one state.
type DeliveryDifferenceRow struct {
	State              string `json:"State"`
	DeliveryDifference int64  `json:"Delivery_Difference"`
}

func (r DeliveryDifferenceRow) Cells() []any {
	return []any{r.State, r.DeliveryDifference}
}

// StatusAmountRow counts the orders in one status.
type StatusAmountRow struct {
	OrderStatus string `json:"order_status"`
	Amount      int64  `json:"Amount"`
}

func (r StatusAmountRow) Cells() []any {
	return []any{r.OrderStatus, r.Amount}
}

// MonthlyRevenueRow pivots one calendar month across the reported years.
type MonthlyRevenueRow struct {
	Month    string         `json:"month"`
	Year2016 pkgtypes.Money `json:"Year2016"`
	Year2017 pkgtypes.Money `json:"Year2017"`
	Year2018 pkgtypes.Money `json:"Year2018"`
}

func (r MonthlyRevenueRow) Cells() []any {
	return []any{r.Month, r.Year2016, r.Year2017, r.Year2018}
}

// StateRevenueRow is the delivered revenue of one customer state.
type StateRevenueRow struct {
	CustomerState string         `json:"customer_state"`
	Revenue       pkgtypes.Money `json:"Revenue"`
}

func (r StateRevenueRow) Cells() []any {
	return []any{r.CustomerState, r.Revenue}
}

// CategoryRevenueRow is the revenue of one product category.
type CategoryRevenueRow struct {
	Category string         `json:"Category"`
	Revenue  pkgtypes.Money `json:"Revenue"`
}

func (r CategoryRevenueRow) Cells() []any {
	return []any{r.Category, r.Revenue}
}

// TopCategoryRow is a category revenue with its distinct order count.
type TopCategoryRow struct {
	Category string         `json:"Category"`
	Revenue  pkgtypes.Money `json:"Revenue"`
	NumOrder int64          `json:"Num_order"`
}

func (r TopCategoryRow) Cells() []any {
	return []any{r.Category, r.Revenue, r.NumOrder}
}

// DeliveryTimeRow holds mean real and estimated delivery days of one month.
// A nil cell means the month had no delivered order that year.
type DeliveryTimeRow struct {
	Month                 string   `json:"month"`
	Year2016RealTime      *float64 `json:"Year2016_real_time"`
	Year2017RealTime      *float64 `json:"Year2017_real_time"`
	Year2018RealTime      *float64 `json:"Year2018_real_time"`
	Year2016EstimatedTime *float64 `json:"Year2016_estimated_time"`
	Year2017EstimatedTime *float64 `json:"Year2017_estimated_time"`
	Year2018EstimatedTime *float64 `json:"Year2018_estimated_time"`
}

func (r DeliveryTimeRow) Cells() []any {
	return []any{
		r.Month,
		r.Year2016RealTime, r.Year2017RealTime, r.Year2018RealTime,
		r.Year2016EstimatedTime, r.Year2017EstimatedTime, r.Year2018EstimatedTime,
	}
}

// DailyOrdersRow is one purchase day. Date is epoch milliseconds of the day's
// UTC midnight.
type DailyOrdersRow struct {
	Date       int64 `json:"date"`
	OrderCount int64 `json:"order_count"`
	Holiday    bool  `json:"holiday"`
}

func (r DailyOrdersRow) Cells() []any {
	return []any{r.Date, r.OrderCount, r.Holiday}
}

// FreightWeightRow sums freight and product weight of one delivered order.
type FreightWeightRow struct {
	OrderID        string         `json:"order_id"`
	FreightValue   pkgtypes.Money `json:"freight_value"`
	ProductWeightG float64        `json:"product_weight_g"`
}

func (r FreightWeightRow) Cells() []any {
	return []any{r.OrderID, r.FreightValue, r.ProductWeightG}
}
