package enums

import "fmt"

// QueryName identifies one transform of the analytics catalog and keys its
// result in the registry.
type QueryName string

const (
	QueryDeliveryDateDifference         QueryName = "delivery_date_difference"
	QueryGlobalAmountOrderStatus        QueryName = "global_amount_order_status"
	QueryRevenueByMonthYear             QueryName = "revenue_by_month_year"
	QueryRevenuePerState                QueryName = "revenue_per_state"
	QueryTop10LeastRevenueCategories    QueryName = "top_10_least_revenue_categories"
	QueryTop10RevenueCategories         QueryName = "top_10_revenue_categories"
	QueryRealVsEstimatedDeliveredTime   QueryName = "real_vs_estimated_delivered_time"
	QueryOrdersPerDayAndHolidays2017    QueryName = "orders_per_day_and_holidays_2017"
	QueryFreightValueWeightRelationship QueryName = "freight_value_weight_relationship"
)

var validQueryNames = []QueryName{
	QueryDeliveryDateDifference,
	QueryGlobalAmountOrderStatus,
	QueryRevenueByMonthYear,
	QueryRevenuePerState,
	QueryTop10LeastRevenueCategories,
	QueryTop10RevenueCategories,
	QueryRealVsEstimatedDeliveredTime,
	QueryOrdersPerDayAndHolidays2017,
	QueryFreightValueWeightRelationship,
}

// QueryNames returns every catalog entry in catalog order.
func QueryNames() []QueryName {
	names := make([]QueryName, len(validQueryNames))
	copy(names, validQueryNames)
	return names
}

// String implements fmt.Stringer.
func (q QueryName) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QueryName.
func (q QueryName) IsValid() bool {
	for _, candidate := range validQueryNames {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQueryName converts raw input into a QueryName.
func ParseQueryName(value string) (QueryName, error) {
	for _, candidate := range validQueryNames {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid query name %q", value)
}
