package query

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/olist-etl/internal/analytics/types"
	"github.com/angelmondragon/olist-etl/internal/extract"
	"github.com/angelmondragon/olist-etl/pkg/enums"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
)

// Transform computes one named result from the loaded sources. Transforms
// never mutate their input.
type Transform func(s *extract.Sources) (types.Table, error)

// Reported pivot years of the monthly transforms.
const (
	firstReportYear = 2016
	lastReportYear  = 2018
)

// Lookup resolves the transform of a catalog entry.
func Lookup(name enums.QueryName) (Transform, error) {
	switch name {
	case enums.QueryDeliveryDateDifference:
		return table(DeliveryDateDifference), nil
	case enums.QueryGlobalAmountOrderStatus:
		return table(GlobalAmountOrderStatus), nil
	case enums.QueryRevenueByMonthYear:
		return table(RevenueByMonthYear), nil
	case enums.QueryRevenuePerState:
		return table(RevenuePerState), nil
	case enums.QueryTop10LeastRevenueCategories:
		return table(Top10LeastRevenueCategories), nil
	case enums.QueryTop10RevenueCategories:
		return table(Top10RevenueCategories), nil
	case enums.QueryRealVsEstimatedDeliveredTime:
		return table(RealVsEstimatedDeliveredTime), nil
	case enums.QueryOrdersPerDayAndHolidays2017:
		return table(OrdersPerDayAndHolidays2017), nil
	case enums.QueryFreightValueWeightRelationship:
		return table(FreightValueWeightRelationship), nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown query %q", name))
}

func table[R types.Row](fn func(*extract.Sources) (*types.Result[R], error)) Transform {
	return func(s *extract.Sources) (types.Table, error) {
		result, err := fn(s)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

// input names the columns a transform reads from one table.
type input struct {
	table   string
	columns []string
}

func columnsOf(table string, columns ...string) input {
	return input{table: table, columns: columns}
}

// requireInputs fails with a SCHEMA_ERROR when a table was not loaded or its
// source lacked a column the transform reads.
func requireInputs(s *extract.Sources, name enums.QueryName, inputs ...input) error {
	if s == nil {
		return pkgerrors.New(pkgerrors.CodeSchema, fmt.Sprintf("%s: no sources", name))
	}
	tables := make([]string, len(inputs))
	for i, in := range inputs {
		tables[i] = in.table
	}
	if err := s.Require(tables...); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeSchema, err, string(name))
	}
	var errs error
	for _, in := range inputs {
		errs = multierr.Append(errs, s.RequireColumns(in.table, in.columns...))
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeSchema, errs, string(name))
	}
	return nil
}

// requireState is requireInputs for transforms grouping by customer state.
func requireState(s *extract.Sources, name enums.QueryName) error {
	if err := s.RequireCustomerState(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeSchema, err, string(name))
	}
	return nil
}
