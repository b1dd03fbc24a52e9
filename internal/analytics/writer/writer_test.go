package writer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/olist-etl/internal/analytics/types"
	"github.com/angelmondragon/olist-etl/pkg/enums"
	"github.com/angelmondragon/olist-etl/pkg/logger"
	pkgtypes "github.com/angelmondragon/olist-etl/pkg/types"
)

type tableList []types.Table

func (l tableList) Tables() []types.Table { return l }

func money(value string) pkgtypes.Money {
	return pkgtypes.NewMoney(decimal.RequireFromString(value))
}

func days(v float64) *float64 { return &v }

func sampleTables() tableList {
	states := types.NewResult(enums.QueryRevenuePerState, []string{"customer_state", "Revenue"}, []types.StateRevenueRow{
		{CustomerState: "SP", Revenue: money("192.75")},
		{CustomerState: "RJ", Revenue: money("40")},
	})
	delivery := types.NewResult(enums.QueryRealVsEstimatedDeliveredTime, []string{
		"month",
		"Year2016_real_time", "Year2017_real_time", "Year2018_real_time",
		"Year2016_estimated_time", "Year2017_estimated_time", "Year2018_estimated_time",
	}, []types.DeliveryTimeRow{
		{Month: "Jan", Year2017RealTime: days(12.75), Year2017EstimatedTime: days(13.625)},
	})
	empty := types.NewResult[types.CategoryRevenueRow](enums.QueryTop10LeastRevenueCategories, []string{"Category", "Revenue"}, nil)
	return tableList{states, delivery, empty}
}

func TestWriteJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := New(logger.Nop()).WriteJSON(context.Background(), dir, sampleTables())
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "revenue_per_state.json"), paths[0])

	raw, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(raw, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "SP", rows[0]["customer_state"])
	assert.Equal(t, 192.75, rows[0]["Revenue"])

	raw, err = os.ReadFile(paths[1])
	require.NoError(t, err)
	rows = nil
	require.NoError(t, json.Unmarshal(raw, &rows))
	assert.Nil(t, rows[0]["Year2016_real_time"])
	assert.Equal(t, 13.625, rows[0]["Year2017_estimated_time"])

	raw, err = os.ReadFile(paths[2])
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	paths, err := New(nil).WriteCSV(context.Background(), dir, sampleTables())
	require.NoError(t, err)
	require.Len(t, paths, 3)

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"customer_state", "Revenue"},
		{"SP", "192.75"},
		{"RJ", "40.00"},
	}, records)

	f2, err := os.Open(paths[1])
	require.NoError(t, err)
	defer f2.Close()
	reader := csv.NewReader(f2)
	records, err = reader.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Jan", "", "12.75", "", "", "13.625", ""}, records[1])

	f3, err := os.Open(paths[2])
	require.NoError(t, err)
	defer f3.Close()
	records, err = csv.NewReader(f3).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Category", "Revenue"}}, records)
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, New(logger.Nop()).WriteWorkbook(context.Background(), path, sampleTables()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"revenue_per_state",
		"real_vs_estimated_delivered_tim",
		"top_10_least_revenue_categories",
	}, f.GetSheetList())

	value, err := f.GetCellValue("revenue_per_state", "A1")
	require.NoError(t, err)
	assert.Equal(t, "customer_state", value)
	value, err = f.GetCellValue("revenue_per_state", "B2")
	require.NoError(t, err)
	assert.Equal(t, "192.75", value)

	value, err = f.GetCellValue("real_vs_estimated_delivered_tim", "B2")
	require.NoError(t, err)
	assert.Equal(t, "", value)
	value, err = f.GetCellValue("real_vs_estimated_delivered_tim", "C2")
	require.NoError(t, err)
	assert.Equal(t, "12.75", value)

	rows, err := f.GetRows("top_10_least_revenue_categories")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Category", "Revenue"}}, rows)
}

func TestSheetNameTruncates(t *testing.T) {
	for _, table := range sampleTables() {
		assert.LessOrEqual(t, len(SheetName(table)), maxSheetName)
	}
}

func TestWriteRejectsNilSource(t *testing.T) {
	w := New(nil)
	_, err := w.WriteJSON(context.Background(), t.TempDir(), nil)
	require.Error(t, err)
	require.Error(t, w.WriteWorkbook(context.Background(), filepath.Join(t.TempDir(), "x.xlsx"), nil))
}
