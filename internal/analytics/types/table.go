package types

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/angelmondragon/olist-etl/pkg/enums"
)

// Table is a named, immutable result of one transform.
type Table interface {
	Name() enums.QueryName
	Columns() []string
	Len() int
	// Values returns typed cells in column order, one slice per row.
	Values() [][]any
	// Records renders every cell as text, for csv style exports.
	Records() [][]string
	// Slice returns the rows in [start, end) as a table of the same name.
	Slice(start, end int) Table
	json.Marshaler
}

// Row is a typed result row. Cells must follow the table's column order.
type Row interface {
	Cells() []any
}

// Result is the Table implementation shared by every transform.
type Result[R Row] struct {
	name    enums.QueryName
	columns []string
	rows    []R
}

func NewResult[R Row](name enums.QueryName, columns []string, rows []R) *Result[R] {
	if rows == nil {
		rows = []R{}
	}
	return &Result[R]{name: name, columns: columns, rows: rows}
}

func (r *Result[R]) Name() enums.QueryName { return r.name }

func (r *Result[R]) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

func (r *Result[R]) Len() int { return len(r.rows) }

func (r *Result[R]) Slice(start, end int) Table {
	if start < 0 {
		start = 0
	}
	if end > len(r.rows) {
		end = len(r.rows)
	}
	if start > end {
		start = end
	}
	return &Result[R]{name: r.name, columns: r.columns, rows: r.rows[start:end]}
}

// Rows exposes the typed rows. Callers must not modify them.
func (r *Result[R]) Rows() []R { return r.rows }

func (r *Result[R]) Values() [][]any {
	out := make([][]any, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row.Cells())
	}
	return out
}

func (r *Result[R]) Records() [][]string {
	out := make([][]string, 0, len(r.rows))
	for _, row := range r.rows {
		cells := row.Cells()
		record := make([]string, len(cells))
		for i, cell := range cells {
			record[i] = FormatCell(cell)
		}
		out = append(out, record)
	}
	return out
}

// MarshalJSON renders the rows as an array of objects keyed by column name.
func (r *Result[R]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.rows)
}

// FormatCell renders one cell as text. Nil pointers render empty.
func FormatCell(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case *float64:
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
